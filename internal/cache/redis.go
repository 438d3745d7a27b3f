package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/carebooking/config"
	"github.com/Domenick1991/carebooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client     *redis.Client
	catalogTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, catalogTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(
		redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		catalogTTL,
	)
}

func NewRedisCacheWithClient(client *redis.Client, catalogTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, catalogTTL: catalogTTL}
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// GetHospitals returns ok=false on a miss.
func (c *RedisCache) GetHospitals(ctx context.Context, page, pageSize int) (domain.Page[domain.Hospital], bool, error) {
	var out domain.Page[domain.Hospital]
	ok, err := c.getJSON(ctx, hospitalsKey(page, pageSize), &out)
	return out, ok, err
}

func (c *RedisCache) SetHospitals(ctx context.Context, page, pageSize int, p domain.Page[domain.Hospital]) error {
	return c.setJSON(ctx, hospitalsKey(page, pageSize), p)
}

func (c *RedisCache) GetDepartments(ctx context.Context, hospitalID string, page, pageSize int) (domain.Page[domain.Department], bool, error) {
	var out domain.Page[domain.Department]
	ok, err := c.getJSON(ctx, departmentsKey(hospitalID, page, pageSize), &out)
	return out, ok, err
}

func (c *RedisCache) SetDepartments(ctx context.Context, hospitalID string, page, pageSize int, p domain.Page[domain.Department]) error {
	return c.setJSON(ctx, departmentsKey(hospitalID, page, pageSize), p)
}

func (c *RedisCache) GetDoctors(ctx context.Context, departmentID, hospitalID string, page, pageSize int) (domain.Page[domain.Doctor], bool, error) {
	var out domain.Page[domain.Doctor]
	ok, err := c.getJSON(ctx, doctorsKey(departmentID, hospitalID, page, pageSize), &out)
	return out, ok, err
}

func (c *RedisCache) SetDoctors(ctx context.Context, departmentID, hospitalID string, page, pageSize int, p domain.Page[domain.Doctor]) error {
	return c.setJSON(ctx, doctorsKey(departmentID, hospitalID, page, pageSize), p)
}

// AcquireSubmitLock takes the per-session submit lock. false means another
// submit holds it.
func (c *RedisCache) AcquireSubmitLock(ctx context.Context, sessionID string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, submitLockKey(sessionID), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseSubmitLock(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, submitLockKey(sessionID)).Err()
}

func (c *RedisCache) getJSON(ctx context.Context, key string, dst interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) setJSON(ctx context.Context, key string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, c.catalogTTL).Err()
}

func hospitalsKey(page, pageSize int) string {
	return fmt.Sprintf("cache:hospitals:%d:%d", page, pageSize)
}

func departmentsKey(hospitalID string, page, pageSize int) string {
	return fmt.Sprintf("cache:hospital:%s:departments:%d:%d", hospitalID, page, pageSize)
}

func doctorsKey(departmentID, hospitalID string, page, pageSize int) string {
	return fmt.Sprintf("cache:department:%s:hospital:%s:doctors:%d:%d", departmentID, hospitalID, page, pageSize)
}

func submitLockKey(sessionID string) string {
	return "lock:session:" + sessionID + ":submit"
}

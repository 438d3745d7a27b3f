package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	GRPC        GRPCConfig        `yaml:"grpc"`
	Log         LogConfig         `yaml:"log"`
	Database    DatabaseConfig    `yaml:"database"`
	Redis       RedisConfig       `yaml:"redis"`
	Kafka       KafkaConfig       `yaml:"kafka"`
	HospitalAPI HospitalAPIConfig `yaml:"hospital_api" envconfig:"HOSPITAL_API"`
	Booking     BookingConfig     `yaml:"booking"`
	Worker      WorkerConfig      `yaml:"worker"`
}

type HTTPConfig struct {
	Address      string  `yaml:"address"`
	RateLimitRPS float64 `yaml:"rate_limit_rps" split_words:"true"`
	RateBurst    int     `yaml:"rate_burst" split_words:"true"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode" split_words:"true"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	AppointmentsTopic  string   `yaml:"appointments_topic" split_words:"true"`
	NotificationsTopic string   `yaml:"notifications_topic" split_words:"true"`
	GroupID            string   `yaml:"group_id" split_words:"true"`
}

type HospitalAPIConfig struct {
	BaseURL        string `yaml:"base_url" split_words:"true"`
	ServiceToken   string `yaml:"service_token" split_words:"true"`
	TimeoutSeconds int    `yaml:"timeout_seconds" split_words:"true"`
}

func (h HospitalAPIConfig) Timeout() time.Duration {
	if h.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(h.TimeoutSeconds) * time.Second
}

type BookingConfig struct {
	SessionTTLMinutes      int    `yaml:"session_ttl_minutes" split_words:"true"`
	CatalogCacheTTLSeconds int    `yaml:"catalog_cache_ttl_seconds" split_words:"true"`
	SubmitLockSeconds      int    `yaml:"submit_lock_seconds" split_words:"true"`
	ConsultationFeeCents   int64  `yaml:"consultation_fee_cents" split_words:"true"`
	Currency               string `yaml:"currency"`
	Timezone               string `yaml:"timezone"`
}

type WorkerConfig struct {
	RetentionDays        int `yaml:"retention_days" split_words:"true"`
	PurgeIntervalMinutes int `yaml:"purge_interval_minutes" split_words:"true"`
}

func defaults() Config {
	return Config{
		HTTP: HTTPConfig{Address: ":8080", RateLimitRPS: 20, RateBurst: 40},
		GRPC: GRPCConfig{Address: ":9090"},
		Log:  LogConfig{Level: "info"},
		Kafka: KafkaConfig{
			AppointmentsTopic:  "appointments",
			NotificationsTopic: "appointment-notifications",
			GroupID:            "carebooking-worker",
		},
		HospitalAPI: HospitalAPIConfig{TimeoutSeconds: 15},
		Booking: BookingConfig{
			SessionTTLMinutes:      30,
			CatalogCacheTTLSeconds: 300,
			SubmitLockSeconds:      30,
			ConsultationFeeCents:   5000,
			Currency:               "USD",
			Timezone:               "UTC",
		},
		Worker: WorkerConfig{RetentionDays: 90, PurgeIntervalMinutes: 60},
	}
}

// LoadConfig reads the YAML file at path over the defaults, then applies
// CAREBOOKING_* environment overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := envconfig.Process("carebooking", &cfg); err != nil {
		return nil, fmt.Errorf("failed to apply env overrides: %w", err)
	}

	return &cfg, nil
}

// Location resolves the booking timezone.
func (b BookingConfig) Location() (*time.Location, error) {
	if b.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(b.Timezone)
}

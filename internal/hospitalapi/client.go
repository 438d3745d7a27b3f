// Package hospitalapi is the JSON client for the remote hospital API that owns
// hospitals, departments, doctors, patients, appointments and payments.
package hospitalapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/carebooking/internal/domain"
	"go.uber.org/zap"
)

const defaultTimeout = 15 * time.Second

// ErrNoBearer means a patient-scoped call was made without the caller's token.
var ErrNoBearer = errors.New("hospitalapi: caller bearer token required")

// APIError is a non-2xx answer from the remote API.
type APIError struct {
	Op      string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("hospitalapi: %s: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("hospitalapi: %s: status %d: %s", e.Op, e.Status, e.Message)
}

// Observer receives per-call latency.
type Observer interface {
	ObserveExternalCall(op string, err error, seconds float64)
}

type Client struct {
	baseURL      string
	serviceToken string
	httpClient   *http.Client
	observer     Observer
	logger       *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

func NewClient(baseURL, serviceToken string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		serviceToken: serviceToken,
		httpClient:   &http.Client{Timeout: defaultTimeout},
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type bearerKey struct{}

// WithBearer attaches the caller's bearer token; it wins over the service token.
func WithBearer(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerKey{}, token)
}

func bearerFrom(ctx context.Context) string {
	if v, ok := ctx.Value(bearerKey{}).(string); ok {
		return v
	}
	return ""
}

type PageRequest struct {
	Page     int
	PageSize int
}

func (p PageRequest) values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(p.PageSize))
	}
	return v
}

func (c *Client) ListHospitals(ctx context.Context, page PageRequest) (domain.Page[domain.Hospital], error) {
	var out domain.Page[domain.Hospital]
	err := c.do(ctx, "list_hospitals", http.MethodGet, "/hospitals", page.values(), nil, &out)
	return out, err
}

func (c *Client) ListDepartments(ctx context.Context, hospitalID string, page PageRequest) (domain.Page[domain.Department], error) {
	var out domain.Page[domain.Department]
	path := "/hospitals/" + url.PathEscape(hospitalID) + "/departments"
	err := c.do(ctx, "list_departments", http.MethodGet, path, page.values(), nil, &out)
	return out, err
}

func (c *Client) ListDoctors(ctx context.Context, departmentID, hospitalID string, page PageRequest) (domain.Page[domain.Doctor], error) {
	var out domain.Page[domain.Doctor]
	q := page.values()
	if hospitalID != "" {
		q.Set("hospital_id", hospitalID)
	}
	path := "/departments/" + url.PathEscape(departmentID) + "/doctors"
	err := c.do(ctx, "list_doctors", http.MethodGet, path, q, nil, &out)
	return out, err
}

// CurrentPatient resolves the patient behind the bearer token in ctx. The
// service token never stands in for the caller here.
func (c *Client) CurrentPatient(ctx context.Context) (*domain.Patient, error) {
	if bearerFrom(ctx) == "" {
		return nil, ErrNoBearer
	}
	var out domain.Patient
	if err := c.do(ctx, "current_patient", http.MethodGet, "/patients/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type createdResponse struct {
	ID string `json:"id"`
}

func (c *Client) CreateAppointment(ctx context.Context, req domain.AppointmentRequest) (string, error) {
	var out createdResponse
	if err := c.do(ctx, "create_appointment", http.MethodPost, "/appointments", nil, req, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *Client) CreatePayment(ctx context.Context, req domain.PaymentRequest) (string, error) {
	var out createdResponse
	if err := c.do(ctx, "create_payment", http.MethodPost, "/payments", nil, req, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out interface{}) (err error) {
	start := time.Now()
	defer func() {
		if c.observer != nil {
			c.observer.ObserveExternalCall(op, err, time.Since(start).Seconds())
		}
	}()

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("hospitalapi: %s: marshal request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("hospitalapi: %s: create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := bearerFrom(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	} else if c.serviceToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.serviceToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("hospitalapi: %s: %w", op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("hospitalapi: %s: read response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Op: op, Status: resp.StatusCode, Message: errorMessage(data)}
		c.logger.Warn("hospital api call failed",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message),
		)
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("hospitalapi: %s: decode response: %w", op, err)
	}
	return nil
}

func errorMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

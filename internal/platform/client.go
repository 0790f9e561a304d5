package platform

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

	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-booking/internal/catalog"
)

const defaultTimeout = 10 * time.Second

var (
	// ErrInternal wraps failures on our side of the call (building the
	// request, transport errors).
	ErrInternal = errors.New("platform client: internal error")

	// ErrInvalidResponse wraps bodies that could not be decoded.
	ErrInvalidResponse = errors.New("platform client: invalid response")
)

// APIError is a non-2xx answer from the platform. Message carries the
// body's error or message field when there was one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("platform API returned %d", e.Status)
	}
	return fmt.Sprintf("platform API returned %d: %s", e.Status, e.Message)
}

type tokenKey struct{}

// WithToken attaches the caller's bearer token so it is forwarded on every
// platform request made with ctx.
func WithToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenKey{}, token)
}

func tokenFrom(ctx context.Context) string {
	v, _ := ctx.Value(tokenKey{}).(string)
	return v
}

// Client talks to the barbershop platform REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// ======================================================
// CATALOG
// ======================================================

func (c *Client) ListServices(ctx context.Context, q catalog.ServiceQuery) ([]catalog.Service, error) {
	params := url.Values{}
	if q.Gender != "" {
		params.Set("gender", string(q.Gender))
	}
	if q.BarberID != "" {
		params.Set("barberId", q.BarberID)
	}

	var out serviceList
	if err := c.doJSON(ctx, http.MethodGet, withQuery("/api/services", params), nil, &out); err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return out, nil
}

func (c *Client) ListBarbers(ctx context.Context, gender catalog.Gender) ([]catalog.Barber, error) {
	params := url.Values{}
	if gender != "" {
		params.Set("gender", string(gender))
	}

	var out barberList
	if err := c.doJSON(ctx, http.MethodGet, withQuery("/api/barbers", params), nil, &out); err != nil {
		return nil, fmt.Errorf("list barbers: %w", err)
	}
	return out, nil
}

func (c *Client) BarberMedia(ctx context.Context, barberID string) ([]catalog.Media, error) {
	params := url.Values{}
	params.Set("barberId", barberID)

	var out mediaList
	if err := c.doJSON(ctx, http.MethodGet, withQuery("/api/barber/media", params), nil, &out); err != nil {
		return nil, fmt.Errorf("barber media: %w", err)
	}
	return out, nil
}

// ======================================================
// AVAILABILITY
// ======================================================

func (c *Client) Availability(ctx context.Context, q AvailabilityQuery) ([]string, error) {
	params := url.Values{}
	params.Set("barberId", q.BarberID)
	params.Set("date", q.Date)
	params.Set("serviceDuration", strconv.Itoa(q.ServiceDuration))

	var out availabilityEnvelope
	if err := c.doJSON(ctx, http.MethodGet, withQuery("/api/availability", params), nil, &out); err != nil {
		return nil, fmt.Errorf("availability: %w", err)
	}
	if out.AvailableTimes == nil {
		return []string{}, nil
	}
	return out.AvailableTimes, nil
}

// ======================================================
// APPOINTMENTS
// ======================================================

func (c *Client) CreateAppointment(ctx context.Context, req AppointmentRequest) (*Appointment, error) {
	var out Appointment
	if err := c.doJSON(ctx, http.MethodPost, "/api/appointments", req, &out); err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	return &out, nil
}

func (c *Client) RescheduleAppointment(ctx context.Context, appointmentID string, req RescheduleRequest) (*Appointment, error) {
	path := fmt.Sprintf("/api/appointments/%s/reschedule", url.PathEscape(appointmentID))

	var out Appointment
	if err := c.doJSON(ctx, http.MethodPost, path, req, &out); err != nil {
		return nil, fmt.Errorf("reschedule appointment: %w", err)
	}
	return &out, nil
}

// ======================================================
// SETTINGS
// ======================================================

func (c *Client) Settings(ctx context.Context) (*Settings, error) {
	var out Settings
	if err := c.doJSON(ctx, http.MethodGet, "/api/settings", nil, &out); err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	return &out, nil
}

// ======================================================
// TRANSPORT
// ======================================================

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: marshal request: %v", ErrInternal, err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrInternal, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := tokenFrom(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: http request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrInvalidResponse, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: errorMessage(respBody)}
		c.logger.Warn("platform API non-2xx response",
			zap.Int("status", resp.StatusCode),
			zap.String("method", method),
			zap.String("path", path),
			zap.String("message", apiErr.Message),
		)
		return apiErr
	}

	if len(bytes.TrimSpace(respBody)) == 0 || out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrInvalidResponse, err)
	}
	return nil
}

func errorMessage(body []byte) string {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	if env.Error != "" {
		return env.Error
	}
	return env.Message
}

func withQuery(path string, params url.Values) string {
	if len(params) == 0 {
		return path
	}
	return path + "?" + params.Encode()
}

// Compile-time check
var _ catalog.Source = (*Client)(nil)

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"court-booking-tui/model"
)

const (
	defaultBaseURL     = "http://localhost:5000/api"
	defaultUserAgent   = "court-booking-tui/1.0"
	defaultMaxAttempts = 1
	defaultRetryBase   = 200 * time.Millisecond
	defaultRetryCap    = 1200 * time.Millisecond
	errorSnippetLimit  = 8 << 10
)

// Client wraps HTTP access to the court booking API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	maxAttempts int
	retryBase   time.Duration
	retryCap    time.Duration
	log         zerolog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root, e.g. "https://host/api".
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/"); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithMaxAttempts sets how many times a read is attempted. Writes are sent once.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// APIError is returned when the API responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Status     string
	Endpoint   string
	Body       string
	// Message is the "error" field of a JSON error body, if any.
	Message string
}

func (e *APIError) Error() string {
	if e == nil {
		return "court api error"
	}
	if e.Message != "" {
		return fmt.Sprintf("court api error: %s: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("court api error: %s: %s", e.Status, e.Body)
}

// IsNotFound reports whether the error represents a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

// DecodeError is returned when a 2xx response body is not the expected JSON.
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response from %s: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// NewClient creates a new API client. If httpClient is nil, a default client is used.
func NewClient(httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 12 * time.Second}
	}
	c := &Client{
		httpClient:  httpClient,
		baseURL:     defaultBaseURL,
		userAgent:   defaultUserAgent,
		maxAttempts: defaultMaxAttempts,
		retryBase:   defaultRetryBase,
		retryCap:    defaultRetryCap,
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetCourts returns every court known to the backend.
func (c *Client) GetCourts(ctx context.Context) ([]model.Court, error) {
	var courts []model.Court
	if err := c.getJSON(ctx, c.baseURL+"/courts", &courts); err != nil {
		return nil, err
	}
	if courts == nil {
		courts = []model.Court{}
	}
	return courts, nil
}

// GetCourt fetches a single court by id.
func (c *Client) GetCourt(ctx context.Context, courtID int) (model.Court, error) {
	if courtID <= 0 {
		return model.Court{}, errors.New("court id is required")
	}
	var court model.Court
	if err := c.getJSON(ctx, fmt.Sprintf("%s/courts/%d", c.baseURL, courtID), &court); err != nil {
		return model.Court{}, err
	}
	return court, nil
}

// GetBookings returns every active booking.
func (c *Client) GetBookings(ctx context.Context) ([]model.Booking, error) {
	var bookings []model.Booking
	if err := c.getJSON(ctx, c.baseURL+"/bookings", &bookings); err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []model.Booking{}
	}
	return bookings, nil
}

// GetAvailability returns the booked slots of a court on date (DD/MM/YYYY), keyed by time.
// Slots missing from the result have no booking. An empty date lets the server pick today.
func (c *Client) GetAvailability(ctx context.Context, courtID int, date string) (map[string]model.SlotAvailability, error) {
	if courtID <= 0 {
		return nil, errors.New("court id is required")
	}
	endpoint := fmt.Sprintf("%s/bookings/availability/%d", c.baseURL, courtID)
	if date = strings.TrimSpace(date); date != "" {
		endpoint += "?date=" + url.QueryEscape(date)
	}
	availability := map[string]model.SlotAvailability{}
	if err := c.getJSON(ctx, endpoint, &availability); err != nil {
		return nil, err
	}
	return availability, nil
}

// CreateBooking claims a slot, either as first player or as the opponent of an existing claimant.
// It is never retried.
func (c *Client) CreateBooking(ctx context.Context, req model.BookingRequest) (model.BookingResult, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return model.BookingResult{}, fmt.Errorf("encode booking: %w", err)
	}
	endpoint := c.baseURL + "/bookings"

	var result model.BookingResult
	if err := c.doJSON(ctx, http.MethodPost, endpoint, payload, &result); err != nil {
		return model.BookingResult{}, err
	}
	return result, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	maxAttempts := c.maxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = c.doJSON(ctx, http.MethodGet, endpoint, nil, out)
		if err == nil {
			return nil
		}
		if attempt == maxAttempts || !c.shouldRetry(err) {
			return err
		}
		c.log.Debug().Err(err).Str("endpoint", endpoint).Int("attempt", attempt).Msg("retrying request")
		if waitErr := c.waitRetry(ctx, attempt); waitErr != nil {
			return waitErr
		}
	}
	return err
}

func (c *Client) doJSON(ctx context.Context, method string, endpoint string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	res, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("method", method).Str("endpoint", endpoint).Msg("request failed")
		return fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	c.log.Debug().
		Str("method", method).
		Str("endpoint", endpoint).
		Int("status", res.StatusCode).
		Dur("elapsed", time.Since(started)).
		Msg("api request")

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, errorSnippetLimit))
		return &APIError{
			StatusCode: res.StatusCode,
			Status:     res.Status,
			Endpoint:   endpoint,
			Body:       strings.TrimSpace(string(snippet)),
			Message:    errorMessage(snippet),
		}
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return &DecodeError{Endpoint: endpoint, Err: err}
	}
	return nil
}

func errorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Error)
}

func (c *Client) shouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return c.shouldRetryStatus(apiErr.StatusCode)
	}
	return true
}

func (c *Client) shouldRetryStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func (c *Client) waitRetry(ctx context.Context, attempt int) error {
	delay := c.retryDelay(attempt)
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) retryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	base := c.retryBase
	if base <= 0 {
		base = defaultRetryBase
	}
	limit := c.retryCap
	if limit <= 0 {
		limit = defaultRetryCap
	}

	delay := base
	for i := 1; i < attempt; i++ {
		if delay >= limit/2 {
			return limit
		}
		delay *= 2
	}
	if delay > limit {
		return limit
	}
	return delay
}

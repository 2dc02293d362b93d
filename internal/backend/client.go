// Package backend provides the HTTP client for the clinic's REST API. The
// API is the sole source of truth: this client only ferries requests and
// translates failures into a small error taxonomy the UI can render inline.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kasamhealthcare/clinic-web/internal/observability/metrics"
	"github.com/kasamhealthcare/clinic-web/pkg/logging"
)

// Client is an HTTP client for the clinic backend API.
type Client struct {
	baseURL    string
	healthURL  string
	httpClient *http.Client
	logger     *logging.Logger
	metrics    *metrics.BackendMetrics
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHealthURL sets the health endpoint, which lives outside the API prefix.
func WithHealthURL(url string) Option {
	return func(c *Client) {
		c.healthURL = url
	}
}

// WithMetrics records call latency per endpoint.
func WithMetrics(m *metrics.BackendMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a client for the given API base URL
// (e.g. "http://localhost:5000/api").
func NewClient(baseURL string, opts ...Option) *Client {
	base := strings.TrimRight(baseURL, "/")
	c := &Client{
		baseURL:   base,
		healthURL: strings.TrimSuffix(base, "/api") + "/health",
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logging.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// envelope is the backend's standard response shape.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// do issues a request and decodes the raw response body into out. HTTP-level
// failures come back already classified; envelope-level success flags are the
// caller's concern.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("backend: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("backend: create %s %s request: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(path, "unreachable", start)
		return networkError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observe(path, "unreachable", start)
		return networkError(err)
	}
	c.observe(path, fmt.Sprintf("%d", resp.StatusCode), start)

	if resp.StatusCode >= 400 {
		return c.errorFor(resp.StatusCode, path, data)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("backend: decode %s %s response: %w", method, path, err)
		}
	}
	return nil
}

// call issues a request and enforces the {success, message, data} envelope,
// returning the data payload.
func (c *Client) call(ctx context.Context, method, path, token string, body any) (json.RawMessage, error) {
	var env envelope
	if err := c.do(ctx, method, path, token, body, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "An error occurred"
		}
		return nil, &APIError{Status: http.StatusOK, Kind: KindValidation, Message: msg}
	}
	return env.Data, nil
}

// errorFor converts an HTTP error status into the taxonomy from the design:
// session-expired, auth-failure, validation-failure, or server-error.
func (c *Client) errorFor(status int, path string, body []byte) error {
	var env envelope
	_ = json.Unmarshal(body, &env)

	if status == http.StatusUnauthorized {
		if strings.Contains(path, "/auth/login") {
			msg := env.Message
			if msg == "" {
				msg = "Invalid email or password"
			}
			return &APIError{Status: status, Kind: KindAuth, Message: msg}
		}
		return ErrSessionExpired
	}

	msg := env.Message
	if msg == "" {
		msg = defaultErrorMessage(status)
	}
	kind := KindValidation
	if status >= 500 {
		kind = KindServer
	}
	return &APIError{Status: status, Kind: kind, Message: msg}
}

func (c *Client) observe(path, status string, start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.ObserveCall(path, status, time.Since(start).Seconds())
}

// Health checks whether the backend is reachable at all. Used by the session
// bootstrap to decide between live verification and the cached user mirror.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.healthURL, nil)
	if err != nil {
		return fmt.Errorf("backend: create health request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return networkError(err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend: health status %d", resp.StatusCode)
	}
	return nil
}

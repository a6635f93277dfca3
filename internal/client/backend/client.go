// Package backend is the HTTP client for the external employee, department and
// service order API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/service-order-scheduler/internal/logging"
)

const (
	defaultTimeout = 15 * time.Second
	maxErrorBody   = 2048
)

// RequestObserver receives the outcome of every backend round-trip.
type RequestObserver interface {
	ObserveBackendRequest(operation, status string, duration time.Duration)
}

// Client talks to one configured backend base URL.
type Client struct {
	baseURL  string
	http     *http.Client
	observer RequestObserver
	logger   *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.http.Timeout = timeout
		}
	}
}

// WithObserver reports request durations, typically to prometheus.
func WithObserver(observer RequestObserver) Option {
	return func(c *Client) { c.observer = observer }
}

// WithLogger sets the fallback logger used when the context carries none.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New constructs a client for baseURL, e.g. "http://localhost:3000".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http: &http.Client{
			Timeout: defaultTimeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        50,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 5 * time.Second,
			},
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do sends one request and returns the response body of a 2xx answer.
func (c *Client) do(ctx context.Context, operation, method, path string, payload any) (body []byte, err error) {
	if c == nil {
		return nil, fmt.Errorf("backend client is nil")
	}

	logger := logging.FromContextOr(ctx, c.logger).With(
		"component", "backend.Client",
		"operation", operation,
		"method", method,
		"path", path,
	)

	started := time.Now()
	status := "error"
	defer func() {
		elapsed := time.Since(started)
		if c.observer != nil {
			c.observer.ObserveBackendRequest(operation, status, elapsed)
		}
		if err != nil {
			logger.WarnContext(ctx, "backend request failed", "error", err, "status", status, "duration", elapsed)
			return
		}
		logger.DebugContext(ctx, "backend request completed", "status", status, "duration", elapsed)
	}()

	var reader io.Reader
	if payload != nil {
		encoded, marshalErr := json.Marshal(payload)
		if marshalErr != nil {
			return nil, fmt.Errorf("encode %s payload: %w", operation, marshalErr)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	status = strconv.Itoa(resp.StatusCode)

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", operation, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusError(method, path, resp.StatusCode, body)
	}
	return body, nil
}

func newStatusError(method, path string, code int, body []byte) *StatusError {
	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody]
	}
	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	message := ""
	if json.Unmarshal(body, &parsed) == nil {
		message = parsed.Message
		if message == "" {
			message = parsed.Error
		}
	}
	return &StatusError{Method: method, Path: path, StatusCode: code, Message: message, Body: text}
}

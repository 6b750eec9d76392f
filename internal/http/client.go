package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const maxBodyBytes = 4 << 20

// Config holds outbound request limits
type Config struct {
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
	UserAgent         string
}

// DefaultConfig returns the default outbound config
func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 5,
		Burst:             1,
		Timeout:           10 * time.Second,
		UserAgent:         "GroomingService/1.0",
	}
}

// FetchError describes a failed outbound request. Status is zero when no
// response was received.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	msg := "failed to fetch " + e.URL
	if e.Status != 0 {
		msg += " (HTTP " + strconv.Itoa(e.Status) + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsRetryableStatus reports statuses that usually clear up on their own
func IsRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || (status >= 500 && status < 600)
}

// Client is a rate-limited HTTP client. It makes a single attempt per call;
// callers decide what to do on failure.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	config     Config
}

// NewClient creates a client with its own token bucket
func NewClient(config Config) *Client {
	if config.Burst < 1 {
		config.Burst = 1
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultConfig().UserAgent
	}
	limit := rate.Inf
	if config.RequestsPerSecond > 0 {
		limit = rate.Limit(config.RequestsPerSecond)
	}
	return &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		limiter:    rate.NewLimiter(limit, config.Burst),
		config:     config,
	}
}

// NewClientDefault creates a client with DefaultConfig
func NewClientDefault() *Client {
	return NewClient(DefaultConfig())
}

// WithHTTPClient swaps the underlying transport, mainly for tests
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// GetBytes waits for a rate limit token, performs a GET and returns the body
// of a 2xx response.
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("rate limiter: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &FetchError{URL: url, Status: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &FetchError{URL: url, Status: resp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	return data, nil
}

// GetJSON performs GetBytes and decodes the body into out
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	data, err := c.GetBytes(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &FetchError{URL: url, Status: http.StatusOK, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

// GetConfig returns the client config
func (c *Client) GetConfig() Config {
	return c.config
}

package papersources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultUserAgent is sent when the caller does not configure one.
const DefaultUserAgent = "Helixir-PaperSearchService/1.0"

// RequestObserver receives one callback per outbound request. Metrics
// implement it to track provider latency and failures.
type RequestObserver interface {
	ObserveSourceRequest(source string, statusCode int, duration time.Duration, err error)
}

// HTTPClientConfig configures the HTTP client.
type HTTPClientConfig struct {
	// Source labels observations, e.g. "openalex".
	Source string

	// Timeout is the request timeout for HTTP operations.
	Timeout time.Duration

	// RateLimit is the maximum requests per second. Zero disables limiting.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	BurstSize int

	// UserAgent is the User-Agent header sent with requests.
	UserAgent string

	// Observer is notified after every request. May be nil.
	Observer RequestObserver

	// Transport overrides the default round tripper. May be nil.
	Transport http.RoundTripper
}

// HTTPClient wraps http.Client with a politeness limiter and request
// observation. It performs exactly one attempt per call: there is no retry.
// It is safe for concurrent use.
type HTTPClient struct {
	client      *http.Client
	rateLimiter *RateLimiter
	config      HTTPClientConfig
}

// NewHTTPClient creates a new single-attempt HTTP client.
func NewHTTPClient(cfg HTTPClientConfig) *HTTPClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.BurstSize == 0 {
		cfg.BurstSize = 1
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	return &HTTPClient{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: cfg.Transport,
		},
		rateLimiter: NewRateLimiter(cfg.RateLimit, cfg.BurstSize),
		config:      cfg,
	}
}

// Do waits for the limiter, sets the User-Agent header and executes req once.
// The limiter wait and the round trip share one Timeout budget, which ends
// when the response body is closed. Non-2xx responses are returned as-is;
// interpreting them is the caller's job.
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	ctx, cancel := context.WithTimeout(req.Context(), c.config.Timeout)

	if err := c.rateLimiter.Wait(ctx); err != nil {
		cancel()
		if ctx.Err() == nil {
			// The limiter refuses up front when the wait would outlast the deadline.
			err = fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
		}
		err = fmt.Errorf("rate limiter wait: %w", err)
		c.observe(0, 0, err)
		return nil, err
	}

	start := time.Now()
	resp, err := c.client.Do(req.WithContext(ctx))
	elapsed := time.Since(start)
	if err != nil {
		cancel()
		err = fmt.Errorf("request failed: %w", err)
		c.observe(0, elapsed, err)
		return nil, err
	}

	c.observe(resp.StatusCode, elapsed, nil)
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

func (c *HTTPClient) observe(status int, d time.Duration, err error) {
	if c.config.Observer != nil {
		c.config.Observer.ObserveSourceRequest(c.config.Source, status, d, err)
	}
}

// cancelOnClose releases the attempt's context once the body is closed.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

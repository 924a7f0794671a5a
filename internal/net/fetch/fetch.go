// Package fetch is the single suspension point of the scoring pipeline: a
// timeout- and retry-wrapped JSON HTTP client that reports expected failures
// as tagged results instead of raising them.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultTimeout bounds each individual attempt, not the whole request.
	DefaultTimeout = 10 * time.Second
	// DefaultRetries is the number of extra attempts after the first.
	DefaultRetries = 1
	// DefaultBackoffBase scales the linear backoff: base * (attempt+1).
	DefaultBackoffBase = 1 * time.Second
)

// ErrTimeout marks an attempt that was cancelled by its per-attempt deadline.
var ErrTimeout = errors.New("request timed out")

// NoRetries disables retrying for a single call.
const NoRetries = -1

// Options tunes a single FetchJSON call. The zero value is usable and
// inherits the client defaults.
type Options struct {
	Method  string
	Headers map[string]string
	Body    []byte
	Timeout time.Duration // per attempt, client default when zero
	Retries int           // extra attempts on 5xx/transport, client default when zero, NoRetries disables
}

// Result is the tagged outcome of a fetch. Exactly one of Data or Err is
// meaningful; Status carries the last HTTP status observed (0 when the
// request never reached the server).
type Result struct {
	Data   []byte
	Status int
	Err    error
}

// OK reports whether the fetch produced a usable 2xx payload.
func (r Result) OK() bool {
	return r.Err == nil
}

// Decode unmarshals the payload into out. A malformed body is an expected
// failure mode and comes back as an error, never a panic.
func (r Result) Decode(out any) error {
	if r.Err != nil {
		return r.Err
	}
	if err := json.Unmarshal(r.Data, out); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

// Config tunes a Client.
type Config struct {
	Timeout     time.Duration // default per-attempt timeout
	Retries     int           // default extra attempts, DefaultRetries when zero, NoRetries disables
	BackoffBase time.Duration // linear backoff unit between attempts
	RPS         float64       // per-host token bucket rate, 0 disables limiting
	Burst       int
	UserAgent   string
}

// Client issues JSON HTTP requests with per-attempt timeouts, bounded retries
// and per-host rate limiting. Safe for concurrent use.
type Client struct {
	http        *http.Client
	limiter     *hostLimiter
	backoffBase time.Duration
	timeout     time.Duration
	retries     int
	userAgent   string
}

// NewClient builds a Client from cfg, filling unset fields with defaults.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retries == 0 {
		cfg.Retries = DefaultRetries
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = DefaultBackoffBase
	}
	var limiter *hostLimiter
	if cfg.RPS > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = newHostLimiter(cfg.RPS, burst)
	}
	return &Client{
		// The attempt context enforces the deadline; no client-level timeout.
		http:        &http.Client{},
		limiter:     limiter,
		backoffBase: cfg.BackoffBase,
		timeout:     cfg.Timeout,
		retries:     cfg.Retries,
		userAgent:   cfg.UserAgent,
	}
}

// FetchJSON performs an HTTP request and returns a tagged result. Transient
// failures (transport errors, timeouts, 5xx) are retried up to opts.Retries
// extra attempts with linear backoff; 4xx returns immediately with nil data.
func (c *Client) FetchJSON(ctx context.Context, url string, opts Options) Result {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	retries := opts.Retries
	if retries == 0 {
		retries = c.retries
	}
	if retries < 0 {
		retries = 0
	}

	var last Result
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			backoff := c.backoffBase * time.Duration(attempt)
			log.Debug().
				Str("url", url).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("retrying fetch")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return Result{Status: last.Status, Err: ctx.Err()}
			}
		}

		last = c.attempt(ctx, method, url, opts, timeout)
		if last.Err == nil || !retryable(last) {
			return last
		}
	}
	return last
}

// attempt runs one HTTP round trip under its own deadline.
func (c *Client) attempt(ctx context.Context, method, url string, opts Options, timeout time.Duration) Result {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if len(opts.Body) > 0 {
		body = bytes.NewReader(opts.Body)
	}
	req, err := http.NewRequestWithContext(attemptCtx, method, url, body)
	if err != nil {
		// Bad method or URL is a programmer error, still reported as a
		// non-retryable result rather than a panic.
		return Result{Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if len(opts.Body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	if c.limiter != nil {
		if err := c.limiter.wait(attemptCtx, req.URL.Host); err != nil {
			return Result{Err: fmt.Errorf("rate limit wait: %w", err)}
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || attemptCtx.Err() == context.DeadlineExceeded {
			return Result{Err: ErrTimeout}
		}
		return Result{Err: fmt.Errorf("transport: %w", err)}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("http %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		}
	}
	return Result{Data: payload, Status: resp.StatusCode}
}

// retryable reports whether a failed result is worth another attempt: 5xx,
// timeouts and transport errors only. 4xx and decode-stage failures are
// permanent.
func retryable(r Result) bool {
	if r.Status >= 500 {
		return true
	}
	if r.Status >= 400 {
		return false
	}
	return r.Err != nil
}

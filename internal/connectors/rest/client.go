// Package rest is the shared HTTP access layer for connectors.
//
// A Client paces requests with a per-instance rate limiter, retries
// transient transport failures with exponential backoff and decodes JSON
// into caller-supplied values. Non-2xx responses and malformed bodies are
// returned as typed errors and never retried.
package rest

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

	"github.com/cenkalti/backoff/v4"

	"github.com/custodia-labs/arkeo/internal/connectors/ratelimit"
	"github.com/custodia-labs/arkeo/internal/logger"
)

const (
	// DefaultTimeout is the default per-request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent identifies arkeo to upstream archives.
	DefaultUserAgent = "arkeo/1.0 (+https://github.com/custodia-labs/arkeo)"

	// maxBodySize caps how much of a response body is read.
	maxBodySize = 32 << 20
)

// RetryConfig controls retries of transient failures.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// InitialInterval is the first backoff delay.
	InitialInterval time.Duration

	// MaxInterval caps each backoff delay.
	MaxInterval time.Duration
}

// DefaultRetryConfig returns three attempts with 1s base and 10s cap.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:     3,
		InitialInterval: time.Second,
		MaxInterval:     10 * time.Second,
	}
}

// Config configures a Client.
type Config struct {
	// BaseURL is prefixed to relative paths.
	BaseURL string

	// Headers are sent with every request.
	Headers map[string]string

	// Timeout bounds a single request. Zero uses DefaultTimeout.
	Timeout time.Duration

	// RequestsPerSecond paces requests. Zero or less disables pacing.
	RequestsPerSecond float64

	// HTTPClient overrides the underlying client.
	HTTPClient *http.Client

	// Retry controls retries. A zero value uses DefaultRetryConfig.
	Retry RetryConfig
}

// RawResponse is an unparsed response.
type RawResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports whether the status is 2xx.
func (r *RawResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client performs rate-limited, retried HTTP requests against one upstream.
type Client struct {
	baseURL string
	headers map[string]string
	http    *http.Client
	limiter *ratelimit.Limiter
	retry   RetryConfig
}

// New creates a Client.
func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}

	retry := cfg.Retry
	if retry.MaxAttempts <= 0 {
		retry = DefaultRetryConfig()
	}

	headers := make(map[string]string, len(cfg.Headers)+1)
	headers["User-Agent"] = DefaultUserAgent
	for k, v := range cfg.Headers {
		headers[k] = v
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		headers: headers,
		http:    hc,
		limiter: ratelimit.New(cfg.RequestsPerSecond),
		retry:   retry,
	}
}

// Limiter returns the client's rate limiter.
func (c *Client) Limiter() *ratelimit.Limiter {
	return c.limiter
}

// BuildURL joins path onto the base URL and appends params. Empty values
// are dropped; repeated keys are kept. An absolute path ignores the base.
func (c *Client) BuildURL(path string, params url.Values) string {
	target := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		if path != "" && !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		target = c.baseURL + path
	}

	q := url.Values{}
	for key, values := range params {
		for _, v := range values {
			if v != "" {
				q.Add(key, v)
			}
		}
	}
	if len(q) == 0 {
		return target
	}

	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return target + sep + q.Encode()
}

// GetJSON performs a GET and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, path string, params url.Values, out any) error {
	target := c.BuildURL(path, params)
	raw, err := c.do(ctx, http.MethodGet, target, nil, map[string]string{"Accept": "application/json"})
	if err != nil {
		return err
	}
	return decodeJSON(http.MethodGet, target, raw, out)
}

// PostJSON marshals body, POSTs it and decodes the JSON response into out.
// A nil out discards the response body.
func (c *Client) PostJSON(ctx context.Context, path string, params url.Values, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	target := c.BuildURL(path, params)
	raw, err := c.do(ctx, http.MethodPost, target, payload, map[string]string{
		"Accept":       "application/json",
		"Content-Type": "application/json",
	})
	if err != nil {
		return err
	}
	return decodeJSON(http.MethodPost, target, raw, out)
}

// GetRaw performs a GET and returns the response whatever its status.
func (c *Client) GetRaw(ctx context.Context, path string, params url.Values, headers map[string]string) (*RawResponse, error) {
	return c.do(ctx, http.MethodGet, c.BuildURL(path, params), nil, headers)
}

// Do performs a request and returns a StatusError for non-2xx responses.
func (c *Client) Do(ctx context.Context, method, path string, params url.Values, body []byte) (*RawResponse, error) {
	target := c.BuildURL(path, params)
	raw, err := c.do(ctx, method, target, body, nil)
	if err != nil {
		return nil, err
	}
	if !raw.OK() {
		return nil, newStatusError(method, target, raw)
	}
	return raw, nil
}

func decodeJSON(method, target string, raw *RawResponse, out any) error {
	if !raw.OK() {
		return newStatusError(method, target, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw.Body, out); err != nil {
		return &DecodeError{URL: target, Err: err}
	}
	return nil
}

// do sends one logical request, retrying transport failures.
func (c *Client) do(ctx context.Context, method, target string, body []byte, headers map[string]string) (*RawResponse, error) {
	attempt := 0
	op := func() (*RawResponse, error) {
		attempt++
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("rate limit wait: %w", err))
		}

		raw, err := c.send(ctx, method, target, body, headers)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(err)
			}
			logger.Debug("rest: %s %s attempt %d failed: %v", method, target, attempt, err)
			return nil, err
		}

		if raw.StatusCode == http.StatusTooManyRequests {
			c.limiter.RecordRetryAfter(parseRetryAfter(raw.Header.Get("Retry-After")))
		}
		return raw, nil
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.retry.InitialInterval
	exp.MaxInterval = c.retry.MaxInterval
	exp.MaxElapsedTime = 0

	b := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(c.retry.MaxAttempts-1)), ctx)
	raw, err := backoff.RetryWithData(op, b)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, target, err)
	}
	return raw, nil
}

func (c *Client) send(ctx context.Context, method, target string, body []byte, headers map[string]string) (*RawResponse, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &RawResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// parseRetryAfter reads a Retry-After header in seconds or HTTP-date form.
func parseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		return time.Until(at)
	}
	return 0
}

// IsTransient reports whether err is a transport failure worth retrying
// later, as opposed to an upstream answer or a malformed body.
func IsTransient(err error) bool {
	var statusErr *StatusError
	var decodeErr *DecodeError
	return err != nil && !errors.As(err, &statusErr) && !errors.As(err, &decodeErr)
}

// Package transport issues GET requests against the upstream provider,
// retrying transient failures with capped exponential backoff.
package transport

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/JolanDUBOIS/sport-index/pkg/logger"
	"github.com/JolanDUBOIS/sport-index/pkg/metrics"
)

// Default fetch configuration constants.
const (
	DefaultMaxRetries   = 3
	DefaultBaseDelay    = 5 * time.Second
	DefaultInitialDelay = 5 * time.Second
	DefaultMaxDelay     = 30 * time.Second
	defaultTimeout      = 15 * time.Second
	defaultUserAgent    = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"
	maxBodyBytes        = 16 << 20
)

// Response is a successful upstream reply.
type Response struct {
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Fetcher performs politely spaced, retried GET requests.
// A Fetcher holds no per-call state and is safe for concurrent use.
type Fetcher struct {
	client       *http.Client
	userAgent    string
	maxRetries   int
	baseDelay    time.Duration
	initialDelay time.Duration
	maxDelay     time.Duration
	jitter       func() time.Duration
	logger       logger.Logger
}

// NewFetcher creates a fetcher with configuration options.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:       &http.Client{Timeout: defaultTimeout},
		userAgent:    defaultUserAgent,
		maxRetries:   DefaultMaxRetries,
		baseDelay:    DefaultBaseDelay,
		initialDelay: DefaultInitialDelay,
		maxDelay:     DefaultMaxDelay,
		jitter:       uniformJitter,
		logger:       logger.NamedOrNop("transport"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func uniformJitter() time.Duration {
	return rand.N(time.Second)
}

// Backoff returns min(base*2^attempt + jitter, maxDelay).
func Backoff(attempt int, base, maxDelay, jitter time.Duration) time.Duration {
	d := base
	for i := 0; i < attempt && d <= maxDelay; i++ {
		d *= 2
	}
	d += jitter
	if d > maxDelay || d < 0 {
		return maxDelay
	}
	return d
}

// Fetch GETs rawURL with params and returns the first 200 response.
//
// 429, 403, 5xx and network failures are retried up to the configured number
// of attempts. Any other status fails at once. When attempts run out the
// result is a *RateLimitError if the last status was 429 and a *FetchError
// otherwise. Cancelling ctx aborts any pending wait and returns ctx.Err().
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, params url.Values) (*Response, error) {
	full, err := withParams(rawURL, params)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}

	start := time.Now()
	defer func() { metrics.RecordFetchDuration(time.Since(start).Seconds()) }()

	if err := sleep(ctx, f.initialDelay+f.jitter()); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", full, err)
	}

	var (
		lastStatus int
		lastErr    error
	)
	for attempt := 0; attempt < f.maxRetries; attempt++ {
		resp, err := f.do(ctx, full)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("fetch %s: %w", full, ctx.Err())
			}
			metrics.RecordFetchAttempt("network")
			lastStatus, lastErr = 0, err
		} else {
			reason, retryable := classify(resp.StatusCode)
			metrics.RecordFetchAttempt(reason)
			if resp.StatusCode == http.StatusOK {
				return resp, nil
			}
			if !retryable {
				metrics.RecordFetchFailure("fetch")
				f.logger.Error(ctx, "Non-retryable upstream status",
					logger.String("url", full),
					logger.Int("status", resp.StatusCode))
				return nil, &FetchError{URL: full, StatusCode: resp.StatusCode, Attempts: attempt + 1}
			}
			lastStatus, lastErr = resp.StatusCode, nil
		}

		if attempt == f.maxRetries-1 {
			break
		}
		delay := Backoff(attempt, f.baseDelay, f.maxDelay, f.jitter())
		reason := retryReason(lastStatus)
		metrics.RecordFetchRetry(reason)
		fields := []logger.Field{
			logger.String("url", full),
			logger.String("reason", reason),
			logger.String("attempt", strconv.Itoa(attempt+1)+"/"+strconv.Itoa(f.maxRetries)),
			logger.Duration("retry_in", delay),
		}
		if lastStatus != 0 {
			fields = append(fields, logger.Int("status", lastStatus))
		}
		if lastErr != nil {
			fields = append(fields, logger.Error(lastErr))
		}
		f.logger.Warn(ctx, "Retryable upstream failure", fields...)

		if err := sleep(ctx, delay); err != nil {
			return nil, fmt.Errorf("fetch %s: %w", full, err)
		}
	}

	f.logger.Error(ctx, "Upstream retries exhausted",
		logger.String("url", full),
		logger.Int("attempts", f.maxRetries),
		logger.Int("last_status", lastStatus))
	if lastStatus == http.StatusTooManyRequests {
		metrics.RecordFetchFailure("rate_limited")
		return nil, &RateLimitError{URL: full, Attempts: f.maxRetries}
	}
	metrics.RecordFetchFailure("fetch")
	return nil, &FetchError{URL: full, StatusCode: lastStatus, Attempts: f.maxRetries, Err: lastErr}
}

func (f *Fetcher) do(ctx context.Context, full string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return &Response{URL: full, StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

// classify maps a status code to a metrics outcome and whether it is retried.
func classify(status int) (string, bool) {
	switch {
	case status == http.StatusOK:
		return "success", false
	case status == http.StatusTooManyRequests:
		return "rate_limited", true
	case status == http.StatusForbidden:
		return "forbidden", true
	case status >= http.StatusInternalServerError && status <= 599:
		return "server_error", true
	default:
		return "rejected", false
	}
}

func retryReason(status int) string {
	switch {
	case status == 0:
		return "network"
	case status == http.StatusTooManyRequests:
		return "rate_limit"
	case status == http.StatusForbidden:
		return "forbidden"
	default:
		return "server_error"
	}
}

func withParams(rawURL string, params url.Values) (string, error) {
	if len(params) == 0 {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// sleep blocks for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

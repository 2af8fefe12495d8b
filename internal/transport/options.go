package transport

import (
	"net/http"
	"time"

	"github.com/JolanDUBOIS/sport-index/pkg/logger"
)

// Option applies a configuration option to the Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets the client used for every request.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithUserAgent sets the User-Agent header sent upstream.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxRetries sets the total number of attempts per fetch.
func WithMaxRetries(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxRetries = n
		}
	}
}

// WithBaseDelay sets the first backoff step.
func WithBaseDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		if d >= 0 {
			f.baseDelay = d
		}
	}
}

// WithInitialDelay sets the politeness wait before the first attempt.
func WithInitialDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		if d >= 0 {
			f.initialDelay = d
		}
	}
}

// WithMaxDelay caps every backoff delay.
func WithMaxDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		if d >= 0 {
			f.maxDelay = d
		}
	}
}

// WithJitter replaces the random jitter source. Tests pass a constant.
func WithJitter(fn func() time.Duration) Option {
	return func(f *Fetcher) {
		if fn != nil {
			f.jitter = fn
		}
	}
}

// WithLogger sets a custom logger for the fetcher.
func WithLogger(l logger.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

package transport

import (
	"errors"
	"fmt"
)

// Sentinel kinds for fetch failures. Use errors.Is against these rather than
// type-asserting the concrete errors.
var (
	ErrRateLimited = errors.New("rate limited")
	ErrFetch       = errors.New("fetch failed")
)

// RateLimitError is returned when every attempt was spent and the last
// observed status was 429.
type RateLimitError struct {
	URL      string
	Attempts int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited by %s after %d attempts", e.URL, e.Attempts)
}

// Is reports whether target is ErrRateLimited.
func (e *RateLimitError) Is(target error) bool { return target == ErrRateLimited }

// FetchError is any other unrecoverable outcome: a non-retryable status, a
// transient status that outlived the retry budget, or a network failure.
// StatusCode is zero when the last attempt never produced a response.
type FetchError struct {
	URL        string
	StatusCode int
	Attempts   int
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("fetch %s: status %d after %d attempts: %v", e.URL, e.StatusCode, e.Attempts, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("fetch %s: status %d after %d attempts", e.URL, e.StatusCode, e.Attempts)
	case e.Err != nil:
		return fmt.Sprintf("fetch %s: %v after %d attempts", e.URL, e.Err, e.Attempts)
	default:
		return fmt.Sprintf("fetch %s failed after %d attempts", e.URL, e.Attempts)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is reports whether target is ErrFetch.
func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// IsUpstream reports whether err is one of the two fetch failures, the only
// errors a best-effort caller is expected to swallow.
func IsUpstream(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrFetch)
}

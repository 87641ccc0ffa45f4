package http

import (
	"context"
	"time"

	"github.com/joblens/joblens"
)

// DefaultRetryDelays returns the backoff delays for fetch retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// Ensure RetryFetcher implements joblens.Fetcher at compile time.
var _ joblens.Fetcher = (*RetryFetcher)(nil)

// RetryFetcher wraps a Fetcher with exponential backoff on transient
// failures. Permanent failures (gone postings, invalid URLs) are returned
// immediately; rate-limit and server errors are retried.
type RetryFetcher struct {
	next   joblens.Fetcher
	delays []time.Duration
}

// NewRetryFetcher creates a RetryFetcher with the given backoff delays.
// Nil delays means DefaultRetryDelays.
func NewRetryFetcher(next joblens.Fetcher, delays []time.Duration) *RetryFetcher {
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	return &RetryFetcher{next: next, delays: delays}
}

// Fetch retries the wrapped fetch up to len(delays) times after the first
// attempt, waiting delays[i] before attempt i+2.
func (f *RetryFetcher) Fetch(ctx context.Context, url string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= len(f.delays); attempt++ {
		html, err := f.next.Fetch(ctx, url)
		if err == nil {
			return html, nil
		}
		lastErr = err

		if !retryable(err) || attempt == len(f.delays) {
			break
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(f.delays[attempt]):
		}
	}
	return "", lastErr
}

// Close closes the wrapped fetcher.
func (f *RetryFetcher) Close() error {
	return f.next.Close()
}

func retryable(err error) bool {
	switch joblens.ErrorCode(err) {
	case joblens.ENOTFOUND, joblens.EINVALID, joblens.ECANCELED:
		return false
	}
	return true
}

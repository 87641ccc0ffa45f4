package rod

import (
	"context"
	"log/slog"
	"time"

	"github.com/joblens/joblens"
)

// Ensure LoggingFetcher implements joblens.Fetcher.
var _ joblens.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with render logging. Browser fetches are
// the slowest step of an extraction, so successes log the rendered size
// and duration at debug level while failures log the error code at warn.
type LoggingFetcher struct {
	next   joblens.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next joblens.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the outcome.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (string, error) {
	begin := time.Now()
	html, err := f.next.Fetch(ctx, url)
	if err != nil {
		f.logger.Warn("page render failed",
			"url", url,
			"code", joblens.ErrorCode(err),
			"duration", time.Since(begin),
			"err", err,
		)
		return "", err
	}
	f.logger.Debug("page rendered",
		"url", url,
		"bytes", len(html),
		"duration", time.Since(begin),
	)
	return html, nil
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}

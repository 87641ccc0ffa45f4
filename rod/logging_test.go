package rod_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/joblens/joblens"
	"github.com/joblens/joblens/mock"
	"github.com/joblens/joblens/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(handler), &buf
}

func TestLoggingFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("logs rendered size and duration", func(t *testing.T) {
		t.Parallel()

		logger, buf := newTestLogger()
		f := rod.NewLoggingFetcher(&mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) {
				return "<html><body>Staff Engineer - Acme Corp</body></html>", nil
			},
		}, logger)

		html, err := f.Fetch(context.Background(), "https://boards.example.com/jobs/1")
		require.NoError(t, err)
		assert.NotEmpty(t, html)

		out := buf.String()
		assert.Contains(t, out, "page rendered")
		assert.Contains(t, out, "url=https://boards.example.com/jobs/1")
		assert.Contains(t, out, "bytes=")
		assert.Contains(t, out, "duration=")
	})

	t.Run("logs the error code on failure", func(t *testing.T) {
		t.Parallel()

		logger, buf := newTestLogger()
		f := rod.NewLoggingFetcher(&mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) {
				return "", joblens.Errorf(joblens.ENOTFOUND, "posting gone")
			},
		}, logger)

		_, err := f.Fetch(context.Background(), "https://boards.example.com/jobs/404")
		require.Error(t, err)

		out := buf.String()
		assert.Contains(t, out, "page render failed")
		assert.Contains(t, out, "code=not_found")
	})
}

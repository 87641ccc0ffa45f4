package mock

import (
	"context"

	"github.com/joblens/joblens"
)

var _ joblens.PageSource = (*PageSource)(nil)

// PageSource is a mock implementation of joblens.PageSource.
type PageSource struct {
	URLFn  func(ctx context.Context) (string, error)
	HTMLFn func(ctx context.Context) (string, error)
}

func (s *PageSource) URL(ctx context.Context) (string, error) {
	return s.URLFn(ctx)
}

func (s *PageSource) HTML(ctx context.Context) (string, error) {
	return s.HTMLFn(ctx)
}

var _ joblens.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of joblens.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	if f.CloseFn == nil {
		return nil
	}
	return f.CloseFn()
}

var _ joblens.Converter = (*Converter)(nil)

// Converter is a mock implementation of joblens.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}

var _ joblens.TokenCounter = (*TokenCounter)(nil)

// TokenCounter is a mock implementation of joblens.TokenCounter.
type TokenCounter struct {
	CountTokensFn func(ctx context.Context, text string) (int, error)
}

func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	return tc.CountTokensFn(ctx, text)
}

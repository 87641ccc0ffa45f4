package mock

import (
	"context"

	"github.com/joblens/joblens"
)

var _ joblens.ContentExtractor = (*ContentExtractor)(nil)

// ContentExtractor is a mock implementation of joblens.ContentExtractor.
type ContentExtractor struct {
	CurrentURLFn func(ctx context.Context) (string, error)
	ExtractFn    func(ctx context.Context) (*joblens.PageContent, error)
}

func (e *ContentExtractor) CurrentURL(ctx context.Context) (string, error) {
	return e.CurrentURLFn(ctx)
}

func (e *ContentExtractor) Extract(ctx context.Context) (*joblens.PageContent, error) {
	return e.ExtractFn(ctx)
}

// Package readability implements content extraction using the
// go-readability article extraction algorithm.
package readability

import (
	"context"
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"
	"github.com/joblens/joblens"
)

// Ensure Extractor implements joblens.ContentExtractor at compile time.
var _ joblens.ContentExtractor = (*Extractor)(nil)

// Extractor wraps go-readability to pull the readable article out of a
// posting page. It tends to do better than selector-based extraction on
// long-form company career pages.
type Extractor struct {
	source joblens.PageSource
}

// NewExtractor creates an Extractor over the given page source.
func NewExtractor(source joblens.PageSource) *Extractor {
	return &Extractor{source: source}
}

// CurrentURL returns the page's current address.
func (e *Extractor) CurrentURL(ctx context.Context) (string, error) {
	return e.source.URL(ctx)
}

// Extract processes the page and returns a snapshot of its readable
// content.
func (e *Extractor) Extract(ctx context.Context) (*joblens.PageContent, error) {
	pageURL, err := e.source.URL(ctx)
	if err != nil {
		return nil, err
	}
	rawHTML, err := e.source.HTML(ctx)
	if err != nil {
		return nil, err
	}
	if rawHTML == "" {
		return nil, joblens.Errorf(joblens.EINVALID, "page %q returned empty HTML", pageURL)
	}

	parsed, _ := url.Parse(pageURL)
	article, err := readability.FromReader(strings.NewReader(rawHTML), parsed)
	if err != nil {
		return nil, joblens.Errorf(joblens.ENOTFOUND, "no readable content in %q: %v", pageURL, err)
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return nil, joblens.Errorf(joblens.ENOTFOUND, "no readable content in %q", pageURL)
	}

	return &joblens.PageContent{
		Title:   article.Title,
		RawText: text,
		URL:     pageURL,
		Length:  len(text),
	}, nil
}

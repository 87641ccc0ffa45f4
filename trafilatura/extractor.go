// Package trafilatura implements content extraction using the
// go-trafilatura main-content extraction algorithm.
package trafilatura

import (
	"bytes"
	"context"
	"net/url"
	"strings"

	"github.com/joblens/joblens"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements joblens.ContentExtractor at compile time.
var _ joblens.ContentExtractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to pull the main posting content out of a
// page, dropping chrome and boilerplate. When a Converter is set the
// extracted content HTML is converted to Markdown, which models parse more
// reliably than flattened text.
type Extractor struct {
	source    joblens.PageSource
	converter joblens.Converter // optional
}

// NewExtractor creates an Extractor over the given page source.
func NewExtractor(source joblens.PageSource) *Extractor {
	return &Extractor{source: source}
}

// WithConverter returns a copy of the extractor that renders extracted
// content as Markdown.
func (e *Extractor) WithConverter(converter joblens.Converter) *Extractor {
	return &Extractor{source: e.source, converter: converter}
}

// CurrentURL returns the page's current address.
func (e *Extractor) CurrentURL(ctx context.Context) (string, error) {
	return e.source.URL(ctx)
}

// Extract processes the page and returns a snapshot of its main content.
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

	opts := trafilatura.Options{
		EnableFallback: true,
	}
	if u, err := url.Parse(pageURL); err == nil {
		opts.OriginalURL = u
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, joblens.Errorf(joblens.ENOTFOUND, "no main content in %q: %v", pageURL, err)
	}

	text := result.ContentText
	if e.converter != nil && result.ContentNode != nil {
		contentHTML, err := renderNode(result.ContentNode)
		if err == nil {
			if md, err := e.converter.Convert(contentHTML); err == nil {
				text = md
			}
		}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, joblens.Errorf(joblens.ENOTFOUND, "no main content in %q", pageURL)
	}

	return &joblens.PageContent{
		Title:   result.Metadata.Title,
		RawText: text,
		URL:     pageURL,
		Length:  len(text),
	}, nil
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

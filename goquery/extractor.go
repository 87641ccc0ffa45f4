// Package goquery implements DOM-based content extraction using
// CSS selectors, with per-board selector tuning.
package goquery

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/joblens/joblens"
)

// boardSelectors maps each board platform to the selector framing its
// posting content. The generic fallback takes the whole body.
var boardSelectors = map[joblens.Board]string{
	joblens.BoardGreenhouse: "#content, #grnhse_app, .job__description",
	joblens.BoardLever:      ".posting, .content",
	joblens.BoardLinkedIn:   ".jobs-description, .description__text",
	joblens.BoardIndeed:     "#jobDescriptionText, .jobsearch-JobComponent",
	joblens.BoardGlassdoor:  "[data-test='jobDescription'], [data-test='job-details']",
	joblens.BoardWorkable:   "[data-ui='job-description'], main",
}

// Tags whose text is never posting content.
const boilerplateTags = "script, style, noscript, template, iframe, svg, nav, header, footer, aside"

// Ensure Extractor implements joblens.ContentExtractor at compile time.
var _ joblens.ContentExtractor = (*Extractor)(nil)

// Extractor scrapes job posting content from a PageSource using CSS
// selectors. When the board platform is recognized the extraction is
// scoped to the platform's posting container; otherwise it takes the
// visible text of the whole body.
type Extractor struct {
	source   joblens.PageSource
	detector *Detector
}

// NewExtractor creates an Extractor over the given page source.
func NewExtractor(source joblens.PageSource) *Extractor {
	return &Extractor{source: source, detector: NewDetector()}
}

// CurrentURL returns the page's current address.
func (e *Extractor) CurrentURL(ctx context.Context) (string, error) {
	return e.source.URL(ctx)
}

// Extract scrapes the page and returns a content snapshot.
func (e *Extractor) Extract(ctx context.Context) (*joblens.PageContent, error) {
	pageURL, err := e.source.URL(ctx)
	if err != nil {
		return nil, err
	}
	html, err := e.source.HTML(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, joblens.Errorf(joblens.EINVALID, "failed to parse HTML: %v", err)
	}

	title := pageTitle(doc)
	doc.Find(boilerplateTags).Remove()

	root := doc.Selection
	if selector, ok := boardSelectors[e.detector.Detect(pageURL, html)]; ok {
		if scoped := doc.Find(selector); scoped.Length() > 0 {
			root = scoped
		}
	}

	text := collapseWhitespace(root.Text())
	if text == "" {
		return nil, joblens.Errorf(joblens.ENOTFOUND, "page %q has no visible text content", pageURL)
	}

	return &joblens.PageContent{
		Title:   title,
		RawText: text,
		URL:     pageURL,
		Length:  len(text),
	}, nil
}

// pageTitle prefers og:title over the document title; job boards put the
// position name there while <title> often carries site chrome.
func pageTitle(doc *goquery.Document) string {
	if og, ok := doc.Find("meta[property='og:title']").Attr("content"); ok {
		if title := strings.TrimSpace(og); title != "" {
			return title
		}
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// collapseWhitespace normalizes runs of whitespace to single spaces and
// preserves line structure enough for the model to see section breaks.
func collapseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.Join(strings.Fields(line), " "); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return strings.Join(out, "\n")
}

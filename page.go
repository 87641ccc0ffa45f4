package joblens

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// JobIDParams lists query parameters that carry a sub-job identifier on
// single-page-application job boards. Two jobs viewed inside the same SPA
// shell share a URL path but differ in one of these parameters, so the
// parameter value participates in page identity.
var JobIDParams = []string{
	"currentJobId", // LinkedIn collection views
	"jk",           // Indeed search results
	"vjk",          // Indeed viewjob panel
	"jobListingId", // Glassdoor
	"gh_jid",       // Greenhouse embeds
	"lever-jobId",  // Lever embeds
	"jobId",        // generic
}

// PageIdentity is the logical identity of a job posting page. It is a pure
// function of the page URL and the JobIDParams table; it must not depend on
// any mutable state.
type PageIdentity struct {
	// URL is the normalized page address: scheme, lowercased host and path,
	// with query string and fragment stripped.
	URL string

	// JobID is the sub-job identifier for SPA job boards, empty when the
	// URL carries none.
	JobID string
}

// ResolveIdentity derives the PageIdentity for a raw page URL.
func ResolveIdentity(rawURL string) (PageIdentity, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return PageIdentity{}, Errorf(EINVALID, "invalid page URL: %v", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return PageIdentity{}, Errorf(EINVALID, "page URL %q missing scheme or host", rawURL)
	}

	var jobID string
	query := u.Query()
	for _, param := range JobIDParams {
		if v := query.Get(param); v != "" {
			jobID = v
			break
		}
	}

	normalized := url.URL{
		Scheme: strings.ToLower(u.Scheme),
		Host:   strings.ToLower(u.Host),
		Path:   u.Path,
	}

	return PageIdentity{
		URL:   normalized.String(),
		JobID: jobID,
	}, nil
}

// Key returns a stable string key for the identity, suitable for use in
// caches and persistent stores.
func (id PageIdentity) Key() string {
	h := xxhash.Sum64String(id.URL + "\x00" + id.JobID)
	return fmt.Sprintf("%016x", h)
}

// Board identifies the job board platform serving a posting page. Scrapers
// use it to pick platform-specific content selectors.
type Board string

// Recognized job board platforms.
const (
	BoardUnknown    Board = "unknown"
	BoardGreenhouse Board = "greenhouse"
	BoardLever      Board = "lever"
	BoardLinkedIn   Board = "linkedin"
	BoardIndeed     Board = "indeed"
	BoardGlassdoor  Board = "glassdoor"
	BoardWorkable   Board = "workable"
)

// PageContent is a snapshot of a page's scraped content. It is captured
// once per PageIdentity and reused across repeated extraction attempts;
// a new snapshot supersedes it when the identity changes.
type PageContent struct {
	Title   string `json:"title"`
	RawText string `json:"rawText"`
	URL     string `json:"url"`
	Length  int    `json:"length"`
}

// ContentExtractor scrapes the page under inspection. Implementations are
// DOM-bound and outside the orchestration core.
type ContentExtractor interface {
	// CurrentURL returns the page's current address. On SPA job boards this
	// can change without a full page load.
	CurrentURL(ctx context.Context) (string, error)

	// Extract scrapes the page and returns a content snapshot.
	Extract(ctx context.Context) (*PageContent, error)
}

// PageSource provides access to a page's address and rendered markup.
// Content extractors are built on top of a PageSource.
type PageSource interface {
	URL(ctx context.Context) (string, error)
	HTML(ctx context.Context) (string, error)
}

// StaticPage is a PageSource over markup fetched once, for pages that do
// not navigate under the caller.
type StaticPage struct {
	Addr   string
	Markup string
}

// URL returns the page address.
func (p *StaticPage) URL(context.Context) (string, error) {
	return p.Addr, nil
}

// HTML returns the fetched markup.
func (p *StaticPage) HTML(context.Context) (string, error) {
	return p.Markup, nil
}

// Fetcher retrieves HTML from URLs.
// Implementations may use browser automation to handle JavaScript-rendered
// content, or plain HTTP for static pages.
type Fetcher interface {
	// Fetch retrieves the page markup at url.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases any resources held by the fetcher.
	Close() error
}

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms HTML content into Markdown.
	Convert(html string) (string, error)
}

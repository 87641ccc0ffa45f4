package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/joblens/joblens"
)

// Detector identifies job board platforms from a page's URL and HTML.
// It checks the host first, then platform-specific DOM markers that are
// unique to each board's embed widgets.
type Detector struct{}

// NewDetector creates a new Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect analyzes a page and returns the identified board platform.
// Returns BoardUnknown if the platform cannot be determined.
func (d *Detector) Detect(pageURL, html string) joblens.Board {
	if board := d.detectFromHost(pageURL); board != joblens.BoardUnknown {
		return board
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return joblens.BoardUnknown
	}

	// Embed widgets leave platform-specific markers even on company sites.
	switch {
	case d.hasSelector(doc, "#grnhse_app") || d.hasSelector(doc, "#grnhse_iframe"):
		return joblens.BoardGreenhouse
	case d.hasSelector(doc, ".posting-headline") || d.hasSelector(doc, "[data-qa='posting-name']"):
		return joblens.BoardLever
	case d.hasSelector(doc, "#jobDescriptionText") || d.hasSelector(doc, ".jobsearch-JobComponent"):
		return joblens.BoardIndeed
	case d.hasSelector(doc, ".jobs-description") || d.hasSelector(doc, ".job-details-jobs-unified-top-card__job-title"):
		return joblens.BoardLinkedIn
	case d.hasSelector(doc, "[data-test='jobDescription']") || d.hasSelector(doc, "[data-test='job-details']"):
		return joblens.BoardGlassdoor
	case d.hasSelector(doc, "[data-ui='job-description']") || d.hasSelector(doc, "[data-ui='job-title']"):
		return joblens.BoardWorkable
	}

	return joblens.BoardUnknown
}

// detectFromHost matches the hosting platform's own domains.
func (d *Detector) detectFromHost(pageURL string) joblens.Board {
	u, err := url.Parse(pageURL)
	if err != nil {
		return joblens.BoardUnknown
	}
	host := strings.ToLower(u.Host)

	switch {
	case strings.HasSuffix(host, "greenhouse.io"):
		return joblens.BoardGreenhouse
	case strings.HasSuffix(host, "lever.co"):
		return joblens.BoardLever
	case host == "www.linkedin.com" || host == "linkedin.com":
		return joblens.BoardLinkedIn
	case strings.HasSuffix(host, "indeed.com"):
		return joblens.BoardIndeed
	case strings.HasSuffix(host, "glassdoor.com"):
		return joblens.BoardGlassdoor
	case strings.HasSuffix(host, "workable.com"):
		return joblens.BoardWorkable
	}
	return joblens.BoardUnknown
}

// hasSelector checks if the document contains at least one element matching the selector.
func (d *Detector) hasSelector(doc *goquery.Document, selector string) bool {
	return doc.Find(selector).Length() > 0
}

package trafilatura_test

import (
	"context"
	"testing"

	"github.com/joblens/joblens"
	"github.com/joblens/joblens/trafilatura"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Extractor implements joblens.ContentExtractor at compile time.
var _ joblens.ContentExtractor = (*trafilatura.Extractor)(nil)

const postingHTML = `<!DOCTYPE html>
<html>
<head>
<title>Staff Engineer | Acme Careers</title>
<meta property="og:title" content="Staff Engineer">
</head>
<body>
<nav class="main-nav">
<ul>
<li><a href="/">Home</a></li>
<li><a href="/careers">Careers</a></li>
<li><a href="/about">About</a></li>
</ul>
</nav>
<article>
<h1>Staff Engineer</h1>
<p>Acme is hiring a Staff Engineer to build and operate our data platform.
This role is remote within the US and pays $180,000 to $220,000.</p>
<h2>Requirements</h2>
<ul>
<li>5+ years of Go experience</li>
<li>Production Kubernetes experience</li>
</ul>
<h2>Benefits</h2>
<ul>
<li>Equity</li>
<li>401k match</li>
</ul>
</article>
<footer>
<p>Copyright 2026 Acme Corp</p>
<nav>Privacy | Terms | Contact</nav>
</footer>
</body>
</html>`

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("extracts the posting body without chrome", func(t *testing.T) {
		t.Parallel()

		page := &joblens.StaticPage{Addr: "https://acme.com/careers/staff-engineer", Markup: postingHTML}
		snap, err := trafilatura.NewExtractor(page).Extract(context.Background())

		require.NoError(t, err)
		assert.NotEmpty(t, snap.Title)
		assert.Contains(t, snap.RawText, "data platform")
		assert.Contains(t, snap.RawText, "5+ years of Go experience")
		assert.NotContains(t, snap.RawText, "Copyright 2026 Acme Corp")
		assert.Equal(t, "https://acme.com/careers/staff-engineer", snap.URL)
		assert.Equal(t, len(snap.RawText), snap.Length)
	})

	t.Run("renders Markdown through a converter", func(t *testing.T) {
		t.Parallel()

		converter := &markerConverter{}
		page := &joblens.StaticPage{Addr: "https://acme.com/careers/staff-engineer", Markup: postingHTML}
		snap, err := trafilatura.NewExtractor(page).WithConverter(converter).Extract(context.Background())

		require.NoError(t, err)
		assert.True(t, converter.called)
		assert.Contains(t, snap.RawText, "converted:")
	})

	t.Run("converter failure falls back to plain text", func(t *testing.T) {
		t.Parallel()

		converter := &markerConverter{fail: true}
		page := &joblens.StaticPage{Addr: "https://acme.com/careers/staff-engineer", Markup: postingHTML}
		snap, err := trafilatura.NewExtractor(page).WithConverter(converter).Extract(context.Background())

		require.NoError(t, err)
		assert.Contains(t, snap.RawText, "data platform")
	})

	t.Run("empty HTML is invalid", func(t *testing.T) {
		t.Parallel()

		page := &joblens.StaticPage{Addr: "https://acme.com/careers/1", Markup: ""}
		_, err := trafilatura.NewExtractor(page).Extract(context.Background())

		require.Error(t, err)
		assert.Equal(t, joblens.EINVALID, joblens.ErrorCode(err))
	})

	t.Run("handles minimal valid HTML", func(t *testing.T) {
		t.Parallel()

		page := &joblens.StaticPage{
			Addr:   "https://acme.com/careers/1",
			Markup: "<html><body><p>Simple posting content for a simple job.</p></body></html>",
		}
		snap, err := trafilatura.NewExtractor(page).Extract(context.Background())

		require.NoError(t, err)
		assert.Contains(t, snap.RawText, "Simple posting content")
	})

	t.Run("current URL delegates to the source", func(t *testing.T) {
		t.Parallel()

		page := &joblens.StaticPage{Addr: "https://acme.com/careers/1", Markup: postingHTML}
		got, err := trafilatura.NewExtractor(page).CurrentURL(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "https://acme.com/careers/1", got)
	})
}

// markerConverter tags its output so tests can tell which path produced
// the snapshot text.
type markerConverter struct {
	called bool
	fail   bool
}

func (c *markerConverter) Convert(html string) (string, error) {
	c.called = true
	if c.fail {
		return "", joblens.Errorf(joblens.EINTERNAL, "conversion failed")
	}
	return "converted: " + html, nil
}

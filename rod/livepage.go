package rod

import (
	"context"

	"github.com/go-rod/rod"
	"github.com/joblens/joblens"
)

// Ensure LivePage implements joblens.PageSource at compile time.
var _ joblens.PageSource = (*LivePage)(nil)

// LivePage is a PageSource over an open browser page. Unlike a fetched
// snapshot its URL is read live, so client-side navigation on SPA job
// boards is observed by the caller between reads.
type LivePage struct {
	page *rod.Page
}

// URL returns the page's current address.
func (p *LivePage) URL(ctx context.Context) (string, error) {
	info, err := p.page.Context(ctx).Info()
	if err != nil {
		return "", err
	}
	return info.URL, nil
}

// HTML returns the page's current rendered markup.
func (p *LivePage) HTML(ctx context.Context) (string, error) {
	return p.page.Context(ctx).HTML()
}

// Eval runs a JavaScript function on the page and returns its result.
func (p *LivePage) Eval(ctx context.Context, js string) (any, error) {
	obj, err := p.page.Context(ctx).Eval(js)
	if err != nil {
		return nil, err
	}
	return obj.Value.Val(), nil
}

// Close closes the underlying browser page.
func (p *LivePage) Close() error {
	return p.page.Close()
}

package main

import (
	"encoding/json"
	"fmt"

	"github.com/joblens/joblens"
	"github.com/joblens/joblens/goquery"
	"github.com/joblens/joblens/htmltomarkdown"
	"github.com/joblens/joblens/readability"
	"github.com/joblens/joblens/trafilatura"
)

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	source, cleanup, err := c.pageSource(deps)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", joblens.ErrorMessage(err))
		return err
	}
	defer cleanup()

	engine := deps.NewEngine(c.contentExtractor(source))
	defer engine.Close()

	data, err := engine.Extract(deps.Ctx, joblens.ExtractOptions{Force: c.Force}, func(field joblens.Field, value string) {
		fmt.Fprintf(deps.Stderr, "%s: %s\n", field, truncate(value, 80))
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", joblens.ErrorMessage(err))
		return err
	}

	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(deps.Stdout, string(out))
	return nil
}

// pageSource opens the posting page, either through the headless browser or
// with a one-shot HTTP fetch.
func (c *ExtractCmd) pageSource(deps *Dependencies) (joblens.PageSource, func(), error) {
	if c.Browser {
		page, err := deps.Browser.Open(deps.Ctx, c.URL)
		if err != nil {
			return nil, nil, err
		}
		return page, func() { _ = page.Close() }, nil
	}

	html, err := deps.Fetcher.Fetch(deps.Ctx, c.URL)
	if err != nil {
		return nil, nil, err
	}
	return &joblens.StaticPage{Addr: c.URL, Markup: html}, func() {}, nil
}

func (c *ExtractCmd) contentExtractor(source joblens.PageSource) joblens.ContentExtractor {
	switch c.Engine {
	case "goquery":
		return goquery.NewExtractor(source)
	case "readability":
		return readability.NewExtractor(source)
	default:
		return trafilatura.NewExtractor(source).WithConverter(htmltomarkdown.NewConverter())
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

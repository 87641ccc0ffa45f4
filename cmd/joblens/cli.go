package main

import (
	"context"
	"io"
	stdslog "log/slog"
	"time"

	"github.com/joblens/joblens"
	"github.com/joblens/joblens/extract"
	"github.com/joblens/joblens/rod"
	"github.com/joblens/joblens/slog"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer

	Client  joblens.InferenceClient
	Store   joblens.KeyValueStore
	Tokens  joblens.TokenCounter
	Fetcher joblens.Fetcher
	Browser *rod.Fetcher
	Logger  *stdslog.Logger
	Config  extract.Config
}

// NewEngine assembles an extraction engine over the given content extractor,
// wrapped with logging.
func (d *Dependencies) NewEngine(content joblens.ContentExtractor) joblens.Engine {
	opts := []extract.Option{extract.WithConfig(d.Config)}
	if d.Store != nil {
		opts = append(opts, extract.WithStore(d.Store))
	}
	if d.Tokens != nil {
		opts = append(opts, extract.WithTokenCounter(d.Tokens))
	}
	return slog.NewLoggingEngine(extract.New(d.Client, content, opts...), d.Logger)
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Provider string `default:"ollama" enum:"ollama,gemini" help:"Inference provider"`
	Model    string `help:"Model name (provider default when empty)"`
	DB       string `help:"SQLite cache path (uses a file cache when empty)"`
	CacheDir string `name:"cache-dir" help:"File cache directory"`
	Verbose  bool   `short:"v" help:"Enable debug logging"`

	Check   CheckCmd   `cmd:"" help:"Check inference availability"`
	Extract ExtractCmd `cmd:"" help:"Extract job data from a posting URL"`
	Warm    WarmCmd    `cmd:"" help:"Pre-create the inference session"`
}

// CheckCmd is the "check" subcommand.
type CheckCmd struct{}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	URL     string        `arg:"" help:"Job posting URL"`
	Force   bool          `short:"f" help:"Bypass the result cache and throttling"`
	Browser bool          `short:"b" help:"Render the page in a headless browser"`
	Engine  string        `default:"trafilatura" enum:"trafilatura,goquery,readability" help:"Content extraction engine"`
	Timeout time.Duration `default:"10s" help:"Page fetch timeout"`
}

// WarmCmd is the "warm" subcommand.
type WarmCmd struct{}

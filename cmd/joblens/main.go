package main

import (
	"context"
	"fmt"
	"io"
	stdslog "log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"google.golang.org/genai"

	"github.com/joblens/joblens"
	"github.com/joblens/joblens/extract"
	"github.com/joblens/joblens/fs"
	"github.com/joblens/joblens/gemini"
	joblenshttp "github.com/joblens/joblens/http"
	"github.com/joblens/joblens/ollama"
	"github.com/joblens/joblens/rod"
	"github.com/joblens/joblens/sqlite"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Cache locations. Set before calling Run().
	DBPath   string
	CacheDir string

	// SQLite database, open only when DBPath is set.
	DB *sqlite.DB

	// Store backs the engine's persistent caches. Exposed for end-to-end
	// testing.
	Store joblens.KeyValueStore
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		CacheDir: defaultCacheDir(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("joblens"),
		kong.Description("Extract structured job data from posting pages"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'joblens --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := kongCtx.Command()

	level := stdslog.LevelInfo
	if cli.Verbose {
		level = stdslog.LevelDebug
	}
	deps.Logger = stdslog.New(stdslog.NewTextHandler(stderr, &stdslog.HandlerOptions{Level: level}))

	// Open the cache store.
	if cli.DB != "" {
		m.DBPath = cli.DB
	}
	if cli.CacheDir != "" {
		m.CacheDir = cli.CacheDir
	}
	if m.DBPath != "" {
		m.DB = sqlite.NewDB(m.DBPath)
		if err := m.DB.Open(); err != nil {
			return fmt.Errorf("failed to open cache database at %q: %w", m.DBPath, err)
		}
		m.Store = sqlite.NewKeyValueStore(m.DB)
	} else {
		m.Store = fs.NewStore(m.CacheDir)
	}
	defer m.Close()
	deps.Store = m.Store

	// Wire the inference provider.
	deps.Config = extract.DefaultConfig()
	deps.Config.Session.Model = cli.Model

	switch cli.Provider {
	case "gemini":
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
			return fmt.Errorf("GEMINI_API_KEY not set")
		}

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
			return fmt.Errorf("failed to connect to Gemini API: %w", err)
		}

		model := cli.Model
		if model == "" {
			model = gemini.DefaultModel
		}
		deps.Client = gemini.NewClient(client, model)

		tokenCounter, err := gemini.NewTokenCounter(model)
		if err == nil {
			deps.Tokens = tokenCounter
		}
	default:
		var opts []ollama.Option
		if host := os.Getenv("OLLAMA_HOST"); host != "" {
			opts = append(opts, ollama.WithBaseURL(host))
		}
		if cli.Model != "" {
			opts = append(opts, ollama.WithModel(cli.Model))
		}
		deps.Client = ollama.NewClient(opts...)
	}

	// Wire the page source for extraction.
	if cmd == "extract <url>" {
		if cli.Extract.Browser {
			browser, err := rod.NewFetcher(rod.WithFetchTimeout(cli.Extract.Timeout))
			if err != nil {
				fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
				return fmt.Errorf("failed to start browser: %w", err)
			}
			defer browser.Close()
			deps.Browser = browser
		} else {
			deps.Fetcher = joblenshttp.NewRetryFetcher(
				joblenshttp.NewFetcher(joblenshttp.WithTimeout(cli.Extract.Timeout)), nil)
		}
	}

	return kongCtx.Run(deps)
}

func defaultCacheDir() string {
	if dir := os.Getenv("JOBLENS_CACHE_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".joblens"
	}
	return filepath.Join(home, ".joblens", "cache")
}

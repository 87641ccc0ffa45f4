// Package ollama implements the inference capability against a local
// Ollama instance over its HTTP API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joblens/joblens"
)

// Defaults applied when the caller leaves options empty.
const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.2"
)

// Ensure Client implements joblens.InferenceClient at compile time.
var _ joblens.InferenceClient = (*Client)(nil)

// Client talks to an Ollama server. Availability maps the server's model
// list onto the engine's status vocabulary: a listed model is available,
// an unlisted one is downloadable, and one mid-pull is downloading.
type Client struct {
	baseURL string
	model   string
	http    *http.Client

	mu      sync.Mutex
	pulling bool
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a non-default Ollama server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithModel selects the model used for sessions and availability checks.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// NewClient creates a Client with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		model:   DefaultModel,
		http:    &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Availability reports whether the configured model is ready to serve.
func (c *Client) Availability(ctx context.Context) (joblens.AvailabilityStatus, error) {
	c.mu.Lock()
	pulling := c.pulling
	c.mu.Unlock()
	if pulling {
		return joblens.StatusDownloading, nil
	}

	listed, err := c.hasModel(ctx, c.model)
	if err != nil {
		return joblens.StatusUnavailable, err
	}
	if listed {
		return joblens.StatusAvailable, nil
	}
	return joblens.StatusDownloadable, nil
}

// Create opens a session on the configured model, pulling it first when
// the server does not have it yet. The pull is the slow path; callers that
// probed availability beforehand usually skip it.
func (c *Client) Create(ctx context.Context, opts joblens.SessionOptions) (joblens.InferenceSession, error) {
	model := opts.Model
	if model == "" {
		model = c.model
	}

	listed, err := c.hasModel(ctx, model)
	if err != nil {
		return nil, joblens.Errorf(joblens.EUNAVAILABLE, "ollama unreachable: %v", err)
	}
	if !listed {
		if err := c.pull(ctx, model); err != nil {
			return nil, err
		}
	}

	return &session{
		id:          uuid.NewString(),
		client:      c,
		model:       model,
		system:      opts.SystemPrompt,
		temperature: opts.Temperature,
	}, nil
}

func (c *Client) hasModel(ctx context.Context, model string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return false, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return false, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, body)
	}

	var result struct {
		Models []struct {
			Name  string `json:"name"`
			Model string `json:"model"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("decoding model list: %w", err)
	}

	for _, m := range result.Models {
		if matchesModel(m.Name, model) || matchesModel(m.Model, model) {
			return true, nil
		}
	}
	return false, nil
}

// matchesModel treats a missing tag as ":latest", the way Ollama does.
func matchesModel(listed, want string) bool {
	if listed == want {
		return true
	}
	return strings.TrimSuffix(listed, ":latest") == strings.TrimSuffix(want, ":latest")
}

// pull downloads the model. Blocks until the pull completes or ctx ends.
func (c *Client) pull(ctx context.Context, model string) error {
	c.mu.Lock()
	c.pulling = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.pulling = false
		c.mu.Unlock()
	}()

	body, err := json.Marshal(map[string]any{"model": model, "stream": false})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/pull", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return joblens.Errorf(joblens.EUNAVAILABLE, "pulling model %q: %v", model, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return joblens.Errorf(joblens.EUNAVAILABLE, "pulling model %q: status %d: %s", model, resp.StatusCode, raw)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// defaultKeepAlive asks the server to keep the model loaded between
// prompts; session reuse is the whole point of the engine's lifecycle.
const defaultKeepAlive = "10m"

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	Stream    bool          `json:"stream"`
	KeepAlive string        `json:"keep_alive,omitempty"`
	Options   chatOptions   `json:"options"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
}

// session is a lightweight handle; Ollama keeps no server-side session
// state, so the system prompt rides along with every chat call.
type session struct {
	id          string
	client      *Client
	model       string
	system      string
	temperature float64
}

var _ joblens.InferenceSession = (*session)(nil)

func (s *session) Prompt(ctx context.Context, text string) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if s.system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: s.system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: text})

	body, err := json.Marshal(chatRequest{
		Model:     s.model,
		Messages:  messages,
		Stream:    false,
		KeepAlive: defaultKeepAlive,
		Options:   chatOptions{Temperature: s.temperature},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.client.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", joblens.Errorf(joblens.ECANCELED, "prompt canceled")
		}
		return "", joblens.Errorf(joblens.EUNAVAILABLE, "ollama chat failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", joblens.Errorf(joblens.EINTERNAL, "ollama returned status %d: %s", resp.StatusCode, raw)
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return "", joblens.Errorf(joblens.EINTERNAL, "decoding chat response: %v", err)
	}
	return chat.Message.Content, nil
}

// Destroy is a no-op beyond invalidating the handle; Ollama frees model
// memory on its own keep-alive schedule.
func (s *session) Destroy() error {
	return nil
}

// ID returns the session's unique identifier, useful in logs.
func (s *session) ID() string {
	return s.id
}

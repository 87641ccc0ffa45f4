// Package gemini implements the inference capability using Google Gemini.
package gemini

import (
	"context"

	"github.com/google/uuid"
	"github.com/joblens/joblens"
	"google.golang.org/genai"
)

// DefaultModel is used when session options leave the model empty.
const DefaultModel = "gemini-2.5-flash"

// Ensure Client implements joblens.InferenceClient at compile time.
var _ joblens.InferenceClient = (*Client)(nil)

// Client implements joblens.InferenceClient over the Gemini API. A cloud
// model needs no download, so availability is a cheap reachability probe
// rather than a model-presence check.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient creates a Client. Pass an empty model to use DefaultModel.
func NewClient(client *genai.Client, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{client: client, model: model}
}

// Availability reports whether the Gemini API is usable. The API serves
// from the cloud; a reachable, configured client is immediately available.
func (c *Client) Availability(ctx context.Context) (joblens.AvailabilityStatus, error) {
	if c.client == nil {
		return joblens.StatusUnavailable, joblens.Errorf(joblens.EUNAVAILABLE, "gemini client not configured")
	}
	if err := ctx.Err(); err != nil {
		return joblens.StatusUnavailable, err
	}
	return joblens.StatusAvailable, nil
}

// Create opens a session primed with the given options.
func (c *Client) Create(ctx context.Context, opts joblens.SessionOptions) (joblens.InferenceSession, error) {
	if c.client == nil {
		return nil, joblens.Errorf(joblens.EUNAVAILABLE, "gemini client not configured")
	}
	model := opts.Model
	if model == "" {
		model = c.model
	}
	return &session{
		id:     uuid.NewString(),
		client: c.client,
		model:  model,
		config: BuildConfig(opts),
	}, nil
}

// BuildConfig returns the GenerateContentConfig for Gemini API calls.
func BuildConfig(opts joblens.SessionOptions) *genai.GenerateContentConfig {
	temp := float32(opts.Temperature)
	config := &genai.GenerateContentConfig{
		Temperature: &temp,
	}
	if opts.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: opts.SystemPrompt}},
		}
	}
	return config
}

// session holds the per-session config; Gemini keeps no server-side state
// so the system instruction rides along with every call.
type session struct {
	id     string
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

var _ joblens.InferenceSession = (*session)(nil)

func (s *session) Prompt(ctx context.Context, text string) (string, error) {
	result, err := s.client.Models.GenerateContent(ctx, s.model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: text}},
		}},
		s.config,
	)
	if err != nil {
		if ctx.Err() != nil {
			return "", joblens.Errorf(joblens.ECANCELED, "prompt canceled")
		}
		return "", err
	}
	if result == nil {
		return "", joblens.Errorf(joblens.EINTERNAL, "gemini returned nil result")
	}
	return result.Text(), nil
}

func (s *session) Destroy() error {
	return nil
}

// ID returns the session's unique identifier, useful in logs.
func (s *session) ID() string {
	return s.id
}

package gemini

import (
	"context"
	"strings"

	"github.com/joblens/joblens"
	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

// DefaultTokenizerModel is the model whose vocabulary the local tokenizer
// loads when none is named. The tokenizer only ships vocabularies for a
// subset of models, so this can lag DefaultModel.
const DefaultTokenizerModel = "gemini-2.0-flash"

var _ joblens.TokenCounter = (*TokenCounter)(nil)

// TokenCounter counts tokens locally with the Gemini tokenizer, without a
// network round trip. The extraction engine uses it to budget how much
// posting text fits into a prompt.
type TokenCounter struct {
	model string
	tok   *tokenizer.LocalTokenizer
}

// NewTokenCounter loads the local tokenizer for model. An empty model
// falls back to DefaultTokenizerModel.
func NewTokenCounter(model string) (*TokenCounter, error) {
	if model == "" {
		model = DefaultTokenizerModel
	}
	tok, err := tokenizer.NewLocalTokenizer(model)
	if err != nil {
		return nil, joblens.Errorf(joblens.EINTERNAL, "loading tokenizer for %q: %v", model, err)
	}
	return &TokenCounter{model: model, tok: tok}, nil
}

// Model returns the model whose vocabulary backs the counter.
func (tc *TokenCounter) Model() string { return tc.model }

// CountTokens counts the tokens in text. Empty and whitespace-only text
// counts as zero without consulting the tokenizer.
func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}

	contents := []*genai.Content{genai.NewContentFromText(text, "user")}
	result, err := tc.tok.CountTokens(contents, nil)
	if err != nil {
		return 0, joblens.Errorf(joblens.EINTERNAL, "counting tokens with %q: %v", tc.model, err)
	}
	return int(result.TotalTokens), nil
}

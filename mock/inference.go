// Package mock provides mock implementations of joblens interfaces.
package mock

import (
	"context"

	"github.com/joblens/joblens"
)

var _ joblens.InferenceClient = (*InferenceClient)(nil)

// InferenceClient is a mock implementation of joblens.InferenceClient.
type InferenceClient struct {
	AvailabilityFn func(ctx context.Context) (joblens.AvailabilityStatus, error)
	CreateFn       func(ctx context.Context, opts joblens.SessionOptions) (joblens.InferenceSession, error)
}

func (c *InferenceClient) Availability(ctx context.Context) (joblens.AvailabilityStatus, error) {
	return c.AvailabilityFn(ctx)
}

func (c *InferenceClient) Create(ctx context.Context, opts joblens.SessionOptions) (joblens.InferenceSession, error) {
	return c.CreateFn(ctx, opts)
}

var _ joblens.InferenceSession = (*InferenceSession)(nil)

// InferenceSession is a mock implementation of joblens.InferenceSession.
type InferenceSession struct {
	PromptFn  func(ctx context.Context, text string) (string, error)
	DestroyFn func() error
}

func (s *InferenceSession) Prompt(ctx context.Context, text string) (string, error) {
	return s.PromptFn(ctx, text)
}

func (s *InferenceSession) Destroy() error {
	if s.DestroyFn == nil {
		return nil
	}
	return s.DestroyFn()
}

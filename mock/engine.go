package mock

import (
	"context"

	"github.com/joblens/joblens"
)

var _ joblens.Engine = (*Engine)(nil)

// Engine is a mock implementation of joblens.Engine.
type Engine struct {
	CheckAvailabilityFn  func(ctx context.Context) (joblens.Availability, error)
	ExtractFn            func(ctx context.Context, opts joblens.ExtractOptions, onPartial joblens.PartialFunc) (*joblens.ExtractedJobData, error)
	CancelFn             func()
	ClearForNavigationFn func(ctx context.Context) error
	WarmFn               func(ctx context.Context) error
	CloseFn              func() error
}

func (e *Engine) CheckAvailability(ctx context.Context) (joblens.Availability, error) {
	return e.CheckAvailabilityFn(ctx)
}

func (e *Engine) Extract(ctx context.Context, opts joblens.ExtractOptions, onPartial joblens.PartialFunc) (*joblens.ExtractedJobData, error) {
	return e.ExtractFn(ctx, opts, onPartial)
}

func (e *Engine) Cancel() {
	if e.CancelFn != nil {
		e.CancelFn()
	}
}

func (e *Engine) ClearForNavigation(ctx context.Context) error {
	if e.ClearForNavigationFn == nil {
		return nil
	}
	return e.ClearForNavigationFn(ctx)
}

func (e *Engine) Warm(ctx context.Context) error {
	if e.WarmFn == nil {
		return nil
	}
	return e.WarmFn(ctx)
}

func (e *Engine) Close() error {
	if e.CloseFn == nil {
		return nil
	}
	return e.CloseFn()
}

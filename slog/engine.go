// Package slog provides logging decorators for joblens services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/joblens/joblens"
)

// Ensure LoggingEngine implements joblens.Engine.
var _ joblens.Engine = (*LoggingEngine)(nil)

// LoggingEngine wraps an Engine with structured logging: availability
// probes, extraction outcomes and durations, partial field arrivals, and
// cancellations.
type LoggingEngine struct {
	next   joblens.Engine
	logger *slog.Logger
}

// NewLoggingEngine creates a new LoggingEngine.
func NewLoggingEngine(next joblens.Engine, logger *slog.Logger) *LoggingEngine {
	return &LoggingEngine{next: next, logger: logger}
}

// CheckAvailability logs the probe outcome and delegates.
func (e *LoggingEngine) CheckAvailability(ctx context.Context) (availability joblens.Availability, err error) {
	defer func(begin time.Time) {
		e.logger.Info("availability check",
			"available", availability.Available,
			"status", string(availability.Status),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.CheckAvailability(ctx)
}

// Extract logs the run outcome and each progressive field delivery.
func (e *LoggingEngine) Extract(ctx context.Context, opts joblens.ExtractOptions, onPartial joblens.PartialFunc) (data *joblens.ExtractedJobData, err error) {
	defer func(begin time.Time) {
		e.logger.Info("extract",
			"force", opts.Force,
			"fields", countKnown(data),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())

	logged := onPartial
	if logged != nil {
		logged = func(field joblens.Field, value string) {
			e.logger.Debug("partial field", "field", string(field), "chars", len(value))
			onPartial(field, value)
		}
	}
	return e.next.Extract(ctx, opts, logged)
}

// Cancel logs the request and delegates.
func (e *LoggingEngine) Cancel() {
	e.logger.Info("cancel requested")
	e.next.Cancel()
}

// ClearForNavigation logs the reset and delegates.
func (e *LoggingEngine) ClearForNavigation(ctx context.Context) error {
	e.logger.Debug("clearing page state for navigation")
	return e.next.ClearForNavigation(ctx)
}

// Warm logs the outcome and delegates.
func (e *LoggingEngine) Warm(ctx context.Context) (err error) {
	defer func(begin time.Time) {
		e.logger.Info("session warm-up", "duration", time.Since(begin), "err", err)
	}(time.Now())
	return e.next.Warm(ctx)
}

// Close delegates to the wrapped engine.
func (e *LoggingEngine) Close() error {
	return e.next.Close()
}

func countKnown(data *joblens.ExtractedJobData) int {
	if data == nil {
		return 0
	}
	return len(data.FieldValues())
}

package joblens

import "context"

// ExtractOptions control a single extraction run.
type ExtractOptions struct {
	// Force bypasses the result cache and all gate throttling. Set for
	// explicit user-triggered re-extraction.
	Force bool
}

// PartialFunc receives extracted field values progressively, as each of the
// underlying inference calls resolves. Callbacks for different fields may
// arrive in any order; callers must not assume one.
type PartialFunc func(field Field, value string)

// Engine is the public surface of the extraction orchestration engine,
// consumed by UI layers.
type Engine interface {
	// CheckAvailability reports whether an inference capability is usable.
	// It never fails; probe errors degrade to an unavailable answer.
	CheckAvailability(ctx context.Context) (Availability, error)

	// Extract runs the job data extraction for the current page.
	// Returns ERATELIMITED when the gate denies the attempt, EUNAVAILABLE
	// when no session can be obtained, and ECANCELED on cooperative abort.
	// Individual field failures never fail the call; the affected fields
	// are returned as Unknown.
	Extract(ctx context.Context, opts ExtractOptions, onPartial PartialFunc) (*ExtractedJobData, error)

	// Cancel aborts the in-flight extraction run, if any.
	Cancel()

	// ClearForNavigation discards page-scoped state (content and result
	// caches, gate counters) after the page identity changes.
	ClearForNavigation(ctx context.Context) error

	// Warm speculatively creates the inference session so the first
	// extraction does not pay cold-start cost.
	Warm(ctx context.Context) error

	// Close stops background work and destroys the session.
	Close() error
}

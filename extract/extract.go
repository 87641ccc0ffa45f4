// Package extract provides the job data extraction orchestration engine.
// It coordinates availability probing, inference session lifecycle, page
// content and result caching, rate limiting, and the parallel inference
// calls that produce structured job data.
package extract

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/joblens/joblens"
	"golang.org/x/sync/errgroup"
)

// Config holds the engine's tunable parameters. The rate limit window and
// cooldown were chosen empirically; treat them as starting points.
// Config tunes the engine. Zero-valued operational fields fall back to
// their DefaultConfig values when the engine is constructed; Cooldown is
// the one exception, where zero means no cooldown at all.
type Config struct {
	// Cooldown is the minimum gap between non-forced extractions of the
	// same URL. Zero disables the cooldown.
	Cooldown time.Duration

	// WindowLimit caps non-forced extractions inside Window, across URLs.
	WindowLimit int
	Window      time.Duration

	// SafetyReset clears a stuck in-flight flag if a run never reports
	// completion.
	SafetyReset time.Duration

	// AvailabilityTTL is how long a probed availability answer is reused.
	AvailabilityTTL time.Duration

	// DownloadRecheck is the wait before re-probing a downloading
	// capability.
	DownloadRecheck time.Duration

	// ProbeTimeout bounds the session health probe prompt.
	ProbeTimeout time.Duration

	// HeartbeatPeriod is the background session probe interval.
	HeartbeatPeriod time.Duration

	// IdleTimeout evicts a session with no activity, freeing host
	// resources.
	IdleTimeout time.Duration

	// MaxContentRunes caps snapshot text sent to the model.
	MaxContentRunes int

	// TokenBudget refines the cap when a TokenCounter is configured.
	TokenBudget int

	// Session configures the inference session.
	Session joblens.SessionOptions
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		Cooldown:        10 * time.Second,
		WindowLimit:     5,
		Window:          60 * time.Second,
		SafetyReset:     60 * time.Second,
		AvailabilityTTL: 30 * time.Second,
		DownloadRecheck: 2 * time.Second,
		ProbeTimeout:    1500 * time.Millisecond,
		HeartbeatPeriod: 2 * time.Minute,
		IdleTimeout:     5 * time.Minute,
		MaxContentRunes: 12000,
		TokenBudget:     4096,
		Session: joblens.SessionOptions{
			SystemPrompt: SystemPrompt,
			Temperature:  0.1,
		},
	}
}

// withDefaults fills zero-valued fields from DefaultConfig so a hand-built
// Config cannot produce a zero-period heartbeat ticker or a zero-width rate
// window. Cooldown is deliberately left alone: zero is a meaningful
// setting that disables the cooldown.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.WindowLimit <= 0 {
		c.WindowLimit = def.WindowLimit
	}
	if c.Window <= 0 {
		c.Window = def.Window
	}
	if c.SafetyReset <= 0 {
		c.SafetyReset = def.SafetyReset
	}
	if c.AvailabilityTTL <= 0 {
		c.AvailabilityTTL = def.AvailabilityTTL
	}
	if c.DownloadRecheck <= 0 {
		c.DownloadRecheck = def.DownloadRecheck
	}
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = def.ProbeTimeout
	}
	if c.HeartbeatPeriod <= 0 {
		c.HeartbeatPeriod = def.HeartbeatPeriod
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = def.IdleTimeout
	}
	if c.MaxContentRunes <= 0 {
		c.MaxContentRunes = def.MaxContentRunes
	}
	if c.TokenBudget <= 0 {
		c.TokenBudget = def.TokenBudget
	}
	if c.Session == (joblens.SessionOptions{}) {
		c.Session = def.Session
	}
	return c
}

// Ensure Engine implements joblens.Engine at compile time.
var _ joblens.Engine = (*Engine)(nil)

// Engine orchestrates job data extraction for the page exposed by its
// content extractor. All mutable state (caches, session, gate) is owned by
// the engine instance and mutated only through its methods.
type Engine struct {
	content joblens.ContentExtractor
	tokens  joblens.TokenCounter
	cfg     Config

	probe     *availabilityProbe
	sessions  *sessionManager
	gate      *gate
	snapshots *pageCache[joblens.PageContent]
	results   *pageCache[joblens.ExtractedJobData]

	mu  sync.Mutex
	run *runHandle
}

// runHandle identifies one admitted extraction run. Holding the handle
// rather than a bare cancel func lets the run's own deferred cleanup check
// that it still owns the engine's cancel slot, so a later attempt that
// never got past the gate cannot clobber the in-flight run's handle.
type runHandle struct {
	cancel context.CancelFunc
}

// Option configures an Engine.
type Option func(*options)

type options struct {
	cfg    Config
	store  joblens.KeyValueStore
	tokens joblens.TokenCounter
	now    func() time.Time
}

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithStore enables cross-reload cache persistence.
func WithStore(store joblens.KeyValueStore) Option {
	return func(o *options) { o.store = store }
}

// WithTokenCounter enables token-based content budgeting.
func WithTokenCounter(tc joblens.TokenCounter) Option {
	return func(o *options) { o.tokens = tc }
}

// withClock overrides the engine's clock in tests.
func withClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New creates an Engine over the given inference capability and content
// extractor. Close must be called when the engine is no longer needed.
func New(client joblens.InferenceClient, content joblens.ContentExtractor, opts ...Option) *Engine {
	o := options{cfg: DefaultConfig(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	o.cfg = o.cfg.withDefaults()

	var keys *keyFilter
	if o.store != nil {
		keys = newKeyFilter()
	}

	return &Engine{
		content:   content,
		tokens:    o.tokens,
		cfg:       o.cfg,
		probe:     newAvailabilityProbe(client, o.cfg, o.now),
		sessions:  newSessionManager(client, o.cfg, o.now),
		gate:      newGate(o.cfg, o.now),
		snapshots: newPageCache[joblens.PageContent](contentKeyPrefix, o.store, keys),
		results:   newPageCache[joblens.ExtractedJobData](resultKeyPrefix, o.store, keys),
	}
}

// CheckAvailability reports whether an inference capability is usable.
// Probe failures degrade to an unavailable answer; the error is always nil
// unless the context was canceled.
func (e *Engine) CheckAvailability(ctx context.Context) (joblens.Availability, error) {
	if err := ctx.Err(); err != nil {
		return joblens.Availability{}, joblens.Errorf(joblens.ECANCELED, "availability check canceled")
	}
	return e.probe.check(ctx), nil
}

// Warm speculatively creates the inference session so the first extraction
// does not pay cold-start cost.
func (e *Engine) Warm(ctx context.Context) error {
	if _, err := e.sessions.ensure(ctx); err != nil {
		if ctx.Err() != nil {
			return joblens.Errorf(joblens.ECANCELED, "session warm-up canceled")
		}
		return joblens.Errorf(joblens.EUNAVAILABLE, "session warm-up failed: %v", err)
	}
	return nil
}

// Cancel aborts the in-flight extraction run, if any.
func (e *Engine) Cancel() {
	e.mu.Lock()
	run := e.run
	e.mu.Unlock()
	if run != nil {
		run.cancel()
	}
}

// ClearForNavigation discards page-scoped state after the page identity
// changes: content and result caches and gate counters. The session stays
// warm; it is page-independent.
func (e *Engine) ClearForNavigation(ctx context.Context) error {
	e.snapshots.clear(ctx)
	e.results.clear(ctx)
	e.gate.resetForNavigation()
	return nil
}

// Invalidate discards the inference session. Used when a caller detects
// unrecoverable session errors.
func (e *Engine) Invalidate() {
	e.sessions.invalidate()
}

// Close stops background work and destroys the session.
func (e *Engine) Close() error {
	e.sessions.close()
	return nil
}

// Extract runs the extraction algorithm for the current page. Partial
// results are delivered through onPartial as each of the two inference
// calls resolves, in no guaranteed field order.
func (e *Engine) Extract(ctx context.Context, opts joblens.ExtractOptions, onPartial joblens.PartialFunc) (*joblens.ExtractedJobData, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	emit := newEmitter(onPartial)

	currentURL, err := e.content.CurrentURL(runCtx)
	if err != nil {
		return nil, fmt.Errorf("resolving current URL: %w", err)
	}
	id, err := joblens.ResolveIdentity(currentURL)
	if err != nil {
		return nil, err
	}

	// Cached result short-circuits everything. Replay its fields through
	// the callback so the caller's UI converges the same way either path.
	if !opts.Force {
		if cached := e.results.get(runCtx, id); cached != nil {
			for field, value := range cached.FieldValues() {
				emit.send(field, value)
			}
			return cached, nil
		}
	}

	if !e.gate.tryStart(id.URL, opts.Force) {
		return nil, joblens.Errorf(joblens.ERATELIMITED, "extraction for %q denied; try again later", id.URL)
	}
	defer e.gate.markCompleted()

	// Only an admitted run owns the cancel slot. Attempts that returned
	// above (cache hits, gate denials) must not disturb the handle of a
	// run still in flight.
	handle := &runHandle{cancel: cancel}
	e.mu.Lock()
	e.run = handle
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		if e.run == handle {
			e.run = nil
		}
		e.mu.Unlock()
	}()

	snap := e.snapshots.get(runCtx, id)
	if snap == nil {
		snap, err = e.content.Extract(runCtx)
		if err != nil {
			if runCtx.Err() != nil {
				e.gate.markCanceled()
				return nil, joblens.Errorf(joblens.ECANCELED, "extraction canceled")
			}
			return nil, fmt.Errorf("scraping page content: %w", err)
		}
		e.snapshots.set(runCtx, id, snap)
	}
	snap = trimContent(runCtx, snap, e.cfg.MaxContentRunes, e.cfg.TokenBudget, e.tokens)

	sess, err := e.sessions.ensure(runCtx)
	if err != nil {
		if runCtx.Err() != nil {
			e.gate.markCanceled()
			return nil, joblens.Errorf(joblens.ECANCELED, "extraction canceled")
		}
		return nil, joblens.Errorf(joblens.EUNAVAILABLE, "no inference session: %v", err)
	}

	data, err := e.runPrompts(runCtx, sess, snap, emit)
	if err != nil {
		return nil, err
	}

	e.sessions.touch()
	e.results.set(runCtx, id, data)
	return data, nil
}

// runPrompts launches the two field prompts concurrently and assembles the
// result. A prompt failing for a non-cancellation reason degrades its
// fields to unknown; cancellation aborts both prompts and the run.
func (e *Engine) runPrompts(ctx context.Context, sess joblens.InferenceSession, snap *joblens.PageContent, emit *emitter) (*joblens.ExtractedJobData, error) {
	var (
		fieldsObj map[string]any
		fieldsErr error
		descObj   map[string]any
		descErr   error
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		raw, err := sess.Prompt(gctx, BuildFieldsPrompt(snap))
		if err != nil {
			fieldsErr = err
			if isCancellation(err) {
				return err
			}
			return nil
		}
		fieldsObj = joblens.ParseObject(raw)
		emit.sendKnown(fieldsObj, joblens.FieldCompany, joblens.FieldPosition,
			joblens.FieldLocation, joblens.FieldSalary, joblens.FieldJobType)
		return nil
	})

	g.Go(func() error {
		raw, err := sess.Prompt(gctx, BuildDescriptionPrompt(snap))
		if err != nil {
			descErr = err
			if isCancellation(err) {
				return err
			}
			return nil
		}
		descObj = joblens.ParseObject(raw)
		emit.sendKnown(descObj, joblens.FieldJobDescription)
		return nil
	})

	waitErr := g.Wait()
	if ctx.Err() != nil || isCancellation(waitErr) {
		// A partial extraction does not produce a cached result, and the
		// cooldown is not held against the retry.
		e.gate.markCanceled()
		return nil, joblens.Errorf(joblens.ECANCELED, "extraction canceled")
	}

	// Both prompts failing outside cancellation points at a dead session;
	// drop it so the next run recreates instead of probing a corpse.
	if fieldsErr != nil && descErr != nil {
		e.sessions.invalidate()
	}

	data := joblens.NewExtractedJobData()
	if fieldsObj != nil {
		setKnown(&data.Company, fieldsObj, "company")
		setKnown(&data.Position, fieldsObj, "position")
		setKnown(&data.Location, fieldsObj, "location")
		setKnown(&data.Salary, fieldsObj, "salary")
		setKnown(&data.JobType, fieldsObj, "jobType")
	}
	if descObj != nil {
		setKnown(&data.JobDescription, descObj, "jobDescription")
		data.Requirements = joblens.StringSliceField(descObj, "requirements")
		data.Benefits = joblens.StringSliceField(descObj, "benefits")
	}
	return data, nil
}

// setKnown assigns the parsed field value when it carries real data,
// leaving the unknown sentinel in place otherwise.
func setKnown(dst *string, obj map[string]any, key string) {
	if v := joblens.StringField(obj, key); joblens.Known(v) {
		*dst = v
	}
}

func isCancellation(err error) bool {
	return err != nil && joblens.ErrorCode(err) == joblens.ECANCELED
}

// emitter serializes progressive callbacks; the two prompt goroutines may
// resolve in either order.
type emitter struct {
	mu sync.Mutex
	fn joblens.PartialFunc
}

func newEmitter(fn joblens.PartialFunc) *emitter {
	return &emitter{fn: fn}
}

func (e *emitter) send(field joblens.Field, value string) {
	if e.fn == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fn(field, value)
}

func (e *emitter) sendKnown(obj map[string]any, fields ...joblens.Field) {
	for _, field := range fields {
		if v := joblens.StringField(obj, string(field)); joblens.Known(v) {
			e.send(field, v)
		}
	}
}

package extract

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// gate enforces duplicate suppression and rate limiting over extraction
// attempts. It tracks a single per-page state record: whether a run is in
// flight, the last extracted URL and when, plus a rolling-window budget of
// attempts shared across all URLs.
type gate struct {
	cooldown    time.Duration
	safetyReset time.Duration
	windowLimit int
	window      time.Duration
	now         func() time.Time

	mu         sync.Mutex
	extracting bool
	lastURL    string
	lastTime   time.Time
	limiter    *rate.Limiter
	reset      *time.Timer
}

func newGate(cfg Config, now func() time.Time) *gate {
	return &gate{
		cooldown:    cfg.Cooldown,
		safetyReset: cfg.SafetyReset,
		windowLimit: cfg.WindowLimit,
		window:      cfg.Window,
		now:         now,
		limiter:     newWindowLimiter(cfg.WindowLimit, cfg.Window),
	}
}

func newWindowLimiter(limit int, window time.Duration) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(float64(limit)/window.Seconds()), limit)
}

// tryStart evaluates the gate policy and, when the attempt is admitted,
// records the start of the run in the same critical section so two
// concurrent attempts can never both observe an idle gate. The policy runs
// in order: forced runs always pass, a run already in flight denies, a
// repeat of the last URL inside the cooldown denies, and finally the
// rolling-window budget decides. The budget token is only consumed on this
// last step, so denials and forced runs never count against the window.
//
// An admitted run arms a safety reset so a run that never reports
// completion cannot leave the gate closed forever.
func (g *gate) tryStart(url string, force bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if !force {
		if g.extracting {
			return false
		}
		if url == g.lastURL && !g.lastTime.IsZero() && now.Sub(g.lastTime) < g.cooldown {
			return false
		}
		if !g.limiter.AllowN(now, 1) {
			return false
		}
	}

	g.extracting = true
	g.lastURL = url
	g.lastTime = now

	if g.reset != nil {
		g.reset.Stop()
	}
	g.reset = time.AfterFunc(g.safetyReset, func() {
		g.mu.Lock()
		g.extracting = false
		g.mu.Unlock()
	})
	return true
}

// markCompleted clears the in-flight flag. It runs on every completion
// path: success, field failure, and cancellation.
func (g *gate) markCompleted() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.extracting = false
	if g.reset != nil {
		g.reset.Stop()
		g.reset = nil
	}
}

// markCanceled forgets the attempt's timestamp so a cancelled run does not
// hold the cooldown against a retry. The window token stays consumed.
func (g *gate) markCanceled() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.lastTime = time.Time{}
}

// resetForNavigation drops all counters. No extraction state survives
// navigation to a materially different page.
func (g *gate) resetForNavigation() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.extracting = false
	g.lastURL = ""
	g.lastTime = time.Time{}
	g.limiter = newWindowLimiter(g.windowLimit, g.window)
	if g.reset != nil {
		g.reset.Stop()
		g.reset = nil
	}
}

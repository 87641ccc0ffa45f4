package extract

import (
	"context"
	"sync"
	"time"

	"github.com/joblens/joblens"
)

// warmCreateTimeout bounds the background session creation fired when the
// capability reports downloadable. Model downloads are slow; the timeout
// only guards against a hung host call.
const warmCreateTimeout = 15 * time.Minute

// availabilityProbe answers availability checks, caching the result
// briefly so repeated calls do not hammer the host capability.
type availabilityProbe struct {
	client  joblens.InferenceClient
	session joblens.SessionOptions
	ttl     time.Duration
	recheck time.Duration
	now     func() time.Time

	mu         sync.Mutex
	cached     joblens.Availability
	observedAt time.Time
}

func newAvailabilityProbe(client joblens.InferenceClient, cfg Config, now func() time.Time) *availabilityProbe {
	return &availabilityProbe{
		client:  client,
		session: cfg.Session,
		ttl:     cfg.AvailabilityTTL,
		recheck: cfg.DownloadRecheck,
		now:     now,
	}
}

// check returns the capability's availability, serving a fresh cached
// answer when one exists. Probe failures degrade to unavailable and are
// never propagated.
func (p *availabilityProbe) check(ctx context.Context) joblens.Availability {
	p.mu.Lock()
	if !p.observedAt.IsZero() && p.now().Sub(p.observedAt) < p.ttl {
		cached := p.cached
		p.mu.Unlock()
		return cached
	}
	p.mu.Unlock()

	result := p.probe(ctx)

	p.mu.Lock()
	p.cached = result
	p.observedAt = p.now()
	p.mu.Unlock()

	return result
}

func (p *availabilityProbe) probe(ctx context.Context) joblens.Availability {
	status, err := p.client.Availability(ctx)
	if err != nil {
		return joblens.Availability{Available: false, Status: joblens.StatusUnavailable}
	}

	switch status {
	case joblens.StatusAvailable:
		return joblens.Availability{Available: true, Status: status}

	case joblens.StatusDownloadable:
		// Kick off acquisition; the creation call's side effect is starting
		// the background download. Report available optimistically since the
		// capability becomes usable without further caller action.
		go p.warm()
		return joblens.Availability{Available: true, Status: status}

	case joblens.StatusDownloading:
		// Wait briefly and re-check once. A capability still downloading is
		// reported available; the first extraction is simply slower.
		select {
		case <-ctx.Done():
			return joblens.Availability{Available: true, Status: status}
		case <-time.After(p.recheck):
		}
		again, err := p.client.Availability(ctx)
		if err == nil && again == joblens.StatusAvailable {
			return joblens.Availability{Available: true, Status: again}
		}
		return joblens.Availability{Available: true, Status: joblens.StatusDownloading}

	default:
		return joblens.Availability{Available: false, Status: joblens.StatusUnavailable}
	}
}

// warm triggers model acquisition by creating and immediately discarding a
// session.
func (p *availabilityProbe) warm() {
	ctx, cancel := context.WithTimeout(context.Background(), warmCreateTimeout)
	defer cancel()

	sess, err := p.client.Create(ctx, p.session)
	if err != nil {
		return
	}
	_ = sess.Destroy()
}

package extract

import (
	"context"
	"sync"
	"time"

	"github.com/joblens/joblens"
	"golang.org/x/sync/singleflight"
)

// healthProbePrompt is the cheap prompt used to verify a session still
// answers. Raced against probeTimeout.
const healthProbePrompt = "Reply with the single word OK."

// sessionManager owns the process-wide inference session. It creates the
// session lazily, health-checks it before reuse, recreates it on failure,
// and evicts it after an idle period. At most one session exists at a time;
// concurrent creation requests are collapsed into one in-flight call.
type sessionManager struct {
	client          joblens.InferenceClient
	opts            joblens.SessionOptions
	probeTimeout    time.Duration
	heartbeatPeriod time.Duration
	idleTimeout     time.Duration
	now             func() time.Time

	group singleflight.Group

	mu           sync.Mutex
	sess         joblens.InferenceSession
	lastActivity time.Time

	done     chan struct{}
	stopOnce sync.Once
}

func newSessionManager(client joblens.InferenceClient, cfg Config, now func() time.Time) *sessionManager {
	m := &sessionManager{
		client:          client,
		opts:            cfg.Session,
		probeTimeout:    cfg.ProbeTimeout,
		heartbeatPeriod: cfg.HeartbeatPeriod,
		idleTimeout:     cfg.IdleTimeout,
		now:             now,
		done:            make(chan struct{}),
	}
	go m.heartbeat()
	return m
}

// ensure returns a healthy session, creating or recreating one as needed.
// A creation failure is surfaced to the caller; the attempt is not queued.
func (m *sessionManager) ensure(ctx context.Context) (joblens.InferenceSession, error) {
	// A caller whose context is already dead must not run the health
	// probe: the probe would fail for the caller's reason and evict a
	// session other callers are still using.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	sess := m.sess
	m.mu.Unlock()

	if sess != nil {
		if m.healthy(ctx, sess) {
			m.touch()
			return sess, nil
		}
		m.evict(sess)
	}

	v, err, _ := m.group.Do("create", func() (any, error) {
		return m.create(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(joblens.InferenceSession), nil
}

// create installs a new session in the slot. A session that appeared
// between the caller's nil read and this call is returned as-is so two
// overlapping creation flights can never leave a second live session
// behind.
func (m *sessionManager) create(ctx context.Context) (joblens.InferenceSession, error) {
	m.mu.Lock()
	if m.sess != nil {
		sess := m.sess
		m.mu.Unlock()
		return sess, nil
	}
	m.mu.Unlock()

	created, err := m.client.Create(ctx, m.opts)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.sess = created
	m.lastActivity = m.now()
	m.mu.Unlock()
	return created, nil
}

// healthy issues the probe prompt raced against probeTimeout.
func (m *sessionManager) healthy(ctx context.Context, sess joblens.InferenceSession) bool {
	probeCtx, cancel := context.WithTimeout(ctx, m.probeTimeout)
	defer cancel()

	_, err := sess.Prompt(probeCtx, healthProbePrompt)
	return err == nil
}

// touch records session activity for idle eviction.
func (m *sessionManager) touch() {
	m.mu.Lock()
	m.lastActivity = m.now()
	m.mu.Unlock()
}

// evict destroys sess and clears the slot if sess is still the current
// session. Destroy runs outside the lock.
func (m *sessionManager) evict(sess joblens.InferenceSession) {
	m.mu.Lock()
	if m.sess == sess {
		m.sess = nil
	}
	m.mu.Unlock()
	_ = sess.Destroy()
}

// invalidate forces the manager back to the empty state regardless of the
// session's health. Used when a caller detects unrecoverable errors.
func (m *sessionManager) invalidate() {
	m.mu.Lock()
	sess := m.sess
	m.sess = nil
	m.mu.Unlock()

	if sess != nil {
		_ = sess.Destroy()
	}
}

// heartbeat opportunistically probes the session in the background and
// evicts it on failure or after the idle timeout, without waiting for the
// next caller.
func (m *sessionManager) heartbeat() {
	ticker := time.NewTicker(m.heartbeatPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
		}

		m.mu.Lock()
		sess := m.sess
		idle := m.now().Sub(m.lastActivity)
		m.mu.Unlock()

		if sess == nil {
			continue
		}
		if idle > m.idleTimeout {
			m.evict(sess)
			continue
		}
		if !m.healthy(context.Background(), sess) {
			m.evict(sess)
		}
	}
}

// close stops the heartbeat and destroys the session.
func (m *sessionManager) close() {
	m.stopOnce.Do(func() { close(m.done) })
	m.invalidate()
}

package extract

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/joblens/joblens"
	"github.com/joblens/joblens/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okSession() *mock.InferenceSession {
	return &mock.InferenceSession{
		PromptFn: func(ctx context.Context, text string) (string, error) {
			return "OK", nil
		},
	}
}

func testSessionConfig() Config {
	cfg := DefaultConfig()
	cfg.ProbeTimeout = 100 * time.Millisecond
	// Keep the heartbeat out of the way unless a test wants it.
	cfg.HeartbeatPeriod = time.Hour
	return cfg
}

func TestSessionManager_CreatesLazily(t *testing.T) {
	t.Parallel()

	var creates atomic.Int64
	client := &mock.InferenceClient{
		CreateFn: func(ctx context.Context, opts joblens.SessionOptions) (joblens.InferenceSession, error) {
			creates.Add(1)
			return okSession(), nil
		},
	}
	m := newSessionManager(client, testSessionConfig(), time.Now)
	defer m.close()

	sess, err := m.ensure(context.Background())
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, int64(1), creates.Load())

	// Healthy session is reused, not recreated.
	again, err := m.ensure(context.Background())
	require.NoError(t, err)
	assert.Same(t, sess, again)
	assert.Equal(t, int64(1), creates.Load())
}

func TestSessionManager_DeduplicatesConcurrentCreation(t *testing.T) {
	t.Parallel()

	var creates atomic.Int64
	release := make(chan struct{})
	client := &mock.InferenceClient{
		CreateFn: func(ctx context.Context, opts joblens.SessionOptions) (joblens.InferenceSession, error) {
			creates.Add(1)
			<-release
			return okSession(), nil
		},
	}
	m := newSessionManager(client, testSessionConfig(), time.Now)
	defer m.close()

	const callers = 8
	sessions := make([]joblens.InferenceSession, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sessions[i], errs[i] = m.ensure(context.Background())
		}(i)
	}
	time.Sleep(20 * time.Millisecond) // let all callers reach the creation
	close(release)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
	}

	assert.Equal(t, int64(1), creates.Load(), "concurrent callers must share one creation")
	for i := 1; i < callers; i++ {
		assert.Same(t, sessions[0], sessions[i])
	}
}

func TestSessionManager_RecreatesOnProbeFailure(t *testing.T) {
	t.Parallel()

	var destroyed atomic.Bool
	dead := &mock.InferenceSession{
		PromptFn: func(ctx context.Context, text string) (string, error) {
			return "", errors.New("session gone")
		},
		DestroyFn: func() error {
			destroyed.Store(true)
			return nil
		},
	}

	var creates atomic.Int64
	client := &mock.InferenceClient{
		CreateFn: func(ctx context.Context, opts joblens.SessionOptions) (joblens.InferenceSession, error) {
			if creates.Add(1) == 1 {
				return dead, nil
			}
			return okSession(), nil
		},
	}
	m := newSessionManager(client, testSessionConfig(), time.Now)
	defer m.close()

	first, err := m.ensure(context.Background())
	require.NoError(t, err)
	assert.Same(t, dead, first)

	second, err := m.ensure(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, dead, second)
	assert.True(t, destroyed.Load(), "failed session must be destroyed")
	assert.Equal(t, int64(2), creates.Load())
}

func TestSessionManager_CreationFailureSurfaces(t *testing.T) {
	t.Parallel()

	client := &mock.InferenceClient{
		CreateFn: func(ctx context.Context, opts joblens.SessionOptions) (joblens.InferenceSession, error) {
			return nil, errors.New("model not ready")
		},
	}
	m := newSessionManager(client, testSessionConfig(), time.Now)
	defer m.close()

	_, err := m.ensure(context.Background())

	assert.Error(t, err)
}

func TestSessionManager_Invalidate(t *testing.T) {
	t.Parallel()

	var destroyed atomic.Bool
	sess := okSession()
	sess.DestroyFn = func() error {
		destroyed.Store(true)
		return nil
	}
	client := &mock.InferenceClient{
		CreateFn: func(ctx context.Context, opts joblens.SessionOptions) (joblens.InferenceSession, error) {
			return sess, nil
		},
	}
	m := newSessionManager(client, testSessionConfig(), time.Now)
	defer m.close()

	_, err := m.ensure(context.Background())
	require.NoError(t, err)

	m.invalidate()

	assert.True(t, destroyed.Load())
	m.mu.Lock()
	assert.Nil(t, m.sess)
	m.mu.Unlock()
}

func TestSessionManager_HeartbeatEvictsIdleSession(t *testing.T) {
	t.Parallel()

	var destroyed atomic.Bool
	sess := okSession()
	sess.DestroyFn = func() error {
		destroyed.Store(true)
		return nil
	}
	client := &mock.InferenceClient{
		CreateFn: func(ctx context.Context, opts joblens.SessionOptions) (joblens.InferenceSession, error) {
			return sess, nil
		},
	}

	cfg := testSessionConfig()
	cfg.HeartbeatPeriod = 10 * time.Millisecond
	cfg.IdleTimeout = time.Nanosecond
	m := newSessionManager(client, cfg, time.Now)
	defer m.close()

	_, err := m.ensure(context.Background())
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return destroyed.Load() }, time.Second, 5*time.Millisecond,
		"idle session should be evicted by the heartbeat")
}

func TestSessionManager_HeartbeatEvictsUnhealthySession(t *testing.T) {
	t.Parallel()

	var destroyed atomic.Bool
	var healthy atomic.Bool
	healthy.Store(true)
	sess := &mock.InferenceSession{
		PromptFn: func(ctx context.Context, text string) (string, error) {
			if healthy.Load() {
				return "OK", nil
			}
			return "", errors.New("session gone")
		},
		DestroyFn: func() error {
			destroyed.Store(true)
			return nil
		},
	}
	client := &mock.InferenceClient{
		CreateFn: func(ctx context.Context, opts joblens.SessionOptions) (joblens.InferenceSession, error) {
			return sess, nil
		},
	}

	cfg := testSessionConfig()
	cfg.HeartbeatPeriod = 10 * time.Millisecond
	m := newSessionManager(client, cfg, time.Now)
	defer m.close()

	_, err := m.ensure(context.Background())
	require.NoError(t, err)

	healthy.Store(false)

	assert.Eventually(t, func() bool { return destroyed.Load() }, time.Second, 5*time.Millisecond,
		"unhealthy session should be evicted without waiting for a caller")
}

func TestSessionManager_CanceledCallerKeepsSession(t *testing.T) {
	t.Parallel()

	var (
		creates   atomic.Int64
		destroyed atomic.Bool
	)
	sess := okSession()
	sess.DestroyFn = func() error {
		destroyed.Store(true)
		return nil
	}
	client := &mock.InferenceClient{
		CreateFn: func(ctx context.Context, opts joblens.SessionOptions) (joblens.InferenceSession, error) {
			creates.Add(1)
			return sess, nil
		},
	}
	m := newSessionManager(client, testSessionConfig(), time.Now)
	defer m.close()

	first, err := m.ensure(context.Background())
	require.NoError(t, err)

	// A caller arriving with a dead context must fail without running the
	// health probe, which would fail for the caller's reason and destroy
	// a session other callers still depend on.
	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.ensure(canceled)
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, destroyed.Load(), "shared session must survive a canceled caller")

	again, err := m.ensure(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, int64(1), creates.Load())
}

func TestSessionManager_CreateReusesSessionInstalledMeanwhile(t *testing.T) {
	t.Parallel()

	var creates atomic.Int64
	client := &mock.InferenceClient{
		CreateFn: func(ctx context.Context, opts joblens.SessionOptions) (joblens.InferenceSession, error) {
			creates.Add(1)
			return okSession(), nil
		},
	}
	m := newSessionManager(client, testSessionConfig(), time.Now)
	defer m.close()

	// A session installed after a caller's nil read but before its
	// creation flight runs must be reused, never overwritten.
	existing := okSession()
	m.mu.Lock()
	m.sess = existing
	m.lastActivity = time.Now()
	m.mu.Unlock()

	got, err := m.create(context.Background())
	require.NoError(t, err)
	assert.Same(t, existing, got)
	assert.Equal(t, int64(0), creates.Load(), "no second session may be created")
}

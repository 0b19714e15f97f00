// Package host runs Directors on wall-clock timers, one goroutine per
// viewing session, and hands their outputs to renderers.
package host

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gig-director/catalog"
	"gig-director/director"
)

// ErrSessionNotFound is returned for an unknown session id
var ErrSessionNotFound = errors.New("session not found")

// ErrClosed is returned once the manager has shut down
var ErrClosed = errors.New("manager closed")

// Config sets the loop cadence
type Config struct {
	ClipInterval time.Duration // clip and overlay re-evaluation
	SongInterval time.Duration // song position and phase progression
	ExitLinger   time.Duration // keep ticking this long after exit so the finale renders
	Clock        func() time.Time
}

// DefaultConfig returns the cadence used by the run command
func DefaultConfig() Config {
	return Config{
		ClipInterval: 80 * time.Millisecond,
		SongInterval: 500 * time.Millisecond,
		ExitLinger:   3 * time.Second,
		Clock:        time.Now,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.ClipInterval <= 0 {
		c.ClipInterval = def.ClipInterval
	}
	if c.SongInterval <= 0 {
		c.SongInterval = def.SongInterval
	}
	if c.ExitLinger < 0 {
		c.ExitLinger = 0
	}
	if c.Clock == nil {
		c.Clock = def.Clock
	}
	return c
}

// Manager owns the running sessions and any helper loops (catalog watcher,
// MIDI device scanning) under one errgroup
type Manager struct {
	cfg   Config
	store *catalog.Store
	log   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

// NewManager creates a manager whose loops stop when ctx is cancelled
func NewManager(ctx context.Context, store *catalog.Store, cfg Config, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(ctx)
	group, ctx := errgroup.WithContext(ctx)
	return &Manager{
		cfg:      cfg.withDefaults(),
		store:    store,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
		group:    group,
		sessions: make(map[string]*Session),
	}
}

// Start begins a new session on the current catalog. The catalog is
// captured once; a reload only affects sessions started afterwards.
func (m *Manager) Start(src SignalSource, opts director.Options) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}

	id := uuid.NewString()
	s := newSession(id, m.store.Current(), src, m.cfg, opts, m.log)
	ctx, cancel := context.WithCancel(m.ctx)
	s.cancel = cancel
	m.sessions[id] = s

	m.group.Go(func() error {
		defer m.remove(id)
		return s.run(ctx)
	})
	m.log.Info("session started", zap.String("session", id), zap.Uint64("seed", opts.Seed))
	return s, nil
}

// Go runs a helper loop under the manager's lifetime. A non-nil error
// cancels every session.
func (m *Manager) Go(fn func(ctx context.Context) error) {
	m.group.Go(func() error { return fn(m.ctx) })
}

// Session looks up a running session
func (m *Manager) Session(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Sessions returns the ids of running sessions, sorted
func (m *Manager) Sessions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Sorted(maps.Keys(m.sessions))
}

// Stop ends one session and waits for its loop to exit
func (m *Manager) Stop(id string) error {
	s, err := m.Session(id)
	if err != nil {
		return err
	}
	s.Stop()
	return nil
}

// Shutdown stops every session and helper loop and waits for them
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.cancel()
	err := m.group.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (m *Manager) remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

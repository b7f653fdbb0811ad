// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/authdemo/authdemo/pkg/errutil"
)

// DefaultIdleTimeout is how long an unused controller is kept in memory.
const DefaultIdleTimeout = 30 * time.Minute

// Recovery reasons reported to a Recorder.
const (
	RecoveryCorrupt    = "corrupt"
	RecoveryReadFailed = "read_failed"
)

// Recorder observes session lifecycle events.
type Recorder interface {
	RecordSessionRecovery(reason string)
	SetActiveSessions(n int)
}

type entry struct {
	ctrl     *Controller
	lastSeen time.Time
}

// Manager owns the controllers of live browser sessions. Controllers are
// created and initialized on first use and dropped after sitting idle.
type Manager struct {
	mu      sync.Mutex
	entries map[string]*entry

	storage     Storage
	idleTimeout time.Duration
	now         func() time.Time
	logger      *slog.Logger
	recorder    Recorder
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithIdleTimeout sets how long idle controllers are kept. Zero keeps them
// until Release.
func WithIdleTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) { m.idleTimeout = d }
}

// WithManagerLogger sets the logger for recovered storage failures.
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = logger }
}

// WithRecorder reports recoveries and the live session count to r.
func WithRecorder(r Recorder) ManagerOption {
	return func(m *Manager) { m.recorder = r }
}

// NewManager creates a Manager backed by storage.
func NewManager(storage Storage, opts ...ManagerOption) *Manager {
	m := &Manager{
		entries:     make(map[string]*entry),
		storage:     storage,
		idleTimeout: DefaultIdleTimeout,
		now:         time.Now,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Acquire returns the controller for the browser session id. Storage failures
// during initialization are logged. A failed read leaves the controller
// uninitialized and the next Acquire reads again.
func (m *Manager) Acquire(ctx context.Context, id string) *Controller {
	now := m.now()

	m.mu.Lock()
	m.sweepLocked(now)
	e, ok := m.entries[id]
	if !ok {
		e = &entry{ctrl: NewController(NewStore(m.storage, id))}
		m.entries[id] = e
	}
	e.lastSeen = now
	active := len(m.entries)
	m.mu.Unlock()

	if m.recorder != nil {
		m.recorder.SetActiveSessions(active)
	}

	if err := e.ctrl.Init(ctx); err != nil {
		m.recover(ctx, err)
	}
	return e.ctrl
}

// Release tears down the controller of the browser session id, if any.
func (m *Manager) Release(id string) {
	m.mu.Lock()
	e, ok := m.entries[id]
	delete(m.entries, id)
	active := len(m.entries)
	m.mu.Unlock()

	if ok {
		e.ctrl.Close()
	}
	if m.recorder != nil {
		m.recorder.SetActiveSessions(active)
	}
}

// Len returns the number of live controllers.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Close tears down every controller.
func (m *Manager) Close() {
	m.mu.Lock()
	entries := m.entries
	m.entries = make(map[string]*entry)
	m.mu.Unlock()

	for _, e := range entries {
		e.ctrl.Close()
	}
	if m.recorder != nil {
		m.recorder.SetActiveSessions(0)
	}
}

func (m *Manager) sweepLocked(now time.Time) {
	if m.idleTimeout <= 0 {
		return
	}
	for id, e := range m.entries {
		if now.Sub(e.lastSeen) > m.idleTimeout {
			e.ctrl.Close()
			delete(m.entries, id)
		}
	}
}

func (m *Manager) recover(ctx context.Context, err error) {
	reason := RecoveryReadFailed
	if errors.Is(err, ErrCorrupt) {
		reason = RecoveryCorrupt
	}
	errutil.LogWarn(ctx, m.logger, "session storage recovered", err)
	if m.recorder != nil {
		m.recorder.RecordSessionRecovery(reason)
	}
}

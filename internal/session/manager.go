// Package session keeps one core.Workspace per browser.
//
// Sessions are keyed by a random UUID carried in a cookie. Each session has
// its own mutex; With holds it for the duration of the callback, so requests
// from one browser are applied one at a time while different browsers run in
// parallel. Idle sessions are expired by a background sweeper.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/JonMunkholm/regioncompare/internal/core"
	"github.com/google/uuid"
)

// Config holds session limits. Zero values get defaults.
type Config struct {
	TTL           time.Duration // idle time before expiry (default: 30m)
	SweepInterval time.Duration // how often to sweep (default: 1m)
	MaxSessions   int           // live sessions before the idlest is evicted (default: 10000)
}

func (c Config) withDefaults() Config {
	if c.TTL <= 0 {
		c.TTL = 30 * time.Minute
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = time.Minute
	}
	if c.MaxSessions <= 0 {
		c.MaxSessions = 10000
	}
	return c
}

type entry struct {
	mu       sync.Mutex
	ws       *core.Workspace
	lastSeen time.Time
}

// Manager owns the live sessions.
type Manager struct {
	store *core.Store
	cfg   Config
	now   func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
}

// NewManager returns a manager whose workspaces share store.
func NewManager(store *core.Store, cfg Config) *Manager {
	return &Manager{
		store:   store,
		cfg:     cfg.withDefaults(),
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

// Resolve returns the session id to use for a request carrying id.
// A malformed or unknown id gets a fresh session; created reports that case
// so the caller can set the cookie.
func (m *Manager) Resolve(id string) (resolved string, created bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := uuid.Parse(id); err == nil {
		if e, ok := m.entries[id]; ok {
			e.lastSeen = m.now()
			return id, false
		}
	}

	if len(m.entries) >= m.cfg.MaxSessions {
		m.evictIdlestLocked()
	}

	id = uuid.NewString()
	m.entries[id] = &entry{ws: core.NewWorkspace(m.store), lastSeen: m.now()}
	slog.Debug("session created", "session_id", id, "sessions", len(m.entries))
	return id, true
}

// With runs fn with the workspace of session id while holding that session's
// lock. Returns ErrNotFound if the session does not exist.
func (m *Manager) With(id string, fn func(*core.Workspace) error) error {
	m.mu.Lock()
	e, ok := m.entries[id]
	if ok {
		e.lastSeen = m.now()
	}
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.ws)
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Sweep removes sessions idle longer than the TTL and returns how many were
// removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.cfg.TTL)
	removed := 0
	for id, e := range m.entries {
		if e.lastSeen.Before(cutoff) {
			delete(m.entries, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every SweepInterval until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) {
	slog.Info("session sweeper started",
		"ttl", m.cfg.TTL.String(),
		"interval", m.cfg.SweepInterval.String(),
		"max_sessions", m.cfg.MaxSessions,
	)

	ticker := time.NewTicker(m.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return
		case <-ticker.C:
			start := time.Now()
			if removed := m.Sweep(); removed > 0 {
				slog.Info("expired idle sessions",
					"removed", removed,
					"remaining", m.Len(),
					"duration_ms", time.Since(start).Milliseconds(),
				)
			}
		}
	}
}

func (m *Manager) evictIdlestLocked() {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, e := range m.entries {
		if oldestID == "" || e.lastSeen.Before(oldest) {
			oldestID, oldest = id, e.lastSeen
		}
	}
	if oldestID != "" {
		delete(m.entries, oldestID)
		slog.Warn("session limit reached, evicted idlest session",
			"max_sessions", m.cfg.MaxSessions,
			"idle", m.now().Sub(oldest).String(),
		)
	}
}

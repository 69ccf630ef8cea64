// internal/store/memory.go
//
// In-memory implementation of the session Store.
// Active sessions only live here; finished ones are recorded in SQLite by
// internal/daily and can be dropped from memory.
//
// Characteristics:
//   - Records keyed by session ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Update runs its callback under the write lock, so two requests never
//     drive the same session at once.
//   - Prune drops records a caller no longer wants (finished or idle sessions).
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/connections/internal/game"
)

// ErrNotFound is returned for unknown session IDs.
var ErrNotFound = errors.New("session not found")

// Record is a live session plus the driver-side facts kept alongside it.
type Record struct {
	Session   *game.Session
	PlayerID  string
	Unlimited bool
	Recorded  bool      // result already persisted
	Touched   time.Time // last time a player drove the session
}

// Store defines the persistence interface for live sessions.
type Store interface {
	// Save persists or replaces a record under its session ID.
	Save(ctx context.Context, r *Record) error

	// View runs fn with the record for id under a shared lock.
	// fn must not mutate the session.
	View(ctx context.Context, id string, fn func(*Record) error) error

	// Update runs fn with the record for id under an exclusive lock.
	Update(ctx context.Context, id string, fn func(*Record) error) error

	// Delete removes a record. Unknown IDs are ignored.
	Delete(ctx context.Context, id string) error

	// Prune removes every record for which drop returns true, under an
	// exclusive lock, and reports how many were removed.
	Prune(ctx context.Context, drop func(*Record) bool) int

	// Len reports how many sessions are held.
	Len() int
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu      sync.RWMutex       // guards records
	records map[string]*Record // keyed by Session.ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{records: make(map[string]*Record)}
}

func (m *memory) Save(ctx context.Context, r *Record) error {
	if r == nil || r.Session == nil {
		return errors.New("store: record has no session")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[r.Session.ID] = r
	return nil
}

func (m *memory) View(ctx context.Context, id string, fn func(*Record) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[id]
	if !ok {
		return ErrNotFound
	}
	return fn(r)
}

func (m *memory) Update(ctx context.Context, id string, fn func(*Record) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return ErrNotFound
	}
	return fn(r)
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
	return nil
}

func (m *memory) Prune(ctx context.Context, drop func(*Record) bool) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, r := range m.records {
		if drop(r) {
			delete(m.records, id)
			n++
		}
	}
	return n
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

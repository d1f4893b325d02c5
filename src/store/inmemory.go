package store

import (
	"context"
	"sync"

	"tpgci/src/render"
)

// InMemoryStore is a thread-safe in-memory implementation of Store.
// Used when no database is configured and in tests.
type InMemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	byEnv  map[string][]Snapshot // environment -> snapshots, oldest first
}

// NewInMemoryStore creates a new in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byEnv: make(map[string][]Snapshot),
	}
}

// SaveSnapshot stores a copy of snap unless it matches the latest digest.
func (s *InMemoryStore) SaveSnapshot(ctx context.Context, snap *Snapshot) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.byEnv[snap.Environment]
	if n := len(history); n > 0 && history[n-1].Digest == snap.Digest {
		snap.ID = history[n-1].ID
		return false, nil
	}

	s.nextID++
	snap.ID = s.nextID
	stored := *snap
	stored.Files = copySet(snap.Files)
	s.byEnv[snap.Environment] = append(history, stored)
	return true, nil
}

// LatestSnapshot returns the newest snapshot of env.
func (s *InMemoryStore) LatestSnapshot(ctx context.Context, env string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.byEnv[env]
	if len(history) == 0 {
		return nil, ErrNotFound
	}
	latest := history[len(history)-1]
	latest.Files = copySet(latest.Files)
	return &latest, nil
}

// ListSnapshots returns up to limit snapshot headers of env, newest first.
func (s *InMemoryStore) ListSnapshots(ctx context.Context, env string, limit int) ([]Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.byEnv[env]
	var out []Snapshot
	for i := len(history) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		head := history[i]
		head.Files = nil
		out = append(out, head)
	}
	return out, nil
}

// Close is a no-op for in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}

func copySet(cs render.ConfigSet) render.ConfigSet {
	out := make(render.ConfigSet, len(cs))
	for name, body := range cs {
		out[name] = append([]byte(nil), body...)
	}
	return out
}

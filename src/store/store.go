// Package store keeps a history of generated config sets so that drift between
// generations can be reported.
package store

import (
	"context"
	"errors"
	"time"

	"tpgci/src/render"
)

// ErrNotFound is returned when an environment has no snapshots yet.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is one stored generation of the config set.
type Snapshot struct {
	ID          int64
	Environment string
	Digest      string
	FileCount   int
	Files       render.ConfigSet
	CreatedAt   time.Time
}

// NewSnapshot captures a config set for an environment.
func NewSnapshot(env string, cs render.ConfigSet, now time.Time) *Snapshot {
	return &Snapshot{
		Environment: env,
		Digest:      cs.Digest(),
		FileCount:   len(cs),
		Files:       cs,
		CreatedAt:   now.UTC(),
	}
}

// Store defines the interface for persisting snapshots.
type Store interface {
	// SaveSnapshot stores snap and sets its ID. When the latest snapshot of the
	// environment has the same digest nothing is written, snap takes the
	// existing ID and saved is false.
	SaveSnapshot(ctx context.Context, snap *Snapshot) (saved bool, err error)

	// LatestSnapshot returns the newest snapshot of env, files included.
	LatestSnapshot(ctx context.Context, env string) (*Snapshot, error)

	// ListSnapshots returns up to limit snapshots of env, newest first.
	// Files is nil on listed snapshots.
	ListSnapshots(ctx context.Context, env string, limit int) ([]Snapshot, error)

	// Close closes the store connection
	Close() error
}

// Package store persists game snapshots keyed by a fixed storage name.
// Saves are best effort: the game keeps running if one fails.
package store

import (
	"context"

	"wondesk/internal/game"
)

// SnapshotName is the single key both implementations write under.
const SnapshotName = "wondesk-game"

type Store interface {
	// Load returns the stored snapshot, or ok=false when none exists.
	Load(ctx context.Context) (game.Snapshot, bool, error)
	Save(ctx context.Context, snap game.Snapshot) error
	Close()
}

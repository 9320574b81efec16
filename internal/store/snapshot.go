// Package store persists the combined escalation state, help requests plus
// the knowledge base, as a whole snapshot, either to a local JSON file or
// to Postgres.
package store

import (
	"context"

	"frontdesk/api/internal/ledger"
)

// Snapshot is the full authoritative state written on every mutation and
// read back once at startup. It is always a complete copy, never a diff.
type Snapshot struct {
	Requests  []ledger.HelpRequest `json:"help_requests"`
	Knowledge map[string]string    `json:"knowledge_base"`
}

// Empty returns a snapshot with non-nil fields, used when no persisted
// state exists yet.
func Empty() Snapshot {
	return Snapshot{
		Requests:  []ledger.HelpRequest{},
		Knowledge: map[string]string{},
	}
}

// Gateway stores and restores snapshots. Load must return an empty snapshot
// (not an error) when no usable state exists, so a missing or corrupt source
// never fails startup. Save overwrites the previous snapshot entirely.
type Gateway interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snapshot Snapshot) error
	Ping(ctx context.Context) error
}

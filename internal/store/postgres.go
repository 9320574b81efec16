package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"frontdesk/api/internal/ledger"
)

// PostgresGateway keeps the snapshot as a single jsonb row, overwritten on
// every save. The row-level overwrite gives the same whole-snapshot
// semantics as the file gateway while letting Postgres handle durability.
type PostgresGateway struct {
	db *sql.DB
}

func NewPostgresGateway(db *sql.DB) *PostgresGateway {
	return &PostgresGateway{db: db}
}

// EnsureSchema creates the snapshot table when it does not exist yet.
func (g *PostgresGateway) EnsureSchema(ctx context.Context) error {
	_, err := g.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS frontdesk_snapshots (
			id SMALLINT PRIMARY KEY CHECK (id = 1),
			help_requests JSONB NOT NULL,
			knowledge_base JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure snapshot schema: %w", err)
	}
	return nil
}

func (g *PostgresGateway) Load(ctx context.Context) (Snapshot, error) {
	var requestsRaw, knowledgeRaw []byte
	err := g.db.QueryRowContext(ctx, `
		SELECT help_requests, knowledge_base FROM frontdesk_snapshots WHERE id = 1
	`).Scan(&requestsRaw, &knowledgeRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return Empty(), nil
	}
	if err != nil {
		return Empty(), fmt.Errorf("load snapshot: %w", err)
	}

	snapshot := Empty()
	if err := json.Unmarshal(requestsRaw, &snapshot.Requests); err != nil {
		log.Printf("store: persisted help requests are corrupt, starting empty: %v", err)
		return Empty(), nil
	}
	if err := json.Unmarshal(knowledgeRaw, &snapshot.Knowledge); err != nil {
		log.Printf("store: persisted knowledge base is corrupt, starting empty: %v", err)
		return Empty(), nil
	}
	if snapshot.Requests == nil {
		snapshot.Requests = []ledger.HelpRequest{}
	}
	if snapshot.Knowledge == nil {
		snapshot.Knowledge = map[string]string{}
	}
	return snapshot, nil
}

func (g *PostgresGateway) Save(ctx context.Context, snapshot Snapshot) error {
	requestsRaw, err := json.Marshal(snapshot.Requests)
	if err != nil {
		return fmt.Errorf("marshal help requests: %w", err)
	}
	knowledgeRaw, err := json.Marshal(snapshot.Knowledge)
	if err != nil {
		return fmt.Errorf("marshal knowledge base: %w", err)
	}

	_, err = g.db.ExecContext(ctx, `
		INSERT INTO frontdesk_snapshots (id, help_requests, knowledge_base, updated_at)
		VALUES (1, $1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET
			help_requests = EXCLUDED.help_requests,
			knowledge_base = EXCLUDED.knowledge_base,
			updated_at = NOW()
	`, requestsRaw, knowledgeRaw)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (g *PostgresGateway) Ping(ctx context.Context) error {
	return g.db.PingContext(ctx)
}

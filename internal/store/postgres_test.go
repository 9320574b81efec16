package store

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func openTestPostgres(t *testing.T) *sql.DB {
	t.Helper()
	dsn := strings.TrimSpace(os.Getenv("FRONTDESK_TEST_DATABASE_URL"))
	if dsn == "" {
		t.Skip("FRONTDESK_TEST_DATABASE_URL is not set")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("ping postgres: %v", err)
	}
	if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS frontdesk_snapshots`); err != nil {
		t.Fatalf("reset snapshot table: %v", err)
	}
	return db
}

func TestPostgresGatewayRoundTrip(t *testing.T) {
	db := openTestPostgres(t)
	gateway := NewPostgresGateway(db)
	ctx := context.Background()

	if err := gateway.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}

	// Empty table loads as empty state.
	snapshot, err := gateway.Load(ctx)
	if err != nil {
		t.Fatalf("Load of empty table failed: %v", err)
	}
	if len(snapshot.Requests) != 0 || len(snapshot.Knowledge) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snapshot)
	}

	want := testSnapshot()
	if err := gateway.Save(ctx, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := gateway.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got.Requests) != len(want.Requests) {
		t.Fatalf("expected %d requests, got %d", len(want.Requests), len(got.Requests))
	}
	for i := range want.Requests {
		w, g := want.Requests[i], got.Requests[i]
		if g.ID != w.ID || g.Status != w.Status || g.Answer != w.Answer {
			t.Fatalf("request %d mismatch: want %+v got %+v", i, w, g)
		}
	}
	if got.Knowledge["what are your hours?"] != "9am to 5pm" {
		t.Fatalf("knowledge mapping not restored: %v", got.Knowledge)
	}

	// A second save overwrites the single snapshot row.
	if err := gateway.Save(ctx, Empty()); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	got, err = gateway.Load(ctx)
	if err != nil {
		t.Fatalf("Load after overwrite failed: %v", err)
	}
	if len(got.Requests) != 0 || len(got.Knowledge) != 0 {
		t.Fatal("save must overwrite the previous snapshot")
	}
}

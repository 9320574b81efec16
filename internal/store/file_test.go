package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"frontdesk/api/internal/ledger"
)

func testSnapshot() Snapshot {
	created := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	resolved := created.Add(5 * time.Minute)
	return Snapshot{
		Requests: []ledger.HelpRequest{
			{
				ID:         1,
				CallerID:   "caller-1",
				Question:   "What are your hours?",
				Status:     ledger.StatusResolved,
				Answer:     "9am to 5pm",
				CreatedAt:  created,
				ResolvedAt: &resolved,
			},
			{
				ID:        2,
				CallerID:  "caller-2",
				Question:  "Do you take walk-ins?",
				Status:    ledger.StatusPending,
				CreatedAt: created.Add(time.Minute),
			},
		},
		Knowledge: map[string]string{
			"what are your hours?": "9am to 5pm",
		},
	}
}

func TestFileGatewayRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frontdesk.json")
	gateway, err := NewFileGateway(path)
	if err != nil {
		t.Fatalf("NewFileGateway failed: %v", err)
	}

	ctx := context.Background()
	want := testSnapshot()
	if err := gateway.Save(ctx, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// A fresh gateway over the same path must reproduce the state.
	reopened, err := NewFileGateway(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	got, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(got.Requests) != len(want.Requests) {
		t.Fatalf("expected %d requests, got %d", len(want.Requests), len(got.Requests))
	}
	for i := range want.Requests {
		w, g := want.Requests[i], got.Requests[i]
		if g.ID != w.ID || g.Status != w.Status || g.Answer != w.Answer || g.Question != w.Question {
			t.Fatalf("request %d mismatch: want %+v got %+v", i, w, g)
		}
		if !g.CreatedAt.Equal(w.CreatedAt) {
			t.Fatalf("request %d created_at mismatch: want %v got %v", i, w.CreatedAt, g.CreatedAt)
		}
	}
	if got.Knowledge["what are your hours?"] != "9am to 5pm" {
		t.Fatalf("knowledge mapping not restored: %v", got.Knowledge)
	}
}

func TestFileGatewayLoadMissingFileReturnsEmpty(t *testing.T) {
	gateway, err := NewFileGateway(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("NewFileGateway failed: %v", err)
	}

	snapshot, err := gateway.Load(context.Background())
	if err != nil {
		t.Fatalf("Load of missing file must not error, got %v", err)
	}
	if snapshot.Requests == nil || len(snapshot.Requests) != 0 {
		t.Fatalf("expected empty non-nil requests, got %v", snapshot.Requests)
	}
	if snapshot.Knowledge == nil || len(snapshot.Knowledge) != 0 {
		t.Fatalf("expected empty non-nil knowledge, got %v", snapshot.Knowledge)
	}
}

func TestFileGatewayLoadCorruptFileReturnsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	gateway, err := NewFileGateway(path)
	if err != nil {
		t.Fatalf("NewFileGateway failed: %v", err)
	}
	snapshot, err := gateway.Load(context.Background())
	if err != nil {
		t.Fatalf("Load of corrupt file must not error, got %v", err)
	}
	if len(snapshot.Requests) != 0 || len(snapshot.Knowledge) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snapshot)
	}
}

func TestFileGatewaySaveOverwritesWholeSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frontdesk.json")
	gateway, err := NewFileGateway(path)
	if err != nil {
		t.Fatalf("NewFileGateway failed: %v", err)
	}

	ctx := context.Background()
	if err := gateway.Save(ctx, testSnapshot()); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}
	if err := gateway.Save(ctx, Empty()); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	snapshot, err := gateway.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(snapshot.Requests) != 0 || len(snapshot.Knowledge) != 0 {
		t.Fatal("save must overwrite, not merge")
	}
}

func TestFileGatewaySaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	gateway, err := NewFileGateway(filepath.Join(dir, "frontdesk.json"))
	if err != nil {
		t.Fatalf("NewFileGateway failed: %v", err)
	}
	if err := gateway.Save(context.Background(), testSnapshot()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "frontdesk.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("expected only the snapshot file, got %v", names)
	}
}

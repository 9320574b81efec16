package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
)

// FileGateway keeps the snapshot in a single JSON file. Writes go through a
// temp file and an atomic rename so a crash mid-save cannot truncate the
// previous snapshot.
type FileGateway struct {
	path string
}

func NewFileGateway(path string) (*FileGateway, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileGateway{path: path}, nil
}

func (g *FileGateway) Load(ctx context.Context) (Snapshot, error) {
	raw, err := os.ReadFile(g.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Empty(), nil
	}
	if err != nil {
		return Empty(), fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		// Corrupt data is recovered by starting empty rather than
		// refusing to start.
		log.Printf("store: snapshot file %s is corrupt, starting empty: %v", g.path, err)
		return Empty(), nil
	}
	if snapshot.Requests == nil {
		snapshot.Requests = Empty().Requests
	}
	if snapshot.Knowledge == nil {
		snapshot.Knowledge = Empty().Knowledge
	}
	return snapshot, nil
}

func (g *FileGateway) Save(ctx context.Context, snapshot Snapshot) error {
	raw, err := json.MarshalIndent(snapshot, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(g.path), ".frontdesk-*.json")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, g.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

func (g *FileGateway) Ping(ctx context.Context) error {
	_, err := os.Stat(filepath.Dir(g.path))
	if err != nil {
		return fmt.Errorf("data dir unavailable: %w", err)
	}
	return nil
}

package testsupport

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"newsreel/internal/checkpoint"
	"newsreel/internal/config"
)

// MustOpenStore opens the checkpoint store for the config's data dir and
// registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *checkpoint.Store {
	t.Helper()

	if err := os.MkdirAll(cfg.Paths.DataDir, 0o755); err != nil {
		t.Fatalf("create data dir: %v", err)
	}
	store, err := checkpoint.Open(cfg.DatabasePath())
	if err != nil {
		t.Fatalf("checkpoint.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustCheckpoint writes one checkpoint row or fails the test.
func MustCheckpoint(t testing.TB, store *checkpoint.Store, runID, node string, status checkpoint.Status, payload any) *checkpoint.Checkpoint {
	t.Helper()

	cp, err := store.Put(context.Background(), runID, node, status, payload)
	if err != nil {
		t.Fatalf("store.Put: %v", err)
	}
	return cp
}

// ReadJSON decodes the JSON document at path into out, failing the test
// on read or decode errors.
func ReadJSON(t testing.TB, path string, out any) {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		t.Fatalf("decode %s: %v", filepath.Base(path), err)
	}
}

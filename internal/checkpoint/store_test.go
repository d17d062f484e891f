package checkpoint_test

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"newsreel/internal/checkpoint"
)

func mustOpen(t *testing.T) *checkpoint.Store {
	t.Helper()
	store, err := checkpoint.Open(filepath.Join(t.TempDir(), "checkpoints.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestPutAndListRun(t *testing.T) {
	store := mustOpen(t)
	ctx := context.Background()

	first, err := store.Put(ctx, "run-1", "fetch", checkpoint.StatusOK, map[string]int{"items": 9})
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if first.ID == 0 {
		t.Fatal("expected checkpoint ID to be assigned")
	}
	if _, err := store.Put(ctx, "run-1", "normalize", checkpoint.StatusOK, map[string]int{"records": 7}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if _, err := store.Put(ctx, "run-2", "fetch", checkpoint.StatusFailed, nil); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	listed, err := store.ListRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("ListRun failed: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 checkpoints, got %d", len(listed))
	}
	if listed[0].Node != "fetch" || listed[1].Node != "normalize" {
		t.Fatalf("unexpected order: %s, %s", listed[0].Node, listed[1].Node)
	}

	var payload map[string]int
	if err := json.Unmarshal(listed[0].Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload["items"] != 9 {
		t.Fatalf("payload = %v", payload)
	}
}

func TestLatestOKSkipsFailures(t *testing.T) {
	store := mustOpen(t)
	ctx := context.Background()

	if _, err := store.Put(ctx, "run-1", "fetch", checkpoint.StatusOK, nil); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if _, err := store.Put(ctx, "run-1", "normalize", checkpoint.StatusOK, nil); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if _, err := store.Put(ctx, "run-1", "compose", checkpoint.StatusFailed, nil); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	latest, err := store.LatestOK(ctx, "run-1")
	if err != nil {
		t.Fatalf("LatestOK failed: %v", err)
	}
	if latest.Node != "normalize" {
		t.Fatalf("latest ok node = %s", latest.Node)
	}
}

func TestLatestOKNotFound(t *testing.T) {
	store := mustOpen(t)
	if _, err := store.LatestOK(context.Background(), "missing"); !errors.Is(err, checkpoint.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestAppendOnlyHistorySurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "checkpoints.db")
	ctx := context.Background()

	store, err := checkpoint.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := store.Put(ctx, "run-1", "fetch", checkpoint.StatusOK, nil); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := checkpoint.Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.Put(ctx, "run-1", "normalize", checkpoint.StatusOK, nil); err != nil {
		t.Fatalf("Put after reopen failed: %v", err)
	}

	listed, err := reopened.ListRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("ListRun failed: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected history across reopen, got %d rows", len(listed))
	}
}

func TestRunsSummaries(t *testing.T) {
	store := mustOpen(t)
	ctx := context.Background()

	if _, err := store.Put(ctx, "run-1", "fetch", checkpoint.StatusOK, nil); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if _, err := store.Put(ctx, "run-2", "fetch", checkpoint.StatusOK, nil); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if _, err := store.Put(ctx, "run-2", "normalize", checkpoint.StatusFailed, nil); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	runs, err := store.Runs(ctx)
	if err != nil {
		t.Fatalf("Runs failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].RunID != "run-2" {
		t.Fatalf("expected most recent run first, got %s", runs[0].RunID)
	}
	if runs[0].Checkpoints != 2 || runs[0].LastNode != "normalize" || runs[0].LastStatus != checkpoint.StatusFailed {
		t.Fatalf("summary = %+v", runs[0])
	}
}

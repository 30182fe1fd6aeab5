package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "state")

	store, err := NewFile(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok, err := store.Load(ctx, KeyResume); err != nil || ok {
		t.Fatalf("expected absent slot, got ok=%v err=%v", ok, err)
	}

	if err := store.Save(ctx, KeyResume, "first"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Save(ctx, KeyResume, "second"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reopened, err := NewFile(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok, err := reopened.Load(ctx, KeyResume)
	if err != nil || !ok {
		t.Fatalf("expected stored slot, got ok=%v err=%v", ok, err)
	}
	if got != "second" {
		t.Fatalf("expected second, got %q", got)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected no temp files left behind, got %d entries", len(entries))
	}
}

func TestFileStoreRejectsPathKeys(t *testing.T) {
	store, err := NewFile(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := store.Save(context.Background(), "../escape", "x"); err == nil {
		t.Fatal("expected error for key with path separators")
	}
}

func TestDefaultDirHonoursXDG(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/xdg-state")

	dir, err := DefaultDir()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir != filepath.Join("/tmp/xdg-state", appDirName) {
		t.Fatalf("unexpected dir: %s", dir)
	}
}

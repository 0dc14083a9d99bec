package audio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSaveReturnsServablePath(t *testing.T) {
	t.Parallel()

	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	ref, err := store.Save([]byte("audio"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !strings.HasPrefix(ref, URLPrefix) {
		t.Errorf("ref = %q, want %s prefix", ref, URLPrefix)
	}

	data, err := os.ReadFile(filepath.Join(store.Dir(), strings.TrimPrefix(ref, URLPrefix)))
	if err != nil {
		t.Fatalf("stored file unreadable: %v", err)
	}
	if string(data) != "audio" {
		t.Errorf("stored data = %q", data)
	}
}

func TestSaveUniqueNames(t *testing.T) {
	t.Parallel()

	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	a, err := store.Save([]byte("one"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	b, err := store.Save([]byte("two"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if a == b {
		t.Errorf("two saves produced the same ref %q", a)
	}
}

func TestPrune(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	old := filepath.Join(dir, "dj_old.mp3")
	if err := os.WriteFile(old, []byte("x"), 0o640); err != nil {
		t.Fatalf("failed to seed old file: %v", err)
	}
	past := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatalf("failed to age file: %v", err)
	}

	if _, err := store.Save([]byte("fresh")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	removed, err := store.Prune(time.Hour)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("remaining files = %d, want 1", len(entries))
	}
}

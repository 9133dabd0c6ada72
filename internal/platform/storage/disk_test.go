package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFilename(t *testing.T) {
	name := Filename("My Photo (1).PNG")
	if !strings.HasPrefix(name, "my-photo-1-") {
		t.Errorf("name = %q, want slugified prefix", name)
	}
	if !strings.HasSuffix(name, ".png") {
		t.Errorf("name = %q, want lowercased extension", name)
	}
	if strings.ContainsAny(name, "/\\ ()") {
		t.Errorf("name = %q contains unsafe characters", name)
	}

	if Filename("a.png") == Filename("a.png") {
		t.Error("two uploads of the same file collided")
	}

	if !strings.HasPrefix(Filename("....png"), "upload-") {
		t.Errorf("unsluggable name should fall back to a default prefix")
	}
}

func TestSaveAndRemove(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}

	if err := store.Save("pic.png", strings.NewReader("content")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(store.Dir(), "pic.png"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(raw) != "content" {
		t.Errorf("stored content = %q", raw)
	}

	if err := store.Remove("pic.png"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(store.Dir(), "pic.png")); !os.IsNotExist(err) {
		t.Error("file still exists after Remove")
	}

	// Removing a missing or empty name is not an error.
	if err := store.Remove("pic.png"); err != nil {
		t.Errorf("Remove of missing file: %v", err)
	}
	if err := store.Remove(""); err != nil {
		t.Errorf("Remove of empty name: %v", err)
	}
}

func TestStaleFiles(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}

	if err := store.Save("old.png", strings.NewReader("old")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save("fresh.png", strings.NewReader("fresh")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	past := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(filepath.Join(store.Dir(), "old.png"), past, past); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	stale, err := store.StaleFiles(time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("StaleFiles: %v", err)
	}
	if len(stale) != 1 || stale[0] != "old.png" {
		t.Errorf("stale = %v, want [old.png]", stale)
	}
}

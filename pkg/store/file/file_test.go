package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewResolvesRelativePath(t *testing.T) {
	b, err := New("data/store.json", false)
	if err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(wd, "data", "store.json")
	if b.Path() != want {
		t.Fatalf("Path = %q, want %q", b.Path(), want)
	}
}

func TestNewEmptyPath(t *testing.T) {
	if _, err := New("", false); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestLoadMissingFile(t *testing.T) {
	b, _ := New(filepath.Join(t.TempDir(), "missing.json"), false)
	raw, ok, err := b.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if ok || raw != nil {
		t.Fatalf("expected absent, got ok=%v raw=%q", ok, raw)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	b, _ := New(path, false)
	ctx := context.Background()

	if err := b.Save(ctx, []byte(`{"a":1}`)); err != nil {
		t.Fatal(err)
	}
	if err := b.Save(ctx, []byte(`{"a":2}`)); err != nil {
		t.Fatal(err)
	}
	raw, ok, err := b.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || string(raw) != `{"a":2}` {
		t.Fatalf("Load = %q, %v", raw, ok)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestSaveWithoutMkdirFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "store.json")
	b, _ := New(path, false)
	if err := b.Save(context.Background(), []byte("{}")); err == nil {
		t.Fatal("expected error when parent directory is missing")
	}
}

func TestSaveWithMkdir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "store.json")
	b, _ := New(path, true)
	if err := b.Save(context.Background(), []byte("{}")); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("file should exist: %v", err)
	}
}

func TestWithMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret.json")
	b, _ := New(path, false)
	private := b.WithMode(0o600)
	if err := private.Save(context.Background(), []byte("{}")); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("mode = %v, want 0600", info.Mode().Perm())
	}
	if b.mode != 0o644 {
		t.Fatal("WithMode must not modify the receiver")
	}
}

func TestLoadDirectoryFails(t *testing.T) {
	b, _ := New(t.TempDir(), false)
	if _, _, err := b.Load(context.Background()); err == nil {
		t.Fatal("expected error when path is a directory")
	}
}

func TestCancelledContext(t *testing.T) {
	b, _ := New(filepath.Join(t.TempDir(), "store.json"), false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := b.Save(ctx, []byte("{}")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, _, err := b.Load(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSaveFailureLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "store.json")
	// a non-empty directory at the target path makes the rename fail
	if err := os.MkdirAll(filepath.Join(target, "child"), 0o755); err != nil {
		t.Fatal(err)
	}
	b, _ := New(target, false)
	if err := b.Save(context.Background(), []byte("{}")); err == nil {
		t.Fatal("expected rename over a directory to fail")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "store.json" {
		t.Fatalf("temp file left behind: %v", entries)
	}
}

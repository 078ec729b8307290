package fsutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestOSFileSystem(t *testing.T) {
	fsys := OSFileSystem{}
	dir := filepath.Join(t.TempDir(), "charts", "2024-03")

	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	w, err := fsys.Create(filepath.Join(dir, "coverage.png"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := w.Write([]byte("png")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	info, err := fsys.Stat(filepath.Join(dir, "coverage.png"))
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() != 3 {
		t.Errorf("size = %d, want 3", info.Size())
	}

	data, err := os.ReadFile(filepath.Join(dir, "coverage.png"))
	if err != nil || string(data) != "png" {
		t.Errorf("ReadFile = %q, %v", data, err)
	}
}

func TestMemoryFileSystem(t *testing.T) {
	fsys := NewMemoryFileSystem()

	if _, err := fsys.Create("out/coverage.png"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Create without parent dir: err = %v, want ErrNotExist", err)
	}

	if err := fsys.MkdirAll("out/block-a", 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	for _, dir := range []string{"out", "out/block-a"} {
		info, err := fsys.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("Stat(%s) = %v, %v; want directory", dir, info, err)
		}
	}

	w, err := fsys.Create("out/block-a/../block-a/coverage.png")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	w.Write([]byte("first"))

	if _, err := fsys.Stat("out/block-a/coverage.png"); err == nil {
		t.Error("file visible before Close")
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := fsys.ReadFile("out/block-a/coverage.png")
	if err != nil || string(data) != "first" {
		t.Errorf("ReadFile = %q, %v", data, err)
	}
	data[0] = 'X'
	if again, _ := fsys.ReadFile("out/block-a/coverage.png"); string(again) != "first" {
		t.Error("ReadFile returned shared storage")
	}

	w, _ = fsys.Create("summary.txt")
	w.Write([]byte("x"))
	w.Close()

	got := fsys.Files()
	want := []string{"out/block-a/coverage.png", "summary.txt"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Files() = %v, want %v", got, want)
	}

	if _, err := fsys.ReadFile("missing.png"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadFile missing: err = %v", err)
	}
}

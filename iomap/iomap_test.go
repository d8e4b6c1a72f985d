package iomap

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenWriteReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	f, err := Open(path, 4096, false)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	copy(f.Bytes(), []byte("hello, mapped world"))
	if err := f.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size() != 4096 {
		t.Errorf("file size = %d, want 4096 (truncated to logical size)", info.Size())
	}

	f2, err := Open(path, 0, false)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer f2.Close()
	const want = "hello, mapped world"
	if string(f2.Bytes()[:len(want)]) != want {
		t.Errorf("reopened content = %q", f2.Bytes()[:len(want)])
	}
}

func TestOpenTemporaryIsUnlinked(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "temp.db")

	f, err := Open(path, 4096, true)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected temp file to be unlinked immediately, stat err = %v", err)
	}
}

func TestExtend(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "grow.db")

	f, err := Open(path, 4096, false)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()

	if err := f.Extend(8192); err != nil {
		t.Fatalf("Extend: %v", err)
	}
	if f.Size() != 8192 {
		t.Errorf("Size() = %d, want 8192", f.Size())
	}
	if len(f.Bytes()) != 8192 {
		t.Errorf("len(Bytes()) = %d, want 8192", len(f.Bytes()))
	}
}

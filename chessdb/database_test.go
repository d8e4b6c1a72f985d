package chessdb

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDatabaseCreateInMemoryPutFind(t *testing.T) {
	db, err := Open("mem-test", OpenOptions{Create: true, InMemory: true, Size: HeaderSize + 4096})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	game := []byte{byte(FormatHasTagData), 0, 0, 4, 0, 'M', 'V', '0', '1'}
	pageIdx, slotIdx := db.Put(game)

	hash := pageChecksum(game)
	got, ok := db.Find(hash)
	if !ok {
		t.Fatalf("Find did not locate the game just Put")
	}
	if string(got) != string(game) {
		t.Fatalf("Find returned %v, want %v", got, game)
	}

	db.Delete(pageIdx, slotIdx)
	if _, ok := db.Find(hash); ok {
		t.Fatalf("Find should miss a deleted game")
	}
}

func TestDatabaseFlushReopenInvariant(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "games.cdb")

	db, err := Open(path, OpenOptions{Create: true, Size: HeaderSize + 4096})
	if err != nil {
		t.Fatalf("Open (create): %v", err)
	}

	game := []byte{byte(FormatHasTagData), 0, 0, 4, 0, 'M', 'V', '0', '1'}
	db.Put(game)
	db.Put([]byte{byte(FormatHasTagData), 0, 0, 4, 0, 'M', 'V', '0', '2'})

	wantCount := db.GameCount()
	wantChecksum := func() uint64 {
		if err := db.Flush(); err != nil {
			t.Fatalf("Flush: %v", err)
		}
		return db.Checksum()
	}()

	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db2, err := Open(path, OpenOptions{})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db2.Close()

	if db2.GameCount() != wantCount {
		t.Errorf("GameCount after reopen = %d, want %d", db2.GameCount(), wantCount)
	}
	if db2.Checksum() != wantChecksum {
		t.Errorf("Checksum after reopen = %x, want %x", db2.Checksum(), wantChecksum)
	}
	if len(db2.BadPages) != 0 {
		t.Errorf("expected no bad pages, got %v", db2.BadPages)
	}

	hash := pageChecksum([]byte{byte(FormatHasTagData), 0, 0, 4, 0, 'M', 'V', '0', '1'})
	if _, ok := db2.Find(hash); !ok {
		t.Errorf("Find after reopen did not locate a game written before Flush")
	}
}

func TestDatabaseOpenMissingWithoutCreate(t *testing.T) {
	dir := t.TempDir()
	_, err := Open(filepath.Join(dir, "nope.cdb"), OpenOptions{})
	if err == nil {
		t.Fatalf("expected an error opening a missing database without Create")
	}
}

func TestDatabaseBadPageDetection(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corrupt.cdb")

	db, err := Open(path, OpenOptions{Create: true, Size: HeaderSize + 4096})
	if err != nil {
		t.Fatalf("Open (create): %v", err)
	}
	db.Put([]byte{byte(FormatHasTagData), 0, 0, 4, 0, 'M', 'V', '0', '1'})
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	raw[HeaderSize+PageHeaderSize+5] ^= 0xff
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	db2, err := Open(path, OpenOptions{})
	if err != nil {
		t.Fatalf("reopen after corruption: %v", err)
	}
	defer db2.Close()

	if len(db2.BadPages) == 0 {
		t.Fatalf("expected the corrupted page to be recorded in BadPages")
	}
}

package chessdb

import "testing"

func TestPageFreshCommitChecksumRoundTrip(t *testing.T) {
	data := make([]byte, 256)
	page := NewPage(data, true)

	if page.Size() != 256 {
		t.Fatalf("Size() = %d, want 256", page.Size())
	}
	if page.Changed() {
		t.Fatalf("fresh page should not start out changed")
	}

	page.Index().FindSpaceAndSplit(32)
	page.MarkChanged(true)
	checksum := page.Commit()

	if page.Changed() {
		t.Fatalf("Commit should clear the changed flag")
	}
	if checksum != page.ActualChecksum() {
		t.Fatalf("Commit()'s return value should equal ActualChecksum()")
	}

	reopened := NewPage(data, false)
	if reopened.Checksum() != checksum {
		t.Fatalf("reopened checksum = %x, want %x", reopened.Checksum(), checksum)
	}
	if reopened.Checksum() != reopened.ActualChecksum() {
		t.Fatalf("reopened page should validate against its own stored checksum")
	}
	if reopened.Index().Len() != page.Index().Len() {
		t.Fatalf("reopened page's slot index should match the original, got Len()=%d want %d",
			reopened.Index().Len(), page.Index().Len())
	}
}

func TestPageCorruptionDetected(t *testing.T) {
	data := make([]byte, 256)
	page := NewPage(data, true)
	page.Commit()

	data[PageHeaderSize+20] ^= 0xff // corrupt a byte inside the slot region

	reopened := NewPage(data, false)
	if reopened.Checksum() == reopened.ActualChecksum() {
		t.Fatalf("expected the corrupted page's stored and actual checksums to differ")
	}
}

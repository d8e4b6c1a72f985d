package chessdb

import (
	"testing"

	"github.com/cespare/xxhash/v2"
)

func newEmptyPageData(size int) []byte {
	return make([]byte, size)
}

func TestPageIndexFreshIsOneEmptySlot(t *testing.T) {
	data := newEmptyPageData(256)
	idx := NewPageIndex(data, true)

	if idx.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", idx.Len())
	}
	if !idx.IsEmpty(0) {
		t.Fatalf("fresh page's sole slot should be empty")
	}
	if len(idx.Slot(0)) != len(data) {
		t.Fatalf("slot span = %d, want %d", len(idx.Slot(0)), len(data))
	}
}

func TestPageIndexFindSpaceAndSplit(t *testing.T) {
	data := newEmptyPageData(256)
	idx := NewPageIndex(data, true)

	i := idx.FindSpaceAndSplit(64)
	if i < 0 {
		t.Fatalf("FindSpaceAndSplit returned no slot")
	}
	if len(idx.Slot(i)) != 64 {
		t.Fatalf("allocated slot size = %d, want 64", len(idx.Slot(i)))
	}
	if idx.Len() != 2 {
		t.Fatalf("Len() after split = %d, want 2", idx.Len())
	}
	if !idx.IsEmpty(1) {
		t.Fatalf("remainder slot should still be empty")
	}
	if len(idx.Slot(1)) != len(data)-64 {
		t.Fatalf("remainder slot size = %d, want %d", len(idx.Slot(1)), len(data)-64)
	}
}

// writeOccupiedSlot writes a minimal HasTagData-only slot (empty tag
// block, a 4-byte move block) at data[0:9], and a matching empty-slot
// header spanning the remainder of data.
func writeOccupiedSlot(data []byte, moveBlock string) {
	data[0] = byte(FormatHasTagData)
	writeLE(data, 1, 2, 0) // tag_block_size
	writeLE(data, 3, 2, uint64(len(moveBlock)))
	copy(data[5:5+len(moveBlock)], moveBlock)

	rest := data[5+len(moveBlock):]
	writeLE(rest, 0, 1, uint64(FormatEmpty))
	writeLE(rest, 1, 2, uint64(len(rest)-3))
}

func TestPageIndexFindAfterOccupy(t *testing.T) {
	data := newEmptyPageData(256)
	writeOccupiedSlot(data, "MV01")

	idx := NewPageIndex(data, false)
	if idx.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 (one occupied, one trailing empty)", idx.Len())
	}
	if len(idx.Slot(0)) != 9 {
		t.Fatalf("occupied slot size = %d, want 9", len(idx.Slot(0)))
	}

	hash := xxhash.Sum64(idx.Slot(0))
	if idx.Find(hash) != 0 {
		t.Fatalf("Find(%x) did not locate the occupied slot", hash)
	}
	if idx.Find(hash + 1) != -1 {
		t.Fatalf("Find should miss on an unrelated hash")
	}
}

func TestPageIndexMarkDeletedAndCoalesce(t *testing.T) {
	data := newEmptyPageData(256)
	idx := NewPageIndex(data, true)

	a := idx.FindSpaceAndSplit(32)
	idx.MarkOccupied(a, 0xaaaa) // distinguishes slot a from the remaining empty space
	b := idx.FindSpaceAndSplit(32)
	idx.MarkOccupied(b, 0xbbbb)
	if a < 0 || b < 0 {
		t.Fatalf("setup: failed to allocate two slots")
	}

	// b sits next to the trailing empty remainder slot left over from the
	// second split, so deleting b gives Coalesce an empty neighbour to
	// merge with (a is still occupied, so it is left alone).
	idx.MarkDeleted(b)

	before := idx.Len()
	idx.Coalesce()
	if idx.Len() >= before {
		t.Fatalf("Coalesce should have merged the deleted slot with its empty neighbour, Len() = %d", idx.Len())
	}
	if !idx.IsEmpty(b) {
		t.Fatalf("merged slot should read back as empty")
	}
}

func TestPageIndexFindSpaceNoRoom(t *testing.T) {
	data := newEmptyPageData(16)
	idx := NewPageIndex(data, true)

	if idx.FindSpace(1000) != -1 {
		t.Fatalf("expected no slot large enough")
	}
}

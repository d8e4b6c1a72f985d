package chessdb

import "github.com/cespare/xxhash/v2"

// GameFormat is the slot format-flags bitmask (spec §3.5, §6).
type GameFormat uint8

const (
	FormatEmpty       GameFormat = 0x0
	FormatHasTagData  GameFormat = 0x1
	FormatHasComments GameFormat = 0x2
	FormatHasNAGs     GameFormat = 0x4
)

// slotMetadata is a per-slot metadata byte, following the same
// empty/deleted/occupied-plus-7-bit-hash scheme abseil's swisstable uses
// (spec §3.5, ported from pageindex.hh's Metadata namespace).
type slotMetadata uint8

const (
	metaHashMask slotMetadata = 0b01111111
	metaEmpty    slotMetadata = 0b10000000
	metaDeleted  slotMetadata = 0b11000000
	metaSentinel slotMetadata = 0b11111111
)

// PageIndex is the in-memory slot index built over one page's byte range
// at open time: for each slot, a byte span plus a metadata byte
// (spec §3.5, ported from db/pageindex.hh).
type PageIndex struct {
	metadata []slotMetadata
	slots    [][]byte
}

// NewPageIndex builds a PageIndex over data (the page's byte range after
// its 8-byte PageHeader). If fresh is true, data is first initialised as
// a single empty slot spanning the whole range.
func NewPageIndex(data []byte, fresh bool) *PageIndex {
	if fresh {
		writeLE(data, 0, 1, uint64(FormatEmpty))
		writeLE(data, 1, 2, uint64(len(data)-3))
	}

	idx := &PageIndex{}
	idx.Reindex(data)
	return idx
}

// Len returns the number of slots currently indexed.
func (idx *PageIndex) Len() int { return len(idx.slots) }

// Slot returns the i'th slot's byte span.
func (idx *PageIndex) Slot(i int) []byte { return idx.slots[i] }

// IsEmpty reports whether slot i is a free/empty slot.
func (idx *PageIndex) IsEmpty(i int) bool { return idx.metadata[i]&metaEmpty != 0 }

// MarkDeleted marks slot gameIdx for deletion (its bytes are reclaimed on
// the next Coalesce).
func (idx *PageIndex) MarkDeleted(gameIdx int) { idx.metadata[gameIdx] = metaDeleted }

// MarkOccupied records that slot i now holds a game hashing to hash,
// replacing its (until-now empty) metadata signature. Callers that write
// a game's bytes directly into a slot returned by FindSpaceAndSplit must
// call this afterwards — the split itself carries over the slot's old
// "empty" metadata, since it has no way to know the new content's hash.
func (idx *PageIndex) MarkOccupied(i int, hash uint64) {
	idx.metadata[i] = slotMetadata(hash & uint64(metaHashMask))
}

// Find returns the index of the slot holding the game hashing to hash, or
// -1 if none matches. The metadata's 7-bit signature narrows the search
// before the full hash is recomputed and compared.
func (idx *PageIndex) Find(hash uint64) int {
	sig := slotMetadata(hash & uint64(metaHashMask))
	for i, md := range idx.metadata {
		if md != sig {
			continue
		}
		if xxhash.Sum64(idx.slots[i]) == hash {
			return i
		}
	}
	return -1
}

// FindSpace returns the index of the first empty slot at least minSize
// bytes long, or -1 if none exists.
func (idx *PageIndex) FindSpace(minSize int) int {
	for i, md := range idx.metadata {
		if md&metaEmpty != 0 && len(idx.slots[i]) >= minSize {
			return i
		}
	}
	return -1
}

// FindSpaceAndSplit finds an empty slot of at least newSize bytes and
// splits it in two: the first newSize bytes become the returned slot, and
// the remainder becomes a new trailing empty slot. Both parts get an
// empty-slot header on disk, so the page reindexes to the same slots until
// the caller writes a game into the returned slot.
func (idx *PageIndex) FindSpaceAndSplit(newSize int) int {
	i := idx.FindSpace(newSize)
	if i < 0 {
		return -1
	}

	whole := idx.slots[i]
	remainder := whole[newSize:]
	if len(remainder) < 3 {
		// Too small to host its own empty-slot header; hand over the
		// whole thing rather than leaving unaddressable trailing bytes.
		return i
	}

	idx.slots[i] = whole[:newSize]
	if newSize >= 3 {
		writeLE(whole, 0, 1, uint64(FormatEmpty))
		writeLE(whole, 1, 2, uint64(newSize-3))
	}
	writeLE(remainder, 0, 1, uint64(FormatEmpty))
	writeLE(remainder, 1, 2, uint64(len(remainder)-3))

	idx.slots = append(idx.slots, remainder)
	idx.metadata = append(idx.metadata, metaEmpty)

	return i
}

// Coalesce merges adjacent empty-or-deleted slots, clearing their
// on-disk bytes and rewriting the merged slot's empty-slot header.
func (idx *PageIndex) Coalesce() {
	for i := 0; i < len(idx.slots)-1; {
		if idx.metadata[i]&idx.metadata[i+1]&metaEmpty != 0 {
			next := idx.slots[i+1]
			clear(next[:min3(len(next), 3)])
			if idx.metadata[i+1]&metaDeleted != 0 {
				clear(next)
			}
			if idx.metadata[i]&metaDeleted != 0 {
				clear(idx.slots[i])
			}

			// slots[i] and slots[i+1] are contiguous subslices of the same
			// backing array, so the merge is just a re-slice to their
			// combined length.
			newSize := len(idx.slots[i]) + len(idx.slots[i+1])
			idx.slots[i] = idx.slots[i][:newSize]

			writeLE(idx.slots[i], 0, 1, uint64(FormatEmpty))
			writeLE(idx.slots[i], 1, 2, uint64(newSize-3))

			idx.slots = append(idx.slots[:i+1], idx.slots[i+2:]...)
			idx.metadata = append(idx.metadata[:i+1], idx.metadata[i+2:]...)
		} else {
			i++
		}
	}
}

func min3(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Reindex rebuilds the slot index from scratch by walking data's
// sequence of empty/occupied slots (spec §3.5).
func (idx *PageIndex) Reindex(data []byte) {
	idx.metadata = idx.metadata[:0]
	idx.slots = idx.slots[:0]

	pos := 0
	for pos < len(data) {
		format := GameFormat(data[pos])

		var next int
		if format == FormatEmpty {
			// 1 format byte + 2 skip-length bytes + skip bytes of padding.
			skip := int(readLE(data, pos+1, 2))
			next = pos + 3 + skip
		} else {
			hasTags := format&FormatHasTagData != 0
			tagSize := 0
			if hasTags {
				tagSize = int(readLE(data, pos+1, 2))
			}
			moveOffset := tagSize
			if hasTags {
				moveOffset += 2
			}
			moveSize := int(readLE(data, pos+1+moveOffset, 2))
			// 1 format byte + moveOffset (tag-size field + tag block, if
			// present) + 2 move-size bytes + the move block itself.
			next = pos + 1 + moveOffset + 2 + moveSize
		}

		span := data[pos:next]
		var md slotMetadata
		if format == FormatEmpty {
			md = metaEmpty
		} else {
			md = slotMetadata(xxhash.Sum64(span) & uint64(metaHashMask))
		}

		idx.metadata = append(idx.metadata, md)
		idx.slots = append(idx.slots, span)

		pos = next
	}
}

func readLE(data []byte, off, n int) uint64 {
	var x uint64
	for i := 0; i < n; i++ {
		x |= uint64(data[off+i]) << (8 * uint(i))
	}
	return x
}

func writeLE(data []byte, off, n int, x uint64) {
	for i := 0; i < n; i++ {
		data[off+i] = byte(x >> (8 * uint(i)))
	}
}

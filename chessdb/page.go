package chessdb

import "github.com/cespare/xxhash/v2"

// PageHeaderSize is the fixed 8-byte page header size (spec §3.5, §6).
const PageHeaderSize = 8

// Page is one page of the game arena: a fixed header plus a PageIndex
// over the slot bytes that follow it (ported from db/page.hh).
type Page struct {
	data     []byte
	size     uint16
	cursor   uint16
	checksum uint32
	idx      *PageIndex
	changed  bool
}

// NewPage wraps data (which must be at least PageHeaderSize long) as a
// Page. If fresh is true, the header and slot index are initialised as a
// brand-new, fully-empty page.
func NewPage(data []byte, fresh bool) *Page {
	p := &Page{data: data}

	if fresh {
		p.size = uint16(len(data))
		p.cursor = 0
		p.checksum = 0
	} else {
		p.size = uint16(readLE(data, 0, 2))
		p.cursor = uint16(readLE(data, 2, 2))
		p.checksum = uint32(readLE(data, 4, 4))
	}

	p.idx = NewPageIndex(data[PageHeaderSize:], fresh)
	return p
}

// Size returns the page's total byte size (header + slots).
func (p *Page) Size() int { return int(p.size) }

// Cursor returns the page's append cursor (reserved for future
// sequential-write growth; slot allocation currently goes through the
// PageIndex's free-space search instead).
func (p *Page) Cursor() int { return int(p.cursor) }

// Checksum returns the page's stored checksum (as of the last Commit).
func (p *Page) Checksum() uint32 { return p.checksum }

// Index returns the page's slot index.
func (p *Page) Index() *PageIndex { return p.idx }

// ActualChecksum recomputes the checksum over the page's slot bytes
// (everything after the fixed header).
func (p *Page) ActualChecksum() uint32 {
	return uint32(xxhash.Sum64(p.data[PageHeaderSize:]) >> 32)
}

// Changed reports whether the page has been mutated since the last Commit.
func (p *Page) Changed() bool { return p.changed }

// MarkChanged flags the page as dirty (or clean, if b is false).
func (p *Page) MarkChanged(b bool) { p.changed = b }

// Commit recomputes the page's checksum and writes the header fields back
// to the backing bytes.
func (p *Page) Commit() uint32 {
	p.checksum = p.ActualChecksum()

	writeLE(p.data, 0, 2, uint64(p.size))
	writeLE(p.data, 2, 2, uint64(p.cursor))
	writeLE(p.data, 4, 4, uint64(p.checksum))

	p.changed = false
	return p.checksum
}

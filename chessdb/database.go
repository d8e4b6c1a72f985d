package chessdb

import (
	"os"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/singleflight"

	"chessdb/iomap"
	"chessdb/logx"
)

// DefaultPageSize is the size of a freshly-appended page when the arena
// grows (spec §4.12: "when a page is full, a new page is appended to the
// arena"). The container format itself has no fixed page size — pages
// carry their own size in the page header's u16 size field, so a page is at
// most 65535 bytes — and this value is purely a policy choice for
// Create/Extend.
const DefaultPageSize = 32 * 1024

// OpenOptions is the config surface for opening a database (spec §4.0
// Ambient: configuration, ported from db/database.hh's OpenOptions).
type OpenOptions struct {
	// Create allows Open to initialise a brand-new, empty database if
	// path does not already exist.
	Create bool
	// Temporary unlinks the backing file immediately after opening, so
	// it disappears once the process exits (scratch databases used by
	// tests and one-shot conversions).
	Temporary bool
	// InMemory skips the filesystem entirely; path is used only as the
	// database's Name.
	InMemory bool
	// Size is the total file size (header + arena) to allocate when
	// creating a new database. Ignored when opening an existing one.
	Size int
}

// Database is an open game database: a header, a memory-mapped (or
// in-memory) byte arena, and the in-memory page/slot index built over it
// at open time (spec §3.5, §4.11, §4.12).
type Database struct {
	file *iomap.File // nil when opened InMemory
	mem  []byte

	header Header
	pages  []*Page
	// pageOffset[i] is the arena-relative byte offset of pages[i].
	pageOffset []int

	// BadPages records the arena-relative offsets of pages whose stored
	// checksum didn't match their recomputed one at Open time (spec
	// §4.14). Such pages are excluded from Find/FindSpace, and the games
	// indexed on them are subtracted from GameCount.
	BadPages []int

	sf singleflight.Group
}

// Open opens the database at path, creating and initialising a new one
// if opts.Create is set and path doesn't already exist.
func Open(path string, opts OpenOptions) (*Database, error) {
	if opts.InMemory {
		return openInMemory(path, opts)
	}

	_, statErr := os.Stat(path)
	exists := statErr == nil
	if !exists && !opts.Create {
		return nil, &wrapError{Err: FileNotFound, Context: path}
	}

	size := opts.Size
	if exists {
		size = 0 // iomap.Open(0, ...) uses the file's current size
	} else if size <= HeaderSize {
		size = HeaderSize + DefaultPageSize
	}

	f, err := iomap.Open(path, size, opts.Temporary)
	if err != nil {
		return nil, err
	}

	db := &Database{file: f, mem: f.Bytes()}
	if err := db.initOrLoad(!exists); err != nil {
		f.Close()
		return nil, err
	}
	return db, nil
}

func openInMemory(name string, opts OpenOptions) (*Database, error) {
	size := opts.Size
	if size <= HeaderSize {
		size = HeaderSize + DefaultPageSize
	}

	db := &Database{mem: make([]byte, size)}
	if err := db.initOrLoad(true); err != nil {
		return nil, err
	}
	db.header.Name = name
	return db, nil
}

func (db *Database) initOrLoad(fresh bool) error {
	if fresh {
		db.header = Header{
			Version:    0,
			DataOffset: uint64(HeaderSize),
			DataLength: uint64(len(db.mem) - HeaderSize),
		}
		NewPage(db.arena(), true).Commit()
		db.header.GameCount = 0
		if err := db.Flush(); err != nil {
			return err
		}
	} else {
		h, err := DeserialiseHeader(db.mem)
		if err != nil {
			return err
		}
		db.header = h
	}

	return db.rebuildPageIndex()
}

// arena returns the full byte range given over to pages.
func (db *Database) arena() []byte {
	off := db.header.DataOffset
	length := db.header.DataLength
	return db.mem[off : off+length]
}

// rebuildPageIndex walks the arena page by page (spec §4.12), validating
// each page's stored checksum and recording mismatches in BadPages
// instead of failing the whole Open (spec §4.14).
func (db *Database) rebuildPageIndex() error {
	db.pages = db.pages[:0]
	db.pageOffset = db.pageOffset[:0]
	db.BadPages = db.BadPages[:0]

	arena := db.arena()
	pos := 0
	for pos < len(arena) {
		pageSize := int(readLE(arena, pos, 2))
		if pageSize <= 0 || pos+pageSize > len(arena) {
			break
		}

		data := arena[pos : pos+pageSize]
		page := NewPage(data, false)

		if page.Checksum() != page.ActualChecksum() {
			log := logx.Log()
			log.Error().
				Int("offset", pos).
				Uint32("stored_checksum", page.Checksum()).
				Uint32("actual_checksum", page.ActualChecksum()).
				Msg("chessdb: page checksum mismatch, marking unusable")
			db.BadPages = append(db.BadPages, pos)
		}

		db.pages = append(db.pages, page)
		db.pageOffset = append(db.pageOffset, pos)
		pos += pageSize
	}

	return nil
}

func (db *Database) isBadPage(i int) bool {
	for _, off := range db.BadPages {
		if off == db.pageOffset[i] {
			return true
		}
	}
	return false
}

// IsPGN reports whether this database is a raw-PGN file with no
// structured header (header.Version == VersionPGN).
func (db *Database) IsPGN() bool { return db.header.IsPGN() }

// Name returns the database's header name field.
func (db *Database) Name() string { return db.header.Name }

// GameCount returns the header's recorded game count, minus the games lost
// to bad pages (spec §4.14): the occupied slots each bad page's index held
// when it was read at Open. This is best-effort, since a corrupt page's
// slot headers may themselves be damaged.
func (db *Database) GameCount() uint64 {
	lost := uint64(0)
	for i := range db.pages {
		if !db.isBadPage(i) {
			continue
		}
		idx := db.pages[i].Index()
		for s := 0; s < idx.Len(); s++ {
			if !idx.IsEmpty(s) {
				lost++
			}
		}
	}
	if lost > db.header.GameCount {
		return 0
	}
	return db.header.GameCount - lost
}

// Checksum returns the current data_checksum field (the checksum over
// the whole game arena, as of the last Flush).
func (db *Database) Checksum() uint64 { return db.header.DataChecksum }

// Find looks up the slot holding the game hashing to hash, returning its
// raw bytes and whether it was found. Concurrent calls for the same hash
// are collapsed onto a single search via singleflight (spec §5).
func (db *Database) Find(hash uint64) ([]byte, bool) {
	key := strconv.FormatUint(hash, 16)

	v, _, _ := db.sf.Do(key, func() (interface{}, error) {
		for i, page := range db.pages {
			if db.isBadPage(i) {
				continue
			}
			if slot := page.Index().Find(hash); slot >= 0 {
				return page.Index().Slot(slot), nil
			}
		}
		return nil, nil
	})

	if v == nil {
		return nil, false
	}
	return v.([]byte), true
}

// Put inserts data (a fully-formatted slot body, format byte included)
// into the first page with enough free space, appending a new page if
// none has room. It returns the page index and slot index the game was
// written to.
func (db *Database) Put(data []byte) (pageIdx, slotIdx int) {
	for i, page := range db.pages {
		if db.isBadPage(i) {
			continue
		}
		if s := page.Index().FindSpaceAndSplit(len(data)); s >= 0 {
			copy(page.Index().Slot(s), data)
			page.Index().MarkOccupied(s, xxhash.Sum64(data))
			page.MarkChanged(true)
			db.header.GameCount++
			return i, s
		}
	}

	i := db.appendPage()
	page := db.pages[i]
	s := page.Index().FindSpaceAndSplit(len(data))
	copy(page.Index().Slot(s), data)
	page.Index().MarkOccupied(s, xxhash.Sum64(data))
	page.MarkChanged(true)
	db.header.GameCount++
	return i, s
}

// ForEach calls fn once for every occupied slot's raw bytes, in page then
// slot order. fn must not retain the slice past the call — it borrows the
// backing arena.
func (db *Database) ForEach(fn func(data []byte)) {
	for i, page := range db.pages {
		if db.isBadPage(i) {
			continue
		}
		idx := page.Index()
		for s := 0; s < idx.Len(); s++ {
			if !idx.IsEmpty(s) {
				fn(idx.Slot(s))
			}
		}
	}
}

// Delete marks the game at (pageIdx, slotIdx) as a tombstone. Its bytes
// are reclaimed the next time that page is coalesced.
func (db *Database) Delete(pageIdx, slotIdx int) {
	page := db.pages[pageIdx]
	page.Index().MarkDeleted(slotIdx)
	page.MarkChanged(true)
	if db.header.GameCount > 0 {
		db.header.GameCount--
	}
}

// Coalesce merges adjacent free/deleted slots on every changed page.
func (db *Database) Coalesce() {
	for _, page := range db.pages {
		if page.Changed() {
			page.Index().Coalesce()
		}
	}
}

// commitPages writes every changed page's header fields back to the
// backing bytes, without touching the database header. Called before any
// operation that resizes or remaps the backing storage, so a subsequent
// rebuildPageIndex scan (which trusts each page's on-disk size field to
// find the next page) sees consistent data for every page, not just the
// ones Flush has already committed.
func (db *Database) commitPages() {
	for _, page := range db.pages {
		if page.Changed() {
			page.Commit()
		}
	}
}

// appendPage grows the arena by DefaultPageSize bytes and indexes the new,
// empty page, extending (and, if necessary, remapping) the backing
// storage first. Growing can hand back an entirely new backing array
// (iomap.File.Extend may remap; the in-memory path always reallocates),
// so every page is rebuilt from the new array afterwards rather than
// patching the stale one in place.
func (db *Database) appendPage() int {
	db.commitPages()

	newArenaLen := int(db.header.DataLength) + DefaultPageSize
	needed := int(db.header.DataOffset) + newArenaLen
	if needed > len(db.mem) {
		db.growTo(needed)
	}

	db.header.DataLength = uint64(newArenaLen)

	off := int(db.header.DataLength) - DefaultPageSize
	data := db.arena()[off : off+DefaultPageSize]
	NewPage(data, true).Commit()

	db.rebuildPageIndex()
	return len(db.pages) - 1
}

func (db *Database) growTo(size int) {
	if db.file != nil {
		db.file.Extend(size)
		db.mem = db.file.Bytes()
		return
	}

	grown := make([]byte, size)
	copy(grown, db.mem)
	db.mem = grown
}

// Flush commits every changed page, recomputes the arena's data checksum
// and the header's self-checksum, and — for a file-backed database —
// syncs the mapping to disk (spec §3.6: "update in-arena bytes →
// recompute page checksum → recompute header data checksum →
// recompute header self-checksum → flush mapping").
func (db *Database) Flush() error {
	db.commitPages()

	db.header.DataChecksum = pageChecksum(db.arena())
	db.header.Serialise(db.mem[:HeaderSize])

	if db.file != nil {
		return db.file.Sync()
	}
	return nil
}

func pageChecksum(arena []byte) uint64 { return xxhash.Sum64(arena) }

// Close flushes pending changes and releases the backing file, if any.
func (db *Database) Close() error {
	if err := db.Flush(); err != nil {
		return err
	}
	if db.file != nil {
		return db.file.Close()
	}
	return nil
}

// Package dbio implements the seekable little-endian byte buffer the
// database container is built on: fixed-width little-endian integers,
// ULEB128 variable-width integers, length-prefixed strings, and the single
// fixed 64-bit hash used for every checksum and slot signature in the
// container (spec §4.9, §6).
//
// This is a straight generalisation of the original's io::basic_buffer<T>,
// collapsed into one concrete little-endian buffer type since Go has no use
// for the original's const/mutable buffer split (a []byte is already either
// borrowed or owned depending on how the caller got it).
package dbio

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Buffer is a (data, position) pair over a borrowed byte slice. All reads
// and writes are bounds-checked; an out-of-range access panics with the
// offending offset, mirroring the original's assertion discipline (a
// corrupt or truncated database file is a fatal condition at the point of
// access, not a recoverable error the caller can route around mid-read).
type Buffer struct {
	data []byte
	pos  int
}

// New wraps data for sequential little-endian access starting at position 0.
func New(data []byte) *Buffer { return &Buffer{data: data} }

// Bytes returns the full underlying slice.
func (b *Buffer) Bytes() []byte { return b.data }

// Len returns the size of the underlying slice.
func (b *Buffer) Len() int { return len(b.data) }

// Pos returns the current cursor position.
func (b *Buffer) Pos() int { return b.pos }

// Seek advances the cursor by n bytes (relative).
func (b *Buffer) Seek(n int) { b.pos += n }

// SeekAbs moves the cursor to an absolute position.
func (b *Buffer) SeekAbs(n int) { b.pos = n }

func (b *Buffer) checkRange(off, n int) {
	if off < 0 || n < 0 || off+n > len(b.data) {
		panic(fmt.Sprintf("dbio: out of range access at %d..%d (len %d)", off, off+n, len(b.data)))
	}
}

// Subbuf returns a new Buffer viewing data[offset : offset+size].
func (b *Buffer) Subbuf(offset, size int) *Buffer {
	b.checkRange(offset, size)
	return New(b.data[offset : offset+size])
}

// Hash returns the fixed 64-bit non-cryptographic hash of the whole
// underlying slice. Every checksum and slot signature in the container
// format derives from this single function (spec §6).
func (b *Buffer) Hash() uint64 { return xxhash.Sum64(b.data) }

// ReadByte reads a single byte and advances the cursor.
func (b *Buffer) ReadByte() byte {
	b.checkRange(b.pos, 1)
	v := b.data[b.pos]
	b.pos++
	return v
}

// WriteByte writes a single byte and advances the cursor.
func (b *Buffer) WriteByte(v byte) {
	b.checkRange(b.pos, 1)
	b.data[b.pos] = v
	b.pos++
}

// ReadLE reads an n-byte (n <= 8) little-endian unsigned integer and
// advances the cursor by n.
func (b *Buffer) ReadLE(n int) uint64 {
	b.checkRange(b.pos, n)
	var x uint64
	for i := 0; i < n; i++ {
		x |= uint64(b.data[b.pos+i]) << (8 * uint(i))
	}
	b.pos += n
	return x
}

// WriteLE writes the low n bytes (n <= 8) of x as little-endian and
// advances the cursor by n.
func (b *Buffer) WriteLE(x uint64, n int) {
	b.checkRange(b.pos, n)
	for i := 0; i < n; i++ {
		b.data[b.pos+i] = byte(x >> (8 * uint(i)))
	}
	b.pos += n
}

// ReadULEB128 reads an unsigned LEB128 variable-length integer.
func (b *Buffer) ReadULEB128() uint64 {
	var value uint64
	var shift uint
	for {
		by := b.ReadByte()
		value |= uint64(by&0x7f) << shift
		if by&0x80 == 0 {
			break
		}
		shift += 7
	}
	return value
}

// WriteULEB128 writes value as an unsigned LEB128 variable-length integer.
func (b *Buffer) WriteULEB128(value uint64) {
	for {
		by := byte(value & 0x7f)
		value >>= 7
		if value != 0 {
			by |= 0x80
		}
		b.WriteByte(by)
		if value == 0 {
			break
		}
	}
}

// ReadBytes reads n raw bytes and advances the cursor.
func (b *Buffer) ReadBytes(n int) []byte {
	b.checkRange(b.pos, n)
	v := b.data[b.pos : b.pos+n]
	b.pos += n
	return v
}

// WriteBytes writes raw bytes and advances the cursor.
func (b *Buffer) WriteBytes(v []byte) {
	b.checkRange(b.pos, len(v))
	copy(b.data[b.pos:], v)
	b.pos += len(v)
}

// ReadString reads a ULEB128 length prefix followed by that many raw
// bytes, returning them as a string.
func (b *Buffer) ReadString() string {
	n := int(b.ReadULEB128())
	return string(b.ReadBytes(n))
}

// WriteString writes s as a ULEB128 length prefix followed by its bytes.
func (b *Buffer) WriteString(s string) {
	b.WriteULEB128(uint64(len(s)))
	b.WriteBytes([]byte(s))
}

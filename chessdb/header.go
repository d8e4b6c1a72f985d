package chessdb

import (
	"chessdb/dbio"
)

// Magic is the 10-byte file signature every non-raw-PGN database starts
// with (spec §3.5). The leading U+00BF encodes as two UTF-8 bytes
// (0xC2 0xBF), which is what brings the signature to 10 bytes total.
const Magic = "¿ChessDB\n"

// NameLength is the fixed, NUL-padded width of the header's name field.
const NameLength = 42

// HeaderSize is the total on-disk size of Magic + Header (spec §3.5: 8 +
// 4 + 42 + 8 + 8 + 8 + 8 = 86 bytes of Header, plus the 10-byte magic).
const HeaderSize = len(Magic) + 8 + 4 + NameLength + 8 + 8 + 8 + 8

// VersionPGN is the sentinel header version meaning "this file is a raw
// PGN, no header" (spec §3.5).
const VersionPGN uint32 = 0xFFFFFFFF

// Header is the fixed-size file header (spec §3.5).
type Header struct {
	Checksum     uint64
	Version      uint32
	Name         string
	DataLength   uint64
	DataOffset   uint64
	DataChecksum uint64
	GameCount    uint64
}

// Serialise writes h into buf (which must be at least HeaderSize long),
// recomputing and writing the self-checksum over everything after the
// magic and checksum fields.
func (h *Header) Serialise(buf []byte) {
	b := dbio.New(buf)

	b.WriteBytes([]byte(Magic))
	b.Seek(8) // checksum written last, once the rest is in place

	b.WriteLE(uint64(h.Version), 4)

	nameBytes := make([]byte, NameLength)
	copy(nameBytes, h.Name)
	b.WriteBytes(nameBytes)

	b.WriteLE(h.DataLength, 8)
	b.WriteLE(h.DataOffset, 8)
	b.WriteLE(h.DataChecksum, 8)
	b.WriteLE(h.GameCount, 8)

	checksumRegion := dbio.New(buf[len(Magic)+8 : HeaderSize])
	h.Checksum = checksumRegion.Hash()

	b.SeekAbs(len(Magic))
	b.WriteLE(h.Checksum, 8)
}

// DeserialiseHeader parses a Header out of buf (which must be at least
// HeaderSize long). Per spec §7, a checksum mismatch is fatal at open
// time — unlike the original, whose equivalent check is computed but its
// error return left commented out, silently tolerating header corruption.
func DeserialiseHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, &wrapError{Err: BadMagic, Context: "buffer shorter than header"}
	}
	if string(buf[:len(Magic)]) != Magic {
		return Header{}, &wrapError{Err: BadMagic, Context: "magic mismatch"}
	}

	b := dbio.New(buf)
	var h Header

	b.Seek(len(Magic))
	h.Checksum = b.ReadLE(8)

	checksumRegion := dbio.New(buf[len(Magic)+8 : HeaderSize])
	actual := checksumRegion.Hash()
	if actual != h.Checksum {
		return Header{}, &wrapError{Err: BadChecksum, Context: "header self-checksum mismatch"}
	}

	h.Version = uint32(b.ReadLE(4))

	nameBytes := b.ReadBytes(NameLength)
	end := len(nameBytes)
	for i, c := range nameBytes {
		if c == 0 {
			end = i
			break
		}
	}
	h.Name = string(nameBytes[:end])

	h.DataLength = b.ReadLE(8)
	h.DataOffset = b.ReadLE(8)
	h.DataChecksum = b.ReadLE(8)
	h.GameCount = b.ReadLE(8)

	return h, nil
}

// IsPGN reports whether h marks a raw-PGN file with no structured header.
func (h *Header) IsPGN() bool { return h.Version == VersionPGN }

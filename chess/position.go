package chess

import "chessdb/bitutil"

// Position is the compact four-bitboard encoding from spec §3.1: each
// square carries a 3-bit piece code split across X, Y, Z, and White marks
// the squares held by the side to move (plus, when a bit has no
// corresponding piece, the en-passant target square). The engine always
// operates as if the side to move were "white"; make_move restores this
// canonical form by byte-swapping all four planes after every ply.
type Position struct {
	X, Y, Z, White Bitboard
}

// Startpos is the standard chess starting position, already in canonical
// (white-to-move) form.
var Startpos = Position{
	X:     0xb5ff00000000ffb5,
	Y:     0x7e0000000000007e,
	Z:     0x9900000000000099,
	White: 0xffff,
}

// Occupied returns the bitboard of all occupied squares.
func (p Position) Occupied() Bitboard { return p.X | p.Y | p.Z }

// Extract returns the bitboard of all squares holding a piece of the given
// type, colour-agnostic. Rook also matches Castle-rook squares, since a
// castle-rook is still a rook for every purpose but castling-rights
// bookkeeping.
func (p Position) Extract(pt PieceType) Bitboard {
	if pt == Rook {
		return p.Z &^ p.Y
	}

	n := uint(pt)
	bb := ^Bitboard(0)
	if n&1 != 0 {
		bb &= p.X
	} else {
		bb &= ^p.X
	}
	if n&2 != 0 {
		bb &= p.Y
	} else {
		bb &= ^p.Y
	}
	if n&4 != 0 {
		bb &= p.Z
	} else {
		bb &= ^p.Z
	}
	return bb
}

// Set marks sq as holding a piece of the given type across the X/Y/Z
// planes (does not touch White; the caller assigns colour separately).
func (p *Position) Set(sq Square, pt PieceType) {
	n := Bitboard(pt)
	s := uint(sq)
	p.X |= ((n >> 0) & 1) << s
	p.Y |= ((n >> 1) & 1) << s
	p.Z |= ((n >> 2) & 1) << s
}

// On returns the piece type occupying sq (None if empty). A Castle-rook
// square reports as Rook: callers that need castling rights use Extract
// with Castle explicitly, or inspect X/Y/Z directly.
func (p Position) On(sq Square) PieceType {
	s := uint(sq)
	var n uint8
	n |= uint8((p.X>>s)&1) << 0
	n |= uint8((p.Y>>s)&1) << 1
	n |= uint8((p.Z>>s)&1) << 2

	pt := PieceType(n)
	if pt == Castle {
		return Rook
	}
	return pt
}

// Rotated returns p with all four planes vertically flipped (byte-swapped),
// White included, so the same side still owns the White plane. ToFEN uses
// it to print a position from black's side; MakeMove does its own flip,
// which also hands the White plane to the other side.
func (p Position) Rotated() Position {
	return Position{
		X:     bitutil.Byteswap(p.X),
		Y:     bitutil.Byteswap(p.Y),
		Z:     bitutil.Byteswap(p.Z),
		White: bitutil.Byteswap(p.White),
	}
}

// EnPassant returns the single-bit bitboard of the en-passant target
// square, if any (the "colour bit with no occupying piece" encoding from
// spec §3.1), otherwise 0.
func (p Position) EnPassant() Bitboard { return p.White &^ p.Occupied() }

// Equal reports whether two positions have identical bitboard state.
func (p Position) Equal(o Position) bool {
	return p.X == o.X && p.Y == o.Y && p.Z == o.Z && p.White == o.White
}

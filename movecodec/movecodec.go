// Package movecodec implements the two compact on-disk move encodings
// from spec §4.6: a 1-byte index-of-list encoding that regenerates the
// legal move list to resolve each index, and a packed 16-bit encoding
// that's self-contained per move.
package movecodec

import (
	"chessdb/chess"
	"chessdb/pgn"
)

// ErrTooManyMoves is returned by EncodeIndexOfList if a position ever has
// 256 or more legal moves — never true for reachable chess positions
// (MaxMoves=160), but checked rather than assumed.
type ErrTooManyMoves struct{ Count int }

func (e ErrTooManyMoves) Error() string {
	return "movecodec: position has too many legal moves for a 1-byte index"
}

// ErrInvalidIndex is returned by DecodeIndexOfList when a byte doesn't
// index into the current position's legal move list.
type ErrInvalidIndex struct{ Index, NumMoves int }

func (e ErrInvalidIndex) Error() string {
	return "movecodec: move index out of range for current position"
}

// EncodeIndexOfList encodes moves as one byte per ply: the index of each
// move in the deterministic legal-move-list ordering produced by
// chess.LegalMoves at that point in the game (spec §4.6, §4.13 — this
// ordering is part of the on-disk format).
func EncodeIndexOfList(start chess.Position, moves []chess.Move) ([]byte, error) {
	out := make([]byte, 0, len(moves))
	pos := start

	for _, m := range moves {
		legal := chess.LegalMoves(pos)
		idx := -1
		for i := 0; i < legal.Len(); i++ {
			if legal.At(i) == m {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, ErrInvalidIndex{Index: -1, NumMoves: legal.Len()}
		}
		if legal.Len() > 255 {
			return nil, ErrTooManyMoves{Count: legal.Len()}
		}
		out = append(out, byte(idx))
		pos = chess.MakeMove(pos, m)
	}

	return out, nil
}

// DecodeIndexOfList decodes a byte-per-ply index-of-list move block,
// starting from start, returning the decoded moves and the final position.
func DecodeIndexOfList(start chess.Position, data []byte) ([]chess.Move, chess.Position, error) {
	moves := make([]chess.Move, 0, len(data))
	pos := start

	for _, b := range data {
		legal := chess.LegalMoves(pos)
		idx := int(b)
		if idx >= legal.Len() {
			return moves, pos, ErrInvalidIndex{Index: idx, NumMoves: legal.Len()}
		}
		m := legal.At(idx)
		moves = append(moves, m)
		pos = chess.MakeMove(pos, m)
	}

	return moves, pos, nil
}

// packPly packs one ply as src:6|dst:6|piece:3|castling:1. A ply with
// src==dst is the sentinel reserved to terminate a packed-16 move block;
// the GameResult rides in its piece field (spec §4.6).
func packPly(src, dst chess.Square, piece chess.PieceType, castling bool) uint16 {
	v := uint16(src) | uint16(dst)<<6 | uint16(piece)<<12
	if castling {
		v |= 1 << 15
	}
	return v
}

func unpackPly(v uint16) (src, dst chess.Square, piece chess.PieceType, castling bool) {
	src = chess.Square(v & 0x3f)
	dst = chess.Square((v >> 6) & 0x3f)
	piece = chess.PieceType((v >> 12) & 0x7)
	castling = v&(1<<15) != 0
	return
}

// EncodePacked16 encodes moves as one little-endian uint16 per ply
// (src:6|dst:6|piece:3|castling:1), followed by a src==dst sentinel
// carrying result in the piece field (spec §4.6).
func EncodePacked16(moves []chess.Move, result pgn.GameResult) []byte {
	out := make([]byte, 0, (len(moves)+1)*2)
	for _, m := range moves {
		v := packPly(m.Src, m.Dst, m.Piece, m.Castling)
		out = append(out, byte(v), byte(v>>8))
	}

	end := packPly(0, 0, chess.PieceType(result), false)
	out = append(out, byte(end), byte(end>>8))
	return out
}

// DecodePacked16 decodes a packed-16 move block up to and including its
// end-of-game sentinel, returning the moves and the GameResult carried by
// the sentinel.
func DecodePacked16(data []byte) ([]chess.Move, pgn.GameResult, error) {
	var moves []chess.Move

	for i := 0; i+1 < len(data); i += 2 {
		v := uint16(data[i]) | uint16(data[i+1])<<8
		src, dst, piece, castling := unpackPly(v)

		if src == dst {
			return moves, pgn.GameResult(piece), nil
		}
		moves = append(moves, chess.Move{Src: src, Dst: dst, Piece: piece, Castling: castling})
	}

	return moves, pgn.Unknown, &ErrTruncated{}
}

// ErrTruncated is returned by DecodePacked16 when the data ends without
// an end-of-game sentinel.
type ErrTruncated struct{}

func (e *ErrTruncated) Error() string { return "movecodec: packed-16 block missing end sentinel" }

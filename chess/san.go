package chess

import (
	"strings"

	"chessdb/bitutil"
)

// pieceCharsUpper mirrors pieceCharsLower's PieceType-indexed layout
// (None, Pawn, Knight, Bishop, Rook, Castle, Queen, King); the Pawn and
// Castle slots are unused placeholders since neither has a SAN piece letter.
const pieceCharsUpper = "//NBR/QK"

// ParseSAN parses a single Standard Algebraic Notation move against pos
// (already in canonical orientation). If black is true, rank digits are
// flipped (XOR 56) to match the canonical coordinate system, matching how
// the PGN parser feeds SAN for a black-to-move ply (spec §4.5).
func ParseSAN(san string, pos Position, black bool) (Move, error) {
	if len(san) == 0 {
		return Move{}, &ParseError{Err: InvalidInput, Context: san}
	}

	i := 0
	c := san[i]
	i++

	switch {
	case 'a' <= c && c <= 'h':
		file := FileA << (c - 'a')
		pieceType := Pawn
		srcs := pos.White & pos.Extract(Pawn) & file
		targets := ^pos.White

		if i >= len(san) {
			return Move{}, &ParseError{Err: InvalidInput, Context: san}
		}
		c = san[i]
		i++

		switch {
		case '1' <= c && c <= '8':
			rank := rankBB(c, black)
			targets &= rank
			targets &= file

			srcs &= Shift(targets, South) | Walk(targets&Rank4, South, South)

		case c == 'x':
			targets |= pos.White &^ pos.Occupied() // en passant target

			if i >= len(san) || !('a' <= san[i] && san[i] <= 'h') {
				return Move{}, &ParseError{Err: InvalidFile, Context: san}
			}
			targets &= FileA << (san[i] - 'a')
			i++

			if i >= len(san) || !('1' <= san[i] && san[i] <= '8') {
				return Move{}, &ParseError{Err: InvalidRank, Context: san}
			}
			targets &= rankBB(san[i], black)
			i++

			srcs &= Shift(targets, SouthWest) | Shift(targets, SouthEast)

		default:
			return Move{}, &ParseError{Err: InvalidInput, Context: san}
		}

		if i < len(san)-1 && san[i] == '=' {
			i++
			idx := strings.IndexByte(pieceCharsUpper, san[i])
			if idx < 0 {
				return Move{}, &ParseError{Err: InvalidPiece, Context: san}
			}
			pieceType = PieceType(idx)
		}

		if !bitutil.OnlyOne(srcs) || !bitutil.OnlyOne(targets) {
			return Move{}, &ParseError{Err: Ambiguous, Context: san}
		}

		src := Square(bitutil.LSB(srcs))
		dst := Square(bitutil.LSB(targets))
		return Move{Src: src, Dst: dst, Piece: pieceType}, nil

	default:
		if idx := strings.IndexByte(pieceCharsUpper, c); idx >= 0 {
			return parseSANPiece(san, i, PieceType(idx), pos, black)
		}

		if c == 'O' {
			switch san {
			case "O-O":
				return Move{Src: E1, Dst: G1, Piece: King, Castling: true}, nil
			case "O-O-O":
				return Move{Src: E1, Dst: C1, Piece: King, Castling: true}, nil
			}
		}

		return Move{}, &ParseError{Err: InvalidInput, Context: san}
	}
}

func parseSANPiece(san string, i int, pieceType PieceType, pos Position, black bool) (Move, error) {
	srcs := pos.White & pos.Extract(pieceType)
	fileFilter := ^Bitboard(0)
	rankFilter := ^Bitboard(0)
	targets := ^pos.White

	if i < len(san) && 'a' <= san[i] && san[i] <= 'h' {
		fileFilter = FileA << (san[i] - 'a')
		i++
	}
	if i < len(san) && '1' <= san[i] && san[i] <= '8' {
		rankFilter = rankBB(san[i], black)
		i++
	}
	if i < len(san) && san[i] == 'x' {
		targets &= pos.Occupied()
		i++
	}

	if i < len(san) && 'a' <= san[i] && san[i] <= 'h' {
		srcs &= fileFilter & rankFilter
		targets &= FileA << (san[i] - 'a')
		i++
		if i >= len(san) || !('1' <= san[i] && san[i] <= '8') {
			return Move{}, &ParseError{Err: InvalidRank, Context: san}
		}
		targets &= rankBB(san[i], black)
		i++
	} else {
		targets &= fileFilter & rankFilter
	}

	if !bitutil.OnlyOne(targets) {
		return Move{}, &ParseError{Err: Ambiguous, Context: san}
	}
	dst := Square(bitutil.LSB(targets))

	if bitutil.MoreThanOne(srcs) {
		srcs &= AttacksFrom(pieceType, dst, pos.Occupied())
	}
	if !bitutil.OnlyOne(srcs) {
		return Move{}, &ParseError{Err: Ambiguous, Context: san}
	}
	src := Square(bitutil.LSB(srcs))

	return Move{Src: src, Dst: dst, Piece: pieceType}, nil
}

// rankBB returns the rank bitboard for digit c ('1'..'8'), flipped to
// canonical orientation when black is to move.
func rankBB(c byte, black bool) Bitboard {
	r := uint(c-'1') * 8
	if black {
		r ^= 56
	}
	return Rank1 << r
}

// ToSAN renders move as Standard Algebraic Notation against pos, with the
// minimal disambiguation that uniquely identifies it among the position's
// legal moves (spec §4.5, Open Question (c)).
func ToSAN(move Move, pos Position, black bool) string {
	if move.Castling {
		if move.Dst == C1 {
			return "O-O-O"
		}
		return "O-O"
	}

	legal := LegalMoves(pos)
	movedPiece := pos.On(move.Src)
	promotion := movedPiece == Pawn && move.Piece != Pawn
	capture := pos.Occupied()&SquareBB(move.Dst) != 0 ||
		(movedPiece == Pawn && SquareBB(move.Dst) == pos.White&^pos.Occupied())

	toAlg := func(sq Square) (byte, byte) {
		r := uint(sq) / 8
		f := uint(sq) % 8
		if black {
			r ^= 7
		}
		return byte('a' + f), byte('1' + r)
	}

	dstFile, dstRank := toAlg(move.Dst)

	if movedPiece == Pawn {
		var sb strings.Builder
		if capture {
			srcFile, _ := toAlg(move.Src)
			sb.WriteByte(srcFile)
			sb.WriteByte('x')
		}
		sb.WriteByte(dstFile)
		sb.WriteByte(dstRank)
		if promotion {
			sb.WriteByte('=')
			sb.WriteByte(pieceCharsUpper[move.Piece])
		}
		return sb.String()
	}

	// find every other legal move of the same piece type landing on the
	// same destination, to compute minimal disambiguation.
	sameFile, sameRank, any := false, false, false
	for i := 0; i < legal.Len(); i++ {
		m := legal.At(i)
		if m.Piece != move.Piece || m.Dst != move.Dst || m.Src == move.Src || m.Castling {
			continue
		}
		any = true
		if m.Src%8 == move.Src%8 {
			sameFile = true
		}
		if m.Src/8 == move.Src/8 {
			sameRank = true
		}
	}

	var sb strings.Builder
	sb.WriteByte(pieceCharsUpper[move.Piece])

	srcFile, srcRank := toAlg(move.Src)
	switch {
	case !any:
		// no disambiguation needed
	case !sameFile:
		sb.WriteByte(srcFile)
	case !sameRank:
		sb.WriteByte(srcRank)
	default:
		sb.WriteByte(srcFile)
		sb.WriteByte(srcRank)
	}

	if capture {
		sb.WriteByte('x')
	}
	sb.WriteByte(dstFile)
	sb.WriteByte(dstRank)

	return sb.String()
}

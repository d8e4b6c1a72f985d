package chess

import (
	"strings"
	"unicode"

	"chessdb/bitutil"
)

const pieceCharsLower = "/pnbr/qk"

// StartFEN is the standard chess starting position in FEN notation.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// FromFEN parses a Forsyth-Edwards Notation record into a canonical-form
// Position. Side-to-move, castling, and en-passant are folded into the
// canonical encoding: if black is to move, the whole position is rotated
// so the engine always sees "white to move" (spec §4.4).
func FromFEN(fen string) (Position, error) {
	var pos Position
	var white, black Bitboard

	i := 0
	sq := int(A8)

	// piece placement
	for {
		if i >= len(fen) {
			return Position{}, &ParseError{Err: IncompletePiecePlacement, Context: getContext(fen, i, 8)}
		}
		c := fen[i]

		idx := strings.IndexByte(pieceCharsLower, byte(unicode.ToLower(rune(c))))

		switch {
		case '1' <= c && c <= '8':
			sq += int(c-'0') * int(East)
		case c == '/':
			sq += int(South) * 2
		case idx >= 0:
			pos.Set(Square(sq), PieceType(idx))
			if unicode.IsUpper(rune(c)) {
				white |= SquareBB(Square(sq))
			} else {
				black |= SquareBB(Square(sq))
			}
			sq++
		case c == ' ':
			goto donePlacement
		default:
			return Position{}, &ParseError{Err: UnexpectedInPiecePlacement, Context: getContext(fen, i, 8)}
		}
		i++
	}

donePlacement:
	if sq+int(South) != int(A1) {
		return Position{}, &ParseError{Err: IncompletePiecePlacement, Context: getContext(fen, i, 8)}
	}

	i++
	if i >= len(fen) {
		return Position{}, &ParseError{Err: InvalidSideToMove, Context: getContext(fen, i, 8)}
	}
	whiteToMove := fen[i] == 'w'
	if !whiteToMove && fen[i] != 'b' {
		return Position{}, &ParseError{Err: InvalidSideToMove, Context: getContext(fen, i, 8)}
	}

	i += 2
	if i >= len(fen) {
		return Position{}, &ParseError{Err: InvalidCastling, Context: getContext(fen, i, 8)}
	}
	if fen[i] != '-' {
		accept := func(d byte, corner Square) {
			if i < len(fen) && fen[i] == d {
				pos.X ^= SquareBB(corner)
				i++
			}
		}
		accept('K', H1)
		accept('Q', A1)
		accept('k', H8)
		accept('q', A8)

		if i >= len(fen) || fen[i] != ' ' {
			return Position{}, &ParseError{Err: InvalidCastling, Context: getContext(fen, i, 8)}
		}
	} else {
		i++
	}

	i++
	var ep Bitboard
	if i < len(fen) && fen[i] != '-' {
		if i+1 >= len(fen) {
			return Position{}, &ParseError{Err: InvalidEPSquare, Context: getContext(fen, i, 8)}
		}
		file := fen[i] - 'a'
		i++
		rank := fen[i] - '1'
		if file > 7 || rank > 7 {
			return Position{}, &ParseError{Err: InvalidEPSquare, Context: getContext(fen, i, 8)}
		}
		ep = SquareBB(Square(8*rank + file))
	} else if i < len(fen) {
		i++ // eat '-'
	}

	if whiteToMove {
		pos.White = white | ep
	} else {
		pos.X = bitutil.Byteswap(pos.X)
		pos.Y = bitutil.Byteswap(pos.Y)
		pos.Z = bitutil.Byteswap(pos.Z)
		pos.White = bitutil.Byteswap(black | ep)
	}

	return pos, nil
}

// ToFEN renders p as a FEN record with the given side as the one to move.
// Pass black=false to print from white's perspective (p as-is) or
// black=true to print p rotated, i.e. as black's canonical view.
func (p Position) ToFEN(black bool) string {
	pos := p
	if black {
		pos = p.Rotated()
	}

	var sb strings.Builder
	empty := 0
	flushEmpty := func() {
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
			empty = 0
		}
	}

	for s := int(A8); ; s++ {
		sq := Square(s)
		pt := pos.On(sq)

		if pt == None {
			empty++
		} else {
			flushEmpty()
			c := pieceCharsLower[pt]
			white := pos.White
			if black {
				white = ^pos.White
			}
			if white&SquareBB(sq) != 0 {
				c = byte(unicode.ToUpper(rune(c)))
			}
			sb.WriteByte(c)
		}

		if s%8 == 7 {
			flushEmpty()
			if s == int(H1) {
				break
			}
			s += 2 * int(South)
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if black {
		sb.WriteByte('b')
	} else {
		sb.WriteByte('w')
	}
	sb.WriteByte(' ')

	castling := pos.Extract(Castle)
	any := false
	if castling&SquareBB(H1) != 0 {
		sb.WriteByte('K')
		any = true
	}
	if castling&SquareBB(A1) != 0 {
		sb.WriteByte('Q')
		any = true
	}
	if castling&SquareBB(H8) != 0 {
		sb.WriteByte('k')
		any = true
	}
	if castling&SquareBB(A8) != 0 {
		sb.WriteByte('q')
		any = true
	}
	if !any {
		sb.WriteByte('-')
	}

	sb.WriteByte(' ')
	if ep := pos.White &^ pos.Occupied(); ep != 0 {
		s := bitutil.LSB(ep)
		sb.WriteByte(byte('a' + s%8))
		sb.WriteByte(byte('1' + s/8))
	} else {
		sb.WriteByte('-')
	}

	return sb.String()
}

package chess

import "fmt"

// Move is a single chess move: source and destination square, the moved
// piece type (or the promoted-to type, for pawn promotions), and whether
// this is a castling move. Source/destination are always expressed in
// canonical (white-to-move) coordinates, as produced by movegen against a
// Position in canonical form.
type Move struct {
	Src, Dst Square
	Piece    PieceType
	Castling bool
}

// String renders a move as long algebraic coordinates (e.g. "e2e4"),
// ignoring colour — purely a debugging aid, not the SAN encoder.
func (m Move) String() string {
	return fmt.Sprintf("%c%c%c%c",
		'a'+(m.Src%8), '1'+(m.Src/8),
		'a'+(m.Dst%8), '1'+(m.Dst/8))
}

// MaxMoves is a safe upper bound on the number of legal moves in any
// reachable chess position.
const MaxMoves = 160

// MoveList is a bounded, stack-scoped sequence of moves for one ply
// (spec §3.3). Backed by a fixed array so perft and move generation never
// touch the heap.
type MoveList struct {
	moves [MaxMoves]Move
	n     int
}

// Len returns the number of moves currently in the list.
func (l *MoveList) Len() int { return l.n }

// At returns the i'th move.
func (l *MoveList) At(i int) Move { return l.moves[i] }

// Slice returns the populated portion of the list as a slice (borrows the
// list's backing array; do not retain past the list's scope).
func (l *MoveList) Slice() []Move { return l.moves[:l.n] }

func (l *MoveList) append(m Move) { l.moves[l.n] = m; l.n++ }

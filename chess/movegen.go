package chess

import "chessdb/bitutil"

// appendPartialPawnMoves emits one move (or four, for promotion) per set
// bit of mask, reconstructing the source square from dst and the shift
// that produced it.
func appendPartialPawnMoves(moves *MoveList, mask Bitboard, shift Direction, promotion bool) {
	for mask != 0 {
		dst := Square(bitutil.LSB(mask))
		src := Square(int(dst) - int(shift))

		if promotion {
			for _, pt := range [...]PieceType{Knight, Bishop, Rook, Queen} {
				moves.append(Move{Src: src, Dst: dst, Piece: pt})
			}
		} else {
			moves.append(Move{Src: src, Dst: dst, Piece: Pawn})
		}

		mask &= mask - 1
	}
}

// appendPawnMoves generates all pawn pushes, captures, and en-passant
// captures, including the pin and check-target restrictions and the
// horizontal-pin en-passant edge case from spec §4.3 step 7.
func appendPawnMoves(moves *MoveList, pos Position, targets, pinned Bitboard, ksq Square) {
	pawns := pos.Extract(Pawn) & pos.White
	occ := pos.Occupied()
	enemy := occ &^ pos.White

	enPassant := pos.White &^ occ
	candidates := Shift(ShiftEW(enPassant), South) & pawns

	// Suppress en-passant if removing both pawns exposes the king to a
	// horizontal check along the 5th rank (the king can only be on rank 5
	// for this to matter, since that's the only rank a capturing pawn and
	// its victim can share with the king on the same rank post-capture).
	if ksq>>3 == 4 && bitutil.Popcount(candidates) == 1 {
		rooks := pos.Extract(Rook) &^ pos.White
		queens := pos.Extract(Queen) &^ pos.White

		candidates |= Shift(enPassant, South)
		rooks |= queens

		if AttacksFrom(Rook, ksq, (occ|enPassant)&^candidates)&rooks != 0 {
			enPassant = 0
		}
	}

	// allow en-passant if the pawn is the (only) checking piece
	targets |= enPassant & Shift(targets, North)
	enemy |= enPassant

	pinnedPawns := pawns & pinned
	pawns &^= pinned

	singleMove := Shift(pawns, North) &^ occ
	doubleMove := Shift(singleMove&Rank3, North) &^ occ

	pinnedSingleMove := Shift(pinnedPawns, North) & FileBB(ksq) &^ occ
	pinnedDoubleMove := Shift(pinnedSingleMove&Rank3, North) &^ occ

	singleMove &= targets
	doubleMove &= targets
	pinnedSingleMove &= targets
	pinnedDoubleMove &= targets

	// pinned orthogonal pawns cannot capture
	pinnedPawns &^= AttacksFrom(Rook, ksq, 0)

	eastCapture := Shift(pawns, NorthEast) & enemy & targets
	westCapture := Shift(pawns, NorthWest) & enemy & targets

	pinnedEastCapture := Shift(pinnedPawns, NorthEast) & enemy & targets
	pinnedWestCapture := Shift(pinnedPawns, NorthWest) & enemy & targets

	// pinned diagonal captures must stay aligned with the king
	pinnedEastCapture &= AttacksFrom(Bishop, ksq, 0)
	pinnedWestCapture &= AttacksFrom(Bishop, ksq, 0)

	singleMove |= pinnedSingleMove
	doubleMove |= pinnedDoubleMove
	eastCapture |= pinnedEastCapture
	westCapture |= pinnedWestCapture

	appendPartialPawnMoves(moves, singleMove&Rank8, North, true)
	appendPartialPawnMoves(moves, eastCapture&Rank8, NorthEast, true)
	appendPartialPawnMoves(moves, westCapture&Rank8, NorthWest, true)

	appendPartialPawnMoves(moves, singleMove&^Rank8, North, false)
	appendPartialPawnMoves(moves, doubleMove, NorthNorth, false)
	appendPartialPawnMoves(moves, eastCapture&^Rank8, NorthEast, false)
	appendPartialPawnMoves(moves, westCapture&^Rank8, NorthWest, false)
}

// appendPieceMoves generates moves for knights, bishops, rooks, and queens.
// filter selects which of our pieces are considered (the pinned set, or its
// complement). When pinned is true, destinations are further masked to the
// line through the king (pinned sliders may only slide along their pin ray).
func appendPieceMoves(moves *MoveList, pieceType PieceType, pos Position, targets, filter Bitboard, pinned bool, ksq Square) {
	pieces := pos.Extract(pieceType) & pos.White & filter
	occ := pos.Occupied()

	for pieces != 0 {
		src := Square(bitutil.LSB(pieces))
		attacks := AttacksFrom(pieceType, src, occ) & targets

		if pinned {
			attacks &= LineConnecting(ksq, src)
		}

		for attacks != 0 {
			dst := Square(bitutil.LSB(attacks))
			moves.append(Move{Src: src, Dst: dst, Piece: pieceType})
			attacks &= attacks - 1
		}

		pieces &= pieces - 1
	}
}

// appendKingMoves generates king steps (filtered against squares attacked
// by the enemy) and castling (filtered against both occupancy and attacks
// on the traversed squares).
func appendKingMoves(moves *MoveList, pos Position, attacked Bitboard, ksq Square) {
	occ := pos.Occupied()
	attacks := AttacksFrom(King, ksq, 0) &^ attacked &^ (pos.White & occ)

	for attacks != 0 {
		dst := Square(bitutil.LSB(attacks))
		moves.append(Move{Src: ksq, Dst: dst, Piece: King})
		attacks &= attacks - 1
	}

	castle := pos.Extract(Castle) & Rank1
	const qsideOcc, qsideAttk, ksideOcc, ksideAttk Bitboard = 14, 28, 96, 112

	if castle&SquareBB(A1) != 0 && occ&qsideOcc == 0 && attacked&qsideAttk == 0 {
		moves.append(Move{Src: E1, Dst: C1, Piece: King, Castling: true})
	}
	if castle&SquareBB(H1) != 0 && occ&ksideOcc == 0 && attacked&ksideAttk == 0 {
		moves.append(Move{Src: E1, Dst: G1, Piece: King, Castling: true})
	}
}

// EnemyAttacks returns every square attacked by the side not to move (with
// our own king removed from occupancy, so sliders see through it), and sets
// checkers to the set of enemy pieces directly attacking our king.
func EnemyAttacks(pos Position) (attacked, checkers Bitboard) {
	pawns := pos.Extract(Pawn) &^ pos.White
	knights := pos.Extract(Knight) &^ pos.White
	bishops := pos.Extract(Bishop) &^ pos.White
	rooks := pos.Extract(Rook) &^ pos.White
	queens := pos.Extract(Queen) &^ pos.White
	king := pos.Extract(King) &^ pos.White

	bishops |= queens
	rooks |= queens

	ourKing := pos.Extract(King) & pos.White
	occ := pos.Occupied() &^ ourKing

	attacked |= Shift(ShiftEW(pawns), South)
	attacked |= AttacksFrom(King, Square(bitutil.LSB(king)), 0)

	checkers |= pawns & Shift(ShiftEW(ourKing), North)
	checkers |= knights & AttacksFrom(Knight, Square(bitutil.LSB(ourKing)), 0)

	for knights != 0 {
		attacked |= AttacksFrom(Knight, Square(bitutil.LSB(knights)), 0)
		knights &= knights - 1
	}

	for bishops != 0 {
		sq := Square(bitutil.LSB(bishops))
		attacks := AttacksFrom(Bishop, sq, occ)
		if attacks&ourKing != 0 {
			checkers |= bishops & -bishops
		}
		attacked |= attacks
		bishops &= bishops - 1
	}

	for rooks != 0 {
		sq := Square(bitutil.LSB(rooks))
		attacks := AttacksFrom(Rook, sq, occ)
		if attacks&ourKing != 0 {
			checkers |= rooks & -rooks
		}
		attacked |= attacks
		rooks &= rooks - 1
	}

	return attacked, checkers
}

// PinnedPieces returns the bitboard of our pieces pinned to our king by an
// enemy bishop, rook, or queen (spec §4.3 step 3).
func PinnedPieces(pos Position, ksq Square) Bitboard {
	occ := pos.Occupied()
	bishops := pos.Extract(Bishop) &^ pos.White
	rooks := pos.Extract(Rook) &^ pos.White
	queens := pos.Extract(Queen) &^ pos.White

	bishops |= queens
	rooks |= queens

	bishops &= AttacksFrom(Bishop, ksq, bishops)
	rooks &= AttacksFrom(Rook, ksq, rooks)

	var pinned Bitboard
	candidates := bishops | rooks

	for candidates != 0 {
		line := LineBetween(ksq, Square(bitutil.LSB(candidates))) & occ
		if bitutil.Popcount(line) == 1 {
			pinned |= line
		}
		candidates &= candidates - 1
	}

	return pinned
}

// LegalMoves enumerates every legal move of the side to move in pos. The
// generation order (pinned sliders, pawns, non-pinned knights, non-pinned
// sliders, king) is part of the on-disk move codec's index-of-list format
// (spec §4.6) and must not change independently of the codec.
func LegalMoves(pos Position) MoveList {
	moves, _, _ := LegalMovesWith(pos)
	return moves
}

// LegalMovesWith is LegalMoves but also returns the checkers and pinned
// bitboards computed along the way, for callers (like SAN disambiguation)
// that need them without recomputing.
func LegalMovesWith(pos Position) (moves MoveList, checkers, pinned Bitboard) {
	ksq := Square(bitutil.LSB(pos.Extract(King) & pos.White))

	pinned = PinnedPieces(pos, ksq)
	attacked, checkers := EnemyAttacks(pos)
	targets := ^(pos.Occupied() & pos.White)

	if checkers != 0 {
		if bitutil.OnlyOne(checkers) {
			targets &= checkers | LineBetween(ksq, Square(bitutil.LSB(checkers)))
		} else {
			targets = 0
		}
	}

	// pinned knights can never move
	appendPieceMoves(&moves, Bishop, pos, targets, pinned, true, ksq)
	appendPieceMoves(&moves, Rook, pos, targets, pinned, true, ksq)
	appendPieceMoves(&moves, Queen, pos, targets, pinned, true, ksq)

	appendPawnMoves(&moves, pos, targets, pinned, ksq)
	appendPieceMoves(&moves, Knight, pos, targets, ^pinned, false, ksq)
	appendPieceMoves(&moves, Bishop, pos, targets, ^pinned, false, ksq)
	appendPieceMoves(&moves, Rook, pos, targets, ^pinned, false, ksq)
	appendPieceMoves(&moves, Queen, pos, targets, ^pinned, false, ksq)
	appendKingMoves(&moves, pos, attacked, ksq)

	return moves, checkers, pinned
}

// MakeMove applies move to pos and returns the resulting position, already
// rotated back into canonical (white-to-move) form for the next ply.
func MakeMove(pos Position, move Move) Position {
	clear := SquareBB(move.Src) | SquareBB(move.Dst)

	occ := pos.Occupied()
	enPassant := pos.White &^ occ

	if move.Piece == Pawn {
		clear |= Shift(enPassant&clear, South)
	}

	if move.Castling {
		if move.Dst < move.Src {
			clear |= SquareBB(A1)
		} else {
			clear |= SquareBB(H1)
		}
	}

	pos.X &^= clear
	pos.Y &^= clear
	pos.Z &^= clear
	pos.White &^= clear

	pos.Set(move.Dst, move.Piece)
	pos.White |= SquareBB(move.Dst)

	if move.Castling {
		mid := Square((int(move.Dst) + int(move.Src)) >> 1)
		pos.Set(mid, Rook)
		pos.White |= SquareBB(mid)
	}

	if move.Piece == King {
		pos.X ^= pos.Extract(Castle) & Rank1 // remove castling rights
	}

	black := pos.Occupied() &^ pos.White

	if move.Piece == Pawn && int(move.Dst)-int(move.Src) == int(NorthNorth) {
		black |= 256 << uint(move.Src)
	}

	return Position{
		X:     bitutil.Byteswap(pos.X),
		Y:     bitutil.Byteswap(pos.Y),
		Z:     bitutil.Byteswap(pos.Z),
		White: bitutil.Byteswap(black),
	}
}

// Perft counts the exact number of leaf nodes in the fully-legal move tree
// rooted at pos to the given depth; the oracle for spec §8's perft
// identities.
func Perft(pos Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	moves := LegalMoves(pos)
	if depth == 1 {
		return uint64(moves.Len())
	}

	var nodes uint64
	for i := 0; i < moves.Len(); i++ {
		nodes += Perft(MakeMove(pos, moves.At(i)), depth-1)
	}
	return nodes
}

package chess

import (
	"strings"
	"testing"
)

// ToFEN emits the four position fields only (no halfmove clock or fullmove
// number), so each case's expected output is its first four fields.
func TestFENRoundTrip(t *testing.T) {
	cases := []string{
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR b KQkq - 0 1",
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	}

	for _, fen := range cases {
		pos, err := FromFEN(fen)
		if err != nil {
			t.Fatalf("FromFEN(%q): %v", fen, err)
		}
		black := fen[strIndexSpace(fen)+1] == 'b'
		got := pos.ToFEN(black)
		want := strings.Join(strings.Fields(fen)[:4], " ")
		if got != want {
			t.Errorf("round trip mismatch:\n got  %q\n want %q", got, want)
		}
	}
}

func strIndexSpace(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' {
			return i
		}
	}
	return -1
}

func TestFENStartposMatchesConstant(t *testing.T) {
	pos, err := FromFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	if !pos.Equal(Startpos) {
		t.Errorf("FromFEN(startpos FEN) = %+v, want %+v", pos, Startpos)
	}
}

func TestFENInvalidPiecePlacement(t *testing.T) {
	_, err := FromFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBN w KQkq - 0 1")
	if err == nil {
		t.Fatal("expected error for incomplete piece placement")
	}
}

func TestFENInvalidSideToMove(t *testing.T) {
	_, err := FromFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1")
	if err == nil {
		t.Fatal("expected error for invalid side to move")
	}
}

func TestFENEnPassantSquare(t *testing.T) {
	pos, err := FromFEN("rnbqkbnr/ppp1pppp/8/3pP3/8/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 1")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	ep := pos.EnPassant()
	if bitsPopcount(ep) != 1 {
		t.Fatalf("expected exactly one en-passant marker bit, got %d", bitsPopcount(ep))
	}
}

func bitsPopcount(x Bitboard) int {
	n := 0
	for x != 0 {
		n++
		x &= x - 1
	}
	return n
}

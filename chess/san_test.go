package chess

import "testing"

func TestParseSANBasicPawnMove(t *testing.T) {
	move, err := ParseSAN("e4", Startpos, false)
	if err != nil {
		t.Fatalf("ParseSAN: %v", err)
	}
	want := Move{Src: Square(12), Dst: Square(28), Piece: Pawn}
	if move != want {
		t.Errorf("got %+v, want %+v", move, want)
	}
}

func TestParseSANKnightMove(t *testing.T) {
	move, err := ParseSAN("Nf3", Startpos, false)
	if err != nil {
		t.Fatalf("ParseSAN: %v", err)
	}
	if move.Piece != Knight || move.Dst != Square(21) {
		t.Errorf("got %+v", move)
	}
}

func TestParseSANCastling(t *testing.T) {
	pos, err := FromFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	move, err := ParseSAN("O-O", pos, false)
	if err != nil {
		t.Fatalf("ParseSAN: %v", err)
	}
	if !move.Castling || move.Dst != G1 {
		t.Errorf("got %+v", move)
	}
}

func TestSANRoundTripStartpos(t *testing.T) {
	legal := LegalMoves(Startpos)
	for i := 0; i < legal.Len(); i++ {
		m := legal.At(i)
		san := ToSAN(m, Startpos, false)
		parsed, err := ParseSAN(san, Startpos, false)
		if err != nil {
			t.Fatalf("ParseSAN(%q): %v", san, err)
		}
		if parsed != m {
			t.Errorf("round trip mismatch for %+v: SAN=%q parsed=%+v", m, san, parsed)
		}
	}
}

func TestSANRoundTripKiwipete(t *testing.T) {
	pos, err := FromFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	legal := LegalMoves(pos)
	for i := 0; i < legal.Len(); i++ {
		m := legal.At(i)
		san := ToSAN(m, pos, false)
		parsed, err := ParseSAN(san, pos, false)
		if err != nil {
			t.Fatalf("ParseSAN(%q) from %+v: %v", san, m, err)
		}
		if parsed != m {
			t.Errorf("round trip mismatch for %+v: SAN=%q parsed=%+v", m, san, parsed)
		}
	}
}

func TestSANPromotion(t *testing.T) {
	pos, err := FromFEN("n1n5/PPPk4/8/8/8/8/4Kppp/5N1N w - - 0 1")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	legal := LegalMoves(pos)
	found := false
	for i := 0; i < legal.Len(); i++ {
		m := legal.At(i)
		if m.Piece == Queen && pos.On(m.Src) == Pawn {
			found = true
			san := ToSAN(m, pos, false)
			if san[len(san)-2] != '=' || san[len(san)-1] != 'Q' {
				t.Errorf("expected promotion suffix in %q", san)
			}
			parsed, err := ParseSAN(san, pos, false)
			if err != nil {
				t.Fatalf("ParseSAN(%q): %v", san, err)
			}
			if parsed != m {
				t.Errorf("round trip mismatch: %+v vs %+v", parsed, m)
			}
		}
	}
	if !found {
		t.Fatal("expected at least one queen-promotion move")
	}
}

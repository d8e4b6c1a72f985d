package chess

import "testing"

// perft identities from well-known reference positions (CPW perft suite).
func TestPerftStartpos(t *testing.T) {
	want := []uint64{1, 20, 400, 8902, 197281, 4865609}
	pos := Startpos
	for depth, w := range want {
		if got := Perft(pos, depth); got != w {
			t.Errorf("perft(startpos, %d) = %d, want %d", depth, got, w)
		}
	}
}

func TestPerftKiwipete(t *testing.T) {
	pos, err := FromFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	want := []uint64{1, 48, 2039, 97862}
	for depth, w := range want {
		if got := Perft(pos, depth); got != w {
			t.Errorf("perft(kiwipete, %d) = %d, want %d", depth, got, w)
		}
	}
}

func TestPerftPosition3(t *testing.T) {
	pos, err := FromFEN("8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	want := []uint64{1, 14, 191, 2812, 43238, 674624}
	for depth, w := range want {
		if got := Perft(pos, depth); got != w {
			t.Errorf("perft(pos3, %d) = %d, want %d", depth, got, w)
		}
	}
}

func TestPerftPosition4(t *testing.T) {
	pos, err := FromFEN("r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	want := []uint64{1, 6, 264, 9467, 422333}
	for depth, w := range want {
		if got := Perft(pos, depth); got != w {
			t.Errorf("perft(pos4, %d) = %d, want %d", depth, got, w)
		}
	}
}

func TestPerftPosition5(t *testing.T) {
	pos, err := FromFEN("rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	want := []uint64{1, 44, 1486, 62379}
	for depth, w := range want {
		if got := Perft(pos, depth); got != w {
			t.Errorf("perft(pos5, %d) = %d, want %d", depth, got, w)
		}
	}
}

func TestPerftPosition6(t *testing.T) {
	pos, err := FromFEN("r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	want := []uint64{1, 46, 2079, 89890}
	for depth, w := range want {
		if got := Perft(pos, depth); got != w {
			t.Errorf("perft(pos6, %d) = %d, want %d", depth, got, w)
		}
	}
}

func TestPerftPromotions(t *testing.T) {
	pos, err := FromFEN("n1n5/PPPk4/8/8/8/8/4Kppp/5N1N b - - 0 1")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	want := []uint64{1, 24, 496, 9483, 182838}
	for depth, w := range want {
		if got := Perft(pos, depth); got != w {
			t.Errorf("perft(promotions, %d) = %d, want %d", depth, got, w)
		}
	}
}

package movecodec

import (
	"testing"

	"chessdb/chess"
	"chessdb/pgn"
)

func playOpening(t *testing.T) (chess.Position, []chess.Move) {
	t.Helper()
	pos := chess.Startpos
	var moves []chess.Move

	for _, san := range []string{"e4", "e5", "Nf3", "Nc6", "Bb5"} {
		black := len(moves)%2 == 1
		m, err := chess.ParseSAN(san, pos, black)
		if err != nil {
			t.Fatalf("ParseSAN(%q): %v", san, err)
		}
		moves = append(moves, m)
		pos = chess.MakeMove(pos, m)
	}

	return pos, moves
}

func TestIndexOfListRoundTrip(t *testing.T) {
	_, moves := playOpening(t)

	encoded, err := EncodeIndexOfList(chess.Startpos, moves)
	if err != nil {
		t.Fatalf("EncodeIndexOfList: %v", err)
	}
	if len(encoded) != len(moves) {
		t.Fatalf("encoded length = %d, want %d", len(encoded), len(moves))
	}

	decoded, _, err := DecodeIndexOfList(chess.Startpos, encoded)
	if err != nil {
		t.Fatalf("DecodeIndexOfList: %v", err)
	}
	if len(decoded) != len(moves) {
		t.Fatalf("decoded %d moves, want %d", len(decoded), len(moves))
	}
	for i := range moves {
		if decoded[i] != moves[i] {
			t.Errorf("move %d: got %+v, want %+v", i, decoded[i], moves[i])
		}
	}
}

func TestPacked16RoundTrip(t *testing.T) {
	_, moves := playOpening(t)

	encoded := EncodePacked16(moves, pgn.White)
	decoded, result, err := DecodePacked16(encoded)
	if err != nil {
		t.Fatalf("DecodePacked16: %v", err)
	}
	if result != pgn.White {
		t.Errorf("result = %v, want White", result)
	}
	if len(decoded) != len(moves) {
		t.Fatalf("decoded %d moves, want %d", len(decoded), len(moves))
	}
	for i := range moves {
		if decoded[i] != moves[i] {
			t.Errorf("move %d: got %+v, want %+v", i, decoded[i], moves[i])
		}
	}
}

func TestPacked16TruncatedBlock(t *testing.T) {
	_, err := func() ([]chess.Move, error) {
		moves, _, err := DecodePacked16([]byte{0x01, 0x02})
		return moves, err
	}()
	if err == nil {
		t.Fatal("expected error for a block missing its end sentinel")
	}
}

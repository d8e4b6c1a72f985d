package chessdb

import "testing"

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{
		Version:      0,
		Name:         "test-db",
		DataLength:   4096,
		DataOffset:   uint64(HeaderSize),
		DataChecksum: 0xdeadbeef,
		GameCount:    42,
	}

	buf := make([]byte, HeaderSize)
	h.Serialise(buf)

	got, err := DeserialiseHeader(buf)
	if err != nil {
		t.Fatalf("DeserialiseHeader: %v", err)
	}

	if got.Name != h.Name || got.DataLength != h.DataLength || got.DataOffset != h.DataOffset ||
		got.DataChecksum != h.DataChecksum || got.GameCount != h.GameCount || got.Version != h.Version {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, h)
	}
	if got.Checksum == 0 {
		t.Fatalf("expected a non-zero self-checksum to be computed")
	}
}

func TestHeaderBadMagic(t *testing.T) {
	buf := make([]byte, HeaderSize)
	copy(buf, "not-a-db!!")

	if _, err := DeserialiseHeader(buf); err == nil {
		t.Fatalf("expected an error for a bad magic")
	}
}

func TestHeaderBadChecksum(t *testing.T) {
	h := Header{Name: "x"}
	buf := make([]byte, HeaderSize)
	h.Serialise(buf)

	buf[len(Magic)+8] ^= 0xff // flip a byte inside the checksummed region

	if _, err := DeserialiseHeader(buf); err == nil {
		t.Fatalf("expected a checksum-mismatch error")
	}
}

func TestHeaderIsPGN(t *testing.T) {
	h := Header{Version: VersionPGN}
	if !h.IsPGN() {
		t.Fatalf("expected IsPGN true for VersionPGN")
	}
	h.Version = 0
	if h.IsPGN() {
		t.Fatalf("expected IsPGN false for version 0")
	}
}

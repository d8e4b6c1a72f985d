package chessdb

import (
	"chessdb/chess"
	"chessdb/dbio"
	"chessdb/movecodec"
	"chessdb/pgn"
)

// Record is the decoded form of one game slot: its tags, starting
// position, the index-of-list-encoded moves, and any per-ply comments or
// NAGs (spec §3.5, §3.7, SPEC_FULL.md Open Questions (a)/(b)).
type Record struct {
	Tags     []pgn.Tag
	Start    chess.Position
	Moves    []chess.Move
	Result   pgn.GameResult
	Comments map[int]string
	NAGs     map[int][]uint8
}

func appendULEB128(buf []byte, v uint64) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		buf = append(buf, b)
		if v == 0 {
			break
		}
	}
	return buf
}

func appendString(buf []byte, s string) []byte {
	buf = appendULEB128(buf, uint64(len(s)))
	return append(buf, s...)
}

func encodeTagBlock(tags []pgn.Tag) []byte {
	var buf []byte
	for _, t := range tags {
		id := pgn.TagIDFor(t.Name)
		buf = append(buf, byte(id))
		if id == pgn.TagGeneric {
			buf = appendString(buf, t.Name)
		}
		buf = appendString(buf, t.Value)
	}
	buf = append(buf, byte(pgn.TagTerminator))
	return buf
}

var tagNameByID = map[pgn.TagID]string{
	pgn.TagEvent:    "Event",
	pgn.TagSite:     "Site",
	pgn.TagDate:     "Date",
	pgn.TagRound:    "Round",
	pgn.TagWhite:    "White",
	pgn.TagBlack:    "Black",
	pgn.TagResult:   "Result",
	pgn.TagWhiteElo: "WhiteElo",
	pgn.TagBlackElo: "BlackElo",
	pgn.TagECO:      "ECO",
}

func decodeTagBlock(buf *dbio.Buffer) []pgn.Tag {
	var tags []pgn.Tag
	for {
		id := pgn.TagID(buf.ReadByte())
		if id == pgn.TagTerminator {
			break
		}
		name := tagNameByID[id]
		if id == pgn.TagGeneric {
			name = buf.ReadString()
		}
		value := buf.ReadString()
		tags = append(tags, pgn.Tag{Name: name, Value: value})
	}
	return tags
}

// EncodeRecord renders rec as the byte sequence stored in one database
// slot: format byte, optional tag block, move block, optional NAGs,
// optional comments (spec §3.5 byte table).
func EncodeRecord(rec *Record) ([]byte, error) {
	moveBlock, err := movecodec.EncodeIndexOfList(rec.Start, rec.Moves)
	if err != nil {
		return nil, err
	}

	// A real game's format byte must never come out as FormatEmpty (0):
	// that value is reserved for free slots, and Reindex tells slots apart
	// purely by this byte. A tagless game still carries an (empty) tag
	// block so its format byte is always at least FormatHasTagData.
	format := FormatHasTagData
	if len(rec.NAGs) > 0 {
		format |= FormatHasNAGs
	}
	if len(rec.Comments) > 0 {
		format |= FormatHasComments
	}

	out := []byte{byte(format)}

	if format&FormatHasTagData != 0 {
		tagBlock := encodeTagBlock(rec.Tags)
		out = append(out, byte(len(tagBlock)), byte(len(tagBlock)>>8))
		out = append(out, tagBlock...)
	}

	out = append(out, byte(len(moveBlock)), byte(len(moveBlock)>>8))
	out = append(out, moveBlock...)

	if format&FormatHasNAGs != 0 {
		plies := sortedKeysUint8(rec.NAGs)
		var buf []byte
		buf = appendULEB128(buf, uint64(len(plies)))
		for _, p := range plies {
			buf = appendULEB128(buf, uint64(p))
			nags := rec.NAGs[p]
			buf = appendULEB128(buf, uint64(len(nags)))
			for _, n := range nags {
				buf = appendULEB128(buf, uint64(n))
			}
		}
		out = append(out, buf...)
	}

	if format&FormatHasComments != 0 {
		plies := sortedKeysString(rec.Comments)
		var buf []byte
		buf = appendULEB128(buf, uint64(len(plies)))
		for _, p := range plies {
			buf = appendULEB128(buf, uint64(p))
			buf = appendString(buf, rec.Comments[p])
		}
		out = append(out, buf...)
	}

	return out, nil
}

func sortedKeysUint8(m map[int][]uint8) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	insertionSort(keys)
	return keys
}

func sortedKeysString(m map[int]string) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	insertionSort(keys)
	return keys
}

func insertionSort(keys []int) {
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
}

// DecodeRecord parses a slot's bytes back into a Record. The database
// doesn't store each game's starting position separately, so the move block
// is decoded from the position given by the record's FEN tag when it has
// one that parses, and from start otherwise — the same rule cmd/cdb
// ingest-pgn uses (SPEC_FULL.md Open Question (a)).
func DecodeRecord(data []byte, start chess.Position) (*Record, error) {
	buf := dbio.New(data)
	format := GameFormat(buf.ReadByte())

	rec := &Record{Start: start}

	if format&FormatHasTagData != 0 {
		size := int(buf.ReadLE(2))
		tagBuf := buf.Subbuf(buf.Pos(), size)
		rec.Tags = decodeTagBlock(tagBuf)
		buf.Seek(size)
	}

	if fen, ok := findTag(rec.Tags, "FEN"); ok {
		if p, ferr := chess.FromFEN(fen); ferr == nil {
			start = p
			rec.Start = p
		}
	}

	moveSize := int(buf.ReadLE(2))
	moveBlock := buf.ReadBytes(moveSize)
	moves, _, err := movecodec.DecodeIndexOfList(start, moveBlock)
	if err != nil {
		return nil, err
	}
	rec.Moves = moves

	if format&FormatHasNAGs != 0 {
		rec.NAGs = make(map[int][]uint8)
		n := int(buf.ReadULEB128())
		for i := 0; i < n; i++ {
			ply := int(buf.ReadULEB128())
			count := int(buf.ReadULEB128())
			nags := make([]uint8, count)
			for j := range nags {
				nags[j] = uint8(buf.ReadULEB128())
			}
			rec.NAGs[ply] = nags
		}
	}

	if format&FormatHasComments != 0 {
		rec.Comments = make(map[int]string)
		n := int(buf.ReadULEB128())
		for i := 0; i < n; i++ {
			ply := int(buf.ReadULEB128())
			rec.Comments[ply] = buf.ReadString()
		}
	}

	if tag, ok := findTag(rec.Tags, "Result"); ok {
		if r, ok := resultFromTagValue(tag); ok {
			rec.Result = r
		}
	}

	return rec, nil
}

func findTag(tags []pgn.Tag, name string) (string, bool) {
	for _, t := range tags {
		if t.Name == name {
			return t.Value, true
		}
	}
	return "", false
}

func resultFromTagValue(v string) (pgn.GameResult, bool) {
	switch v {
	case "1-0":
		return pgn.White, true
	case "0-1":
		return pgn.Black, true
	case "1/2-1/2":
		return pgn.Draw, true
	case "*":
		return pgn.Incomplete, true
	default:
		return pgn.Unknown, false
	}
}

// RecordFromGame builds a Record ready for EncodeRecord out of a parsed
// PGN game, folding its Steps into plain moves plus the sparse comment/NAG
// side-tables (SPEC_FULL.md Open Question (b)).
func RecordFromGame(g *pgn.Game, start chess.Position) *Record {
	rec := &Record{Tags: g.Tags, Start: start, Result: g.Result}
	rec.Moves = make([]chess.Move, len(g.Steps))
	for i, s := range g.Steps {
		rec.Moves[i] = s.Move
		if s.Comment != "" {
			if rec.Comments == nil {
				rec.Comments = make(map[int]string)
			}
			rec.Comments[i] = s.Comment
		}
		if len(s.NAGs) > 0 {
			if rec.NAGs == nil {
				rec.NAGs = make(map[int][]uint8)
			}
			rec.NAGs[i] = s.NAGs
		}
	}
	return rec
}

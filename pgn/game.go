package pgn

import "chessdb/chess"

// GameResult is the outcome recognised from a PGN result token (spec §3.8).
type GameResult uint8

const (
	Unknown GameResult = iota
	Incomplete
	White
	Draw
	Black
)

func resultFromToken(tok string) (GameResult, bool) {
	switch tok {
	case "1-0":
		return White, true
	case "0-1":
		return Black, true
	case "1/2-1/2":
		return Draw, true
	case "*":
		return Incomplete, true
	default:
		return Unknown, false
	}
}

// TagID is the closed tag enumeration the original keeps for the "Seven
// Tag Roster" plus Elo/ECO, stored compactly by id rather than by name
// (spec §3.7, ported from original_source's db/game.hh).
type TagID uint8

const (
	TagTerminator TagID = 0
	TagEvent      TagID = 1
	TagSite       TagID = 2
	TagDate       TagID = 3
	TagRound      TagID = 4
	TagWhite      TagID = 5
	TagBlack      TagID = 6
	TagResult     TagID = 7
	TagWhiteElo   TagID = 8
	TagBlackElo   TagID = 9
	TagECO        TagID = 10
	TagGeneric    TagID = 255
)

var knownTagIDs = map[string]TagID{
	"Event":    TagEvent,
	"Site":     TagSite,
	"Date":     TagDate,
	"Round":    TagRound,
	"White":    TagWhite,
	"Black":    TagBlack,
	"Result":   TagResult,
	"WhiteElo": TagWhiteElo,
	"BlackElo": TagBlackElo,
	"ECO":      TagECO,
}

// TagIDFor returns the closed tag id for name, or TagGeneric if name isn't
// one of the well-known Seven-Tag-Roster-plus-Elo/ECO fields.
func TagIDFor(name string) TagID {
	if id, ok := knownTagIDs[name]; ok {
		return id
	}
	return TagGeneric
}

// Tag is one ordered (name, value) pair from the PGN tag section.
type Tag struct {
	Name  string
	Value string
}

// Step is one parsed ply: the move, any comment attached to it (spec §4.8
// step 7), and any NAG glyph numbers attached to it (Open Question (b)).
type Step struct {
	Move    chess.Move
	Comment string
	NAGs    []uint8
}

// Game is one fully parsed PGN game: its tag section, the main line's
// steps (variations are skipped per spec §4.8), and the final result.
type Game struct {
	Tags   []Tag
	Steps  []Step
	Result GameResult
}

// TagValue returns the value of the first tag named name, and whether it
// was present.
func (g *Game) TagValue(name string) (string, bool) {
	for _, t := range g.Tags {
		if t.Name == name {
			return t.Value, true
		}
	}
	return "", false
}

// NAG glyph numbers for the common textual annotation suffixes, used when
// PGN source text uses "!"/"?" runs instead of "$n" (spec Open Question (b)).
const (
	NAGGoodMove        uint8 = 1
	NAGPoorMove        uint8 = 2
	NAGBrilliantMove   uint8 = 3
	NAGBlunder         uint8 = 4
	NAGSpeculativeMove uint8 = 5
	NAGDubiousMove     uint8 = 6
)

func nagFromGlyph(glyph string) uint8 {
	switch glyph {
	case "!":
		return NAGGoodMove
	case "?":
		return NAGPoorMove
	case "!!":
		return NAGBrilliantMove
	case "??":
		return NAGBlunder
	case "!?":
		return NAGSpeculativeMove
	case "?!":
		return NAGDubiousMove
	default:
		return 0
	}
}

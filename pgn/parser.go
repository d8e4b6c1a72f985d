package pgn

import "chessdb/chess"

// ParseGame composes ParseTags then ParseMovetext (spec §4.8,
// "Game-level parse_game"). If a FEN tag is present, the starting
// position is derived from it (Open Question (a): implemented, unlike
// the original's CustomFENNotImplemented stub). If skipOnError is true, a
// movetext error triggers a best-effort scan to the next result token so
// ingestion of the rest of the corpus can continue — but the game itself
// is still reported as failed (nil game, the original error, end-of-
// recovery position) rather than silently accepted with partial steps
// (spec §8 E6: "N-1 successful games and exactly one error callback").
func ParseGame(s string, pos int, skipOnError bool) (*Game, int, error) {
	tags, pos, err := ParseTags(s, pos)
	if err != nil {
		return nil, pos, err
	}

	start := chess.Startpos
	if fen, ok := tagValue(tags, "FEN"); ok {
		p, ferr := chess.FromFEN(fen)
		if ferr != nil {
			return nil, pos, &ParseError{Err: CustomFENNotImplemented, Pos: pos, Context: fen}
		}
		start = p
	}

	steps, result, end, err := ParseMovetext(s, pos, start)
	if err != nil {
		if !skipOnError {
			return nil, pos, err
		}
		recovered, rerr := recoverToResult(s, pos)
		if rerr != nil {
			return nil, pos, rerr
		}
		return nil, recovered, err
	}

	return &Game{Tags: tags, Steps: steps, Result: result}, end, nil
}

// ParseGames repeats ParseGame across s until end-of-buffer or
// zero-progress (spec §4.8, "Corpus-level parse_games"). With
// skipOnError, a game that fails to parse is excluded from games and its
// error (with its byte-offset context) is appended to errs instead of
// aborting the whole corpus (spec §8 E6).
func ParseGames(s string, skipOnError bool) (games []*Game, errs []error) {
	pos := 0

	for pos < len(s) {
		start := pos
		if isAllWhitespace(s[pos:]) {
			break
		}

		game, next, err := ParseGame(s, pos, skipOnError)
		if err != nil {
			if !skipOnError {
				return games, append(errs, err)
			}
			errs = append(errs, err)
		} else if game != nil {
			games = append(games, game)
		}
		if next <= start {
			break // zero progress: stop to avoid looping forever
		}
		pos = next
	}

	return games, errs
}

func tagValue(tags []Tag, name string) (string, bool) {
	for _, t := range tags {
		if t.Name == name {
			return t.Value, true
		}
	}
	return "", false
}

func isAllWhitespace(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != ' ' && c != '\t' && c != '\r' && c != '\n' {
			return false
		}
	}
	return true
}

// recoverToResult scans forward from pos for the next result token,
// supporting skip_on_error recovery (spec §4.8).
func recoverToResult(s string, pos int) (int, error) {
	for pos < len(s) {
		if _, n, ok := matchResultToken(s, pos); ok {
			return pos + n, nil
		}
		pos++
	}
	return len(s), nil
}

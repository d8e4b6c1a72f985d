package pgn

import "chessdb/chess"

// ParseMovetext parses movetext starting at pos against start (defaulting
// to chess.Startpos when the caller has no FEN tag to seed it), following
// the state loop in spec §4.8. Variations are skipped by byte-level
// nesting count rather than replayed (spec §4.8, "Variation handling").
func ParseMovetext(s string, pos int, start chess.Position) (steps []Step, result GameResult, end int, err error) {
	position := start
	black := false

	for {
		for {
			tok, next := NextToken(s, pos)
			if tok.Type != Whitespace && tok.Type != Newline {
				break
			}
			pos = next
		}

		if r, rlen, ok := matchResultToken(s, pos); ok {
			return steps, r, pos + rlen, nil
		}

		tok, next := NextToken(s, pos)
		if tok.Type == None {
			return steps, Incomplete, pos, nil
		}

		switch tok.Type {
		case Integer:
			scan := next
			dots := 0
			for {
				dtok, dnext := NextToken(s, scan)
				if dtok.Type != Period {
					break
				}
				dots++
				scan = dnext
			}
			if dots == 0 {
				return steps, Unknown, pos, &ParseError{Err: InvalidMoveNumber, Pos: pos, Context: contextAt(s, pos, 16)}
			}
			pos = scan

		case Symbol:
			san := tok.Value
			move, perr := chess.ParseSAN(san, position, black)
			if perr != nil {
				return steps, Unknown, pos, perr
			}
			position = chess.MakeMove(position, move)
			black = !black
			steps = append(steps, Step{Move: move})
			pos = next

			// consume NAGs and whitespace, attach NAGs and a trailing
			// comment to the step just emitted (spec §4.8 steps 6-7).
			for {
				for {
					wtok, wnext := NextToken(s, pos)
					if wtok.Type != Whitespace && wtok.Type != Newline {
						break
					}
					pos = wnext
				}
				ntok, nnext := NextToken(s, pos)
				if ntok.Type != NAG {
					break
				}
				g := nagGlyphNumber(ntok.Value)
				if g != 0 {
					last := &steps[len(steps)-1]
					last.NAGs = append(last.NAGs, g)
				}
				pos = nnext
			}

			ctok, cnext := NextToken(s, pos)
			if ctok.Type == Comment {
				if !terminated(ctok) {
					return steps, Unknown, pos, &ParseError{Err: UnterminatedComment, Pos: pos, Context: contextAt(s, pos, 16)}
				}
				steps[len(steps)-1].Comment = stripBraces(ctok.Value)
				pos = cnext
			}

		case Comment:
			if !terminated(tok) {
				return steps, Unknown, pos, &ParseError{Err: UnterminatedComment, Pos: pos, Context: contextAt(s, pos, 16)}
			}
			pos = next

		case Bracket:
			switch tok.Value {
			case "(":
				depth := 1
				scan := next
				for depth > 0 {
					btok, bnext := NextToken(s, scan)
					if btok.Type == None {
						return steps, Unknown, pos, &ParseError{Err: UnterminatedVariation, Pos: pos, Context: contextAt(s, pos, 16)}
					}
					if btok.Type == Bracket && btok.Value == "(" {
						depth++
					} else if btok.Type == Bracket && btok.Value == ")" {
						depth--
					}
					scan = bnext
				}
				pos = scan
			case ")":
				return steps, Unknown, pos, &ParseError{Err: NotInVariation, Pos: pos, Context: contextAt(s, pos, 16)}
			default:
				return steps, Unknown, pos, &ParseError{Err: ReservedToken, Pos: pos, Context: contextAt(s, pos, 16)}
			}

		case Misc:
			lineEnd := pos
			for lineEnd < len(s) && s[lineEnd] != '\n' {
				lineEnd++
			}
			if lineEnd < len(s) {
				lineEnd++
			}
			pos = lineEnd

		default:
			pos = next
		}
	}
}

// matchResultToken recognises a result token at pos by literal prefix
// match, since the byte-class tokenizer alone splits "1-0"/"0-1"/"1/2-1/2"
// across multiple tokens (Integer + Symbol, or Integer + an unclassified
// '/' byte). A result token must not be a prefix of a longer run of the
// same character classes (e.g. a move number), so it must not be followed
// by a Symbol or Integer byte.
func matchResultToken(s string, pos int) (GameResult, int, bool) {
	candidates := []struct {
		tok string
		r   GameResult
	}{
		{"1/2-1/2", Draw},
		{"1-0", White},
		{"0-1", Black},
		{"*", Incomplete},
	}

	for _, c := range candidates {
		n := len(c.tok)
		if pos+n > len(s) || s[pos:pos+n] != c.tok {
			continue
		}
		if pos+n < len(s) {
			next := s[pos+n]
			if classLookup[next] == Symbol || classLookup[next] == Integer {
				continue
			}
		}
		return c.r, n, true
	}
	return Unknown, 0, false
}

func stripBraces(s string) string {
	if len(s) >= 2 && s[0] == '{' && s[len(s)-1] == '}' {
		return s[1 : len(s)-1]
	}
	return s
}

func nagGlyphNumber(tok string) uint8 {
	if len(tok) > 0 && tok[0] == '$' {
		var n uint64
		for i := 1; i < len(tok); i++ {
			n = n*10 + uint64(tok[i]-'0')
		}
		return uint8(n)
	}
	return nagFromGlyph(tok)
}

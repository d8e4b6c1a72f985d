package pgn

// ParseTags parses the PGN tag section starting at pos: repeatedly, eat
// whitespace, expect `[`, a symbol (tag name), a string (tag value), `]`
// (spec §4.8). Returns the parsed tags and the position just past the
// last recognised tag.
func ParseTags(s string, pos int) ([]Tag, int, error) {
	var tags []Tag

	for {
		scan := pos
		for {
			tok, next := NextToken(s, scan)
			if tok.Type != Whitespace && tok.Type != Newline {
				break
			}
			scan = next
		}

		tok, next := NextToken(s, scan)
		if tok.Type != Bracket || tok.Value != "[" {
			break
		}
		scan = next

		nameTok, next := NextToken(s, scan)
		if nameTok.Type != Symbol {
			return tags, pos, &ParseError{Err: MalformedTag, Pos: scan, Context: contextAt(s, scan, 16)}
		}
		scan = next

		for {
			tok, next = NextToken(s, scan)
			if tok.Type != Whitespace {
				break
			}
			scan = next
		}

		valueTok, next := NextToken(s, scan)
		if valueTok.Type != String {
			return tags, pos, &ParseError{Err: MalformedTag, Pos: scan, Context: contextAt(s, scan, 16)}
		}
		if !terminated(valueTok) {
			return tags, pos, &ParseError{Err: UnterminatedQuote, Pos: scan, Context: contextAt(s, scan, 16)}
		}
		scan = next

		closeTok, next := NextToken(s, scan)
		if closeTok.Type != Bracket || closeTok.Value != "]" {
			return tags, pos, &ParseError{Err: UnterminatedTag, Pos: scan, Context: contextAt(s, scan, 16)}
		}
		scan = next

		tags = append(tags, Tag{Name: nameTok.Value, Value: unquote(valueTok.Value)})
		pos = scan
	}

	return tags, pos, nil
}

// unquote strips the surrounding double quotes from a String token's raw
// value (escaped-quote pairs are treated as literal pairs, per spec §4.7,
// and left as-is rather than unescaped).
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

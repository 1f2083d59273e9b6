package parse

// StripComments returns a copy of source with line and block comments
// replaced by spaces. Newlines are kept, so byte offsets and line numbers
// stay valid against the original text. String and template literals are
// skipped; regex literals are not recognized.
func StripComments(source []byte) []byte {
	out := make([]byte, len(source))
	copy(out, source)

	const (
		code = iota
		lineComment
		blockComment
		quoted
	)

	state := code
	var quote byte
	for i := 0; i < len(out); i++ {
		c := out[i]
		switch state {
		case code:
			switch {
			case c == '/' && i+1 < len(out) && out[i+1] == '/':
				state = lineComment
				out[i], out[i+1] = ' ', ' '
				i++
			case c == '/' && i+1 < len(out) && out[i+1] == '*':
				state = blockComment
				out[i], out[i+1] = ' ', ' '
				i++
			case c == '"' || c == '\'' || c == '`':
				state = quoted
				quote = c
			}
		case lineComment:
			if c == '\n' {
				state = code
				continue
			}
			out[i] = ' '
		case blockComment:
			if c == '*' && i+1 < len(out) && out[i+1] == '/' {
				out[i], out[i+1] = ' ', ' '
				i++
				state = code
				continue
			}
			if c != '\n' {
				out[i] = ' '
			}
		case quoted:
			switch {
			case c == '\\':
				i++
			case c == quote:
				state = code
			case c == '\n' && quote != '`':
				// Unterminated string literal ends at the line break.
				state = code
			}
		}
	}
	return out
}

// Package highlight classifies pretty-printed JSON into styled tokens.
//
// The serializer output is the ground truth: classification only attaches
// metadata to substrings of the 2-space-indented serialization, it never
// reorders, inserts, or drops characters. Concatenating the token texts of a
// line reproduces that line byte-for-byte.
package highlight

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Class identifies how a token should be styled.
type Class int

const (
	Plain   Class = iota // syntax characters, whitespace, array scalars
	Key                  // object key, quotes included
	String               // string value after a key, quotes included
	Number               // numeric value after a key
	Literal              // true, false or null after a key
)

// Token is a classified substring of one output line.
type Token struct {
	Text  string
	Class Class
}

// Line is one row of pretty-printed JSON, as ordered non-overlapping tokens.
// The line's index in the enclosing slice is its position in the document.
type Line []Token

// SerializationError reports a value the JSON encoder rejected (cyclic
// structure, channel, func, NaN). The highlighter performs no recovery;
// callers decide on a fallback rendering.
type SerializationError struct {
	Err error
}

func (e *SerializationError) Error() string {
	return "highlight: value not serializable: " + e.Err.Error()
}

func (e *SerializationError) Unwrap() error { return e.Err }

// Highlight serializes v with 2-space indentation and classifies the result.
// Map key order follows encoding/json (sorted); callers that need a specific
// key order should pass pre-serialized bytes to HighlightBytes instead.
func Highlight(v any) ([]Line, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, &SerializationError{Err: err}
	}
	return classify(string(data)), nil
}

// HighlightBytes normalizes an already-serialized JSON document to 2-space
// indentation and classifies it. Key order is preserved as-is, which makes
// this the right entry point for server responses.
func HighlightBytes(data []byte) ([]Line, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(data), "", "  "); err != nil {
		return nil, &SerializationError{Err: err}
	}
	return classify(buf.String()), nil
}

func classify(text string) []Line {
	raw := strings.Split(text, "\n")
	lines := make([]Line, len(raw))
	for i, l := range raw {
		lines[i] = ClassifyLine(l)
	}
	return lines
}

// ClassifyLine tokenizes a single line of pretty-printed JSON. Runs of
// unclassified characters coalesce into one Plain token, so "{}" or "[]"
// come back as a single token.
func ClassifyLine(line string) Line {
	var (
		tokens Line
		plain  strings.Builder
	)

	flush := func() {
		if plain.Len() > 0 {
			tokens = append(tokens, Token{Text: plain.String(), Class: Plain})
			plain.Reset()
		}
	}

	// A value position is one immediately preceded by a structural colon.
	// Colons inside string values never reach the plain buffer because
	// quoted strings are consumed whole, escapes included.
	valuePos := func() bool {
		return strings.HasSuffix(plain.String(), ": ")
	}

	i := 0
	for i < len(line) {
		switch c := line[i]; {
		case c == '"':
			end := scanString(line, i)
			text := line[i:end]
			switch {
			case end < len(line) && line[end] == ':':
				flush()
				tokens = append(tokens, Token{Text: text, Class: Key})
			case valuePos():
				flush()
				tokens = append(tokens, Token{Text: text, Class: String})
			default:
				// Array element strings stay plain.
				plain.WriteString(text)
			}
			i = end

		case c == '-' || (c >= '0' && c <= '9'):
			end := scanNumber(line, i)
			if end == i {
				plain.WriteByte(c)
				i++
				continue
			}
			text := line[i:end]
			if valuePos() && atBoundary(line, end) {
				flush()
				tokens = append(tokens, Token{Text: text, Class: Number})
			} else {
				plain.WriteString(text)
			}
			i = end

		case c == 't' || c == 'f' || c == 'n':
			lit := literalAt(line, i)
			if lit == "" {
				plain.WriteByte(c)
				i++
				continue
			}
			end := i + len(lit)
			if valuePos() && atBoundary(line, end) {
				flush()
				tokens = append(tokens, Token{Text: lit, Class: Literal})
			} else {
				plain.WriteString(lit)
			}
			i = end

		default:
			plain.WriteByte(c)
			i++
		}
	}

	flush()
	return tokens
}

// scanString consumes a quoted string starting at the opening quote and
// returns the index just past the closing quote. Escaped quotes (\") are
// part of the string, not terminators.
func scanString(line string, start int) int {
	i := start + 1
	for i < len(line) {
		switch line[i] {
		case '\\':
			i += 2
		case '"':
			return i + 1
		default:
			i++
		}
	}
	return len(line)
}

// scanNumber consumes an optional sign, digits, an optional fraction and an
// optional exponent. Returns start when there is no digit to consume.
func scanNumber(line string, start int) int {
	i := start
	if i < len(line) && line[i] == '-' {
		i++
	}
	digitsFrom := i
	for i < len(line) && isDigit(line[i]) {
		i++
	}
	if i == digitsFrom {
		return start
	}
	if i < len(line) && line[i] == '.' {
		j := i + 1
		for j < len(line) && isDigit(line[j]) {
			j++
		}
		if j > i+1 {
			i = j
		}
	}
	if i < len(line) && (line[i] == 'e' || line[i] == 'E') {
		j := i + 1
		if j < len(line) && (line[j] == '+' || line[j] == '-') {
			j++
		}
		digits := j
		for j < len(line) && isDigit(line[j]) {
			j++
		}
		if j > digits {
			i = j
		}
	}
	return i
}

func literalAt(line string, i int) string {
	for _, lit := range [...]string{"true", "false", "null"} {
		if strings.HasPrefix(line[i:], lit) {
			return lit
		}
	}
	return ""
}

// atBoundary reports whether a value ending at pos is followed by a comma,
// whitespace or the end of the line.
func atBoundary(line string, pos int) bool {
	if pos >= len(line) {
		return true
	}
	return line[pos] == ',' || line[pos] == ' ' || line[pos] == '\t'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// Text reconstructs the plain serialization from classified lines.
func Text(lines []Line) string {
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, tok := range line {
			b.WriteString(tok.Text)
		}
	}
	return b.String()
}

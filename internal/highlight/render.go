package highlight

// Raw ANSI color codes. Using raw codes instead of lipgloss keeps the
// colors intact through viewport clipping and padding.
const (
	ansiReset   = "\x1b[0m"
	ansiCyan    = "\x1b[36m"
	ansiGreen   = "\x1b[32m"
	ansiYellow  = "\x1b[33m"
	ansiMagenta = "\x1b[35m"
)

// Palette maps token classes to ANSI escape sequences. An empty entry
// leaves the token unstyled. Plain tokens are never styled.
type Palette struct {
	Key     string
	String  string
	Number  string
	Literal string
}

// DefaultPalette: keys cyan, strings green, numbers yellow, true/false/null
// magenta.
var DefaultPalette = Palette{
	Key:     ansiCyan,
	String:  ansiGreen,
	Number:  ansiYellow,
	Literal: ansiMagenta,
}

func (p Palette) code(c Class) string {
	switch c {
	case Key:
		return p.Key
	case String:
		return p.String
	case Number:
		return p.Number
	case Literal:
		return p.Literal
	default:
		return ""
	}
}

// RenderLine styles one classified line with the palette's ANSI codes.
func RenderLine(line Line, p Palette) string {
	var b []byte
	for _, tok := range line {
		code := p.code(tok.Class)
		if code == "" {
			b = append(b, tok.Text...)
			continue
		}
		b = append(b, code...)
		b = append(b, tok.Text...)
		b = append(b, ansiReset...)
	}
	return string(b)
}

// Render styles a whole document, one line per row.
func Render(lines []Line, p Palette) string {
	var b []byte
	for i, line := range lines {
		if i > 0 {
			b = append(b, '\n')
		}
		b = append(b, RenderLine(line, p)...)
	}
	return string(b)
}

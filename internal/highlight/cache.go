package highlight

// Cache stores a bounded mapping of raw lines to rendered lines.
// This avoids re-tokenizing lines that stay in view between frames.
type Cache struct {
	maxEntries int
	palette    Palette
	lines      map[string]string
	order      []string
}

// NewCache creates a render cache holding at most maxEntries lines.
func NewCache(maxEntries int, p Palette) *Cache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &Cache{
		maxEntries: maxEntries,
		palette:    p,
		lines:      make(map[string]string, maxEntries),
		order:      make([]string, 0, maxEntries),
	}
}

// Render classifies and styles one raw line, memoizing the result.
func (c *Cache) Render(line string) string {
	if line == "" {
		return ""
	}
	if rendered, ok := c.lines[line]; ok {
		return rendered
	}

	rendered := RenderLine(ClassifyLine(line), c.palette)
	c.lines[line] = rendered
	c.order = append(c.order, line)

	if len(c.order) > c.maxEntries {
		evicted := c.order[0]
		c.order = c.order[1:]
		delete(c.lines, evicted)
	}

	return rendered
}

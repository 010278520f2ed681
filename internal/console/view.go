package console

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// renderView renders the full UI.
func (m Model) renderView() string {
	header := m.renderHeader()

	var content string
	switch m.mode {
	case ModeHelp:
		content = m.renderHelpContent()
	case ModeForm:
		content = m.renderForm()
	case ModeResult, ModeFilter:
		content = m.renderOutput()
	default:
		content = m.renderBrowser()
	}

	footer := m.renderFooter()
	view := lipgloss.JoinVertical(lipgloss.Left, header, content, footer)

	if m.mode == ModeHistory {
		base := lipgloss.JoinVertical(lipgloss.Left, header, m.renderForm(), footer)
		return m.overlayHistory(base)
	}

	return view
}

func (m Model) renderHeader() string {
	title := titleStyle.Render("lmsprobe")
	help := helpStyle.Render(m.compactHelpText())

	var status string
	if m.status != "" {
		status = statusStyle.Render(m.status)
	} else if m.requestRunning {
		status = helpStyle.Render("Requesting...")
	} else if m.filterErr != nil {
		status = errorStyle.Render("Filter error: " + m.filterErr.Error())
	} else if m.result != nil && m.result.err != nil {
		status = errorStyle.Render("Error: " + m.result.err.Error())
	} else if m.result != nil && m.result.res != nil {
		status = statusStyle.Render(fmt.Sprintf("%d in %s", m.result.res.Status, m.result.res.Latency.Round(time.Millisecond)))
	}

	return fmt.Sprintf("%s  %s\n%s\n", title, help, status)
}

func (m Model) renderBrowser() string {
	visible := m.visibleEndpoints()
	height := m.contentHeight()

	var rows []string
	if m.search != "" {
		rows = append(rows, labelStyle.Render("search: ")+m.search)
	}

	lastGroup := ""
	shown := 0
	for i, ep := range visible {
		if i < m.browseScrollTop() {
			continue
		}
		if shown >= height-2 {
			rows = append(rows, helpStyle.Render(fmt.Sprintf("  ...+%d more", len(visible)-i)))
			break
		}
		if ep.Group != lastGroup {
			rows = append(rows, groupStyle.Render(ep.Group))
			lastGroup = ep.Group
			shown++
		}
		label := fmt.Sprintf("%-6s %-28s %s", ep.Method, ep.Name, helpStyle.Render(ep.Doc))
		if i == m.selected {
			rows = append(rows, selectedStyle.Render("→ ")+methodStyle.Render(label))
		} else {
			rows = append(rows, itemStyle.Render("  "+label))
		}
		shown++
	}

	if len(visible) == 0 {
		rows = append(rows, labelStyle.Render("No endpoints match"))
	}

	return borderStyle.Width(m.outputContentWidth()).Height(height).Render(strings.Join(rows, "\n"))
}

// browseScrollTop keeps the selection visible when the catalog is taller
// than the pane.
func (m Model) browseScrollTop() int {
	height := m.contentHeight() - 2
	if height < 1 {
		height = 1
	}
	if m.selected < height {
		return 0
	}
	return m.selected - height + 1
}

func (m Model) renderForm() string {
	ep := m.form.endpoint

	var rows []string
	rows = append(rows, methodStyle.Render(ep.Method+" "+ep.Path))
	rows = append(rows, helpStyle.Render(ep.Doc))
	rows = append(rows, "")

	for i, fld := range m.form.fields {
		name := fld.param.Name
		if fld.param.Required {
			name += "*"
		}
		label := fmt.Sprintf("  %-20s", name)
		if i == m.form.focus {
			label = selectedStyle.Render(fmt.Sprintf("→ %-20s", name))
		} else {
			label = labelStyle.Render(label)
		}
		rows = append(rows, label+fld.input.View())
	}

	rows = append(rows, "")
	rows = append(rows, helpStyle.Render("enter: send | tab: next field | ctrl+h: history | esc: back"))

	return borderStyle.Width(m.outputContentWidth()).Height(m.contentHeight()).Render(strings.Join(rows, "\n"))
}

func (m Model) renderOutput() string {
	outputWidth := m.outputContentWidth()

	lines := m.lines
	if len(lines) == 0 {
		lines = []string{""}
	}

	startLine := m.output.YOffset
	endLine := startLine + m.contentHeight()
	if endLine > len(lines) {
		endLine = len(lines)
	}
	if startLine > len(lines) {
		startLine = len(lines)
	}

	visibleLines := lines[startLine:endLine]

	transportErr := m.result != nil && m.result.err != nil && !isAPIResultError(m.result)

	// Manually pad each line to width (preserves ANSI codes)
	var paddedLines []string
	for _, rawLine := range visibleLines {
		clippedRaw, leftCut, rightCut := clipRawLine(rawLine, m.outputXOffset, outputWidth)
		clippedRaw = withEllipsis(clippedRaw, outputWidth, leftCut, rightCut)

		var line string
		if transportErr {
			line = errorStyle.Render(clippedRaw)
		} else {
			line = m.renderCache.Render(clippedRaw)
		}

		displayWidth := lipgloss.Width(line)
		if displayWidth < outputWidth {
			line += strings.Repeat(" ", outputWidth-displayWidth)
		}
		paddedLines = append(paddedLines, line)
	}

	// Pad to fill height
	emptyLine := strings.Repeat(" ", outputWidth)
	for len(paddedLines) < m.contentHeight() {
		paddedLines = append(paddedLines, emptyLine)
	}

	visibleContent := strings.Join(paddedLines, "\n")
	return borderStyle.Width(outputWidth).Height(m.contentHeight()).Render(visibleContent)
}

// isAPIResultError reports whether the invocation failed with a structured
// backend error (which still renders as highlighted JSON) rather than a
// transport failure.
func isAPIResultError(inv *invocation) bool {
	if inv.err == nil {
		return false
	}
	_, ok := asAPIError(inv.err)
	return ok
}

func (m Model) renderFooter() string {
	var left string
	switch m.mode {
	case ModeResult, ModeFilter:
		filterLabel := labelStyle.Render("filter: ")
		left = filterLabel + m.filter.View()
	default:
		left = labelStyle.Render("backend: ") + m.client.BaseURL()
	}

	endpointLabel := ""
	if m.result != nil {
		endpointLabel = labelStyle.Render("endpoint: ") + m.result.endpoint.Name
	}
	scrollLabel := ""
	if m.maxHorizontalOffset() > 0 {
		scrollLabel = labelStyle.Render(fmt.Sprintf(" x:%d/%d", m.outputXOffset, m.maxHorizontalOffset()))
	}

	return fmt.Sprintf("\n%s\n%s%s", left, endpointLabel, scrollLabel)
}

func (m Model) overlayHistory(base string) string {
	if len(m.historyItems) == 0 {
		overlay := overlayStyle.Render("No history for this endpoint")
		return placeOverlay(base, overlay, m.width, m.height)
	}

	var lines []string
	lines = append(lines, titleStyle.Render("Recent Parameters"))
	lines = append(lines, helpStyle.Render("↑/↓: navigate | enter: apply | esc: close"))
	lines = append(lines, "")

	maxShow := 10
	for i, item := range m.historyItems {
		if i >= maxShow {
			lines = append(lines, helpStyle.Render(fmt.Sprintf("...+%d more", len(m.historyItems)-maxShow)))
			break
		}
		label := formatParams(item)
		if i == m.historyIdx {
			lines = append(lines, selectedStyle.Render("→ "+label))
		} else {
			lines = append(lines, itemStyle.Render("  "+label))
		}
	}

	overlay := overlayStyle.Render(strings.Join(lines, "\n"))
	return placeOverlay(base, overlay, m.width, m.height)
}

// formatParams renders a parameter set on one line, in stable order.
func formatParams(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+params[k])
	}
	return strings.Join(parts, " ")
}

func (m Model) compactHelpText() string {
	var items []string
	switch m.mode {
	case ModeBrowse:
		items = []string{
			"↑/↓: select",
			"enter: open",
			"type: search",
			"?: help",
			"esc: quit",
		}
	case ModeForm:
		items = []string{
			"enter: send",
			"tab: next field",
			"ctrl+h: history",
			"esc: back",
		}
	default:
		items = []string{
			"f: filter",
			"r: re-run",
			"ctrl+y: copy",
			"shift+arrows: scroll",
			"?: help",
			"esc: back",
		}
	}

	if m.width <= 0 {
		return items[0]
	}

	const reserveForTitle = 28
	maxWidth := m.width - reserveForTitle
	if maxWidth < 12 {
		return items[0]
	}

	sep := " | "
	line := ""
	for _, item := range items {
		candidate := item
		if line != "" {
			candidate = line + sep + item
		}
		if lipgloss.Width(candidate) > maxWidth {
			break
		}
		line = candidate
	}

	if line == "" {
		return items[0]
	}
	return line
}

func (m Model) renderHelpContent() string {
	maxWidth := m.width - 8
	if maxWidth < 44 {
		maxWidth = m.width - 2
	}
	if maxWidth > 88 {
		maxWidth = 88
	}
	if maxWidth < 24 {
		maxWidth = 24
	}

	rows := []string{
		titleStyle.Render("Keyboard Shortcuts"),
		helpStyle.Render("esc or ?: close"),
		"",
		labelStyle.Render("Browse"),
		m.helpRow("Up/Down", "Select endpoint"),
		m.helpRow("Enter", "Open parameter form / invoke"),
		m.helpRow("Any letter", "Search the catalog"),
		"",
		labelStyle.Render("Form"),
		m.helpRow("Tab/Shift+Tab", "Next / previous field"),
		m.helpRow("Enter", "Send the request"),
		m.helpRow("Ctrl+H", "Recent parameter sets"),
		"",
		labelStyle.Render("Result"),
		m.helpRow("Up/Down", "Scroll output"),
		m.helpRow("Shift+Up/Down", "Fast scroll"),
		m.helpRow("Shift+Left/Right", "Horizontal scroll"),
		m.helpRow("Home/End", "Jump horizontal start/end"),
		m.helpRow("F", "jq filter over the response"),
		m.helpRow("R", "Re-run the last request"),
		m.helpRow("Ctrl+Y", "Copy raw response"),
		"",
		m.helpRow("Esc/Ctrl+C", "Back / quit"),
	}

	panel := overlayStyle.Width(maxWidth).Render(strings.Join(rows, "\n"))
	return lipgloss.Place(m.width, m.contentHeight(), lipgloss.Center, lipgloss.Center, panel)
}

func (m Model) helpRow(key, desc string) string {
	return itemStyle.Render(fmt.Sprintf("  %-18s %s", key, desc))
}

func placeOverlay(base, overlay string, width, height int) string {
	// Center the overlay
	overlayLines := strings.Split(overlay, "\n")
	baseLines := strings.Split(base, "\n")

	overlayHeight := len(overlayLines)
	overlayWidth := lipgloss.Width(overlay)

	startY := (height - overlayHeight) / 2
	startX := (width - overlayWidth) / 2

	if startY < 0 {
		startY = 0
	}
	if startX < 0 {
		startX = 0
	}

	for i, line := range overlayLines {
		y := startY + i
		if y >= len(baseLines) {
			break
		}
		baseLine := baseLines[y]
		// Pad base line if needed
		if len(baseLine) < startX {
			baseLine += strings.Repeat(" ", startX-len(baseLine))
		}
		// Replace portion with overlay
		newLine := baseLine[:startX] + line
		if len(baseLine) > startX+lipgloss.Width(line) {
			newLine += baseLine[startX+lipgloss.Width(line):]
		}
		baseLines[y] = newLine
	}

	return strings.Join(baseLines, "\n")
}

func clipRawLine(line string, xOffset, maxWidth int) (string, bool, bool) {
	if maxWidth <= 0 {
		return "", xOffset > 0, len(line) > 0
	}

	runes := []rune(line)
	if len(runes) == 0 {
		return "", xOffset > 0, false
	}

	if xOffset < 0 {
		xOffset = 0
	}

	totalWidth := 0
	for _, r := range runes {
		w := runewidth.RuneWidth(r)
		if w < 1 {
			w = 1
		}
		totalWidth += w
	}

	if xOffset > totalWidth {
		xOffset = totalWidth
	}

	startIdx := len(runes)
	widthSoFar := 0
	for i, r := range runes {
		w := runewidth.RuneWidth(r)
		if w < 1 {
			w = 1
		}
		if widthSoFar+w > xOffset {
			startIdx = i
			break
		}
		widthSoFar += w
	}

	endIdx := startIdx
	visibleWidth := 0
	for i := startIdx; i < len(runes); i++ {
		w := runewidth.RuneWidth(runes[i])
		if w < 1 {
			w = 1
		}
		if visibleWidth+w > maxWidth {
			break
		}
		visibleWidth += w
		endIdx = i + 1
	}

	leftCut := xOffset > 0
	rightCut := (xOffset + visibleWidth) < totalWidth
	return string(runes[startIdx:endIdx]), leftCut, rightCut
}

func withEllipsis(line string, maxWidth int, leftCut, rightCut bool) string {
	if maxWidth <= 0 {
		return ""
	}

	if !leftCut && !rightCut {
		return line
	}

	runes := []rune(line)
	runes = trimToDisplayWidth(runes, maxWidth)

	if leftCut && rightCut && maxWidth >= 2 {
		runes = trimToDisplayWidth(runes, maxWidth-2)
		return "…" + string(runes) + "…"
	}

	if leftCut {
		if maxWidth == 1 {
			return "…"
		}
		runes = trimToDisplayWidth(runes, maxWidth-1)
		return "…" + string(runes)
	}

	// rightCut only
	if maxWidth == 1 {
		return "…"
	}
	runes = trimToDisplayWidth(runes, maxWidth-1)
	return string(runes) + "…"
}

func trimToDisplayWidth(runes []rune, maxWidth int) []rune {
	if maxWidth <= 0 || len(runes) == 0 {
		return []rune{}
	}
	width := 0
	end := 0
	for i, r := range runes {
		w := runewidth.RuneWidth(r)
		if w < 1 {
			w = 1
		}
		if width+w > maxWidth {
			break
		}
		width += w
		end = i + 1
	}
	return runes[:end]
}

package console

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.output = newViewport(m.width, m.contentHeight())
			m.ready = true
		} else {
			m.output.Width = m.width - 4
			m.output.Height = m.contentHeight()
		}
		return m, nil

	case resultMsg:
		accepted := msg.seq == m.seq
		m.telemetry.OnResult(msg.seq, msg.err, accepted)
		if !accepted {
			// A newer invocation superseded this one.
			return m, nil
		}
		m.requestRunning = false
		inv := &invocation{
			endpoint: msg.endpoint,
			params:   msg.params,
			res:      msg.res,
			err:      msg.err,
		}
		inv.raw = displayText(inv)
		m.result = inv
		m.setOutputText(inv.raw)
		m.filtered = false
		m.filterErr = nil
		m.filter.SetValue("")
		m.mode = ModeResult

		if msg.err == nil && len(msg.params) > 0 {
			m.history.Add(msg.endpoint.Name, msg.params)
			if err := m.history.Save(); err != nil {
				m.status = "History save failed: " + err.Error()
				return m, clearStatusAfter(3 * time.Second)
			}
		}
		return m, nil

	case filterMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.filterErr = msg.err
		if msg.err == nil {
			m.filtered = true
			m.setOutputText(msg.text)
		}
		return m, nil

	case statusClearMsg:
		m.status = ""
		return m, nil
	}

	return m, nil
}

func (m *Model) setOutputText(text string) {
	m.lines = strings.Split(text, "\n")
	m.outputXOffset = 0
	if m.ready {
		m.output.SetContent(text)
		m.output.GotoTop()
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Global keys
	switch key {
	case "ctrl+c":
		return m, tea.Quit

	case "?":
		if m.mode != ModeForm && m.mode != ModeFilter {
			m.prevMode = m.mode
			m.mode = ModeHelp
			return m, nil
		}
	}

	switch m.mode {
	case ModeBrowse:
		return m.handleBrowseKey(msg)
	case ModeForm:
		return m.handleFormKey(msg)
	case ModeResult:
		return m.handleResultKey(msg)
	case ModeFilter:
		return m.handleFilterKey(msg)
	case ModeHistory:
		return m.handleHistoryKey(msg)
	case ModeHelp:
		m.mode = m.prevMode
		return m, nil
	}

	return m, nil
}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := m.visibleEndpoints()

	switch key := msg.String(); key {
	case "esc":
		if m.search != "" {
			m.search = ""
			m.selected = 0
			return m, nil
		}
		return m, tea.Quit

	case "up":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case "down":
		if m.selected < len(visible)-1 {
			m.selected++
		}
		return m, nil

	case "enter":
		if len(visible) == 0 {
			return m, nil
		}
		ep := visible[m.selected]
		if len(ep.Params) == 0 {
			// Nothing to fill in; invoke straight away.
			m.requestRunning = true
			m.form = newForm(ep, nil)
			return m, m.invokeCmd(ep, nil)
		}
		m.form = newForm(ep, m.history.Latest(ep.Name))
		m.mode = ModeForm
		return m, nil

	case "backspace":
		if m.search != "" {
			m.search = m.search[:len(m.search)-1]
			m.selected = 0
		}
		return m, nil

	default:
		if len(key) == 1 && key != "?" {
			m.search += key
			m.selected = 0
		}
		return m, nil
	}
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "esc":
		m.mode = ModeBrowse
		return m, nil

	case "tab", "down":
		m.form.next()
		return m, nil

	case "shift+tab", "up":
		m.form.prev()
		return m, nil

	case "enter":
		m.requestRunning = true
		return m, m.invokeCmd(m.form.endpoint, m.form.values())

	case "ctrl+h":
		m.historyItems = m.history.Get(m.form.endpoint.Name)
		m.historyIdx = 0
		m.prevMode = ModeForm
		m.mode = ModeHistory
		return m, nil

	default:
		var cmd tea.Cmd
		m.form, cmd = m.form.update(msg)
		return m, cmd
	}
}

func (m Model) handleResultKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "esc":
		if m.filtered {
			// Drop the filter view first, then leave.
			m.filtered = false
			m.filterErr = nil
			m.filter.SetValue("")
			if m.result != nil {
				m.setOutputText(m.result.raw)
			}
			return m, nil
		}
		if len(m.form.endpoint.Params) > 0 {
			m.mode = ModeForm
		} else {
			m.mode = ModeBrowse
		}
		return m, nil

	case "up":
		m.output.LineUp(1)
		return m, nil

	case "down":
		m.output.LineDown(1)
		return m, nil

	case "shift+up":
		m.output.LineUp(5)
		return m, nil

	case "shift+down":
		m.output.LineDown(5)
		return m, nil

	case "pgup":
		m.output.HalfViewUp()
		return m, nil

	case "pgdown":
		m.output.HalfViewDown()
		return m, nil

	case "shift+left":
		m.outputXOffset -= 8
		if m.outputXOffset < 0 {
			m.outputXOffset = 0
		}
		return m, nil

	case "shift+right":
		if m.outputXOffset+8 <= m.maxHorizontalOffset() {
			m.outputXOffset += 8
		}
		return m, nil

	case "home":
		m.outputXOffset = 0
		return m, nil

	case "end":
		m.outputXOffset = m.maxHorizontalOffset()
		return m, nil

	case "ctrl+y":
		return m.copyResponse()

	case "f", "ctrl+f":
		m.mode = ModeFilter
		m.filter.Focus()
		return m, nil

	case "r":
		// Re-run the same invocation.
		if m.result != nil {
			m.requestRunning = true
			return m, m.invokeCmd(m.result.endpoint, m.result.params)
		}
		return m, nil

	case "enter":
		return m, nil

	default:
		return m, nil
	}
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "esc":
		m.filter.Blur()
		m.mode = ModeResult
		return m, nil

	case "enter":
		m.filter.Blur()
		m.mode = ModeResult
		expr := m.filter.Value()
		if expr == "" || m.result == nil || m.result.res == nil {
			return m, nil
		}
		return m, m.filterCmd(expr, m.result.res.Value)

	default:
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		return m, cmd
	}
}

func (m Model) handleHistoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "down", "tab":
		if len(m.historyItems) > 0 {
			m.historyIdx = (m.historyIdx + 1) % len(m.historyItems)
		}
		return m, nil

	case "up", "shift+tab":
		if len(m.historyItems) > 0 {
			m.historyIdx--
			if m.historyIdx < 0 {
				m.historyIdx = len(m.historyItems) - 1
			}
		}
		return m, nil

	case "enter":
		if len(m.historyItems) > 0 {
			m.form.setValues(m.historyItems[m.historyIdx])
		}
		m.mode = m.prevMode
		return m, nil

	default:
		m.mode = m.prevMode
		return m, nil
	}
}

func (m Model) copyResponse() (tea.Model, tea.Cmd) {
	if m.result == nil || m.result.raw == "" {
		m.status = "Nothing to copy"
		return m, clearStatusAfter(3 * time.Second)
	}
	if err := m.clipboard.Copy(m.result.raw); err != nil {
		m.status = "Copy failed: " + err.Error()
	} else {
		m.status = "Copied response to clipboard"
	}
	return m, clearStatusAfter(3 * time.Second)
}

func (m Model) contentHeight() int {
	// Total height minus header (3 lines), footer (3 lines), and borders (2 lines)
	return m.height - 8
}

func (m Model) maxHorizontalOffset() int {
	width := m.outputContentWidth()
	maxLen := 0
	for _, line := range m.lines {
		if len(line) > maxLen {
			maxLen = len(line)
		}
	}
	if maxLen <= width {
		return 0
	}
	return maxLen - width
}

func (m Model) outputContentWidth() int {
	w := m.width - 4
	if w < 1 {
		w = 1
	}
	return w
}

func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width-4, height)
	vp.SetContent("")
	return vp
}

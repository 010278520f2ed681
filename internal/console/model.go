// Package console is the interactive TUI: browse the endpoint catalog, fill
// in parameters, invoke one request at a time and inspect the highlighted
// JSON response.
package console

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/NivaraGame/adaptive-lms-sub001/internal/api"
	"github.com/NivaraGame/adaptive-lms-sub001/internal/clipboard"
	"github.com/NivaraGame/adaptive-lms-sub001/internal/highlight"
	"github.com/NivaraGame/adaptive-lms-sub001/internal/history"
	"github.com/NivaraGame/adaptive-lms-sub001/internal/query"
)

// Mode represents the current UI mode.
type Mode int

const (
	ModeBrowse Mode = iota
	ModeForm
	ModeResult
	ModeFilter
	ModeHistory
	ModeHelp
)

const colorCacheSize = 2048

// Model is the Bubble Tea model.
type Model struct {
	// Services
	client    *api.Client
	query     *query.Service
	history   *history.Store
	clipboard *clipboard.Service

	// Catalog state
	endpoints []api.Endpoint
	selected  int
	search    string

	// Form state
	form form

	// Result state
	result         *invocation
	lines          []string // raw pretty-printed lines shown in the viewport
	output         viewport.Model
	outputXOffset  int
	renderCache    *highlight.Cache
	requestRunning bool
	seq            int

	// Filter state
	filter    textinput.Model
	filterErr error
	filtered  bool // viewport currently shows filter output

	// History state
	historyItems []map[string]string
	historyIdx   int

	// UI state
	mode        Mode
	prevMode    Mode // mode to return to when an overlay closes
	status      string
	width       int
	height      int
	ready       bool
	telemetry   *requestTelemetry
}

// invocation is the outcome of one request, kept for display and copying.
type invocation struct {
	endpoint api.Endpoint
	params   map[string]string
	res      *api.Result
	err      error
	raw      string // pretty text rendered in the viewport
}

// Config holds initialization options.
type Config struct {
	Telemetry bool
}

// NewModel creates the console model.
func NewModel(
	client *api.Client,
	querySvc *query.Service,
	hist *history.Store,
	clip *clipboard.Service,
	cfg Config,
) Model {
	fi := textinput.New()
	fi.Placeholder = "."
	fi.CharLimit = 500
	fi.Width = 50

	return Model{
		client:      client,
		query:       querySvc,
		history:     hist,
		clipboard:   clip,
		endpoints:   api.Catalog(),
		filter:      fi,
		renderCache: highlight.NewCache(colorCacheSize, highlight.DefaultPalette),
		telemetry:   newRequestTelemetry(cfg.Telemetry),
		mode:        ModeBrowse,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// View renders the UI.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	return m.renderView()
}

// TelemetrySummary exposes the latency summary for printing after the
// program exits.
func (m Model) TelemetrySummary() (string, bool) {
	return m.telemetry.Summary()
}

// visibleEndpoints filters the catalog by the browse search string.
func (m Model) visibleEndpoints() []api.Endpoint {
	if m.search == "" {
		return m.endpoints
	}
	needle := strings.ToLower(m.search)
	var out []api.Endpoint
	for _, ep := range m.endpoints {
		if strings.Contains(strings.ToLower(ep.Name), needle) ||
			strings.Contains(strings.ToLower(ep.Doc), needle) {
			out = append(out, ep)
		}
	}
	return out
}

// Message types.
type resultMsg struct {
	seq      int
	endpoint api.Endpoint
	params   map[string]string
	res      *api.Result
	err      error
}

type filterMsg struct {
	seq  int
	text string
	err  error
}

type statusClearMsg struct{}

func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return statusClearMsg{}
	})
}

// invokeCmd executes one endpoint invocation off the UI goroutine.
func (m *Model) invokeCmd(ep api.Endpoint, params map[string]string) tea.Cmd {
	m.seq++
	seq := m.seq
	m.telemetry.OnQueued(seq)
	client := m.client
	telemetry := m.telemetry
	return func() tea.Msg {
		telemetry.OnDispatch(seq)
		res, err := client.Invoke(context.Background(), ep, params)
		return resultMsg{seq: seq, endpoint: ep, params: params, res: res, err: err}
	}
}

// filterCmd applies a jq filter to the last decoded response.
func (m Model) filterCmd(expr string, data any) tea.Cmd {
	seq := m.seq
	svc := m.query
	return func() tea.Msg {
		text, err := svc.Apply(context.Background(), expr, data)
		return filterMsg{seq: seq, text: text, err: err}
	}
}

// displayText builds the viewport text for an invocation: the pretty
// response body, or the error detail wrapped in an envelope the highlighter
// can classify.
func displayText(inv *invocation) string {
	if inv.err != nil {
		if apiErr, ok := asAPIError(inv.err); ok {
			envelope := map[string]any{
				"error": map[string]any{
					"status": apiErr.Status,
					"detail": apiErr.Detail,
				},
			}
			if text, err := json.MarshalIndent(envelope, "", "  "); err == nil {
				return string(text)
			}
		}
		return inv.err.Error()
	}

	if inv.res == nil || len(inv.res.Body) == 0 {
		return "(no content)"
	}
	if pretty, err := prettyJSON(inv.res.Body); err == nil {
		return pretty
	}
	// Not JSON; show the body as-is.
	return string(inv.res.Body)
}

func prettyJSON(data []byte) (string, error) {
	lines, err := highlight.HighlightBytes(data)
	if err != nil {
		return "", err
	}
	return highlight.Text(lines), nil
}

func asAPIError(err error) (*api.APIError, bool) {
	var apiErr *api.APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

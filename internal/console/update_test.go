package console

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/NivaraGame/adaptive-lms-sub001/internal/api"
	"github.com/NivaraGame/adaptive-lms-sub001/internal/clipboard"
	"github.com/NivaraGame/adaptive-lms-sub001/internal/history"
	"github.com/NivaraGame/adaptive-lms-sub001/internal/query"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	hist, err := history.NewStore(filepath.Join(t.TempDir(), "history.json"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	client := api.NewClient("http://localhost:8000", time.Second, nil)
	m := NewModel(client, query.NewService(), hist, clipboard.NewService(), Config{})

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model)
}

func TestResultMsgShowsResponse(t *testing.T) {
	m := newTestModel(t)
	m.seq = 1

	ep, _ := api.Lookup("service.health")
	updated, _ := m.Update(resultMsg{
		seq:      1,
		endpoint: ep,
		res:      &api.Result{Status: 200, Body: []byte(`{"status": "healthy"}`)},
	})
	m = updated.(Model)

	if m.mode != ModeResult {
		t.Fatalf("mode = %d, want ModeResult", m.mode)
	}
	if m.requestRunning {
		t.Error("requestRunning should clear")
	}
	joined := strings.Join(m.lines, "\n")
	if !strings.Contains(joined, `"status": "healthy"`) {
		t.Errorf("viewport lines missing response:\n%s", joined)
	}
}

func TestStaleResultIsDropped(t *testing.T) {
	m := newTestModel(t)
	m.seq = 2 // a newer invocation is in flight

	ep, _ := api.Lookup("service.health")
	updated, _ := m.Update(resultMsg{seq: 1, endpoint: ep, res: &api.Result{Status: 200, Body: []byte(`{}`)}})
	m = updated.(Model)

	if m.result != nil {
		t.Error("stale result must not replace state")
	}
	if m.mode == ModeResult {
		t.Error("stale result must not switch modes")
	}
}

func TestResultMsgRecordsHistory(t *testing.T) {
	m := newTestModel(t)
	m.seq = 1

	ep, _ := api.Lookup("users.get")
	params := map[string]string{"user_id": "3"}
	updated, _ := m.Update(resultMsg{
		seq:      1,
		endpoint: ep,
		params:   params,
		res:      &api.Result{Status: 200, Body: []byte(`{"user_id": 3}`)},
	})
	m = updated.(Model)

	latest := m.history.Latest("users.get")
	if latest == nil || latest["user_id"] != "3" {
		t.Errorf("history not recorded: %v", latest)
	}
}

func TestHistorySaveFailureShowsStatus(t *testing.T) {
	// A regular file where the history directory should go makes Save fail.
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("writing blocker file: %v", err)
	}
	hist, err := history.NewStore(filepath.Join(blocker, "history.json"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	client := api.NewClient("http://localhost:8000", time.Second, nil)
	m := NewModel(client, query.NewService(), hist, clipboard.NewService(), Config{})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = updated.(Model)
	m.seq = 1

	ep, _ := api.Lookup("users.get")
	updated, _ = m.Update(resultMsg{
		seq:      1,
		endpoint: ep,
		params:   map[string]string{"user_id": "3"},
		res:      &api.Result{Status: 200, Body: []byte(`{"user_id": 3}`)},
	})
	m = updated.(Model)

	if !strings.Contains(m.status, "History save failed") {
		t.Errorf("status = %q, want save failure note", m.status)
	}
	if m.mode != ModeResult {
		t.Error("save failure must not block showing the result")
	}
}

func TestFailedInvocationDoesNotRecordHistory(t *testing.T) {
	m := newTestModel(t)
	m.seq = 1

	ep, _ := api.Lookup("users.get")
	updated, _ := m.Update(resultMsg{
		seq:      1,
		endpoint: ep,
		params:   map[string]string{"user_id": "999"},
		err:      &api.APIError{Status: 404, Detail: "User not found"},
	})
	m = updated.(Model)

	if m.history.Latest("users.get") != nil {
		t.Error("failed invocations must not be recorded")
	}
}

func TestDisplayTextBackendError(t *testing.T) {
	inv := &invocation{
		err: &api.APIError{Status: 404, Detail: "User data not found"},
	}

	text := displayText(inv)
	if !strings.Contains(text, `"status": 404`) {
		t.Errorf("missing status in error envelope:\n%s", text)
	}
	if !strings.Contains(text, `"detail": "User data not found"`) {
		t.Errorf("missing detail in error envelope:\n%s", text)
	}
}

func TestDisplayTextTransportError(t *testing.T) {
	inv := &invocation{err: errors.New("connection refused")}

	if got := displayText(inv); got != "connection refused" {
		t.Errorf("displayText = %q", got)
	}
}

func TestDisplayTextEmptyBody(t *testing.T) {
	inv := &invocation{res: &api.Result{Status: 204}}

	if got := displayText(inv); got != "(no content)" {
		t.Errorf("displayText = %q", got)
	}
}

func TestDisplayTextNonJSONBody(t *testing.T) {
	inv := &invocation{res: &api.Result{Status: 200, Body: []byte("plain text")}}

	if got := displayText(inv); got != "plain text" {
		t.Errorf("displayText = %q", got)
	}
}

func TestBrowseSearchFiltersCatalog(t *testing.T) {
	m := newTestModel(t)
	m.search = "recommend"

	visible := m.visibleEndpoints()
	if len(visible) == 0 {
		t.Fatal("expected matches for 'recommend'")
	}
	for _, ep := range visible {
		if !strings.Contains(ep.Name, "recommendations") {
			t.Errorf("unexpected endpoint %q in filtered view", ep.Name)
		}
	}
}

func TestBrowseTypingUpdatesSearch(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'u'}})
	m = updated.(Model)
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	m = updated.(Model)

	if m.search != "us" {
		t.Errorf("search = %q, want %q", m.search, "us")
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m = updated.(Model)
	if m.search != "u" {
		t.Errorf("search after backspace = %q, want %q", m.search, "u")
	}
}

func TestEnterOpensForm(t *testing.T) {
	m := newTestModel(t)
	m.search = "users.create"
	m.selected = 0

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	if m.mode != ModeForm {
		t.Fatalf("mode = %d, want ModeForm", m.mode)
	}
	if m.form.endpoint.Name != "users.create" {
		t.Errorf("form endpoint = %q", m.form.endpoint.Name)
	}
}

func TestHelpOverlayToggles(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	m = updated.(Model)
	if m.mode != ModeHelp {
		t.Fatalf("mode = %d, want ModeHelp", m.mode)
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)
	if m.mode != ModeBrowse {
		t.Errorf("mode after close = %d, want ModeBrowse", m.mode)
	}
}

func TestFilterMsgSwitchesViewport(t *testing.T) {
	m := newTestModel(t)
	m.seq = 1
	m.result = &invocation{res: &api.Result{Value: map[string]any{"a": float64(1)}}}

	updated, _ := m.Update(filterMsg{seq: 1, text: `"filtered"`})
	m = updated.(Model)

	if !m.filtered {
		t.Error("filtered flag not set")
	}
	if len(m.lines) != 1 || m.lines[0] != `"filtered"` {
		t.Errorf("lines = %v", m.lines)
	}
}

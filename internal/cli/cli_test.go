package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testContext(t *testing.T, handler http.HandlerFunc) (*Context, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	ctx := &Context{
		Globals: Globals{Timeout: 5 * time.Second, NoColor: true},
		Out:     &buf,
	}
	if handler != nil {
		srv := httptest.NewServer(handler)
		t.Cleanup(srv.Close)
		ctx.BaseURL = srv.URL
	} else {
		ctx.BaseURL = "http://127.0.0.1:1"
	}
	return ctx, &buf
}

func TestCallPrintsPrettyResponse(t *testing.T) {
	ctx, buf := testContext(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"user_id": 3, "username": "alice"}`))
	})

	cmd := &CallCmd{Endpoint: "users.get", Param: []string{"user_id=3"}}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "  \"user_id\": 3") {
		t.Errorf("expected 2-space indented output, got:\n%s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("NoColor output must not contain ANSI codes:\n%s", out)
	}
}

func TestCallAppliesFilter(t *testing.T) {
	ctx, buf := testContext(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"username": "alice", "email": "a@example.com"}`))
	})

	cmd := &CallCmd{Endpoint: "users.get", Param: []string{"user_id=1"}, Filter: ".username"}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if got := strings.TrimSpace(buf.String()); got != `"alice"` {
		t.Errorf("filtered output = %q", got)
	}
}

func TestCallUnknownEndpoint(t *testing.T) {
	ctx, _ := testContext(t, nil)

	cmd := &CallCmd{Endpoint: "users.reboot"}
	err := cmd.Run(ctx)
	if err == nil || !strings.Contains(err.Error(), "unknown endpoint") {
		t.Fatalf("err = %v", err)
	}
}

func TestCallBackendErrorPrintsPayload(t *testing.T) {
	ctx, buf := testContext(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail": "User not found"}`))
	})

	cmd := &CallCmd{Endpoint: "users.get", Param: []string{"user_id=999"}}
	err := cmd.Run(ctx)
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if !strings.Contains(buf.String(), `"detail": "User not found"`) {
		t.Errorf("error payload not printed:\n%s", buf.String())
	}
}

func TestParseParams(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		want    map[string]string
		wantErr bool
	}{
		{name: "empty", pairs: nil, want: map[string]string{}},
		{name: "single", pairs: []string{"user_id=3"}, want: map[string]string{"user_id": "3"}},
		{name: "value with equals", pairs: []string{`ctx={"a"="b"}`}, want: map[string]string{"ctx": `{"a"="b"}`}},
		{name: "missing equals", pairs: []string{"user_id"}, wantErr: true},
		{name: "empty name", pairs: []string{"=3"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseParams(tt.pairs)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseParams failed: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("%s = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestEndpointsListsCatalog(t *testing.T) {
	ctx, buf := testContext(t, nil)

	cmd := &EndpointsCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"users.get", "recommendations.next", "dialogs.end", "metrics.create"} {
		if !strings.Contains(out, want) {
			t.Errorf("catalog listing missing %q", want)
		}
	}
	if !strings.Contains(out, "user_id*") {
		t.Error("required params should be marked with *")
	}
}

func TestEndpointsGroupFilter(t *testing.T) {
	ctx, buf := testContext(t, nil)

	cmd := &EndpointsCmd{Group: "dialogs"}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "dialogs.create") {
		t.Error("expected dialogs endpoints")
	}
	if strings.Contains(out, "users.create") {
		t.Error("group filter leaked other groups")
	}
}

func TestCheckHealthyBackend(t *testing.T) {
	ctx, buf := testContext(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "healthy"}`))
	})

	cmd := &CheckCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(buf.String(), "OK") {
		t.Errorf("expected OK probes:\n%s", buf.String())
	}
}

func TestCheckUnreachableBackend(t *testing.T) {
	ctx, buf := testContext(t, nil)
	ctx.Timeout = 200 * time.Millisecond

	cmd := &CheckCmd{}
	err := cmd.Run(ctx)
	if err == nil {
		t.Fatal("expected failure for unreachable backend")
	}
	if !strings.Contains(buf.String(), "FAIL") {
		t.Errorf("expected FAIL probes:\n%s", buf.String())
	}
}

func TestEnvEnabled(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{name: "one", value: "1", want: true},
		{name: "true", value: "true", want: true},
		{name: "yes", value: "yes", want: true},
		{name: "on", value: "on", want: true},
		{name: "false", value: "false", want: false},
		{name: "zero", value: "0", want: false},
		{name: "empty", value: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LMSPROBE_TELEMETRY", tt.value)
			got := envEnabled("LMSPROBE_TELEMETRY")
			if got != tt.want {
				t.Fatalf("envEnabled(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

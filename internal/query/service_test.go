package query

import (
	"context"
	"strings"
	"testing"
)

func sampleData() any {
	return map[string]any{
		"users": []any{
			map[string]any{"username": "alice", "user_id": float64(1)},
			map[string]any{"username": "bob", "user_id": float64(2)},
		},
		"total": float64(2),
	}
}

func TestApplyIdentity(t *testing.T) {
	svc := NewService()

	out, err := svc.Apply(context.Background(), ".", sampleData())
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !strings.Contains(out, `"alice"`) || !strings.Contains(out, `"total": 2`) {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestApplySelectsField(t *testing.T) {
	svc := NewService()

	out, err := svc.Apply(context.Background(), ".users[0].username", sampleData())
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if out != `"alice"` {
		t.Errorf("got %q, want %q", out, `"alice"`)
	}
}

func TestApplyMultipleResults(t *testing.T) {
	svc := NewService()

	out, err := svc.Apply(context.Background(), ".users[].user_id", sampleData())
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if out != "1\n2" {
		t.Errorf("got %q, want %q", out, "1\n2")
	}
}

func TestApplyParseError(t *testing.T) {
	svc := NewService()

	_, err := svc.Apply(context.Background(), ".users[", sampleData())
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "parse error") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestApplyRuntimeError(t *testing.T) {
	svc := NewService()

	_, err := svc.Apply(context.Background(), ".total[0]", sampleData())
	if err == nil {
		t.Fatal("expected runtime error for indexing a number")
	}
}

func TestApplyReusesCompiledFilter(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	if _, err := svc.Apply(ctx, ".total", sampleData()); err != nil {
		t.Fatalf("first Apply failed: %v", err)
	}

	svc.mu.RLock()
	_, cached := svc.codeCache[".total"]
	svc.mu.RUnlock()
	if !cached {
		t.Fatal("compiled filter not cached")
	}

	out, err := svc.Apply(ctx, ".total", sampleData())
	if err != nil {
		t.Fatalf("second Apply failed: %v", err)
	}
	if out != "2" {
		t.Errorf("got %q, want %q", out, "2")
	}
}

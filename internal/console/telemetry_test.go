package console

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestPercentiles(t *testing.T) {
	values := []time.Duration{
		10 * time.Millisecond,
		20 * time.Millisecond,
		30 * time.Millisecond,
		40 * time.Millisecond,
		50 * time.Millisecond,
	}

	p50, p95, p99 := percentiles(values)
	if p50 != 30*time.Millisecond {
		t.Fatalf("p50 = %v, want 30ms", p50)
	}
	if p95 != 40*time.Millisecond {
		t.Fatalf("p95 = %v, want 40ms", p95)
	}
	if p99 != 40*time.Millisecond {
		t.Fatalf("p99 = %v, want 40ms", p99)
	}
}

func TestTelemetrySummaryDisabled(t *testing.T) {
	telemetry := newRequestTelemetry(false)
	if summary, ok := telemetry.Summary(); ok || summary != "" {
		t.Fatalf("Summary() = (%q, %v), want empty false", summary, ok)
	}
}

func TestTelemetrySummaryNoRequests(t *testing.T) {
	telemetry := newRequestTelemetry(true)
	summary, ok := telemetry.Summary()
	if !ok {
		t.Fatal("Summary() should be available when enabled")
	}
	if !strings.Contains(summary, "no completed requests") {
		t.Fatalf("unexpected summary: %q", summary)
	}
}

func TestTelemetryRecordsCompletedRequest(t *testing.T) {
	telemetry := newRequestTelemetry(true)

	telemetry.OnQueued(1)
	telemetry.OnDispatch(1)
	telemetry.OnResult(1, nil, true)

	summary, ok := telemetry.Summary()
	if !ok {
		t.Fatal("Summary() should be available")
	}
	if !strings.Contains(summary, "samples=1") {
		t.Fatalf("unexpected summary: %q", summary)
	}
	if len(telemetry.pending) != 0 {
		t.Errorf("pending span not cleared: %v", telemetry.pending)
	}
}

func TestTelemetryCountsOutcomes(t *testing.T) {
	telemetry := newRequestTelemetry(true)

	telemetry.OnQueued(1)
	telemetry.OnDispatch(1)
	telemetry.OnResult(1, errors.New("backend returned 500"), true)

	telemetry.OnQueued(2)
	telemetry.OnDispatch(2)
	telemetry.OnResult(2, context.Canceled, true)

	telemetry.OnQueued(3)
	telemetry.OnDispatch(3)
	telemetry.OnResult(3, nil, false)

	if telemetry.failedResults != 1 {
		t.Errorf("failedResults = %d, want 1", telemetry.failedResults)
	}
	if telemetry.canceledResults != 1 {
		t.Errorf("canceledResults = %d, want 1", telemetry.canceledResults)
	}
	if telemetry.staleResults != 1 {
		t.Errorf("staleResults = %d, want 1", telemetry.staleResults)
	}
}

func TestTelemetryDisabledIsNoop(t *testing.T) {
	telemetry := newRequestTelemetry(false)

	telemetry.OnQueued(1)
	telemetry.OnDispatch(1)
	telemetry.OnResult(1, nil, true)

	if len(telemetry.pending) != 0 || len(telemetry.keyToDone) != 0 {
		t.Error("disabled telemetry should record nothing")
	}
}

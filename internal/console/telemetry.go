package console

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"
)

// requestTelemetry tracks how long invocations spend queued in the UI and
// executing against the backend. Disabled unless the user opts in via env.
type requestTelemetry struct {
	enabled bool

	pending map[int]requestSpan

	keyToDone   []time.Duration // enter pressed → result frame
	dispatchLag []time.Duration // enter pressed → request sent
	execTime    []time.Duration // request sent → response

	staleResults    int
	canceledResults int
	failedResults   int
}

type requestSpan struct {
	queuedAt   time.Time
	dispatched time.Time
}

func newRequestTelemetry(enabled bool) *requestTelemetry {
	return &requestTelemetry{
		enabled: enabled,
		pending: map[int]requestSpan{},
	}
}

func (t *requestTelemetry) OnQueued(seq int) {
	if !t.enabled {
		return
	}
	t.pending[seq] = requestSpan{queuedAt: time.Now()}
}

func (t *requestTelemetry) OnDispatch(seq int) {
	if !t.enabled {
		return
	}
	span, ok := t.pending[seq]
	if !ok {
		span = requestSpan{queuedAt: time.Now()}
	}
	span.dispatched = time.Now()
	t.pending[seq] = span
	if !span.queuedAt.IsZero() {
		t.dispatchLag = append(t.dispatchLag, span.dispatched.Sub(span.queuedAt))
	}
}

func (t *requestTelemetry) OnResult(seq int, err error, accepted bool) {
	if !t.enabled {
		return
	}

	span, ok := t.pending[seq]
	if !ok {
		if isCanceled(err) {
			t.canceledResults++
		}
		if !accepted {
			t.staleResults++
		}
		return
	}
	delete(t.pending, seq)

	now := time.Now()
	if accepted && !isCanceled(err) {
		if !span.queuedAt.IsZero() {
			t.keyToDone = append(t.keyToDone, now.Sub(span.queuedAt))
		}
		if !span.dispatched.IsZero() {
			t.execTime = append(t.execTime, now.Sub(span.dispatched))
		}
	}
	if isCanceled(err) {
		t.canceledResults++
	} else if err != nil {
		t.failedResults++
	}
	if !accepted {
		t.staleResults++
	}
}

func (t *requestTelemetry) Summary() (string, bool) {
	if !t.enabled {
		return "", false
	}
	if len(t.keyToDone) == 0 {
		return "telemetry: no completed requests yet", true
	}

	doneP50, doneP95, doneP99 := percentiles(t.keyToDone)
	lagP50, lagP95, lagP99 := percentiles(t.dispatchLag)
	execP50, execP95, execP99 := percentiles(t.execTime)

	return fmt.Sprintf(
		"telemetry submit->frame samples=%d p50=%s p95=%s p99=%s | submit->dispatch p50=%s p95=%s p99=%s | backend p50=%s p95=%s p99=%s | failed=%d stale=%d canceled=%d",
		len(t.keyToDone),
		doneP50, doneP95, doneP99,
		lagP50, lagP95, lagP99,
		execP50, execP95, execP99,
		t.failedResults, t.staleResults, t.canceledResults,
	), true
}

func percentiles(values []time.Duration) (time.Duration, time.Duration, time.Duration) {
	if len(values) == 0 {
		return 0, 0, 0
	}

	cpy := make([]time.Duration, len(values))
	copy(cpy, values)
	slices.Sort(cpy)

	return percentile(cpy, 50), percentile(cpy, 95), percentile(cpy, 99)
}

func percentile(sorted []time.Duration, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	idx := int(float64(len(sorted)-1) * (float64(p) / 100.0))
	return sorted[idx]
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

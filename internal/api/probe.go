package api

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"
)

// ProbeResult is the outcome of one reachability check.
type ProbeResult struct {
	Endpoint string
	Status   int
	Latency  time.Duration
	Err      error
}

// Check probes the backend's root and health endpoints concurrently.
// Results come back in catalog order regardless of completion order; a
// failed probe is reported in its slot rather than aborting the others.
func (c *Client) Check(ctx context.Context) []ProbeResult {
	targets := []string{"service.root", "service.health"}
	results := make([]ProbeResult, len(targets))

	g, ctx := errgroup.WithContext(ctx)
	for i, name := range targets {
		ep, ok := Lookup(name)
		if !ok {
			results[i] = ProbeResult{Endpoint: name, Err: errors.New("unknown endpoint")}
			continue
		}
		i := i
		g.Go(func() error {
			res, err := c.Invoke(ctx, ep, nil)
			pr := ProbeResult{Endpoint: ep.Name, Err: err}
			if err == nil {
				pr.Status = res.Status
				pr.Latency = res.Latency
			} else {
				var apiErr *APIError
				if errors.As(err, &apiErr) {
					pr.Status = apiErr.Status
					pr.Latency = apiErr.Latency
				}
			}
			results[i] = pr
			return nil
		})
	}
	// Probe failures are reported per-slot, never as a group error.
	_ = g.Wait()

	return results
}

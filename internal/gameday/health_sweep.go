package gameday

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// HealthSweep опрашивает health и readiness эндпоинты всех сервисов параллельно.
func (r *Runner) HealthSweep(ctx context.Context) Result {
	r.header("Health Sweep")

	start := r.now()
	checks := r.endpoints.healthChecks()
	probes := make([]Probe, len(checks))

	var g errgroup.Group
	for i, c := range checks {
		g.Go(func() error {
			probes[i] = r.client.Get(ctx, c.url)
			return nil
		})
	}
	_ = g.Wait()

	results := make(map[string]Probe, len(checks))
	healthy := 0
	for i, c := range checks {
		p := probes[i]
		results[c.service] = p

		state := "✗ UNHEALTHY"
		if p.Success {
			state = "✓ HEALTHY"
			healthy++
		}
		r.printf("  %s: %s (%.0fms)\n", c.service, state, p.LatencyMS)
	}

	status := statusOf(healthy, len(checks))
	r.footer(status, fmtRatio(" (%d/%d healthy)", healthy, len(checks)))

	return r.result(ScenarioHealthSweep, status, start, map[string]any{
		"total_services": len(checks),
		"healthy":        healthy,
		"unhealthy":      len(checks) - healthy,
		"checks":         results,
	})
}

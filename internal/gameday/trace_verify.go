package gameday

import (
	"context"
	"fmt"
	"time"
)

// DefaultTraceWait — сколько ждать, пока спаны дойдут до backend.
const DefaultTraceWait = 3 * time.Second

// TraceVerify отправляет синхронизацию с узнаваемым project_id и проверяет,
// что trace backend отвечает. Loki используется как прокси-проверка
// доступности стека наблюдаемости.
func (r *Runner) TraceVerify(ctx context.Context, wait time.Duration) Result {
	r.header("Trace Verification")

	start := r.now()
	traceID := fmt.Sprintf("test-trace-%d", start.Unix())

	r.printf("  Sending traced request with ID: %s\n", traceID)
	req := r.client.PostJSON(ctx, r.endpoints.syncURL(), syncPayload{
		ProjectID: traceID,
		Content:   "Trace verification test",
	})

	if !req.Success {
		r.printf("  ✗ Request failed: %s\n", req.Error)
		r.footer(StatusFailed, "")
		return r.result(ScenarioTraceVerify, StatusFailed, start, map[string]any{
			"error":   "Initial request failed",
			"request": req,
		})
	}
	r.printf("  ✓ Request succeeded (%.0fms)\n", req.LatencyMS)

	r.printf("  Waiting for trace propagation (%s)...\n", wait)
	if err := sleep(ctx, wait); err != nil {
		r.footer(StatusPartial, "")
		return r.result(ScenarioTraceVerify, StatusPartial, start, map[string]any{
			"traced_request": req,
			"trace_id":       traceID,
			"error":          err.Error(),
		})
	}

	backend := r.client.Get(ctx, r.endpoints.Loki+"/ready")
	if backend.Success {
		r.printf("  ✓ Trace backend reachable\n")
	} else {
		r.printf("  ✗ Trace backend unreachable\n")
	}

	status := StatusPartial
	if backend.Success {
		status = StatusPassed
	}
	r.footer(status, "")

	return r.result(ScenarioTraceVerify, status, start, map[string]any{
		"traced_request": req,
		"tempo_check":    backend,
		"trace_id":       traceID,
	})
}

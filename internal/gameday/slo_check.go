package gameday

import (
	"bytes"
	"context"
	"fmt"

	"github.com/prometheus/common/expfmt"
)

// ExpectedSLOMetrics — метрики, которые обязан отдавать controller.
var ExpectedSLOMetrics = []string{
	"shield_system_health_score",
	"shield_active_scans_total",
}

// SLOCheck забирает /metrics controller, разбирает text exposition format
// и проверяет наличие SLO метрик.
func (r *Runner) SLOCheck(ctx context.Context) Result {
	r.header("SLO Metrics Check")

	start := r.now()
	url := r.endpoints.Controller + "/metrics"
	r.printf("  Checking metrics at: %s\n", url)

	probe := r.client.Get(ctx, url)
	details := map[string]any{
		"metrics_endpoint": probe,
		"expected_metrics": ExpectedSLOMetrics,
		"found_metrics":    []string{},
	}

	if !probe.Success {
		r.printf("  ✗ Metrics endpoint failed: %s\n", probe.Error)
		r.footer(StatusFailed, "")
		return r.result(ScenarioSLOCheck, StatusFailed, start, details)
	}
	r.printf("  ✓ Metrics endpoint responsive (%.0fms)\n", probe.LatencyMS)

	found, values, err := findMetrics(probe.body, ExpectedSLOMetrics)
	if err != nil {
		r.printf("  ✗ Cannot parse metrics: %v\n", err)
		details["error"] = err.Error()
		r.footer(StatusFailed, "")
		return r.result(ScenarioSLOCheck, StatusFailed, start, details)
	}

	for _, name := range found {
		r.printf("  ✓ %s = %g\n", name, values[name])
	}
	details["found_metrics"] = found
	details["values"] = values

	status := statusOf(len(found), len(ExpectedSLOMetrics))
	r.footer(status, fmtRatio(" (%d/%d metrics)", len(found), len(ExpectedSLOMetrics)))

	return r.result(ScenarioSLOCheck, status, start, details)
}

// findMetrics возвращает найденные имена из expected и сумму значений
// их серий (для gauge vec это сумма по всем label).
func findMetrics(body []byte, expected []string) ([]string, map[string]float64, error) {
	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("parse exposition: %w", err)
	}

	found := make([]string, 0, len(expected))
	values := make(map[string]float64, len(expected))
	for _, name := range expected {
		mf, ok := families[name]
		if !ok || len(mf.GetMetric()) == 0 {
			continue
		}

		var sum float64
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetGauge() != nil:
				sum += m.GetGauge().GetValue()
			case m.GetCounter() != nil:
				sum += m.GetCounter().GetValue()
			case m.GetUntyped() != nil:
				sum += m.GetUntyped().GetValue()
			}
		}
		found = append(found, name)
		values[name] = sum
	}
	return found, values, nil
}

func fmtRatio(format string, n, total int) string {
	return fmt.Sprintf(format, n, total)
}

package gameday

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Status — итог сценария.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

// Имена сценариев.
const (
	ScenarioLoadTest    = "load_test"
	ScenarioHealthSweep = "health_sweep"
	ScenarioTraceVerify = "trace_verify"
	ScenarioSLOCheck    = "slo_check"
)

// Result — результат одного сценария.
type Result struct {
	Scenario   string         `json:"scenario"`
	Status     Status         `json:"status"`
	DurationMS float64        `json:"duration_ms"`
	Details    map[string]any `json:"details"`
	Timestamp  string         `json:"timestamp"`
}

// Report — результат прогона Game Day.
type Report struct {
	GameDayRun string   `json:"game_day_run"`
	Results    []Result `json:"results"`
}

// NewReport собирает отчёт с отметкой времени at.
func NewReport(results []Result, at time.Time) Report {
	return Report{
		GameDayRun: formatTimestamp(at),
		Results:    results,
	}
}

// AllPassed возвращает true, если все сценарии прошли.
func (r Report) AllPassed() bool {
	for _, res := range r.Results {
		if res.Status != StatusPassed {
			return false
		}
	}
	return true
}

// Counts возвращает число сценариев по статусам.
func (r Report) Counts() map[Status]int {
	counts := map[Status]int{StatusPassed: 0, StatusPartial: 0, StatusFailed: 0}
	for _, res := range r.Results {
		counts[res.Status]++
	}
	return counts
}

// WriteFile записывает отчёт в path в формате JSON с отступами.
func (r Report) WriteFile(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// statusOf: все успешны — passed, хотя бы один — partial, иначе failed.
func statusOf(ok, total int) Status {
	switch {
	case total > 0 && ok == total:
		return StatusPassed
	case ok > 0:
		return StatusPartial
	default:
		return StatusFailed
	}
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

package gameday

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

const banner = "============================================================"

// Runner выполняет сценарии против набора Endpoints.
type Runner struct {
	client    *Client
	endpoints Endpoints
	now       func() time.Time

	mu       sync.Mutex
	progress io.Writer
}

// RunnerConfig — конфигурация Runner.
type RunnerConfig struct {
	Client    *Client
	Endpoints Endpoints
	// Progress получает человекочитаемый ход выполнения. nil — не выводить.
	Progress io.Writer
}

// NewRunner создаёт Runner.
func NewRunner(cfg RunnerConfig) *Runner {
	client := cfg.Client
	if client == nil {
		client = NewClient(DefaultTimeout)
	}
	progress := cfg.Progress
	if progress == nil {
		progress = io.Discard
	}
	return &Runner{
		client:    client,
		endpoints: cfg.Endpoints,
		now:       time.Now,
		progress:  progress,
	}
}

// SuiteOptions — параметры полного прогона.
type SuiteOptions struct {
	LoadTest  LoadTestOptions
	TraceWait time.Duration
}

// DefaultSuiteOptions — полный прогон делает 20 запросов нагрузки.
func DefaultSuiteOptions() SuiteOptions {
	lt := DefaultLoadTestOptions()
	lt.Requests = 20
	return SuiteOptions{
		LoadTest:  lt,
		TraceWait: DefaultTraceWait,
	}
}

type namedScenario struct {
	name string
	run  func(ctx context.Context) Result
}

// RunAll выполняет health-sweep, slo-check, trace-verify и load-test
// последовательно. Упавший сценарий записывается как failed, остальные
// продолжают выполняться.
func (r *Runner) RunAll(ctx context.Context, opts SuiteOptions) []Result {
	scenarios := []namedScenario{
		{"Health Sweep", r.HealthSweep},
		{"SLO Check", r.SLOCheck},
		{"Trace Verify", func(ctx context.Context) Result { return r.TraceVerify(ctx, opts.TraceWait) }},
		{"Load Test", func(ctx context.Context) Result { return r.LoadTest(ctx, opts.LoadTest) }},
	}
	return r.runScenarios(ctx, scenarios)
}

func (r *Runner) runScenarios(ctx context.Context, scenarios []namedScenario) []Result {
	r.printf("\n%s\nATLAS PLATFORM GAME DAY - FULL SUITE\n%s\n", banner, banner)

	results := make([]Result, 0, len(scenarios))
	for _, s := range scenarios {
		results = append(results, r.safeRun(ctx, s))
	}

	counts := Report{Results: results}.Counts()
	r.printf("\n%s\nGAME DAY SUMMARY\n%s\n", banner, banner)
	r.printf("  Passed:  %d\n  Partial: %d\n  Failed:  %d\n%s\n",
		counts[StatusPassed], counts[StatusPartial], counts[StatusFailed], banner)

	return results
}

func (r *Runner) safeRun(ctx context.Context, s namedScenario) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			r.printf("\n✗ Scenario '%s' crashed: %v\n", s.name, p)
			res = Result{
				Scenario:  strings.ReplaceAll(strings.ToLower(s.name), " ", "_"),
				Status:    StatusFailed,
				Details:   map[string]any{"error": fmt.Sprint(p)},
				Timestamp: formatTimestamp(r.now()),
			}
		}
	}()
	return s.run(ctx)
}

func (r *Runner) header(title string) {
	r.printf("\n%s\nGAME DAY SCENARIO: %s\n%s\n", banner, title, banner)
}

func (r *Runner) footer(status Status, suffix string) {
	r.printf("\n%s\nRESULTS: %s%s\n%s\n", banner, strings.ToUpper(string(status)), suffix, banner)
}

// printf безопасен для вызова из нескольких горутин.
func (r *Runner) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.progress, format, args...)
}

func (r *Runner) result(scenario string, status Status, start time.Time, details map[string]any) Result {
	return Result{
		Scenario:   scenario,
		Status:     status,
		DurationMS: round2(millis(r.now().Sub(start))),
		Details:    details,
		Timestamp:  formatTimestamp(r.now()),
	}
}

// sleep ждёт d или отмену ctx.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

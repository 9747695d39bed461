package gameday

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func sameEndpoints(url string) Endpoints {
	return Endpoints{API: url, Controller: url, Prometheus: url, Grafana: url, Loki: url, Alloy: url}
}

func newTestRunner(url string) *Runner {
	return NewRunner(RunnerConfig{
		Client:    NewClient(2 * time.Second),
		Endpoints: sameEndpoints(url),
	})
}

func noJitter(requests, concurrency int) LoadTestOptions {
	return LoadTestOptions{Requests: requests, Concurrency: concurrency}
}

// platformMux имитирует все сервисы платформы на одном адресе.
func platformMux(t *testing.T) *http.ServeMux {
	t.Helper()

	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	f.NewGauge(prometheus.GaugeOpts{Name: "shield_system_health_score", Help: "h"}).Set(97)
	scans := f.NewGaugeVec(prometheus.GaugeOpts{Name: "shield_active_scans_total", Help: "s"}, []string{"type"})
	scans.WithLabelValues("vulnerability").Set(2)
	scans.WithLabelValues("compliance").Set(1)

	ok := func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte("OK")) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", ok)
	mux.HandleFunc("GET /-/ready", ok)
	mux.HandleFunc("GET /api/health", ok)
	mux.HandleFunc("GET /ready", ok)
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("POST /manuscript/sync", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"synced","trace_id":"TODO-extract-trace-id"}`))
	})
	return mux
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		ok, total int
		want      Status
	}{
		{5, 5, StatusPassed},
		{3, 5, StatusPartial},
		{0, 5, StatusFailed},
		{0, 0, StatusFailed},
	}
	for _, tt := range tests {
		if got := statusOf(tt.ok, tt.total); got != tt.want {
			t.Errorf("statusOf(%d, %d) = %s, want %s", tt.ok, tt.total, got, tt.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	var probes []Probe
	for i := 1; i <= 20; i++ {
		probes = append(probes, Probe{LatencyMS: float64(i), Success: i%10 != 0, Error: "boom"})
	}

	stats := summarize(probes)

	if stats.success != 18 {
		t.Errorf("expected 18 successes, got %d", stats.success)
	}
	if stats.avg != 10.5 {
		t.Errorf("expected avg 10.5, got %v", stats.avg)
	}
	// int(20*0.95) = 19 → 20-й элемент
	if stats.p95 != 20 {
		t.Errorf("expected p95 20, got %v", stats.p95)
	}
	if len(stats.errorSamples) != 2 {
		t.Errorf("expected 2 error samples, got %d", len(stats.errorSamples))
	}
}

func TestSummarize_Empty(t *testing.T) {
	stats := summarize(nil)
	if stats.avg != 0 || stats.p95 != 0 || stats.success != 0 {
		t.Errorf("expected zero stats, got %+v", stats)
	}
}

func TestJitter(t *testing.T) {
	for i := 0; i < 100; i++ {
		d := jitter(50*time.Millisecond, 300*time.Millisecond)
		if d < 50*time.Millisecond || d >= 300*time.Millisecond {
			t.Fatalf("jitter out of range: %s", d)
		}
	}
	if d := jitter(0, 0); d != 0 {
		t.Errorf("expected zero jitter, got %s", d)
	}
}

func TestLoadTest_Passed(t *testing.T) {
	projectRe := regexp.MustCompile(`^proj_[1-9]\d{2}$`)

	var (
		mu       sync.Mutex
		contents = map[string]bool{}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p syncPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil || !projectRe.MatchString(p.ProjectID) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		mu.Lock()
		contents[p.Content] = true
		mu.Unlock()
		w.Write([]byte(`{"status":"synced"}`))
	}))
	defer srv.Close()

	res := newTestRunner(srv.URL).LoadTest(context.Background(), noJitter(10, 4))

	if res.Status != StatusPassed {
		t.Fatalf("expected passed, got %s (%v)", res.Status, res.Details)
	}
	if res.Scenario != ScenarioLoadTest {
		t.Errorf("unexpected scenario %q", res.Scenario)
	}
	if res.Details["success"] != 10 || res.Details["errors"] != 0 {
		t.Errorf("unexpected details %v", res.Details)
	}
	if len(contents) != 10 || !contents["Game day load test iteration 10"] {
		t.Errorf("expected 10 distinct iterations, got %v", contents)
	}
}

func TestLoadTest_Partial(t *testing.T) {
	var n atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if n.Add(1)%2 == 0 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	res := newTestRunner(srv.URL).LoadTest(context.Background(), noJitter(6, 1))

	if res.Status != StatusPartial {
		t.Fatalf("expected partial, got %s", res.Status)
	}
	if res.Details["errors"] != 3 {
		t.Errorf("expected 3 errors, got %v", res.Details["errors"])
	}
}

func TestLoadTest_Failed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	res := newTestRunner(srv.URL).LoadTest(context.Background(), noJitter(8, 2))

	if res.Status != StatusFailed {
		t.Fatalf("expected failed, got %s", res.Status)
	}
	samples := res.Details["error_samples"].([]string)
	if len(samples) != maxErrorSamples {
		t.Errorf("expected %d error samples, got %d", maxErrorSamples, len(samples))
	}
	if !strings.Contains(samples[0], "503") {
		t.Errorf("expected status in error, got %q", samples[0])
	}
}

func TestLoadTest_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var n atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if n.Add(1) == 5 {
			cancel()
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	const requests = 200
	res := newTestRunner(srv.URL).LoadTest(ctx, noJitter(requests, 4))

	sent, _ := res.Details["sent"].(int)
	success, _ := res.Details["success"].(int)
	if sent < 5 || sent >= requests {
		t.Fatalf("expected run to stop early, sent %d", sent)
	}
	if res.Details["errors"] != sent-success {
		t.Errorf("errors should count only sent requests: errors=%v sent=%d success=%d",
			res.Details["errors"], sent, success)
	}
	if res.Status == StatusPassed {
		t.Error("cancelled run must not pass")
	}
}

func TestHealthSweep(t *testing.T) {
	srv := httptest.NewServer(platformMux(t))
	defer srv.Close()

	res := newTestRunner(srv.URL).HealthSweep(context.Background())

	if res.Status != StatusPassed {
		t.Fatalf("expected passed, got %s", res.Status)
	}
	checks := res.Details["checks"].(map[string]Probe)
	if len(checks) != 6 {
		t.Errorf("expected 6 checks, got %d", len(checks))
	}
	if !checks["go-controller"].Success {
		t.Error("expected controller to be healthy")
	}
}

func TestHealthSweep_Partial(t *testing.T) {
	platform := httptest.NewServer(platformMux(t))
	defer platform.Close()

	e := sameEndpoints(platform.URL)
	e.Loki = "http://127.0.0.1:1" // никто не слушает

	r := NewRunner(RunnerConfig{Client: NewClient(time.Second), Endpoints: e})
	res := r.HealthSweep(context.Background())

	if res.Status != StatusPartial {
		t.Fatalf("expected partial, got %s", res.Status)
	}
	if res.Details["unhealthy"] != 1 {
		t.Errorf("expected 1 unhealthy, got %v", res.Details["unhealthy"])
	}
}

func TestTraceVerify(t *testing.T) {
	var projectID atomic.Value
	mux := platformMux(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			var p syncPayload
			json.NewDecoder(r.Body).Decode(&p)
			projectID.Store(p.ProjectID)
			r.Body = http.NoBody
		}
		mux.ServeHTTP(w, r)
	}))
	defer srv.Close()

	res := newTestRunner(srv.URL).TraceVerify(context.Background(), 0)

	if res.Status != StatusPassed {
		t.Fatalf("expected passed, got %s (%v)", res.Status, res.Details)
	}
	id, _ := res.Details["trace_id"].(string)
	if !strings.HasPrefix(id, "test-trace-") {
		t.Errorf("unexpected trace id %q", id)
	}
	if projectID.Load() != id {
		t.Errorf("expected project_id %q to be sent, got %v", id, projectID.Load())
	}
}

func TestTraceVerify_RequestFailed(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	res := newTestRunner(srv.URL).TraceVerify(context.Background(), time.Hour)

	if res.Status != StatusFailed {
		t.Fatalf("expected failed, got %s", res.Status)
	}
	if res.Details["error"] != "Initial request failed" {
		t.Errorf("unexpected details %v", res.Details)
	}
}

func TestTraceVerify_BackendDown(t *testing.T) {
	platform := httptest.NewServer(platformMux(t))
	defer platform.Close()

	e := sameEndpoints(platform.URL)
	e.Loki = "http://127.0.0.1:1"

	r := NewRunner(RunnerConfig{Client: NewClient(time.Second), Endpoints: e})
	res := r.TraceVerify(context.Background(), 0)

	if res.Status != StatusPartial {
		t.Fatalf("expected partial, got %s", res.Status)
	}
}

func TestSLOCheck(t *testing.T) {
	srv := httptest.NewServer(platformMux(t))
	defer srv.Close()

	res := newTestRunner(srv.URL).SLOCheck(context.Background())

	if res.Status != StatusPassed {
		t.Fatalf("expected passed, got %s (%v)", res.Status, res.Details)
	}
	values := res.Details["values"].(map[string]float64)
	if values["shield_system_health_score"] != 97 {
		t.Errorf("expected health 97, got %v", values["shield_system_health_score"])
	}
	if values["shield_active_scans_total"] != 3 {
		t.Errorf("expected 3 active scans, got %v", values["shield_active_scans_total"])
	}
}

func TestSLOCheck_MissingMetric(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("# TYPE shield_system_health_score gauge\nshield_system_health_score 99\n"))
	}))
	defer srv.Close()

	res := newTestRunner(srv.URL).SLOCheck(context.Background())

	if res.Status != StatusPartial {
		t.Fatalf("expected partial, got %s", res.Status)
	}
	found := res.Details["found_metrics"].([]string)
	if len(found) != 1 || found[0] != "shield_system_health_score" {
		t.Errorf("unexpected found metrics %v", found)
	}
}

func TestSLOCheck_EndpointDown(t *testing.T) {
	res := newTestRunner("http://127.0.0.1:1").SLOCheck(context.Background())
	if res.Status != StatusFailed {
		t.Fatalf("expected failed, got %s", res.Status)
	}
}

func TestFindMetrics_Invalid(t *testing.T) {
	if _, _, err := findMetrics([]byte("not a metric line {{{\n"), ExpectedSLOMetrics); err == nil {
		t.Error("expected parse error")
	}
}

func TestRunScenarios_RecoversPanic(t *testing.T) {
	var progress bytes.Buffer
	r := NewRunner(RunnerConfig{Progress: &progress})

	results := r.runScenarios(context.Background(), []namedScenario{
		{"Health Sweep", func(context.Context) Result { return Result{Scenario: ScenarioHealthSweep, Status: StatusPassed} }},
		{"Load Test", func(context.Context) Result { panic("connection refused") }},
	})

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[1].Scenario != "load_test" || results[1].Status != StatusFailed {
		t.Errorf("unexpected crashed result %+v", results[1])
	}
	if results[1].Details["error"] != "connection refused" {
		t.Errorf("unexpected error detail %v", results[1].Details)
	}
	if !strings.Contains(progress.String(), "Failed:  1") {
		t.Errorf("expected summary in progress output:\n%s", progress.String())
	}
}

func TestRunAll(t *testing.T) {
	srv := httptest.NewServer(platformMux(t))
	defer srv.Close()

	opts := SuiteOptions{LoadTest: noJitter(3, 1)}
	results := newTestRunner(srv.URL).RunAll(context.Background(), opts)

	want := []string{ScenarioHealthSweep, ScenarioSLOCheck, ScenarioTraceVerify, ScenarioLoadTest}
	if len(results) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(results))
	}
	for i, res := range results {
		if res.Scenario != want[i] {
			t.Errorf("result %d: expected %s, got %s", i, want[i], res.Scenario)
		}
		if res.Status != StatusPassed {
			t.Errorf("%s: expected passed, got %s", res.Scenario, res.Status)
		}
	}
}

func TestReport(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("X", 3*3600))
	report := NewReport([]Result{
		{Scenario: ScenarioHealthSweep, Status: StatusPassed},
		{Scenario: ScenarioSLOCheck, Status: StatusPartial},
	}, at)

	if report.GameDayRun != "2024-05-01T09:00:00Z" {
		t.Errorf("unexpected run timestamp %q", report.GameDayRun)
	}
	if report.AllPassed() {
		t.Error("expected AllPassed=false")
	}
	if c := report.Counts(); c[StatusPassed] != 1 || c[StatusPartial] != 1 || c[StatusFailed] != 0 {
		t.Errorf("unexpected counts %v", c)
	}

	path := filepath.Join(t.TempDir(), "report.json")
	if err := report.WriteFile(path); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if _, ok := raw["game_day_run"]; !ok {
		t.Error("expected game_day_run key")
	}
	results := raw["results"].([]any)
	first := results[0].(map[string]any)
	for _, key := range []string{"scenario", "status", "duration_ms", "details", "timestamp"} {
		if _, ok := first[key]; !ok {
			t.Errorf("expected %q in result", key)
		}
	}
}

func newTestRoot(url string, outputPath *string, stdout *bytes.Buffer) *cobra.Command {
	root := &cobra.Command{Use: "atlas-gameday", SilenceUsage: true, SilenceErrors: true}
	root.PersistentFlags().StringVar(outputPath, "output", "", "")

	outputFn := func() *Output { return &Output{w: stdout, errW: stdout} }
	runnerFn := func(out *Output) *Runner {
		return NewRunner(RunnerConfig{Endpoints: sameEndpoints(url), Progress: out.Progress()})
	}
	root.AddCommand(NewCommands(runnerFn, outputFn, outputPath)...)
	return root
}

func TestCommands_HealthSweepWritesReport(t *testing.T) {
	srv := httptest.NewServer(platformMux(t))
	defer srv.Close()

	var outputPath string
	var stdout bytes.Buffer
	path := filepath.Join(t.TempDir(), "out.json")

	root := newTestRoot(srv.URL, &outputPath, &stdout)
	root.SetArgs([]string{"health-sweep", "--output", path})

	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(stdout.String(), "health_sweep") {
		t.Errorf("expected summary table, got:\n%s", stdout.String())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatal(err)
	}
	if len(report.Results) != 1 || report.Results[0].Status != StatusPassed {
		t.Errorf("unexpected report %+v", report)
	}
}

func TestCommands_FailureReturnsError(t *testing.T) {
	var outputPath string
	var stdout bytes.Buffer

	root := newTestRoot("http://127.0.0.1:1", &outputPath, &stdout)
	root.SetArgs([]string{"slo-check"})

	if err := root.Execute(); !errors.Is(err, ErrNotPassed) {
		t.Fatalf("expected ErrNotPassed, got %v", err)
	}
}

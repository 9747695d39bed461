package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/shaiso/atlas/internal/config"
)

// --- Logging ---

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLogger_AddsTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo, "json")

	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	logger.InfoContext(ctx, "inside span")
	span.End()

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("log line is not json: %v", err)
	}

	if rec["trace_id"] != span.SpanContext().TraceID().String() {
		t.Errorf("expected trace_id %s, got %v", span.SpanContext().TraceID(), rec["trace_id"])
	}
	if rec["span_id"] != span.SpanContext().SpanID().String() {
		t.Errorf("expected span_id %s, got %v", span.SpanContext().SpanID(), rec["span_id"])
	}
}

func TestNewLogger_NoSpan(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo, "text").With("component", "test")

	logger.InfoContext(context.Background(), "no span")

	out := buf.String()
	if strings.Contains(out, "trace_id") {
		t.Errorf("trace_id should not be set without span: %s", out)
	}
	if !strings.Contains(out, "component=test") {
		t.Errorf("attrs should survive WithAttrs: %s", out)
	}
}

func TestFromContext(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx := WithLogger(context.Background(), logger)
	if FromContext(ctx) != logger {
		t.Error("expected logger from context")
	}
	if FromContext(context.Background()) != slog.Default() {
		t.Error("expected default logger")
	}
}

// --- Tracing ---

func TestSetupTracing_Disabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	shutdown, err := SetupTracing(context.Background(), config.Tracing{Enabled: false}, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("noop shutdown should not fail: %v", err)
	}

	// Propagator ставится даже без экспорта
	fields := otel.GetTextMapPropagator().Fields()
	found := false
	for _, f := range fields {
		if f == "traceparent" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected traceparent propagator, got %v", fields)
	}
}

func TestSetupTracing_Enabled(t *testing.T) {
	prev := otel.GetTracerProvider()
	defer otel.SetTracerProvider(prev)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Tracing{
		Enabled:     true,
		Endpoint:    "127.0.0.1:4317",
		Insecure:    true,
		ServiceName: "atlas-test",
		Environment: "test",
	}

	// gRPC соединение ленивое, коллектор для создания pipeline не нужен
	shutdown, err := SetupTracing(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); !ok {
		t.Errorf("expected sdk tracer provider, got %T", otel.GetTracerProvider())
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = shutdown(ctx)
}

func TestResource_Attributes(t *testing.T) {
	res := Resource(config.Tracing{ServiceName: "atlas-rust-api", Environment: "atlas-local"})

	attrs := map[string]string{}
	for _, kv := range res.Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsString()
	}

	if attrs["service.name"] != "atlas-rust-api" {
		t.Errorf("expected service.name atlas-rust-api, got %q", attrs["service.name"])
	}
	if attrs["env"] != "atlas-local" {
		t.Errorf("expected env atlas-local, got %q", attrs["env"])
	}
}

func TestNewTracerProvider_RecordsSpans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := NewTracerProvider(config.Tracing{ServiceName: "svc", Environment: "env"},
		sdktrace.WithSpanProcessor(sr))
	defer tp.Shutdown(context.Background())

	_, span := tp.Tracer("test").Start(context.Background(), "work")
	span.End()

	ended := sr.Ended()
	if len(ended) != 1 || ended[0].Name() != "work" {
		t.Fatalf("expected one span 'work', got %d", len(ended))
	}
	if ended[0].Resource().Len() == 0 {
		t.Error("span should carry the service resource")
	}
}

// --- Metrics ---

func TestHTTPMetrics_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg, "atlas_test")

	m.Observe(http.MethodGet, "/health", http.StatusOK, 10*time.Millisecond)
	m.Observe(http.MethodGet, "/health", http.StatusOK, 20*time.Millisecond)

	got := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/health", "200"))
	if got != 2 {
		t.Errorf("expected 2 requests, got %v", got)
	}
}

func TestSyncMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSyncMetrics(reg, "atlas_test")

	m.ObserveSync(nil, 50*time.Millisecond)
	m.ObserveSync(errors.New("boom"), time.Millisecond)
	m.ObservePublish(nil)

	if v := testutil.ToFloat64(m.syncs.WithLabelValues(ResultOK)); v != 1 {
		t.Errorf("expected 1 ok sync, got %v", v)
	}
	if v := testutil.ToFloat64(m.syncs.WithLabelValues(ResultError)); v != 1 {
		t.Errorf("expected 1 failed sync, got %v", v)
	}
	if v := testutil.ToFloat64(m.events.WithLabelValues(ResultOK)); v != 1 {
		t.Errorf("expected 1 published event, got %v", v)
	}
}

func TestHandler_ExposesRegistry(t *testing.T) {
	reg := NewRegistry()
	NewSyncMetrics(reg, "atlas_test").ObserveSync(nil, time.Millisecond)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	if !strings.Contains(body, "atlas_test_manuscript_syncs_total") {
		t.Error("expected sync counter in exposition")
	}
	if !strings.Contains(body, "go_goroutines") {
		t.Error("expected go collector in exposition")
	}
}

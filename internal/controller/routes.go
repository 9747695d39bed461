package controller

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/shaiso/atlas/internal/api"
	"github.com/shaiso/atlas/internal/telemetry"
)

// RouterConfig — зависимости HTTP роутера controller.
type RouterConfig struct {
	Gatherer       prometheus.Gatherer
	Metrics        *telemetry.HTTPMetrics
	TracerProvider trace.TracerProvider
	Logger         *slog.Logger
}

// NewRouter создаёт роутер с /health и /metrics.
func NewRouter(cfg RouterConfig) *http.ServeMux {
	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	chain := api.Chain(
		api.Tracing("GET /health", tp),
		api.Recovery(logger),
		api.Metrics(cfg.Metrics),
	)

	mux.Handle("GET /health", chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		api.Text(w, http.StatusOK, "OK")
	})))
	mux.Handle("GET /metrics", telemetry.Handler(cfg.Gatherer))

	return mux
}

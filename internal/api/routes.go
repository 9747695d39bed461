package api

import (
	"net/http"

	"github.com/shaiso/atlas/internal/telemetry"
)

// RegisterRoutes регистрирует все маршруты API.
//
// Неизвестные пути отдают 404, неверный метод на известном пути — 405
// (стандартное поведение ServeMux).
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	route := func(pattern string, fn http.HandlerFunc) {
		chain := Chain(
			Tracing(pattern, h.tracerProvider),
			Recovery(h.logger),
			Logging(h.logger),
			Metrics(h.metrics),
		)
		mux.Handle(pattern, chain(fn))
	}

	route("GET /health", h.Health)
	route("POST /manuscript/sync", h.SyncManuscript)

	if h.gatherer != nil {
		mux.Handle("GET /metrics", telemetry.Handler(h.gatherer))
	}
}

// Router создаёт ServeMux с маршрутами API.
func (h *Handler) Router() *http.ServeMux {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return mux
}

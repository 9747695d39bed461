package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Результаты операций для label "result".
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// HTTPMetrics — метрики HTTP сервера.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTPMetrics регистрирует метрики HTTP в reg.
// namespace — префикс метрик, например "atlas_api".
func NewHTTPMetrics(reg prometheus.Registerer, namespace string) *HTTPMetrics {
	f := promauto.With(reg)
	return &HTTPMetrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests handled by " + namespace,
		}, []string{"method", "route", "code"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Observe записывает один обработанный запрос.
func (m *HTTPMetrics) Observe(method, route string, status int, d time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(d.Seconds())
}

// SyncMetrics — метрики синхронизации манускриптов.
type SyncMetrics struct {
	syncs    *prometheus.CounterVec
	duration prometheus.Histogram
	events   *prometheus.CounterVec
}

// NewSyncMetrics регистрирует метрики синхронизации в reg.
func NewSyncMetrics(reg prometheus.Registerer, namespace string) *SyncMetrics {
	f := promauto.With(reg)
	return &SyncMetrics{
		syncs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "manuscript_syncs_total",
			Help:      "Manuscript sync attempts by result",
		}, []string{"result"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "manuscript_sync_duration_seconds",
			Help:      "Manuscript sync latency including the store call",
			Buckets:   []float64{.025, .05, .075, .1, .25, .5, 1},
		}),
		events: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "manuscript_events_published_total",
			Help:      "manuscript.synced events published by result",
		}, []string{"result"}),
	}
}

// ObserveSync записывает результат синхронизации.
func (m *SyncMetrics) ObserveSync(err error, d time.Duration) {
	m.syncs.WithLabelValues(result(err)).Inc()
	m.duration.Observe(d.Seconds())
}

// ObservePublish записывает результат публикации события.
func (m *SyncMetrics) ObservePublish(err error) {
	m.events.WithLabelValues(result(err)).Inc()
}

// Handler возвращает /metrics handler для gatherer.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// NewRegistry создаёт реестр со стандартными Go и process коллекторами.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}

package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/shaiso/atlas/internal/domain"
	"github.com/shaiso/atlas/internal/mq"
	"github.com/shaiso/atlas/internal/telemetry"
)

// Имена метрик. На них завязаны дашборды и game day slo-check.
const (
	MetricHealthScore = "shield_system_health_score"
	MetricActiveScans = "shield_active_scans_total"
	MetricSyncs       = "shield_manuscript_syncs_total"
)

// Metrics — метрики Shield.
type Metrics struct {
	healthScore prometheus.Gauge
	activeScans *prometheus.GaugeVec
	lastRefresh prometheus.Gauge
	syncs       prometheus.Counter
	syncedBytes prometheus.Counter
}

// NewMetrics регистрирует метрики Shield в reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		healthScore: f.NewGauge(prometheus.GaugeOpts{
			Name: MetricHealthScore,
			Help: "Current health score of the Shield security system (0-100)",
		}),
		activeScans: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: MetricActiveScans,
			Help: "Number of active verification scans by type",
		}, []string{"type"}),
		lastRefresh: f.NewGauge(prometheus.GaugeOpts{
			Name: "shield_last_refresh_timestamp_seconds",
			Help: "Unix time of the last Shield metrics refresh",
		}),
		syncs: f.NewCounter(prometheus.CounterOpts{
			Name: MetricSyncs,
			Help: "Manuscript syncs reported by atlas-api",
		}),
		syncedBytes: f.NewCounter(prometheus.CounterOpts{
			Name: "shield_manuscript_synced_bytes_total",
			Help: "Total manuscript content length reported by atlas-api",
		}),
	}
}

// Apply записывает снимок в gauges.
func (m *Metrics) Apply(s Sample, at time.Time) {
	m.healthScore.Set(s.HealthScore)
	for scanType, n := range s.ActiveScans {
		m.activeScans.WithLabelValues(scanType).Set(float64(n))
	}
	m.lastRefresh.Set(float64(at.Unix()))
}

// HandleSyncEvent — mq.Handler для очереди manuscripts.synced.
func (m *Metrics) HandleSyncEvent(ctx context.Context, d *mq.Delivery) error {
	if d.Message.Type != mq.MessageTypeManuscriptSynced {
		telemetry.FromContext(ctx).WarnContext(ctx, "unexpected message type, skipping",
			"type", d.Message.Type,
			"message_id", d.Message.ID,
		)
		return nil
	}

	event, err := mq.ParsePayload[domain.SyncEvent](&d.Message)
	if err != nil {
		return fmt.Errorf("parse manuscript.synced: %w", err)
	}

	m.syncs.Inc()
	m.syncedBytes.Add(float64(event.ContentLength))

	telemetry.FromContext(ctx).DebugContext(ctx, "manuscript sync recorded",
		"project_id", event.ProjectID,
		"content_length", event.ContentLength,
	)
	return nil
}

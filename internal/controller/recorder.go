package controller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Recorder периодически переносит состояние Shield из Source в Metrics.
type Recorder struct {
	source   Source
	metrics  *Metrics
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time

	cron *cron.Cron
}

// RecorderConfig — конфигурация Recorder.
type RecorderConfig struct {
	Source   Source
	Metrics  *Metrics
	Interval time.Duration
	Logger   *slog.Logger
}

// NewRecorder создаёт Recorder.
func NewRecorder(cfg RecorderConfig) *Recorder {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cronLog := cronLogger{logger: logger}
	return &Recorder{
		source:   cfg.Source,
		metrics:  cfg.Metrics,
		interval: cfg.Interval,
		logger:   logger,
		now:      time.Now,
		cron: cron.New(
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
	}
}

// Refresh снимает состояние и обновляет метрики.
func (r *Recorder) Refresh() {
	s := r.source.Sample()
	r.metrics.Apply(s, r.now())

	r.logger.Info("updated shield metrics",
		"health", fmt.Sprintf("%.2f", s.HealthScore),
		"vulnerability_scans", s.ActiveScans[ScanVulnerability],
		"compliance_scans", s.ActiveScans[ScanCompliance],
	)
}

// Start делает первое обновление сразу и планирует остальные
// с интервалом interval.
func (r *Recorder) Start() error {
	if r.interval <= 0 {
		return fmt.Errorf("invalid refresh interval %s", r.interval)
	}

	r.Refresh()

	if _, err := r.cron.AddFunc("@every "+r.interval.String(), r.Refresh); err != nil {
		return fmt.Errorf("schedule refresh: %w", err)
	}
	r.cron.Start()

	r.logger.Info("shield recorder started", "interval", r.interval)
	return nil
}

// Stop останавливает планировщик и ждёт текущее обновление.
func (r *Recorder) Stop(ctx context.Context) error {
	select {
	case <-r.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger адаптирует slog к cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}

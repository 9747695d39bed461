// Atlas API — HTTP сервис синхронизации манускриптов.
//
// API:
//   - GET  /health            — проверка живости
//   - POST /manuscript/sync   — синхронизация манускрипта
//   - GET  /metrics           — метрики Prometheus
//
// Каждый запрос трассируется и экспортируется в OTLP коллектор.
// Если задан AMQP_URL, после синхронизации публикуется событие
// manuscript.synced.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/shaiso/atlas/internal/api"
	"github.com/shaiso/atlas/internal/config"
	"github.com/shaiso/atlas/internal/manuscript"
	"github.com/shaiso/atlas/internal/mq"
	"github.com/shaiso/atlas/internal/telemetry"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting atlas-api")

	cfg, err := config.LoadAPI()
	if err != nil {
		logger.Warn("invalid configuration, using defaults", "error", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Без трассировки сервис не имеет смысла: ошибка фатальна
	shutdownTracing, err := telemetry.SetupTracing(ctx, cfg.Tracing, logger)
	if err != nil {
		logger.Error("failed to setup tracing", "error", err)
		os.Exit(1)
	}

	reg := telemetry.NewRegistry()

	svcCfg := manuscript.Config{
		Store:   manuscript.NewMockStore(cfg.SyncDelay, nil, logger),
		Metrics: telemetry.NewSyncMetrics(reg, "atlas_api"),
		Logger:  logger,
	}

	// RabbitMQ опционален
	if cfg.AMQPURL != "" {
		mqConn, err := mq.NewConnection(cfg.AMQPURL, "atlas-api", logger)
		if err != nil {
			logger.Warn("RabbitMQ not available, sync events disabled", "error", err)
		} else {
			defer mqConn.Close()
			logger.Info("RabbitMQ connected")

			if err := mq.SetupTopology(ctx, mqConn); err != nil {
				logger.Warn("failed to setup topology", "error", err)
			}
			svcCfg.Publisher = mq.NewPublisher(mqConn, logger)
		}
	}

	handler := api.NewHandler(api.Config{
		Syncer:   manuscript.NewService(svcCfg),
		Metrics:  telemetry.NewHTTPMetrics(reg, "atlas_api"),
		Gatherer: reg,
		Logger:   logger,
	})

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: handler.Router(),
	}

	go func() {
		logger.Info("listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	// Досылаем оставшиеся спаны
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracer shutdown error", "error", err)
	}

	logger.Info("stopped")
}

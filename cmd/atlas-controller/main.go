// Atlas Controller — control plane Shield.
//
// Controller:
//   - Каждые SHIELD_REFRESH_INTERVAL обновляет метрики Shield
//   - Отдаёт их на /metrics для Prometheus
//   - Если задан AMQP_URL, считает события manuscript.synced
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shaiso/atlas/internal/config"
	"github.com/shaiso/atlas/internal/controller"
	"github.com/shaiso/atlas/internal/mq"
	"github.com/shaiso/atlas/internal/telemetry"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting atlas-controller")

	cfg, err := config.LoadController()
	if err != nil {
		logger.Warn("invalid configuration, using defaults", "error", err)
	}

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := telemetry.SetupTracing(ctx, cfg.Tracing, logger)
	if err != nil {
		logger.Error("failed to setup tracing", "error", err)
		os.Exit(1)
	}

	reg := telemetry.NewRegistry()
	metrics := controller.NewMetrics(reg)

	recorder := controller.NewRecorder(controller.RecorderConfig{
		Source:   controller.NewSimulatedSource(uint64(time.Now().UnixNano())),
		Metrics:  metrics,
		Interval: cfg.RefreshInterval,
		Logger:   logger,
	})
	if err := recorder.Start(); err != nil {
		logger.Error("failed to start recorder", "error", err)
		os.Exit(1)
	}

	// RabbitMQ опционален
	var consumer *mq.Consumer
	consumerDone := make(chan struct{})
	if cfg.AMQPURL != "" {
		mqConn, err := mq.NewConnection(cfg.AMQPURL, "atlas-controller", logger)
		if err != nil {
			logger.Warn("RabbitMQ not available, sync events disabled", "error", err)
			close(consumerDone)
		} else {
			defer mqConn.Close()
			logger.Info("RabbitMQ connected")

			if err := mq.SetupTopology(ctx, mqConn); err != nil {
				logger.Warn("failed to setup topology", "error", err)
			}

			consumer = mq.NewConsumer(mqConn, logger, mq.ConsumerConfig{
				Queue:    string(mq.QueueManuscriptsSynced),
				Handler:  metrics.HandleSyncEvent,
				Prefetch: 10,
			})
			go func() {
				defer close(consumerDone)
				if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("consumer stopped", "error", err)
				}
			}()
		}
	} else {
		close(consumerDone)
	}

	server := &http.Server{
		Addr: cfg.Addr,
		Handler: controller.NewRouter(controller.RouterConfig{
			Gatherer: reg,
			Metrics:  telemetry.NewHTTPMetrics(reg, "atlas_controller"),
			Logger:   logger,
		}),
	}

	go func() {
		logger.Info("listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Ожидаем сигнал завершения
	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	if err := recorder.Stop(shutdownCtx); err != nil {
		logger.Error("recorder stop error", "error", err)
	}

	if consumer != nil {
		consumer.Stop()
	}
	select {
	case <-consumerDone:
	case <-shutdownCtx.Done():
		logger.Warn("consumer did not stop in time")
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracer shutdown error", "error", err)
	}

	logger.Info("atlas-controller stopped")
}

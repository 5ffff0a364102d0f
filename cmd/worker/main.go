package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"customer-api/internal/config"
	"customer-api/internal/events"
	"customer-api/internal/logging"
	"customer-api/internal/metrics"
	"go.uber.org/zap"
)

func main() {
	cfg := config.FromEnv()
	logger, err := logging.New(cfg.LogLevel, "worker")
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Events.Driver == "" || cfg.Events.Driver == events.DriverMemory {
		logger.Fatal("the memory events driver is consumed inside the api process; set EVENTS_DRIVER to redis or kafka")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	transport, err := events.Open(ctx, cfg.Events, logger)
	if err != nil {
		logger.Fatal("open events transport", zap.String("driver", cfg.Events.Driver), zap.Error(err))
	}
	defer func() {
		if err := transport.Close(); err != nil {
			logger.Warn("close events transport", zap.Error(err))
		}
	}()

	worker := events.NewWorker(transport.Source, logger, metrics.New())
	events.RegisterListeners(worker, events.NewLogNotifier(logger), logger)

	logger.Info("event worker started", zap.String("driver", transport.Driver))
	if err := worker.Run(ctx); err != nil {
		logger.Error("event worker stopped", zap.Error(err))
		return
	}
	logger.Info("event worker stopped")
}

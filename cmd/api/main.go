package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"customer-api/internal/config"
	"customer-api/internal/db"
	"customer-api/internal/events"
	"customer-api/internal/httpserver"
	"customer-api/internal/logging"
	"customer-api/internal/metrics"
	customerrepo "customer-api/internal/repository/customer"
	tokenrepo "customer-api/internal/repository/token"
	userrepo "customer-api/internal/repository/user"
	authsvc "customer-api/internal/service/auth"
	customersvc "customer-api/internal/service/customer"
	"go.uber.org/zap"
)

func main() {
	cfg := config.FromEnv()
	logger, err := logging.New(cfg.LogLevel, "api")
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	dbpool, err := db.ConnectWithRetry(ctx, cfg.DBConnString, cfg.DBConnectRetry, logger)
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer dbpool.Close()

	m := metrics.New()

	transport, err := events.Open(ctx, cfg.Events, logger)
	if err != nil {
		logger.Fatal("open events transport", zap.String("driver", cfg.Events.Driver), zap.Error(err))
	}
	publisher := events.Instrumented(transport.Publisher, m)

	// The memory bus only exists in this process, so its consumer runs here.
	workerDone := make(chan struct{})
	if transport.InProcess() {
		worker := events.NewWorker(transport.Source, logger, m)
		events.RegisterListeners(worker, events.NewLogNotifier(logger), logger)
		go func() {
			defer close(workerDone)
			if err := worker.Run(context.Background()); err != nil {
				logger.Error("event worker stopped", zap.Error(err))
			}
		}()
	} else {
		close(workerDone)
	}

	userRepo := userrepo.NewPostgres(dbpool, logger)
	tokenRepo := tokenrepo.NewPostgres(dbpool, logger)
	customerRepo := customerrepo.NewPostgres(dbpool, logger)

	authService := authsvc.New(userRepo, tokenRepo, publisher, logger, m)
	customerService := customersvc.New(customerRepo, publisher, logger)

	srv := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		AuthSvc:     authService,
		CustomerSvc: customerService,
		Metrics:     m,
	}, httpserver.OptionsFromConfig(cfg))

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server", zap.String("addr", cfg.HTTPAddr), zap.String("events_driver", transport.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}

	// Closing the transport lets an in-process worker drain what is queued.
	if err := transport.Close(); err != nil {
		logger.Warn("close events transport", zap.Error(err))
	}
	select {
	case <-workerDone:
	case <-ctx.Done():
		logger.Warn("event worker did not drain before shutdown timeout")
	}
}

package main

import (
	"context"
	"flag"

	"customer-api/internal/config"
	"customer-api/internal/db"
	"customer-api/internal/events"
	"customer-api/internal/logging"
	customerrepo "customer-api/internal/repository/customer"
	userrepo "customer-api/internal/repository/user"
	"customer-api/internal/seed"
	customersvc "customer-api/internal/service/customer"
	"go.uber.org/zap"
)

func main() {
	var customers int
	flag.IntVar(&customers, "customers", 0, "Number of demo customers to create")
	flag.Parse()

	cfg := config.FromEnv()
	logger, err := logging.New(cfg.LogLevel, "seed")
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	pool, err := db.ConnectWithRetry(ctx, cfg.DBConnString, cfg.DBConnectRetry, logger)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	// Seed data is not announced to listeners.
	svc := customersvc.New(customerrepo.NewPostgres(pool, logger), events.NopPublisher{}, logger)
	seeder := seed.New(userrepo.NewPostgres(pool, logger), svc, logger)

	if _, err := seeder.Users(ctx); err != nil {
		logger.Fatal("seed users", zap.Error(err))
	}
	if customers > 0 {
		if _, err := seeder.Customers(ctx, customers); err != nil {
			logger.Fatal("seed customers", zap.Error(err))
		}
	}
	logger.Info("seed applied")
}

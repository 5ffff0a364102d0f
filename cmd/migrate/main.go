package main

import (
	"context"
	"flag"

	"customer-api/internal/config"
	"customer-api/internal/db"
	"customer-api/internal/logging"
	"customer-api/internal/migrate"
	"go.uber.org/zap"
)

func main() {
	var (
		down    int
		version bool
	)
	flag.IntVar(&down, "down", 0, "Roll back this many migrations instead of applying")
	flag.BoolVar(&version, "version", false, "Print the current schema version and exit")
	flag.Parse()

	cfg := config.FromEnv()
	logger, err := logging.New(cfg.LogLevel, "migrate")
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

	switch {
	case version:
		v, dirty, err := migrate.Version(ctx, pool)
		if err != nil {
			logger.Fatal("read schema version", zap.Error(err))
		}
		logger.Info("schema version", zap.Uint("version", v), zap.Bool("dirty", dirty))
	case down > 0:
		if err := migrate.Rollback(ctx, pool, down); err != nil {
			logger.Fatal("rollback migrations", zap.Error(err))
		}
		logger.Info("migrations rolled back", zap.Int("steps", down))
	default:
		if err := migrate.Apply(ctx, pool); err != nil {
			logger.Fatal("apply migrations", zap.Error(err))
		}
		logger.Info("migrations applied")
	}
}

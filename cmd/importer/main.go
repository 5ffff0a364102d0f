package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"customer-api/internal/config"
	"customer-api/internal/db"
	"customer-api/internal/events"
	"customer-api/internal/importer"
	"customer-api/internal/logging"
	customerrepo "customer-api/internal/repository/customer"
	customersvc "customer-api/internal/service/customer"
	"go.uber.org/zap"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to a customer CSV file (columns: name,email,phone,address,company,status,metadata)")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	logger, err := logging.New(cfg.LogLevel, "importer")
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

	// The memory bus has no consumer outside the api process.
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Events.Driver != "" && cfg.Events.Driver != events.DriverMemory {
		transport, err := events.Open(ctx, cfg.Events, logger)
		if err != nil {
			logger.Fatal("open events transport", zap.Error(err))
		}
		defer transport.Close()
		publisher = transport.Publisher
	}

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatal("open file", zap.Error(err))
	}
	defer f.Close()

	svc := customersvc.New(customerrepo.NewPostgres(pool, logger), publisher, logger)
	imp := importer.NewCSVImporter(f, svc, logger)

	start := time.Now()
	res, err := imp.Run(ctx)
	if err != nil {
		logger.Fatal("import failed", zap.Int("imported", res.Imported), zap.Error(err))
	}

	for _, s := range res.Skipped {
		fmt.Printf("skipped line %d (%s): %s\n", s.Line, s.Email, s.Reason)
	}
	fmt.Printf("Imported %d customers, skipped %d, in %s\n", res.Imported, len(res.Skipped), time.Since(start).Truncate(time.Millisecond))
}

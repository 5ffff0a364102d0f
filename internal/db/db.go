package db

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Connect opens a pgx connection pool and verifies connectivity with a ping.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

// ConnectWithRetry keeps calling Connect with exponential backoff until it
// succeeds or maxWait elapses. A malformed DSN fails immediately.
func ConnectWithRetry(ctx context.Context, dsn string, maxWait time.Duration, logger *zap.Logger) (*pgxpool.Pool, error) {
	if _, err := pgxpool.ParseConfig(dsn); err != nil {
		return nil, err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxInterval = 5 * time.Second
	policy.MaxElapsedTime = maxWait

	var pool *pgxpool.Pool
	op := func() error {
		p, err := Connect(ctx, dsn)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn("database not ready, retrying", zap.Error(err), zap.Duration("wait", wait))
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(policy, ctx), notify); err != nil {
		return nil, err
	}
	return pool, nil
}

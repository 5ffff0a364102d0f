package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisPollTimeout = 5 * time.Second

// RedisQueue is a Publisher and Source backed by a Redis list. Producers
// LPUSH, consumers BRPOP, so events are delivered in publish order to
// exactly one consumer.
type RedisQueue struct {
	client *redis.Client
	key    string
	logger *zap.Logger
}

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// NewRedisQueue connects and pings the server before returning.
func NewRedisQueue(ctx context.Context, opts RedisOptions, logger *zap.Logger) (*RedisQueue, error) {
	if opts.Addr == "" {
		return nil, errors.New("redis address is not configured")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	logger.Info("redis event queue connected", zap.String("addr", opts.Addr), zap.String("key", opts.Key))
	return NewRedisQueueFromClient(client, opts.Key, logger), nil
}

func NewRedisQueueFromClient(client *redis.Client, key string, logger *zap.Logger) *RedisQueue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisQueue{client: client, key: key, logger: logger.Named("redis_queue")}
}

func (q *RedisQueue) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, body).Err(); err != nil {
		return fmt.Errorf("lpush %s: %w", q.key, err)
	}
	return nil
}

func (q *RedisQueue) Receive(ctx context.Context) (Event, error) {
	for {
		res, err := q.client.BRPop(ctx, redisPollTimeout, q.key).Result()
		if errors.Is(err, redis.Nil) {
			if ctx.Err() != nil {
				return Event{}, ctx.Err()
			}
			continue
		}
		if errors.Is(err, redis.ErrClosed) {
			return Event{}, ErrClosed
		}
		if err != nil {
			if ctx.Err() != nil {
				return Event{}, ctx.Err()
			}
			return Event{}, fmt.Errorf("brpop %s: %w", q.key, err)
		}
		// res is [key, value].
		var e Event
		if err := json.Unmarshal([]byte(res[1]), &e); err != nil {
			q.logger.Warn("dropping undecodable event", zap.Error(err))
			continue
		}
		return e, nil
	}
}

func (q *RedisQueue) Close() error {
	return q.client.Close()
}

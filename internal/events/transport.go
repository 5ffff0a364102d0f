package events

import (
	"context"
	"fmt"

	"customer-api/internal/config"
	"go.uber.org/zap"
)

const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverKafka  = "kafka"
)

// Transport bundles the publishing and consuming halves of one driver.
// For the memory driver both halves are the same bus, so the worker must
// run in the publishing process.
type Transport struct {
	Driver    string
	Publisher Publisher
	Source    Source
}

// InProcess reports whether events never leave the current process.
func (t *Transport) InProcess() bool {
	return t.Driver == DriverMemory
}

func (t *Transport) Close() error {
	perr := t.Publisher.Close()
	if any(t.Source) == any(t.Publisher) {
		return perr
	}
	serr := t.Source.Close()
	if perr != nil {
		return perr
	}
	return serr
}

// Open builds the transport selected by cfg.Driver.
func Open(ctx context.Context, cfg config.EventsConfig, logger *zap.Logger) (*Transport, error) {
	switch cfg.Driver {
	case "", DriverMemory:
		bus := NewMemoryBus(cfg.Buffer)
		return &Transport{Driver: DriverMemory, Publisher: bus, Source: bus}, nil

	case DriverRedis:
		q, err := NewRedisQueue(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Key:      cfg.Queue,
		}, logger)
		if err != nil {
			return nil, err
		}
		return &Transport{Driver: DriverRedis, Publisher: q, Source: q}, nil

	case DriverKafka:
		opts := KafkaOptions{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic, GroupID: cfg.KafkaGroupID}
		pub, err := NewKafkaPublisher(opts, logger)
		if err != nil {
			return nil, err
		}
		src, err := NewKafkaSource(opts, logger)
		if err != nil {
			_ = pub.Close()
			return nil, err
		}
		return &Transport{Driver: DriverKafka, Publisher: pub, Source: src}, nil
	}
	return nil, fmt.Errorf("unknown events driver %q", cfg.Driver)
}

package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type KafkaOptions struct {
	Brokers []string
	Topic   string
	GroupID string
}

// KafkaPublisher writes events to a topic keyed by event name.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(opts KafkaOptions, logger *zap.Logger) (*KafkaPublisher, error) {
	if len(opts.Brokers) == 0 {
		return nil, errors.New("kafka brokers are not configured")
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(opts.Brokers...),
		Topic:        opts.Topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
	}
	logger.Info("kafka event publisher initialized", zap.Strings("brokers", opts.Brokers), zap.String("topic", opts.Topic))
	return &KafkaPublisher{writer: w}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.Name),
		Value: body,
		Time:  e.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", e.Name, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// KafkaSource reads events as a member of a consumer group. Offsets are
// committed as messages are read.
type KafkaSource struct {
	reader *kafka.Reader
	logger *zap.Logger
}

func NewKafkaSource(opts KafkaOptions, logger *zap.Logger) (*KafkaSource, error) {
	if len(opts.Brokers) == 0 {
		return nil, errors.New("kafka brokers are not configured")
	}
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers: opts.Brokers,
		Topic:   opts.Topic,
		GroupID: opts.GroupID,
	})
	return &KafkaSource{reader: r, logger: logger.Named("kafka_source")}, nil
}

func (s *KafkaSource) Receive(ctx context.Context) (Event, error) {
	for {
		msg, err := s.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return Event{}, ErrClosed
			}
			if ctx.Err() != nil {
				return Event{}, ctx.Err()
			}
			return Event{}, fmt.Errorf("read message: %w", err)
		}
		var e Event
		if err := json.Unmarshal(msg.Value, &e); err != nil {
			s.logger.Warn("dropping undecodable event",
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err))
			continue
		}
		return e, nil
	}
}

func (s *KafkaSource) Close() error {
	return s.reader.Close()
}

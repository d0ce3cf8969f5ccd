package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// Publisher emits domain events. Publishing is best-effort: callers log
// failures but never fail the business operation over a lost event.
type Publisher interface {
	Publish(ctx context.Context, key string, event Envelope) error
	Close() error
}

// KafkaPublisher writes events to a single Kafka topic, keyed so all events
// for one user land in one partition, in order.
type KafkaPublisher struct {
	writer *kafka.Writer
}

var _ Publisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates a publisher for the given brokers and topic.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, key string, event Envelope) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: data,
	})
	if err != nil {
		return fmt.Errorf("kafka: write failed: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher discards events. Used in tests and event-less deployments.
type NopPublisher struct{}

var _ Publisher = NopPublisher{}

func (NopPublisher) Publish(ctx context.Context, key string, event Envelope) error { return nil }
func (NopPublisher) Close() error                                                  { return nil }

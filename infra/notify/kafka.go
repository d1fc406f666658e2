package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/walletguard/walletd/pkg/domain/events"
)

// KafkaPublisher writes notifications to a Kafka topic, keyed by event type.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewKafkaPublisher creates a publisher for the given brokers and topic.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
		logger: logger.With("component", "kafka-notifier"),
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e events.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("kafka notifier: marshal %s: %w", e.Type(), err)
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.Type()),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("kafka notifier: write: %w", err)
	}
	p.logger.Debug("notification published", "type", e.Type(), "topic", p.writer.Topic)
	return nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error { return p.writer.Close() }

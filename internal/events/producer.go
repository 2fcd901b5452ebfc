package events

import (
	"context"
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const eventSource = "service-store"

// Publisher emits domain events for downstream consumers. The no-op
// implementation is used when Kafka is not configured.
type Publisher interface {
	Publish(ctx context.Context, topic, eventType string, payload interface{}) error
	Close() error
}

// KafkaPublisher writes CloudEvent-wrapped messages with kafka-go.
type KafkaPublisher struct {
	writer *kafkago.Writer
	logger *zap.Logger
}

// NewKafkaPublisher creates a publisher for the given brokers. Topics are
// chosen per message, so a single writer serves all of them.
func NewKafkaPublisher(brokers []string, logger *zap.Logger) *KafkaPublisher {
	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &KafkaPublisher{writer: writer, logger: logger}
}

// Publish wraps the payload in a CloudEvent and writes it to the topic.
// The event key is the event type so consumers can partition by kind.
func (p *KafkaPublisher) Publish(ctx context.Context, topic, eventType string, payload interface{}) error {
	ce, err := NewCloudEvent(eventType, eventSource, payload)
	if err != nil {
		return err
	}
	value, err := json.Marshal(ce)
	if err != nil {
		return err
	}

	err = p.writer.WriteMessages(ctx, kafkago.Message{
		Topic: topic,
		Key:   []byte(eventType),
		Value: value,
	})
	if err != nil {
		p.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("type", eventType),
			zap.Error(err),
		)
		return err
	}

	p.logger.Debug("published event",
		zap.String("topic", topic),
		zap.String("type", eventType),
		zap.String("id", ce.ID),
	)
	return nil
}

// Close closes the underlying Kafka writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher discards every event. Used when no brokers are configured.
type NoopPublisher struct{}

// Publish does nothing.
func (NoopPublisher) Publish(context.Context, string, string, interface{}) error { return nil }

// Close does nothing.
func (NoopPublisher) Close() error { return nil }

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/davidromeo/tradeblocks-sub006/internal/domain/models"
	drepo "github.com/davidromeo/tradeblocks-sub006/internal/domain/repository"
	"github.com/davidromeo/tradeblocks-sub006/pkg/kafka"
	"github.com/davidromeo/tradeblocks-sub006/pkg/logger"
)

// KafkaEventPublisher publishes pipeline events to a single Kafka topic.
// Events for the same ticker share a key so they stay ordered per partition.
type KafkaEventPublisher struct {
	producer *kafka.Producer
	topic    string
	l        *logger.Logger
}

// NewKafkaEventPublisher creates a publisher writing to the given topic.
func NewKafkaEventPublisher(producer *kafka.Producer, topic string, l *logger.Logger) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer, topic: topic, l: l}
}

// Publish sends one event to the events topic.
func (p *KafkaEventPublisher) Publish(ctx context.Context, ev models.PipelineEvent) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	key := ev.Ticker
	if key == "" {
		key = ev.BlockID
	}
	if err := p.producer.Publish(ctx, p.topic, []byte(key), ev); err != nil {
		return fmt.Errorf("publish %s event: %w", ev.Type, err)
	}
	return nil
}

// Close closes the underlying producer.
func (p *KafkaEventPublisher) Close() error {
	return p.producer.Close()
}

// MultiPublisher fans one event out to several publishers. Publish returns
// the first error but still attempts every sink, so a Kafka outage does not
// silence the websocket status feed.
type MultiPublisher struct {
	sinks []drepo.EventPublisher
}

// NewMultiPublisher composes publishers; nil entries are skipped.
func NewMultiPublisher(sinks ...drepo.EventPublisher) *MultiPublisher {
	out := make([]drepo.EventPublisher, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return &MultiPublisher{sinks: out}
}

// Publish delivers ev to every sink.
func (m *MultiPublisher) Publish(ctx context.Context, ev models.PipelineEvent) error {
	var first error
	for _, s := range m.sinks {
		if err := s.Publish(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Close closes every sink, returning the first error.
func (m *MultiPublisher) Close() error {
	var first error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

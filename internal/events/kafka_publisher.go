package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rxbridge-service/internal/config"
	"rxbridge-service/internal/metrics"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxPublishAttempts = 3
	basePublishDelay   = 100 * time.Millisecond
)

// KafkaEventPublisher implements EventPublisher using a sarama SyncProducer
type KafkaEventPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// NewKafkaEventPublisher connects an idempotent producer to the configured brokers.
func NewKafkaEventPublisher(cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) (*KafkaEventPublisher, error) {
	config := sarama.NewConfig()
	config.ClientID = cfg.KafkaGroupID
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 3
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(cfg.KafkaBrokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return NewKafkaEventPublisherWithProducer(producer, cfg.KafkaTopicScans, m, logger), nil
}

// NewKafkaEventPublisherWithProducer wraps an existing producer.
func NewKafkaEventPublisherWithProducer(producer sarama.SyncProducer, topic string, m *metrics.Metrics, logger *zap.Logger) *KafkaEventPublisher {
	return &KafkaEventPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
		metrics:  m,
	}
}

// Publish sends the event as JSON, retrying with exponential backoff.
func (p *KafkaEventPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.topic,
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(event.EventType())},
			{Key: []byte("event-id"), Value: []byte(uuid.New().String())},
			{Key: []byte("timestamp"), Value: []byte(time.Now().UTC().Format(time.RFC3339))},
		},
	}
	if key := event.PartitionKey(); key != "" {
		message.Key = sarama.StringEncoder(key)
	}

	var lastErr error
	for attempt := 0; attempt < maxPublishAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("context cancelled: %w", err)
		}

		partition, offset, err := p.producer.SendMessage(message)
		if err == nil {
			p.metrics.RecordKafkaPublish(p.topic, event.EventType(), true)
			p.logger.Info("Event published to Kafka",
				zap.String("topic", p.topic),
				zap.Int32("partition", partition),
				zap.Int64("offset", offset),
				zap.String("event-type", event.EventType()),
				zap.Int("attempt", attempt+1),
			)
			return nil
		}

		lastErr = err
		p.logger.Warn("Failed to publish event to Kafka, retrying",
			zap.String("topic", p.topic),
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", maxPublishAttempts),
		)

		// 100ms, 200ms
		if attempt < maxPublishAttempts-1 {
			delay := basePublishDelay * time.Duration(1<<uint(attempt))
			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled during backoff: %w", ctx.Err())
			case <-time.After(delay):
			}
		}
	}

	p.metrics.RecordKafkaPublish(p.topic, event.EventType(), false)
	return fmt.Errorf("failed to publish event to Kafka after %d attempts: %w", maxPublishAttempts, lastErr)
}

// Close closes the Kafka producer
func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"rxbridge-service/internal/config"
	"rxbridge-service/internal/metrics"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// ScanInvalidator drops cached scan results. The scan service implements it.
type ScanInvalidator interface {
	InvalidateAll(ctx context.Context, trigger string) (int, error)
}

// inventoryChangeEvent is the subset of the pharmacy system's event payload we read.
type inventoryChangeEvent struct {
	DrugName string `json:"drug_name"`
	SKU      string `json:"sku"`
}

// Consumer listens for inventory-change events and drops cached scans, because a scan
// taken before a stock movement no longer reflects the shelf.
type Consumer struct {
	consumerGroup sarama.ConsumerGroup
	handler       *invalidationHandler
	topics        []string
	groupID       string
	logger        *zap.Logger
}

// NewConsumer creates the consumer group for KAFKA_TOPIC_INVENTORY.
func NewConsumer(cfg *config.Config, invalidator ScanInvalidator, m *metrics.Metrics, logger *zap.Logger) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Rebalance.Strategy = sarama.NewBalanceStrategyRoundRobin()
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = cfg.KafkaAutoCommit
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Version = sarama.V2_8_0_0
	saramaConfig.Net.DialTimeout = 10 * time.Second
	saramaConfig.Net.ReadTimeout = 10 * time.Second
	saramaConfig.Net.WriteTimeout = 10 * time.Second
	saramaConfig.Metadata.Retry.Max = 3
	saramaConfig.Metadata.Retry.Backoff = 250 * time.Millisecond

	consumerGroup, err := sarama.NewConsumerGroup(cfg.KafkaBrokers, cfg.KafkaGroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	logger.Info("Kafka consumer group created",
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("group_id", cfg.KafkaGroupID),
	)

	return &Consumer{
		consumerGroup: consumerGroup,
		handler:       newInvalidationHandler(invalidator, m, logger),
		topics:        []string{cfg.KafkaTopicInventory},
		groupID:       cfg.KafkaGroupID,
		logger:        logger,
	}, nil
}

// Start consumes until ctx is cancelled or the group fails.
func (c *Consumer) Start(ctx context.Context) error {
	go func() {
		for err := range c.consumerGroup.Errors() {
			c.logger.Error("Consumer error", zap.Error(err))
		}
	}()

	c.logger.Info("Kafka consumer started for scan cache invalidation",
		zap.Strings("topics", c.topics),
		zap.String("group_id", c.groupID),
	)

	for {
		// Consume returns on every rebalance, so it runs in a loop
		if err := c.consumerGroup.Consume(ctx, c.topics, c.handler); err != nil {
			return fmt.Errorf("consumer group stopped: %w", err)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// Close closes the consumer
func (c *Consumer) Close() error {
	return c.consumerGroup.Close()
}

// invalidationHandler implements sarama.ConsumerGroupHandler
type invalidationHandler struct {
	invalidator ScanInvalidator
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

func newInvalidationHandler(invalidator ScanInvalidator, m *metrics.Metrics, logger *zap.Logger) *invalidationHandler {
	return &invalidationHandler{invalidator: invalidator, metrics: m, logger: logger}
}

func (h *invalidationHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *invalidationHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim processes messages for cache invalidation
func (h *invalidationHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok || message == nil {
				return nil
			}

			err := h.handleMessage(session.Context(), message)
			h.metrics.RecordKafkaConsume(message.Topic, err == nil)
			if err != nil {
				h.logger.Error("Failed to invalidate scan cache",
					zap.String("topic", message.Topic),
					zap.Int32("partition", message.Partition),
					zap.Int64("offset", message.Offset),
					zap.Error(err),
				)
			}

			// A failed invalidation is not retried; the next event or the TTL catches up.
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

// handleMessage invalidates every cached scan for stock-changing events and ignores the rest.
func (h *invalidationHandler) handleMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	eventType := extractEventType(message.Headers)
	if !isInventoryChange(eventType) {
		h.logger.Debug("Ignoring event", zap.String("event_type", eventType), zap.String("topic", message.Topic))
		return nil
	}

	var event inventoryChangeEvent
	if len(message.Value) > 0 {
		if err := json.Unmarshal(message.Value, &event); err != nil {
			h.logger.Warn("Unreadable inventory event payload, invalidating anyway",
				zap.String("event_type", eventType),
				zap.Error(err),
			)
		}
	}

	deleted, err := h.invalidator.InvalidateAll(ctx, "inventory_event")
	if err != nil {
		return fmt.Errorf("invalidate after %s: %w", eventType, err)
	}

	h.logger.Info("Scan cache invalidated by inventory event",
		zap.String("event_type", eventType),
		zap.String("drug_name", event.DrugName),
		zap.String("sku", event.SKU),
		zap.Int("deleted", deleted),
	)
	return nil
}

// extractEventType extracts event type from Kafka message headers
func extractEventType(headers []*sarama.RecordHeader) string {
	for _, header := range headers {
		if header != nil && string(header.Key) == "event-type" {
			return string(header.Value)
		}
	}
	return ""
}

func isInventoryChange(eventType string) bool {
	switch {
	case strings.HasPrefix(eventType, "InventoryItem"),
		strings.HasPrefix(eventType, "Stock"),
		eventType == "DispenseRecorded":
		return true
	default:
		return false
	}
}

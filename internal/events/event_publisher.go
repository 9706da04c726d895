package events

import (
	"context"
	"sync"
	"time"

	"rxbridge-service/internal/domain"

	"go.uber.org/zap"
)

// Event types
const (
	TypeScanCompleted    = "ScanCompleted"
	TypeScanCacheCleared = "ScanCacheCleared"
)

// Event is anything the scan service announces.
type Event interface {
	EventType() string
	// PartitionKey keeps one session's events ordered on a single partition.
	PartitionKey() string
}

// EventPublisher defines the interface for publishing scan events
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// ScanCompletedEvent is emitted after every successful scan.
type ScanCompletedEvent struct {
	ScanID      string             `json:"scan_id"`
	Session     string             `json:"session"`
	Summary     domain.ScanSummary `json:"summary"`
	ItemErrors  int                `json:"item_errors"`
	Degraded    bool               `json:"degraded"`
	Warnings    []string           `json:"warnings,omitempty"`
	CompletedAt time.Time          `json:"completed_at"`
}

func (e ScanCompletedEvent) EventType() string    { return TypeScanCompleted }
func (e ScanCompletedEvent) PartitionKey() string { return e.Session }

// ScanCacheClearedEvent is emitted when cached results are dropped.
type ScanCacheClearedEvent struct {
	Session    string    `json:"session,omitempty"` // empty when every session was cleared
	Trigger    string    `json:"trigger"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e ScanCacheClearedEvent) EventType() string    { return TypeScanCacheCleared }
func (e ScanCacheClearedEvent) PartitionKey() string { return e.Session }

// InMemoryEventPublisher keeps published events in memory. Used when Kafka is disabled
// and in tests.
type InMemoryEventPublisher struct {
	mu     sync.Mutex
	logger *zap.Logger
	events []Event
}

func NewInMemoryEventPublisher(logger *zap.Logger) *InMemoryEventPublisher {
	return &InMemoryEventPublisher{logger: logger}
}

func (p *InMemoryEventPublisher) Publish(ctx context.Context, event Event) error {
	p.mu.Lock()
	p.events = append(p.events, event)
	p.mu.Unlock()

	p.logger.Debug("Event published (in-memory)",
		zap.String("event_type", event.EventType()),
		zap.String("key", event.PartitionKey()),
	)
	return nil
}

// Events returns a snapshot of everything published so far.
func (p *InMemoryEventPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event(nil), p.events...)
}

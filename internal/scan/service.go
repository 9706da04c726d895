package scan

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"rxbridge-service/internal/cache"
	"rxbridge-service/internal/domain"
	"rxbridge-service/internal/events"
	"rxbridge-service/internal/metrics"
	"rxbridge-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const latestKeyPrefix = "scan:latest:"

var (
	ErrScanInProgress       = errors.New("a scan is already running for this session")
	ErrInventoryUnavailable = errors.New("inventory source unavailable")
	ErrNoInventory          = errors.New("inventory is empty")
	ErrNoScan               = errors.New("no scan result for this session")
)

// SignalCollector gathers compliance signals; failing sources come back as warnings.
type SignalCollector interface {
	Collect(ctx context.Context) ([]domain.ComplianceSignal, []error)
}

// Service runs inventory scans and keeps the latest result per session.
type Service struct {
	inventory repository.InventoryRepository
	signals   SignalCollector
	cache     cache.Cache
	publisher events.EventPublisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
	cacheTTL  time.Duration
	now       func() time.Time

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewService(inventory repository.InventoryRepository, signals SignalCollector, c cache.Cache,
	publisher events.EventPublisher, m *metrics.Metrics, cacheTTL time.Duration, logger *zap.Logger) *Service {
	return &Service{
		inventory: inventory,
		signals:   signals,
		cache:     c,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		cacheTTL:  cacheTTL,
		now:       time.Now,
		inFlight:  make(map[string]struct{}),
	}
}

func latestKey(session string) string {
	return latestKeyPrefix + session
}

// Run performs one scan for session. A second Run for the same session while the first is
// still going fails with ErrScanInProgress; sessions never wait on each other.
func (s *Service) Run(ctx context.Context, session string) (*Result, error) {
	if !s.acquire(session) {
		s.metrics.RecordScan("rejected", 0)
		s.logger.Warn("Scan rejected, another scan is running", zap.String("session", session))
		return nil, ErrScanInProgress
	}
	defer s.release(session)

	started := s.now()
	scanID := uuid.New().String()
	logger := s.logger.With(zap.String("scan_id", scanID), zap.String("session", session))

	items, err := s.inventory.ListInventory(ctx)
	var rowErrs *repository.RowErrors
	if errors.As(err, &rowErrs) {
		logger.Warn("Skipped unreadable inventory rows", zap.Int("rows", len(rowErrs.Rows)))
		err = nil
	}
	if err != nil {
		s.metrics.RecordScan("error", 0)
		logger.Error("Failed to read inventory", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrInventoryUnavailable, err)
	}
	if len(items) == 0 && rowErrs == nil {
		s.metrics.RecordScan("error", 0)
		logger.Warn("Inventory source returned no items")
		return nil, ErrNoInventory
	}

	signals, warnings := s.signals.Collect(ctx)
	classified, itemErrs := domain.ClassifyBatch(items, signals)
	if rowErrs != nil {
		itemErrs = append(append([]*domain.ItemError(nil), rowErrs.Rows...), itemErrs...)
	}
	result := newResult(scanID, session, started, s.now(), classified, itemErrs, warnings)

	status := "success"
	if result.Degraded() {
		status = "degraded"
	}
	s.metrics.RecordScan(status, result.CompletedAt().Sub(started))
	s.metrics.RecordClassification(breakdownLabels(result.summary), len(itemErrs))

	if err := cache.SetJSON(ctx, s.cache, latestKey(session), result, s.cacheTTL); err != nil {
		logger.Warn("Failed to cache scan result", zap.Error(err))
	}

	event := events.ScanCompletedEvent{
		ScanID:      scanID,
		Session:     session,
		Summary:     result.Summary(),
		ItemErrors:  len(itemErrs),
		Degraded:    result.Degraded(),
		Warnings:    result.Warnings(),
		CompletedAt: result.CompletedAt(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish scan completed event", zap.Error(err))
	}

	logger.Info("Scan completed",
		zap.Int("items", len(classified)),
		zap.Int("item_errors", len(itemErrs)),
		zap.Int("signals", len(signals)),
		zap.Int("requiring_attention", result.summary.ItemsRequiringAttention),
		zap.Bool("degraded", result.Degraded()),
		zap.Duration("duration", result.CompletedAt().Sub(started)),
	)
	return result, nil
}

// Latest returns the cached result of the session's last scan.
func (s *Service) Latest(ctx context.Context, session string) (*Result, error) {
	var result Result
	err := cache.GetJSON(ctx, s.cache, latestKey(session), &result)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, ErrNoScan
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached scan: %w", err)
	}
	return &result, nil
}

// Clear drops the session's cached result.
func (s *Service) Clear(ctx context.Context, session string) error {
	if err := s.cache.Delete(ctx, latestKey(session)); err != nil {
		return fmt.Errorf("failed to clear cached scan: %w", err)
	}
	s.metrics.RecordCacheInvalidation("manual")
	s.publishCleared(ctx, session, "manual")
	s.logger.Info("Cached scan cleared", zap.String("session", session))
	return nil
}

// InvalidateAll drops every session's cached result and returns how many were removed.
func (s *Service) InvalidateAll(ctx context.Context, trigger string) (int, error) {
	deleted, err := s.cache.DeleteByPattern(ctx, latestKeyPrefix+"*")
	if err != nil {
		return 0, fmt.Errorf("failed to invalidate cached scans: %w", err)
	}
	s.metrics.RecordCacheInvalidation(trigger)
	s.publishCleared(ctx, "", trigger)
	s.logger.Info("Cached scans invalidated", zap.String("trigger", trigger), zap.Int("deleted", deleted))
	return deleted, nil
}

func (s *Service) publishCleared(ctx context.Context, session, trigger string) {
	event := events.ScanCacheClearedEvent{Session: session, Trigger: trigger, OccurredAt: s.now()}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish cache cleared event", zap.Error(err))
	}
}

func (s *Service) acquire(session string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, running := s.inFlight[session]; running {
		return false
	}
	s.inFlight[session] = struct{}{}
	return true
}

func (s *Service) release(session string) {
	s.mu.Lock()
	delete(s.inFlight, session)
	s.mu.Unlock()
}

func breakdownLabels(summary domain.ScanSummary) map[string]int {
	out := make(map[string]int, len(summary.AlertBreakdown))
	for level, n := range summary.AlertBreakdown {
		out[string(level)] = n
	}
	return out
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

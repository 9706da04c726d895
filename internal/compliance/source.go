package compliance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"rxbridge-service/internal/domain"
	"rxbridge-service/internal/metrics"

	"go.uber.org/zap"
)

// Source names used in signals, logs and metrics.
const (
	SourceRecallAPI  = "recall_api"
	SourceShortageDB = "shortage_db"
)

// ErrExternalSourceUnavailable marks a compliance source that could not be read. Scans
// continue without its signals and report the failure as a warning.
var ErrExternalSourceUnavailable = errors.New("external compliance source unavailable")

// Source supplies compliance signals for the current scan.
type Source interface {
	Name() string
	Signals(ctx context.Context) ([]domain.ComplianceSignal, error)
}

// Combine merges signal lists, keeping one signal per drug name. When several sources
// report the same drug the highest status priority wins; ties keep the first seen.
func Combine(lists ...[]domain.ComplianceSignal) []domain.ComplianceSignal {
	index := make(map[string]int)
	combined := make([]domain.ComplianceSignal, 0)

	for _, list := range lists {
		for _, s := range list {
			key := strings.ToLower(strings.TrimSpace(s.DrugName))
			if key == "" {
				continue
			}
			i, seen := index[key]
			if !seen {
				index[key] = len(combined)
				combined = append(combined, s)
				continue
			}
			if signalPriority(s) > signalPriority(combined[i]) {
				combined[i] = s
			}
		}
	}
	return combined
}

func signalPriority(s domain.ComplianceSignal) int {
	if s.Status != "" {
		return domain.StatusPriority(s.Status)
	}
	switch s.Kind {
	case domain.SignalRecall:
		return domain.StatusPriority(domain.StatusRecalled)
	case domain.SignalDiscontinued:
		return domain.StatusPriority(domain.StatusDiscontinuation)
	}
	return 0
}

// Aggregator queries every configured source concurrently.
type Aggregator struct {
	sources []Source
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewAggregator(sources []Source, m *metrics.Metrics, logger *zap.Logger) *Aggregator {
	return &Aggregator{sources: sources, metrics: m, logger: logger}
}

// Collect returns the combined signals of every source that answered. Each failing source
// produces one warning wrapping ErrExternalSourceUnavailable; a failure never aborts the
// collection.
func (a *Aggregator) Collect(ctx context.Context) ([]domain.ComplianceSignal, []error) {
	results := make([][]domain.ComplianceSignal, len(a.sources))
	errs := make([]error, len(a.sources))

	var wg sync.WaitGroup
	for i, src := range a.sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			results[i], errs[i] = src.Signals(ctx)
		}(i, src)
	}
	wg.Wait()

	var warnings []error
	for i, src := range a.sources {
		if errs[i] == nil {
			a.logger.Debug("Compliance source answered",
				zap.String("source", src.Name()),
				zap.Int("signals", len(results[i])),
			)
			continue
		}
		results[i] = nil
		a.metrics.RecordComplianceSourceError(src.Name())
		a.logger.Warn("Compliance source unavailable, continuing without it",
			zap.String("source", src.Name()),
			zap.Error(errs[i]),
		)
		warnings = append(warnings, fmt.Errorf("%w: %s: %v", ErrExternalSourceUnavailable, src.Name(), errs[i]))
	}

	return Combine(results...), warnings
}

// StaticSource serves a fixed signal list. The demo setup and tests use it.
type StaticSource struct {
	name    string
	signals []domain.ComplianceSignal
}

func NewStaticSource(name string, signals []domain.ComplianceSignal) *StaticSource {
	return &StaticSource{name: name, signals: signals}
}

func (s *StaticSource) Name() string { return s.name }

func (s *StaticSource) Signals(ctx context.Context) ([]domain.ComplianceSignal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]domain.ComplianceSignal, len(s.signals))
	copy(out, s.signals)
	return out, nil
}

// DemoSignals matches the demo inventory seed.
func DemoSignals() []domain.ComplianceSignal {
	return []domain.ComplianceSignal{
		{
			DrugName:             "Metformin",
			Kind:                 domain.SignalRecall,
			RecallClassification: "Class II",
			Reason:               "NDMA impurity above acceptable intake limit",
			Status:               domain.StatusRecalled,
			Source:               SourceRecallAPI,
		},
		{
			DrugName: "Amoxicillin",
			Kind:     domain.SignalDiscontinued,
			Status:   domain.StatusInShortage,
			Source:   SourceShortageDB,
		},
	}
}

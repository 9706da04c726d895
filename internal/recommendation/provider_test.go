package recommendation

import (
	"context"
	"errors"
	"testing"

	"rxbridge-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func classify(t *testing.T, item domain.InventoryItem, signal *domain.ComplianceSignal) domain.ClassifiedItem {
	t.Helper()
	c, err := domain.Classify(item, signal)
	require.NoError(t, err)
	return c
}

func TestRuleBasedProvider_ByAlertLevel(t *testing.T) {
	provider := NewRuleBasedProvider()
	ctx := context.Background()

	tests := []struct {
		name     string
		item     domain.ClassifiedItem
		risk     string
		timeline string
		contains string
	}{
		{
			name:     "critical supply",
			item:     classify(t, domain.InventoryItem{DrugName: "Lisinopril", CurrentStock: 89, AverageDailyDispense: 22}, nil),
			risk:     "CRITICAL",
			timeline: "IMMEDIATE - complete within 2-4 hours",
			contains: "Limit fills to a 7 day supply until stock recovers",
		},
		{
			name: "class I recall",
			item: classify(t, domain.InventoryItem{DrugName: "Heparin", CurrentStock: 500, AverageDailyDispense: 5},
				&domain.ComplianceSignal{DrugName: "Heparin", Kind: domain.SignalRecall, RecallClassification: "Class I"}),
			risk:     "HIGH",
			timeline: "URGENT - complete within 24 hours",
			contains: "Quarantine all affected inventory",
		},
		{
			name:     "watch window",
			item:     classify(t, domain.InventoryItem{DrugName: "Sertraline", CurrentStock: 300, AverageDailyDispense: 10}, nil),
			risk:     "HIGH",
			timeline: "Within 48 hours",
			contains: "Place a replenishment order today",
		},
		{
			name: "shortage",
			item: classify(t, domain.InventoryItem{DrugName: "Amoxicillin", CurrentStock: 60, AverageDailyDispense: 10},
				&domain.ComplianceSignal{DrugName: "Amoxicillin", Kind: domain.SignalDiscontinued, Status: domain.StatusInShortage}),
			risk:     "MODERATE",
			timeline: "Within 7-10 days (current supply: 6 days)",
			contains: "Activate emergency procurement procedures",
		},
		{
			name:     "low stock",
			item:     classify(t, domain.InventoryItem{DrugName: "Albuterol", CurrentStock: 30, AverageDailyDispense: 5}, nil),
			risk:     "LOW",
			timeline: "Monitor ongoing - review weekly",
			contains: "Consider increasing safety stock levels",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := provider.Recommend(ctx, tt.item)

			require.NoError(t, err)
			assert.Equal(t, tt.risk, rec.RiskLevel)
			assert.Equal(t, tt.timeline, rec.Timeline)
			assert.Contains(t, rec.ImmediateActions, tt.contains)
			assert.Equal(t, tt.item.PriorityScore, rec.PriorityScore)
			assert.False(t, rec.ManualReview)
			assert.LessOrEqual(t, len(rec.Alternatives), maxAlternatives)
		})
	}
}

func TestRuleBasedProvider_Deterministic(t *testing.T) {
	provider := NewRuleBasedProvider()
	item := classify(t, domain.InventoryItem{DrugName: "Amoxicillin 500mg", CurrentStock: 89, AverageDailyDispense: 22}, nil)

	first, err := provider.Recommend(context.Background(), item)
	require.NoError(t, err)
	second, err := provider.Recommend(context.Background(), item)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "Cephalexin (if not penicillin allergic)", first.Alternatives[0])
}

func TestRuleBasedProvider_NoIssues(t *testing.T) {
	item := classify(t, domain.InventoryItem{DrugName: "Insulin", CurrentStock: 1000, AverageDailyDispense: 0}, nil)

	rec, err := NewRuleBasedProvider().Recommend(context.Background(), item)

	require.NoError(t, err)
	assert.Equal(t, "NONE", rec.RiskLevel)
	assert.Empty(t, rec.ImmediateActions)
	assert.Equal(t, "No action needed", rec.Timeline)
}

func TestRuleBasedProvider_RejectsUnknownLevel(t *testing.T) {
	_, err := NewRuleBasedProvider().Recommend(context.Background(), domain.ClassifiedItem{
		InventoryItem: domain.InventoryItem{DrugName: "Mystery"},
		AlertLevel:    "ORANGE",
	})

	assert.ErrorIs(t, err, ErrUnsupportedItem)
}

// MockProvider is a mock implementation of Provider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Recommend(ctx context.Context, item domain.ClassifiedItem) (Recommendation, error) {
	args := m.Called(ctx, item)
	return args.Get(0).(Recommendation), args.Error(1)
}

func TestFallbackProvider_ManualReviewOnFailure(t *testing.T) {
	// Setup
	item := classify(t, domain.InventoryItem{DrugName: "Warfarin", CurrentStock: 100, AverageDailyDispense: 10}, nil)
	next := new(MockProvider)
	next.On("Recommend", mock.Anything, item).Return(Recommendation{}, errors.New("upstream timeout"))

	// Execute
	rec, err := NewFallbackProvider(next, zap.NewNop()).Recommend(context.Background(), item)

	// Assert
	require.NoError(t, err)
	assert.True(t, rec.ManualReview)
	assert.Equal(t, "Warfarin", rec.DrugName)
	assert.Equal(t, "RED", string(rec.AlertLevel))
	assert.Equal(t, 5, rec.PriorityScore)
	assert.Equal(t, "Within 24 hours - manual review required", rec.Timeline)
	next.AssertExpectations(t)
}

func TestFallbackProvider_PassesThrough(t *testing.T) {
	item := classify(t, domain.InventoryItem{DrugName: "Warfarin", CurrentStock: 100, AverageDailyDispense: 10}, nil)

	rec, err := NewFallbackProvider(NewRuleBasedProvider(), zap.NewNop()).Recommend(context.Background(), item)

	require.NoError(t, err)
	assert.False(t, rec.ManualReview)
	assert.Equal(t, "CRITICAL", rec.RiskLevel)
}

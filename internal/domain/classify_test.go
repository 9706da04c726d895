package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(name string, stock int, daily float64) InventoryItem {
	return InventoryItem{DrugName: name, CurrentStock: stock, AverageDailyDispense: daily}
}

func TestClassify_Scenarios(t *testing.T) {
	testCases := []struct {
		name      string
		stock     int
		daily     float64
		days      DaysOfSupply
		level     AlertLevel
		immediate bool
	}{
		{"eight days is critical", 120, 15, FiniteDays(8), AlertRed, true},
		{"fourteen days is inclusive in RED", 450, 32, FiniteDays(14), AlertRed, true},
		{"four days is critical", 89, 22, FiniteDays(4), AlertRed, true},
		{"zero usage never depletes", 1000, 0, InfiniteDays(), AlertNone, false},
		{"low absolute quantity wins over day bands", 30, 5, FiniteDays(6), AlertBlue, false},
		{"fifteen days is the watch band", 150, 10, FiniteDays(15), AlertPurple, true},
		{"fifty six days is inclusive in PURPLE", 560, 10, FiniteDays(56), AlertPurple, true},
		{"fifty seven days is fine", 570, 10, FiniteDays(57), AlertNone, false},
		{"exactly fifty units is a shortage", 50, 0, InfiniteDays(), AlertBlue, false},
		{"empty shelf is a shortage", 0, 3, FiniteDays(0), AlertBlue, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := Classify(item("Lisinopril", tc.stock, tc.daily), nil)

			require.NoError(t, err)
			assert.Equal(t, tc.days, c.DaysOfSupply)
			assert.Equal(t, tc.level, c.AlertLevel)
			assert.Equal(t, tc.immediate, c.RequiresImmediateAction)
		})
	}
}

func TestClassify_RecallTakesPrecedence(t *testing.T) {
	signal := &ComplianceSignal{DrugName: "Metformin", Kind: SignalRecall, RecallClassification: "Class I", Reason: "NDMA impurity"}

	for _, stock := range []int{0, 30, 120, 10000} {
		for _, daily := range []float64{0, 1, 15, 400} {
			c, err := Classify(item("Metformin", stock, daily), signal)

			require.NoError(t, err)
			assert.Equal(t, AlertPurple, c.AlertLevel)
			assert.True(t, c.RequiresImmediateAction)
			assert.Equal(t, SeverityCritical, c.Severity)
			assert.Equal(t, "Class I", c.RecallClassification())
			assert.Equal(t, "NDMA impurity", c.RecallReason())
		}
	}
}

func TestClassify_DiscontinuedIsYellow(t *testing.T) {
	signal := &ComplianceSignal{DrugName: "Amoxicillin", Kind: SignalDiscontinued, Status: StatusInShortage}

	c, err := Classify(item("Amoxicillin", 20, 10), signal)

	require.NoError(t, err)
	assert.Equal(t, AlertYellow, c.AlertLevel)
	assert.False(t, c.RequiresImmediateAction)
	assert.Equal(t, FiniteDays(2), c.DaysOfSupply)
	assert.Equal(t, SeverityCritical, c.Severity)
	assert.Equal(t, StatusInShortage, c.FDAStatus())
}

func TestClassify_SignalWithoutKindIsIgnored(t *testing.T) {
	signal := &ComplianceSignal{DrugName: "Atorvastatin", Kind: SignalNone, Status: StatusResolved}

	c, err := Classify(item("Atorvastatin", 1000, 5), signal)

	require.NoError(t, err)
	assert.Nil(t, c.Signal)
	assert.Equal(t, AlertNone, c.AlertLevel)
	assert.Equal(t, StatusNoIssues, c.FDAStatus())
}

func TestClassify_ZeroUsageIsAlwaysInfinite(t *testing.T) {
	for _, stock := range []int{0, 1, 50, 51, 999999} {
		c, err := Classify(item("Insulin", stock, 0), nil)

		require.NoError(t, err)
		assert.True(t, c.DaysOfSupply.IsInfinite(), "stock %d", stock)
	}
}

func TestClassify_LowStockFloorWithoutSignal(t *testing.T) {
	for stock := 0; stock <= LowQuantityThreshold; stock++ {
		c, err := Classify(item("Albuterol", stock, 25), nil)

		require.NoError(t, err)
		assert.Equal(t, AlertBlue, c.AlertLevel, "stock %d", stock)
	}
}

func TestClassify_MoreStockIsNeverMoreUrgent(t *testing.T) {
	for _, daily := range []float64{0.5, 3, 7.5, 22, 140} {
		previous := math.MaxInt
		for stock := LowQuantityThreshold + 1; stock <= 5000; stock += 7 {
			c, err := Classify(item("Sertraline", stock, daily), nil)
			require.NoError(t, err)

			urgency := c.AlertLevel.Urgency()
			assert.LessOrEqual(t, urgency, previous, "daily %v stock %d", daily, stock)
			previous = urgency
		}
	}
}

func TestClassify_InvalidData(t *testing.T) {
	testCases := []struct {
		name  string
		stock int
		daily float64
	}{
		{"negative stock", -1, 2},
		{"negative usage", 10, -0.5},
		{"NaN usage", 10, math.NaN()},
		{"infinite usage", 10, math.Inf(1)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Classify(item("Warfarin", tc.stock, tc.daily), nil)

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInventoryData))
			var itemErr *ItemError
			require.True(t, errors.As(err, &itemErr))
			assert.Equal(t, "Warfarin", itemErr.DrugName)
		})
	}
}

func TestComputeDaysOfSupply_DecimalRates(t *testing.T) {
	assert.Equal(t, FiniteDays(10), ComputeDaysOfSupply(3, 0.3))
	assert.Equal(t, FiniteDays(10), ComputeDaysOfSupply(7, 0.7))
	assert.Equal(t, FiniteDays(3), ComputeDaysOfSupply(10, 3))
	assert.True(t, ComputeDaysOfSupply(1000000, 0.0001).IsInfinite())
}

func TestClassify_StableID(t *testing.T) {
	a, err := Classify(item("Lisinopril", 120, 15), nil)
	require.NoError(t, err)
	b, err := Classify(item("  lisinopril ", 900, 1), nil)
	require.NoError(t, err)
	c, err := Classify(item("Losartan", 120, 15), nil)
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID)
	assert.NotEqual(t, a.ID, c.ID)
}

func TestClassifyBatch_CollectsItemErrors(t *testing.T) {
	items := []InventoryItem{
		item("Lisinopril", 120, 15),
		item("Broken", -5, 1),
		item("Metformin Tablets", 900, 10),
		item("Ibuprofen", 40, 2),
	}
	signals := []ComplianceSignal{
		{DrugName: "metformin", Kind: SignalRecall, RecallClassification: "Class II"},
	}

	classified, errs := ClassifyBatch(items, signals)

	require.Len(t, classified, 3)
	require.Len(t, errs, 1)
	assert.Equal(t, "Broken", errs[0].DrugName)
	assert.True(t, errors.Is(errs[0], ErrInvalidInventoryData))

	assert.Equal(t, AlertRed, classified[0].AlertLevel)
	assert.Equal(t, AlertPurple, classified[1].AlertLevel)
	require.NotNil(t, classified[1].Signal)
	assert.Equal(t, SeverityHigh, classified[1].Severity)
	assert.Equal(t, AlertBlue, classified[2].AlertLevel)
}

func TestClassifyBatch_NoSignalsDegradesToStockRules(t *testing.T) {
	classified, errs := ClassifyBatch([]InventoryItem{item("Lisinopril", 120, 15), item("Ibuprofen", 40, 2)}, nil)

	assert.Empty(t, errs)
	require.Len(t, classified, 2)
	assert.Equal(t, AlertRed, classified[0].AlertLevel)
	assert.Equal(t, AlertBlue, classified[1].AlertLevel)
}

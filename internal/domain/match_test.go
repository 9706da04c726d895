package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDrugName(t *testing.T) {
	testCases := map[string]string{
		"Amoxicillin Capsules, 500mg": "amoxicillin",
		"  LISINOPRIL tablets 10 MG":  "lisinopril",
		"Insulin Glargine (Lantus)":   "insulin glargine lantus",
		"Heparin Sodium Injection":    "heparin sodium",
		"acetaminophen/codeine":       "acetaminophen codeine",
		"":                            "",
	}

	for in, want := range testCases {
		assert.Equal(t, want, NormalizeDrugName(in), in)
	}
}

func TestMatchSignal_ExactAndContainment(t *testing.T) {
	signals := []ComplianceSignal{{DrugName: "Metformin", Kind: SignalRecall, RecallClassification: "Class II"}}

	require.NotNil(t, MatchSignal("metformin tablets", signals))
	require.NotNil(t, MatchSignal("Metformin ER", signals))
	assert.Nil(t, MatchSignal("Lisinopril", signals))
	assert.Nil(t, MatchSignal("", signals))
}

func TestMatchSignal_ShortNamesNeedExactMatch(t *testing.T) {
	signals := []ComplianceSignal{{DrugName: "ab", Kind: SignalDiscontinued}}

	assert.Nil(t, MatchSignal("Abacavir", signals))
	assert.NotNil(t, MatchSignal("AB", signals))
}

func TestMatchSignal_RecallBeatsDiscontinuation(t *testing.T) {
	signals := []ComplianceSignal{
		{DrugName: "metformin", Kind: SignalDiscontinued, Status: StatusInShortage},
		{DrugName: "metformin er", Kind: SignalRecall, RecallClassification: "Class III"},
	}

	got := MatchSignal("Metformin", signals)

	require.NotNil(t, got)
	assert.Equal(t, SignalRecall, got.Kind)
}

func TestMatchSignal_ExactBeatsPartial(t *testing.T) {
	signals := []ComplianceSignal{
		{DrugName: "metformin er", Kind: SignalDiscontinued, Reason: "partial"},
		{DrugName: "metformin", Kind: SignalDiscontinued, Reason: "exact"},
	}

	got := MatchSignal("Metformin", signals)

	require.NotNil(t, got)
	assert.Equal(t, "exact", got.Reason)
}

func TestMatchSignal_HigherRecallClassWins(t *testing.T) {
	signals := []ComplianceSignal{
		{DrugName: "Lisinopril", Kind: SignalDiscontinued},
		{DrugName: "lisinopril tablets", Kind: SignalRecall, RecallClassification: "Class II"},
		{DrugName: "LISINOPRIL", Kind: SignalRecall, RecallClassification: "Class I"},
	}

	got := MatchSignal("Lisinopril", signals)

	require.NotNil(t, got)
	assert.Equal(t, "Class I", got.RecallClassification)
}

func TestMatchSignal_ListOrderBreaksRemainingTies(t *testing.T) {
	signals := []ComplianceSignal{
		{DrugName: "warfarin", Kind: SignalRecall, RecallClassification: "Class II", Reason: "first"},
		{DrugName: "Warfarin", Kind: SignalRecall, RecallClassification: "Class II", Reason: "second"},
	}

	got := MatchSignal("warfarin", signals)

	require.NotNil(t, got)
	assert.Equal(t, "first", got.Reason)
}

func TestSignalIndex_SkipsUnusableSignals(t *testing.T) {
	idx := NewSignalIndex([]ComplianceSignal{
		{DrugName: "", Kind: SignalRecall},
		{DrugName: "warfarin", Kind: SignalNone, Status: StatusResolved},
		{DrugName: "warfarin", Kind: SignalRecall},
	})

	assert.Equal(t, 1, idx.Len())
}

func TestSignalIndex_MatchReturnsCopy(t *testing.T) {
	idx := NewSignalIndex([]ComplianceSignal{{DrugName: "warfarin", Kind: SignalRecall, Reason: "label"}})

	got := idx.Match("Warfarin")
	require.NotNil(t, got)
	got.Reason = "changed"

	assert.Equal(t, "label", idx.Match("Warfarin").Reason)
}

package domain

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAlertLevel(t *testing.T) {
	level, err := ParseAlertLevel(" purple ")
	require.NoError(t, err)
	assert.Equal(t, AlertPurple, level)

	_, err = ParseAlertLevel("ORANGE")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownAlertLevel))
}

func TestAlertLevel_RequiresImmediateAction(t *testing.T) {
	for _, l := range AlertLevels {
		want := l == AlertRed || l == AlertPurple
		assert.Equal(t, want, l.RequiresImmediateAction(), string(l))
	}
}

func TestDaysOfSupply_Compare(t *testing.T) {
	assert.Equal(t, -1, FiniteDays(3).Compare(FiniteDays(4)))
	assert.Equal(t, 0, FiniteDays(4).Compare(FiniteDays(4)))
	assert.Equal(t, -1, FiniteDays(math.MaxInt32).Compare(InfiniteDays()))
	assert.Equal(t, 1, InfiniteDays().Compare(FiniteDays(0)))
	assert.Equal(t, 0, InfiniteDays().Compare(InfiniteDays()))
	assert.False(t, InfiniteDays().AtMost(math.MaxInt))
	assert.Equal(t, math.MaxInt, InfiniteDays().Days())
}

func TestDaysOfSupply_JSON(t *testing.T) {
	payload, err := json.Marshal(struct {
		Finite   DaysOfSupply `json:"finite"`
		Infinite DaysOfSupply `json:"infinite"`
	}{FiniteDays(14), InfiniteDays()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"finite":14,"infinite":"infinite"}`, string(payload))

	var decoded struct {
		Finite   DaysOfSupply `json:"finite"`
		Infinite DaysOfSupply `json:"infinite"`
	}
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, FiniteDays(14), decoded.Finite)
	assert.True(t, decoded.Infinite.IsInfinite())

	var bad DaysOfSupply
	assert.Error(t, json.Unmarshal([]byte(`"forever"`), &bad))
}

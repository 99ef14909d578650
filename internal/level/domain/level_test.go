package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTable = `[
	{"lv": 1, "recharge": 50},
	{"lv": 2, "recharge": 200},
	{"lv": 3, "recharge": 1000}
]`

func TestParseThresholdsSortsDescending(t *testing.T) {
	table, err := ParseThresholds(sampleTable)
	require.NoError(t, err)
	require.Len(t, table, 3)
	assert.Equal(t, int16(3), table[0].Tier)
	assert.Equal(t, int16(1), table[2].Tier)
}

func TestParseThresholdsRejectsDuplicates(t *testing.T) {
	_, err := ParseThresholds(`[{"lv":1,"recharge":50},{"lv":1,"recharge":100}]`)
	assert.ErrorIs(t, err, ErrDuplicateTier)
}

func TestParseThresholdsRejectsEqualThresholds(t *testing.T) {
	_, err := ParseThresholds(`[{"lv":1,"recharge":50},{"lv":2,"recharge":50}]`)
	assert.ErrorIs(t, err, ErrNonDescendingTable)
}

func TestParseThresholdsRejectsGarbage(t *testing.T) {
	_, err := ParseThresholds(`{"lv":1}`)
	assert.ErrorIs(t, err, ErrMalformedTierConfig)

	_, err = ParseThresholds(`[]`)
	assert.ErrorIs(t, err, ErrEmptyTable)
}

func TestResolveHighestQualifyingTierWins(t *testing.T) {
	table, err := ParseThresholds(sampleTable)
	require.NoError(t, err)

	// Jumps straight to tier 3 in one payment.
	got := Resolve(table, 0, decimal.Zero, decimal.NewFromInt(1500))
	assert.Equal(t, int16(3), got)

	// Exactly at a threshold qualifies.
	got = Resolve(table, 0, decimal.NewFromInt(150), decimal.NewFromInt(50))
	assert.Equal(t, int16(2), got)
}

func TestResolveTiersNotMonotoneWithThresholds(t *testing.T) {
	// A cheaper tier may outrank a more expensive one; the highest
	// qualifying tier still wins.
	table, err := ParseThresholds(`[{"lv":1,"recharge":1000},{"lv":3,"recharge":50}]`)
	require.NoError(t, err)

	got := Resolve(table, 0, decimal.Zero, decimal.NewFromInt(1200))
	assert.Equal(t, int16(3), got)

	got = Resolve(table, 0, decimal.Zero, decimal.NewFromInt(60))
	assert.Equal(t, int16(3), got)
}

func TestResolveNeverDowngrades(t *testing.T) {
	table, err := ParseThresholds(sampleTable)
	require.NoError(t, err)

	got := Resolve(table, 3, decimal.Zero, decimal.NewFromInt(10))
	assert.Equal(t, int16(3), got)
}

func TestResolveBelowAllThresholds(t *testing.T) {
	table, err := ParseThresholds(sampleTable)
	require.NoError(t, err)

	got := Resolve(table, 0, decimal.Zero, decimal.NewFromInt(10))
	assert.Equal(t, int16(0), got)
}

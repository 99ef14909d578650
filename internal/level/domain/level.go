// Package domain implements the tier progression table.
//
// Tiers are earned by cumulative externally-paid value. The table is a
// list of (tier, recharge threshold) pairs and the highest qualifying tier
// wins, so a single payment can jump several tiers at once. Progress never
// decreases on payment and tiers are never lowered here.
package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyTable          = errors.New("tier_table_empty")
	ErrDuplicateTier       = errors.New("tier_table_duplicate_tier")
	ErrNonDescendingTable  = errors.New("tier_table_not_descending")
	ErrNegativeThreshold   = errors.New("tier_table_negative_threshold")
	ErrMalformedTierConfig = errors.New("tier_table_malformed")
)

// TierThreshold maps a tier to the cumulative recharge required for it.
type TierThreshold struct {
	Tier     int16           `json:"lv"`
	Recharge decimal.Decimal `json:"recharge"`
}

// ParseThresholds decodes and validates a tier table from its JSON
// configuration value. The returned table is sorted by descending
// threshold; validation rejects duplicate tiers and equal thresholds.
func ParseThresholds(raw string) ([]TierThreshold, error) {
	var table []TierThreshold
	if err := json.Unmarshal([]byte(raw), &table); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTierConfig, err)
	}
	if len(table) == 0 {
		return nil, ErrEmptyTable
	}

	sort.Slice(table, func(i, j int) bool {
		return table[i].Recharge.GreaterThan(table[j].Recharge)
	})

	seen := make(map[int16]struct{}, len(table))
	for i, th := range table {
		if th.Recharge.IsNegative() {
			return nil, ErrNegativeThreshold
		}
		if _, ok := seen[th.Tier]; ok {
			return nil, ErrDuplicateTier
		}
		seen[th.Tier] = struct{}{}
		if i > 0 && !table[i-1].Recharge.GreaterThan(th.Recharge) {
			return nil, ErrNonDescendingTable
		}
	}
	return table, nil
}

// Resolve returns the tier the user holds after folding payment into
// progress: the highest configured tier whose threshold is met, never
// below the current tier. Every row is checked because tiers are not
// required to descend with thresholds.
func Resolve(table []TierThreshold, current int16, progress, payment decimal.Decimal) int16 {
	points := progress.Add(payment)
	tier := current
	for _, th := range table {
		if points.GreaterThanOrEqual(th.Recharge) && th.Tier > tier {
			tier = th.Tier
		}
	}
	return tier
}

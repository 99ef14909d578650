package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, user *User) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*User, error)
	// UpdateAssetsCAS writes newAssets only if total_assets still equals
	// oldAssets. A lost race returns ErrBalanceConflict.
	UpdateAssetsCAS(ctx context.Context, db *gorm.DB, id snowflake.ID, newAssets, oldAssets decimal.Decimal) error
	// CreditAssets increments total_assets and credit_balance without a
	// guard; used for referral commissions and bonuses where the delta is
	// additive.
	CreditAssets(ctx context.Context, db *gorm.DB, id snowflake.ID, assetsDelta, creditDelta decimal.Decimal) error
	// UpdateTier folds progressDelta into upgrade_progress and sets the tier.
	UpdateTier(ctx context.Context, db *gorm.DB, id snowflake.ID, tier int16, progressDelta decimal.Decimal) error
}

package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	userdomain "github.com/hashyield/powergrid/internal/user/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() userdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, user *userdomain.User) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO users (
			id, username, tier, invite_code, inviter_id, parent_inviter_id,
			upgrade_progress, credit_balance, total_assets, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Tier,
		user.InviteCode,
		user.InviterID,
		user.ParentInviterID,
		user.UpgradeProgress,
		user.CreditBalance,
		user.TotalAssets,
		user.CreatedAt,
		user.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*userdomain.User, error) {
	var user userdomain.User
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, userdomain.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *repo) UpdateAssetsCAS(ctx context.Context, db *gorm.DB, id snowflake.ID, newAssets, oldAssets decimal.Decimal) error {
	result := db.WithContext(ctx).Exec(
		`UPDATE users SET total_assets = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND total_assets = ?`,
		newAssets,
		id,
		oldAssets,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return userdomain.ErrBalanceConflict
	}
	return nil
}

func (r *repo) CreditAssets(ctx context.Context, db *gorm.DB, id snowflake.ID, assetsDelta, creditDelta decimal.Decimal) error {
	return db.WithContext(ctx).Exec(
		`UPDATE users SET total_assets = total_assets + ?, credit_balance = credit_balance + ?,
		 updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		assetsDelta,
		creditDelta,
		id,
	).Error
}

func (r *repo) UpdateTier(ctx context.Context, db *gorm.DB, id snowflake.ID, tier int16, progressDelta decimal.Decimal) error {
	return db.WithContext(ctx).Exec(
		`UPDATE users SET upgrade_progress = upgrade_progress + ?, tier = ?,
		 updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		progressDelta,
		tier,
		id,
	).Error
}

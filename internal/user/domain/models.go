// Package domain contains persistence models for platform users.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// User holds balances and referral/progression state. InviterID and
// ParentInviterID are captured at registration and never change; zero
// means no inviter at that level.
type User struct {
	ID              snowflake.ID    `gorm:"primaryKey"`
	Username        string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Tier            int16           `gorm:"not null;default:0"`
	InviteCode      string          `gorm:"type:varchar(20);not null;uniqueIndex"`
	InviterID       snowflake.ID    `gorm:"not null;default:0;index"`
	ParentInviterID snowflake.ID    `gorm:"not null;default:0"`
	UpgradeProgress decimal.Decimal `gorm:"type:numeric(20,8);not null;default:0"`
	CreditBalance   decimal.Decimal `gorm:"type:numeric(20,8);not null;default:0"`
	TotalAssets     decimal.Decimal `gorm:"type:numeric(20,8);not null;default:0"`
	CreatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// Assets is the balance snapshot handed to callers.
type Assets struct {
	UserID          snowflake.ID    `json:"user_id"`
	Tier            int16           `json:"tier"`
	UpgradeProgress decimal.Decimal `json:"upgrade_progress"`
	CreditBalance   decimal.Decimal `json:"credit_balance"`
	TotalAssets     decimal.Decimal `json:"total_assets"`
}

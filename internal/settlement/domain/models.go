// Package domain contains the daily settlement snapshot model and the job
// contract.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Snapshot is one position's yield credit for one settlement date. The
// unique (position_id, settle_date) key makes the nightly run idempotent:
// a re-run for the same date overwrites the row instead of duplicating it.
// Terms are frozen in for auditability even though they also live on the
// position.
type Snapshot struct {
	ID            snowflake.ID    `gorm:"primaryKey"`
	UserID        snowflake.ID    `gorm:"not null;index"`
	PositionID    snowflake.ID    `gorm:"not null;uniqueIndex:ux_settlement_snapshots_position_date"`
	PackageID     snowflake.ID    `gorm:"not null"`
	Tier          int16           `gorm:"not null"`
	DailyYieldPct decimal.Decimal `gorm:"type:numeric(10,4);not null"`
	ClosePrice    decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	Principal     decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	// Amount is the credited yield converted into position units:
	// principal * yieldPct / 100, divided by closePrice / 100.
	Amount     decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	SettleDate string          `gorm:"type:varchar(10);not null;uniqueIndex:ux_settlement_snapshots_position_date"`
	CreatedAt  time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Snapshot) TableName() string { return "settlement_snapshots" }

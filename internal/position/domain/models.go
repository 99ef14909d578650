// Package domain contains the user position (purchased power) model.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// PositionStatus is the lifecycle state of a position. Positions are never
// deleted, only transitioned.
type PositionStatus string

const (
	// StatusNoPay: order placed, external payment outstanding.
	StatusNoPay PositionStatus = "no_pay"
	// StatusActive: fully paid, accrues daily yield.
	StatusActive PositionStatus = "active"
	// StatusCancelled: order cancelled before payment.
	StatusCancelled PositionStatus = "cancelled"
	// StatusSuperseded: replaced by a higher-tier position via upgrade.
	// Keeps its historical earnings, stops accruing.
	StatusSuperseded PositionStatus = "superseded"
)

// PositionOrigin records how the position was acquired.
type PositionOrigin int16

const (
	OriginPurchased PositionOrigin = 0
	OriginGifted    PositionOrigin = 1
)

// Position is one user's instance of a power package with terms frozen at
// purchase time: Tier and DailyYieldPct are copied from the catalog and
// are unaffected by later catalog edits.
type Position struct {
	ID            snowflake.ID    `gorm:"primaryKey"`
	UserID        snowflake.ID    `gorm:"not null;index"`
	PackageID     snowflake.ID    `gorm:"not null;index"`
	OrderNo       string          `gorm:"type:varchar(40);not null;index"`
	Origin        PositionOrigin  `gorm:"not null;default:0"`
	Principal     decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	Tier          int16           `gorm:"not null"`
	DailyYieldPct decimal.Decimal `gorm:"type:numeric(10,4);not null"`
	Status        PositionStatus  `gorm:"type:varchar(20);not null;index"`
	Earnings      decimal.Decimal `gorm:"type:numeric(20,8);not null;default:0"`
	StartTime     *time.Time      `gorm:""`
	CreatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Position) TableName() string { return "positions" }

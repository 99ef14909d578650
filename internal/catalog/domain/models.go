// Package domain contains the purchasable power package catalog.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// PackageStatus toggles catalog visibility.
type PackageStatus int16

const (
	PackageStatusInactive PackageStatus = 0
	PackageStatusActive   PackageStatus = 1
)

// PowerPackage is one catalog tier. Title and Description are localized
// JSON documents the engine never interprets; only the presentation layer
// reads them. Yield and price are frozen onto positions at purchase time,
// so later catalog edits do not affect live positions.
type PowerPackage struct {
	ID            snowflake.ID      `gorm:"primaryKey"`
	Title         datatypes.JSONMap `gorm:"type:jsonb"`
	Tier          int16             `gorm:"not null"`
	DailyYieldPct decimal.Decimal   `gorm:"type:numeric(10,4);not null"`
	Price         decimal.Decimal   `gorm:"type:numeric(20,8);not null"`
	Description   datatypes.JSONMap `gorm:"type:jsonb"`
	Status        PackageStatus     `gorm:"not null;default:1"`
	Upgradable    bool              `gorm:"not null;default:false"`
	SortOrder     int32             `gorm:"not null;default:0"`
	CreatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (PowerPackage) TableName() string { return "power_packages" }

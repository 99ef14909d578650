// Package domain contains typed system configuration rows.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Well-known configuration keys.
const (
	KeyTierThresholds = "tier_thresholds"
	KeyChainAddresses = "chain_addresses"
	KeyWelcomeBonus   = "welcome_bonus"
)

// SystemConfig is one key/value configuration row. Values are JSON
// documents parsed by the typed accessors on Service.
type SystemConfig struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	Key       string       `gorm:"column:config_key;type:varchar(60);not null;uniqueIndex"`
	Value     string       `gorm:"type:text;not null"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (SystemConfig) TableName() string { return "system_configs" }

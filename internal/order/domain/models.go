// Package domain contains order persistence models and the orchestrator
// service contract.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// OrderStatus is the order state machine:
//
//	pending -> paid | cancelled
//	paid    -> upgraded
//
// Orders that need no external payment are created directly as paid. A
// paid order moves to upgraded when its position is superseded by a
// higher-tier replacement.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPaid      OrderStatus = "paid"
	StatusCancelled OrderStatus = "cancelled"
	StatusUpgraded  OrderStatus = "upgraded"
)

// Order records one purchase or upgrade attempt. AssetPay + CoinPay always
// equals Amount exactly: AssetPay is the slice covered by internal balance,
// CoinPay the slice awaiting external payment. Only Status (and the
// external transaction reference) mutate after insert.
type Order struct {
	ID              snowflake.ID    `gorm:"primaryKey"`
	OrderNo         string          `gorm:"type:varchar(40);not null;uniqueIndex"`
	UserID          snowflake.ID    `gorm:"not null;index"`
	PackageID       snowflake.ID    `gorm:"not null"`
	Quantity        int32           `gorm:"not null;default:1"`
	Amount          decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	AssetPay        decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	CoinPay         decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	BlockchainType  string          `gorm:"type:varchar(20);not null"`
	ReceivingAddr   string          `gorm:"type:varchar(120);not null"`
	TransactionHash *string         `gorm:"type:varchar(120)"`
	Status          OrderStatus     `gorm:"type:varchar(20);not null;index"`
	CreatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Order) TableName() string { return "orders" }

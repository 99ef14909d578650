// Package domain contains the append-only transaction ledger model.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// TransactionType categorizes balance-affecting events.
type TransactionType string

const (
	TypePurchase        TransactionType = "purchase"
	TypeCancelPurchase  TransactionType = "cancel_purchase"
	TypeCommission      TransactionType = "commission"
	TypeSettlementYield TransactionType = "settlement_yield"
	TypeWelcomeBonus    TransactionType = "welcome_bonus"
	TypeWithdrawal      TransactionType = "withdraw"
	TypeExchange        TransactionType = "exchange"
)

// TransactionStatus is the processing state of a ledger entry.
type TransactionStatus string

const (
	StatusPending    TransactionStatus = "pending"
	StatusProcessing TransactionStatus = "processing"
	StatusCompleted  TransactionStatus = "completed"
	StatusFailed     TransactionStatus = "failed"
	StatusCancelled  TransactionStatus = "cancelled"
)

// Transaction is one immutable ledger entry. Rows are only ever inserted;
// the sole permitted mutation is flipping Status off pending. RefNo, when
// set, deduplicates replays of the same logical event: inserts carrying a
// RefNo that already exists are silently dropped.
type Transaction struct {
	ID           snowflake.ID      `gorm:"primaryKey"`
	UserID       snowflake.ID      `gorm:"not null;index"`
	TxnNo        string            `gorm:"type:varchar(40);not null;uniqueIndex"`
	RefNo        *string           `gorm:"type:varchar(80);uniqueIndex"`
	Type         TransactionType   `gorm:"type:varchar(30);not null;index"`
	FromCurrency string            `gorm:"type:varchar(10);not null;default:''"`
	ToCurrency   string            `gorm:"type:varchar(10);not null;default:''"`
	Amount       decimal.Decimal   `gorm:"type:numeric(20,8);not null"`
	Fee          decimal.Decimal   `gorm:"type:numeric(20,8);not null;default:0"`
	ExchangeRate decimal.Decimal   `gorm:"type:numeric(20,8);not null;default:0"`
	Status       TransactionStatus `gorm:"type:varchar(20);not null"`
	Description  string            `gorm:"type:text;not null;default:''"`
	Metadata     datatypes.JSONMap `gorm:"type:jsonb"`
	CompletedAt  *time.Time        `gorm:""`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Transaction) TableName() string { return "transactions" }

package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrNotFound           = errors.New("order_not_found")
	ErrOrderNotPending    = errors.New("order_not_pending")
	ErrPositionNotActive  = errors.New("position_not_active")
	ErrTierNotHigher      = errors.New("tier_not_higher")
	ErrUpgradeDisabled    = errors.New("upgrade_not_enabled")
	ErrInvalidPaymentRail = errors.New("invalid_payment_rail")
)

type CreateOrderRequest struct {
	UserID         snowflake.ID `json:"user_id"`
	PackageID      snowflake.ID `json:"package_id"`
	BlockchainType string       `json:"blockchain_type"`
}

type UpgradeOrderRequest struct {
	UserID         snowflake.ID `json:"user_id"`
	OldPositionID  snowflake.ID `json:"old_position_id"`
	PackageID      snowflake.ID `json:"package_id"`
	BlockchainType string       `json:"blockchain_type"`
}

type CreateOrderResponse struct {
	OrderNo string `json:"order_no"`
}

// Service is the order orchestrator. Every method mutates inside one
// database transaction: all of an operation's order, position, balance and
// ledger writes commit together or not at all.
type Service interface {
	Create(ctx context.Context, req CreateOrderRequest) (*CreateOrderResponse, error)
	// Cancel refunds the internal-balance portion of a pending order.
	Cancel(ctx context.Context, userID snowflake.ID, orderNo string) error
	// MarkPaid finalizes a pending order once its external payment is
	// confirmed: tier progression, commission propagation and the ledger
	// write happen atomically. Replays are rejected with
	// ErrOrderNotPending.
	MarkPaid(ctx context.Context, userID snowflake.ID, orderNo string) error
	// Upgrade supersedes an active position with a strictly higher tier,
	// rolling its principal forward as purchasing power.
	Upgrade(ctx context.Context, req UpgradeOrderRequest) (*CreateOrderResponse, error)
	GetByNoAndUser(ctx context.Context, userID snowflake.ID, orderNo string) (*Order, error)
	ListByUser(ctx context.Context, userID snowflake.ID, limit, offset int) ([]Order, error)
}

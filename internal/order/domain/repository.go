package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *Order) error
	FindByNoAndUser(ctx context.Context, db *gorm.DB, orderNo string, userID snowflake.ID) (*Order, error)
	// UpdateStatusIfPending transitions a pending order; zero rows affected
	// means the order was concurrently finalized and surfaces as
	// ErrOrderNotPending.
	UpdateStatusIfPending(ctx context.Context, db *gorm.DB, orderNo string, status OrderStatus) error
	// MarkUpgraded retires the paid order behind a superseded position.
	// Zero rows affected is not an error: gifted positions have no
	// backing order.
	MarkUpgraded(ctx context.Context, db *gorm.DB, orderNo string) error
	ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID, limit, offset int) ([]Order, error)
}

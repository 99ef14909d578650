package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("position_not_found")

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, position *Position) error
	FindByIDAndUser(ctx context.Context, db *gorm.DB, id, userID snowflake.ID) (*Position, error)
	ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]Position, error)
	// UpdateStatusByOrderNo transitions the position created by an order.
	// startTime, when non-nil, marks the activation instant used as the
	// settlement eligibility anchor.
	UpdateStatusByOrderNo(ctx context.Context, db *gorm.DB, orderNo string, status PositionStatus, startTime *time.Time) error
	// MarkSuperseded freezes a position during upgrade.
	MarkSuperseded(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) error
	// ListActiveStartedBefore feeds the daily settlement run.
	ListActiveStartedBefore(ctx context.Context, db *gorm.DB, cutoff time.Time) ([]Position, error)
}

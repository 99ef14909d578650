package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	positiondomain "github.com/hashyield/powergrid/internal/position/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() positiondomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, position *positiondomain.Position) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO positions (
			id, user_id, package_id, order_no, origin, principal, tier,
			daily_yield_pct, status, earnings, start_time, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		position.ID,
		position.UserID,
		position.PackageID,
		position.OrderNo,
		position.Origin,
		position.Principal,
		position.Tier,
		position.DailyYieldPct,
		position.Status,
		position.Earnings,
		position.StartTime,
		position.CreatedAt,
		position.UpdatedAt,
	).Error
}

func (r *repo) FindByIDAndUser(ctx context.Context, db *gorm.DB, id, userID snowflake.ID) (*positiondomain.Position, error) {
	var position positiondomain.Position
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&position).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, positiondomain.ErrNotFound
		}
		return nil, err
	}
	return &position, nil
}

func (r *repo) ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]positiondomain.Position, error) {
	var positions []positiondomain.Position
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&positions).Error
	if err != nil {
		return nil, err
	}
	return positions, nil
}

func (r *repo) UpdateStatusByOrderNo(ctx context.Context, db *gorm.DB, orderNo string, status positiondomain.PositionStatus, startTime *time.Time) error {
	if startTime != nil {
		return db.WithContext(ctx).Exec(
			`UPDATE positions SET status = ?, start_time = ?, updated_at = CURRENT_TIMESTAMP
			 WHERE order_no = ?`,
			status,
			startTime,
			orderNo,
		).Error
	}
	return db.WithContext(ctx).Exec(
		`UPDATE positions SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE order_no = ?`,
		status,
		orderNo,
	).Error
}

func (r *repo) MarkSuperseded(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) error {
	result := db.WithContext(ctx).Exec(
		`UPDATE positions SET status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE user_id = ? AND id = ? AND status = ?`,
		positiondomain.StatusSuperseded,
		userID,
		id,
		positiondomain.StatusActive,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return positiondomain.ErrNotFound
	}
	return nil
}

func (r *repo) ListActiveStartedBefore(ctx context.Context, db *gorm.DB, cutoff time.Time) ([]positiondomain.Position, error) {
	var positions []positiondomain.Position
	err := db.WithContext(ctx).
		Where("status = ? AND start_time IS NOT NULL AND start_time <= ?", positiondomain.StatusActive, cutoff).
		Order("user_id ASC, id ASC").
		Find(&positions).Error
	if err != nil {
		return nil, err
	}
	return positions, nil
}

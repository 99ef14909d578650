package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	orderdomain "github.com/hashyield/powergrid/internal/order/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() orderdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, order *orderdomain.Order) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO orders (
			id, order_no, user_id, package_id, quantity, amount, asset_pay,
			coin_pay, blockchain_type, receiving_addr, transaction_hash, status,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID,
		order.OrderNo,
		order.UserID,
		order.PackageID,
		order.Quantity,
		order.Amount,
		order.AssetPay,
		order.CoinPay,
		order.BlockchainType,
		order.ReceivingAddr,
		order.TransactionHash,
		order.Status,
		order.CreatedAt,
		order.UpdatedAt,
	).Error
}

func (r *repo) FindByNoAndUser(ctx context.Context, db *gorm.DB, orderNo string, userID snowflake.ID) (*orderdomain.Order, error) {
	var order orderdomain.Order
	err := db.WithContext(ctx).
		Where("order_no = ? AND user_id = ?", orderNo, userID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, orderdomain.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *repo) UpdateStatusIfPending(ctx context.Context, db *gorm.DB, orderNo string, status orderdomain.OrderStatus) error {
	result := db.WithContext(ctx).Exec(
		`UPDATE orders SET status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE order_no = ? AND status = ?`,
		status,
		orderNo,
		orderdomain.StatusPending,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return orderdomain.ErrOrderNotPending
	}
	return nil
}

func (r *repo) MarkUpgraded(ctx context.Context, db *gorm.DB, orderNo string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE orders SET status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE order_no = ? AND status = ?`,
		orderdomain.StatusUpgraded,
		orderNo,
		orderdomain.StatusPaid,
	).Error
}

func (r *repo) ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID, limit, offset int) ([]orderdomain.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var orders []orderdomain.Order
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

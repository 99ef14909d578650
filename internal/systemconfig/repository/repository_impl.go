package repository

import (
	"context"
	"errors"

	configdomain "github.com/hashyield/powergrid/internal/systemconfig/domain"
	"gorm.io/gorm"
)

type Repository interface {
	FindByKey(ctx context.Context, db *gorm.DB, key string) (*configdomain.SystemConfig, error)
	Upsert(ctx context.Context, db *gorm.DB, cfg *configdomain.SystemConfig) error
}

type repo struct{}

func Provide() Repository {
	return &repo{}
}

func (r *repo) FindByKey(ctx context.Context, db *gorm.DB, key string) (*configdomain.SystemConfig, error) {
	var cfg configdomain.SystemConfig
	err := db.WithContext(ctx).
		Where("config_key = ?", key).
		First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, configdomain.ErrKeyNotFound
		}
		return nil, err
	}
	return &cfg, nil
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, cfg *configdomain.SystemConfig) error {
	result := db.WithContext(ctx).Exec(
		`UPDATE system_configs SET value = ?, updated_at = CURRENT_TIMESTAMP WHERE config_key = ?`,
		cfg.Value,
		cfg.Key,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}
	return db.WithContext(ctx).Create(cfg).Error
}

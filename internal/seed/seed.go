// Package seed bootstraps default configuration and a starter catalog so a
// fresh install is usable without manual setup.
package seed

import (
	"context"
	"errors"

	catalogdomain "github.com/hashyield/powergrid/internal/catalog/domain"
	"github.com/hashyield/powergrid/internal/idgen"
	configdomain "github.com/hashyield/powergrid/internal/systemconfig/domain"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultTierThresholds = `[{"lv":1,"recharge":100},{"lv":2,"recharge":500},{"lv":3,"recharge":2000},{"lv":4,"recharge":10000}]`
	defaultChainAddresses = `{"TRC20":"TSeedReceivingAddressChangeMe","ERC20":"0xSeedReceivingAddressChangeMe"}`
	defaultWelcomeBonus   = `10`
)

// EnsureDefaults seeds configuration keys that are missing and a starter
// catalog when the package table is empty. Existing rows are never
// overwritten, so operator edits survive restarts.
func EnsureDefaults(db *gorm.DB, gen *idgen.Generator) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureConfigTx(ctx, tx, gen, configdomain.KeyTierThresholds, defaultTierThresholds); err != nil {
			return err
		}
		if err := ensureConfigTx(ctx, tx, gen, configdomain.KeyChainAddresses, defaultChainAddresses); err != nil {
			return err
		}
		if err := ensureConfigTx(ctx, tx, gen, configdomain.KeyWelcomeBonus, defaultWelcomeBonus); err != nil {
			return err
		}
		return ensureCatalogTx(ctx, tx, gen)
	})
}

func ensureConfigTx(ctx context.Context, tx *gorm.DB, gen *idgen.Generator, key, value string) error {
	var existing configdomain.SystemConfig
	err := tx.WithContext(ctx).Where("config_key = ?", key).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return tx.WithContext(ctx).Create(&configdomain.SystemConfig{
		ID:    gen.NextID(),
		Key:   key,
		Value: value,
	}).Error
}

func ensureCatalogTx(ctx context.Context, tx *gorm.DB, gen *idgen.Generator) error {
	var count int64
	if err := tx.WithContext(ctx).Model(&catalogdomain.PowerPackage{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	packages := []catalogdomain.PowerPackage{
		{
			ID:            gen.NextID(),
			Title:         datatypes.JSONMap{"en": "Starter"},
			Tier:          1,
			DailyYieldPct: decimal.RequireFromString("1.5"),
			Price:         decimal.NewFromInt(100),
			Description:   datatypes.JSONMap{"en": "Entry-level computing power"},
			Status:        catalogdomain.PackageStatusActive,
			Upgradable:    true,
			SortOrder:     1,
		},
		{
			ID:            gen.NextID(),
			Title:         datatypes.JSONMap{"en": "Pro"},
			Tier:          2,
			DailyYieldPct: decimal.RequireFromString("2.5"),
			Price:         decimal.NewFromInt(500),
			Description:   datatypes.JSONMap{"en": "Mid-tier computing power"},
			Status:        catalogdomain.PackageStatusActive,
			Upgradable:    true,
			SortOrder:     2,
		},
		{
			ID:            gen.NextID(),
			Title:         datatypes.JSONMap{"en": "Max"},
			Tier:          3,
			DailyYieldPct: decimal.RequireFromString("5"),
			Price:         decimal.NewFromInt(2000),
			Description:   datatypes.JSONMap{"en": "High-tier computing power"},
			Status:        catalogdomain.PackageStatusActive,
			Upgradable:    false,
			SortOrder:     3,
		},
	}
	return tx.WithContext(ctx).Create(&packages).Error
}

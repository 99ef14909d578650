package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	ledgerdomain "github.com/hashyield/powergrid/internal/ledger/domain"
	configdomain "github.com/hashyield/powergrid/internal/systemconfig/domain"
	userdomain "github.com/hashyield/powergrid/internal/user/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Repo      userdomain.Repository
	LedgerSvc ledgerdomain.Service
	ConfigSvc configdomain.Service
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	repo      userdomain.Repository
	ledgerSvc ledgerdomain.Service
	configSvc configdomain.Service
}

func NewService(p Params) userdomain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("user.service"),
		repo:      p.Repo,
		ledgerSvc: p.LedgerSvc,
		configSvc: p.ConfigSvc,
	}
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*userdomain.User, error) {
	return s.repo.FindByID(ctx, s.db, id)
}

func (s *Service) GetAssets(ctx context.Context, id snowflake.ID) (*userdomain.Assets, error) {
	user, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	return &userdomain.Assets{
		UserID:          user.ID,
		Tier:            user.Tier,
		UpgradeProgress: user.UpgradeProgress,
		CreditBalance:   user.CreditBalance,
		TotalAssets:     user.TotalAssets,
	}, nil
}

func (s *Service) GrantWelcomeBonus(ctx context.Context, id snowflake.ID) error {
	bonus, err := s.configSvc.WelcomeBonus(ctx)
	if err != nil {
		return err
	}
	if bonus.LessThanOrEqual(decimal.Zero) {
		return nil
	}
	if _, err := s.repo.FindByID(ctx, s.db, id); err != nil {
		return err
	}

	// The ref_no unique index makes the grant idempotent: a replayed call
	// records nothing and must then skip the balance credit too.
	ref := fmt.Sprintf("welcome:%d", id)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry := &ledgerdomain.Transaction{
			UserID:      id,
			RefNo:       &ref,
			Type:        ledgerdomain.TypeWelcomeBonus,
			Amount:      bonus,
			Status:      ledgerdomain.StatusCompleted,
			Description: "welcome bonus",
		}
		if err := s.ledgerSvc.Record(ctx, tx, entry); err != nil {
			return err
		}

		var granted int64
		if err := tx.WithContext(ctx).
			Model(&ledgerdomain.Transaction{}).
			Where("ref_no = ? AND id = ?", ref, entry.ID).
			Count(&granted).Error; err != nil {
			return err
		}
		if granted == 0 {
			s.log.Info("welcome bonus already granted", zap.Int64("user_id", int64(id)))
			return nil
		}
		return s.repo.CreditAssets(ctx, tx, id, bonus, bonus)
	})
}

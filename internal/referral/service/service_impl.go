package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	ledgerdomain "github.com/hashyield/powergrid/internal/ledger/domain"
	referraldomain "github.com/hashyield/powergrid/internal/referral/domain"
	userdomain "github.com/hashyield/powergrid/internal/user/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Commission percentages are product constants, not configuration. They
// are only read through commissionFor so a per-campaign table can slot in
// later without touching call sites.
const (
	directCommissionPct      = 10
	secondLevelCommissionPct = 5
)

func commissionFor(level int) decimal.Decimal {
	switch level {
	case 1:
		return decimal.NewFromInt(directCommissionPct)
	case 2:
		return decimal.NewFromInt(secondLevelCommissionPct)
	default:
		return decimal.Zero
	}
}

type Params struct {
	fx.In

	Log      *zap.Logger
	UserRepo userdomain.Repository
}

type Service struct {
	log      *zap.Logger
	userRepo userdomain.Repository
}

func NewService(p Params) referraldomain.Service {
	return &Service{
		log:      p.Log.Named("referral.service"),
		userRepo: p.UserRepo,
	}
}

func (s *Service) Propagate(ctx context.Context, tx *gorm.DB, inviterID, parentInviterID snowflake.ID, paidAmount decimal.Decimal) ([]*ledgerdomain.Transaction, error) {
	if paidAmount.LessThanOrEqual(decimal.Zero) {
		return nil, nil
	}

	type credit struct {
		userID snowflake.ID
		level  int
	}
	credits := make([]credit, 0, 2)
	if inviterID > 0 {
		credits = append(credits, credit{userID: inviterID, level: 1})
	}
	if parentInviterID > 0 {
		credits = append(credits, credit{userID: parentInviterID, level: 2})
	}

	entries := make([]*ledgerdomain.Transaction, 0, len(credits))
	hundred := decimal.NewFromInt(100)
	for _, c := range credits {
		amount := paidAmount.Mul(commissionFor(c.level)).Div(hundred)
		if err := s.userRepo.CreditAssets(ctx, tx, c.userID, amount, amount); err != nil {
			return nil, fmt.Errorf("credit level-%d inviter: %w", c.level, err)
		}
		entries = append(entries, &ledgerdomain.Transaction{
			UserID:      c.userID,
			Type:        ledgerdomain.TypeCommission,
			Amount:      amount,
			Status:      ledgerdomain.StatusCompleted,
			Description: fmt.Sprintf("level %d referral commission", c.level),
		})
	}
	return entries, nil
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/hashyield/powergrid/internal/config"
	"github.com/hashyield/powergrid/internal/idgen"
	ledgerdomain "github.com/hashyield/powergrid/internal/ledger/domain"
	positiondomain "github.com/hashyield/powergrid/internal/position/domain"
	settlementdomain "github.com/hashyield/powergrid/internal/settlement/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Config       config.Config
	Gen          *idgen.Generator
	PositionRepo positiondomain.Repository
	LedgerSvc    ledgerdomain.Service
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	gen          *idgen.Generator
	margin       time.Duration
	positionRepo positiondomain.Repository
	ledgerSvc    ledgerdomain.Service
}

func NewService(p Params) settlementdomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("settlement.service"),
		gen:          p.Gen,
		margin:       p.Config.SettleSafetyMargin,
		positionRepo: p.PositionRepo,
		ledgerSvc:    p.LedgerSvc,
	}
}

func (s *Service) Run(ctx context.Context, asOf time.Time, closePrice decimal.Decimal) (int, error) {
	if !closePrice.IsPositive() {
		return 0, settlementdomain.ErrInvalidClosePrice
	}

	// Positions activated within the margin before the run are held over
	// to the next day, so a purchase racing the job never earns a partial
	// day.
	cutoff := asOf.Add(-s.margin)
	date := asOf.UTC().Format("2006-01-02")
	hundred := decimal.NewFromInt(100)
	unitPrice := closePrice.Div(hundred)

	var settled int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		positions, err := s.positionRepo.ListActiveStartedBefore(ctx, tx, cutoff)
		if err != nil {
			return err
		}
		if len(positions) == 0 {
			return nil
		}

		snapshots := make([]settlementdomain.Snapshot, 0, len(positions))
		entries := make([]*ledgerdomain.Transaction, 0, len(positions))
		ids := make([]snowflake.ID, 0, len(positions))
		for _, p := range positions {
			credited := p.Principal.Mul(p.DailyYieldPct).Div(hundred)
			units := credited.Div(unitPrice)
			snapshots = append(snapshots, settlementdomain.Snapshot{
				ID:            s.gen.NextID(),
				UserID:        p.UserID,
				PositionID:    p.ID,
				PackageID:     p.PackageID,
				Tier:          p.Tier,
				DailyYieldPct: p.DailyYieldPct,
				ClosePrice:    closePrice,
				Principal:     p.Principal,
				Amount:        units,
				SettleDate:    date,
			})
			ref := fmt.Sprintf("settle:%d:%s", p.ID, date)
			entries = append(entries, &ledgerdomain.Transaction{
				UserID:      p.UserID,
				RefNo:       &ref,
				Type:        ledgerdomain.TypeSettlementYield,
				Amount:      units,
				Status:      ledgerdomain.StatusCompleted,
				Description: fmt.Sprintf("daily yield %s", date),
			})
			ids = append(ids, p.ID)
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "position_id"}, {Name: "settle_date"}},
			DoUpdates: clause.AssignmentColumns([]string{"amount", "close_price", "created_at"}),
		}).Create(&snapshots).Error; err != nil {
			return err
		}

		// Cumulative earnings are recomputed from the snapshot table, not
		// incremented, so a re-run for an already settled date converges
		// to the same totals.
		if err := tx.Exec(
			`UPDATE positions SET earnings = (
				SELECT COALESCE(SUM(amount), 0) FROM settlement_snapshots
				WHERE settlement_snapshots.position_id = positions.id
			), updated_at = CURRENT_TIMESTAMP WHERE id IN ?`,
			ids,
		).Error; err != nil {
			return err
		}

		if err := s.ledgerSvc.Record(ctx, tx, entries...); err != nil {
			return err
		}
		settled = len(positions)
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("daily settlement finished",
		zap.String("date", date),
		zap.Int("positions", settled),
		zap.String("close_price", closePrice.String()),
	)
	return settled, nil
}

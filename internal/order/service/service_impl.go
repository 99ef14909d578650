package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/hashyield/powergrid/internal/catalog/domain"
	"github.com/hashyield/powergrid/internal/clock"
	"github.com/hashyield/powergrid/internal/idgen"
	ledgerdomain "github.com/hashyield/powergrid/internal/ledger/domain"
	leveldomain "github.com/hashyield/powergrid/internal/level/domain"
	orderdomain "github.com/hashyield/powergrid/internal/order/domain"
	positiondomain "github.com/hashyield/powergrid/internal/position/domain"
	referraldomain "github.com/hashyield/powergrid/internal/referral/domain"
	configdomain "github.com/hashyield/powergrid/internal/systemconfig/domain"
	userdomain "github.com/hashyield/powergrid/internal/user/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Clock        clock.Clock
	Gen          *idgen.Generator
	Repo         orderdomain.Repository
	PositionRepo positiondomain.Repository
	UserRepo     userdomain.Repository
	CatalogSvc   catalogdomain.Service
	ConfigSvc    configdomain.Service
	LedgerSvc    ledgerdomain.Service
	ReferralSvc  referraldomain.Service
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	clock        clock.Clock
	gen          *idgen.Generator
	repo         orderdomain.Repository
	positionRepo positiondomain.Repository
	userRepo     userdomain.Repository
	catalogSvc   catalogdomain.Service
	configSvc    configdomain.Service
	ledgerSvc    ledgerdomain.Service
	referralSvc  referraldomain.Service
}

func NewService(p Params) orderdomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("order.service"),
		clock:        p.Clock,
		gen:          p.Gen,
		repo:         p.Repo,
		positionRepo: p.PositionRepo,
		userRepo:     p.UserRepo,
		catalogSvc:   p.CatalogSvc,
		configSvc:    p.ConfigSvc,
		ledgerSvc:    p.LedgerSvc,
		referralSvc:  p.ReferralSvc,
	}
}

func (s *Service) Create(ctx context.Context, req orderdomain.CreateOrderRequest) (*orderdomain.CreateOrderResponse, error) {
	addr, err := s.resolveReceivingAddr(ctx, req.BlockchainType)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, s.db, req.UserID)
	if err != nil {
		return nil, err
	}
	pkg, err := s.activePackage(ctx, req.PackageID)
	if err != nil {
		return nil, err
	}

	var resp *orderdomain.CreateOrderResponse
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orderNo, err := s.placeOrder(ctx, tx, user, pkg, user.TotalAssets, req.BlockchainType, addr)
		if err != nil {
			return err
		}
		resp = &orderdomain.CreateOrderResponse{OrderNo: orderNo}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order created",
		zap.String("order_no", resp.OrderNo),
		zap.Int64("user_id", int64(req.UserID)),
		zap.Int64("package_id", int64(req.PackageID)),
	)
	return resp, nil
}

func (s *Service) Cancel(ctx context.Context, userID snowflake.ID, orderNo string) error {
	order, err := s.repo.FindByNoAndUser(ctx, s.db, orderNo, userID)
	if err != nil {
		return err
	}
	if order.Status != orderdomain.StatusPending {
		return orderdomain.ErrOrderNotPending
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.UpdateStatusIfPending(ctx, tx, orderNo, orderdomain.StatusCancelled); err != nil {
			return err
		}
		if err := s.positionRepo.UpdateStatusByOrderNo(ctx, tx, orderNo, positiondomain.StatusCancelled, nil); err != nil {
			return err
		}
		if !order.AssetPay.IsPositive() {
			return nil
		}
		user, err := s.userRepo.FindByID(ctx, tx, userID)
		if err != nil {
			return err
		}
		restored := user.TotalAssets.Add(order.AssetPay)
		if err := s.userRepo.UpdateAssetsCAS(ctx, tx, userID, restored, user.TotalAssets); err != nil {
			return err
		}
		return s.ledgerSvc.Record(ctx, tx, &ledgerdomain.Transaction{
			UserID:      userID,
			Type:        ledgerdomain.TypeCancelPurchase,
			Amount:      order.AssetPay,
			Status:      ledgerdomain.StatusCompleted,
			Description: fmt.Sprintf("refund for cancelled order %s", orderNo),
		})
	})
	if err != nil {
		return err
	}

	s.log.Info("order cancelled",
		zap.String("order_no", orderNo),
		zap.Int64("user_id", int64(userID)),
	)
	return nil
}

func (s *Service) MarkPaid(ctx context.Context, userID snowflake.ID, orderNo string) error {
	order, err := s.repo.FindByNoAndUser(ctx, s.db, orderNo, userID)
	if err != nil {
		return err
	}
	if order.Status != orderdomain.StatusPending {
		return orderdomain.ErrOrderNotPending
	}
	table, err := s.configSvc.TierThresholds(ctx)
	if err != nil {
		return err
	}

	var newTier int16
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// UpdateStatusIfPending is the concurrency gate: a replayed webhook
		// loses here and none of the payment side effects repeat.
		if err := s.repo.UpdateStatusIfPending(ctx, tx, orderNo, orderdomain.StatusPaid); err != nil {
			return err
		}
		// Tier and progress are read under the same transaction, so
		// concurrent payments fold into the tier one at a time.
		user, err := s.userRepo.FindByID(ctx, tx, userID)
		if err != nil {
			return err
		}
		newTier = leveldomain.Resolve(table, user.Tier, user.UpgradeProgress, order.CoinPay)
		startTime := s.clock.Now()
		if err := s.positionRepo.UpdateStatusByOrderNo(ctx, tx, orderNo, positiondomain.StatusActive, &startTime); err != nil {
			return err
		}
		if err := s.userRepo.UpdateTier(ctx, tx, userID, newTier, order.CoinPay); err != nil {
			return err
		}

		entries, err := s.referralSvc.Propagate(ctx, tx, user.InviterID, user.ParentInviterID, order.CoinPay)
		if err != nil {
			return err
		}
		if order.CoinPay.IsPositive() {
			entries = append(entries, &ledgerdomain.Transaction{
				UserID:      userID,
				Type:        ledgerdomain.TypePurchase,
				Amount:      order.CoinPay,
				Status:      ledgerdomain.StatusCompleted,
				Description: fmt.Sprintf("external payment for order %s", orderNo),
			})
		}
		if len(entries) == 0 {
			return nil
		}
		return s.ledgerSvc.Record(ctx, tx, entries...)
	})
	if err != nil {
		return err
	}

	s.log.Info("order paid",
		zap.String("order_no", orderNo),
		zap.Int64("user_id", int64(userID)),
		zap.Int16("tier", newTier),
	)
	return nil
}

func (s *Service) Upgrade(ctx context.Context, req orderdomain.UpgradeOrderRequest) (*orderdomain.CreateOrderResponse, error) {
	addr, err := s.resolveReceivingAddr(ctx, req.BlockchainType)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, s.db, req.UserID)
	if err != nil {
		return nil, err
	}
	old, err := s.positionRepo.FindByIDAndUser(ctx, s.db, req.OldPositionID, req.UserID)
	if err != nil {
		return nil, err
	}
	if old.Status != positiondomain.StatusActive {
		return nil, orderdomain.ErrPositionNotActive
	}
	pkg, err := s.activePackage(ctx, req.PackageID)
	if err != nil {
		return nil, err
	}
	if !pkg.Upgradable {
		return nil, orderdomain.ErrUpgradeDisabled
	}
	if pkg.Tier <= old.Tier {
		return nil, orderdomain.ErrTierNotHigher
	}

	// The superseded principal rolls forward as purchasing power for the
	// replacement order, on top of whatever balance the user holds.
	available := user.TotalAssets.Add(old.Principal)

	var resp *orderdomain.CreateOrderResponse
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.positionRepo.MarkSuperseded(ctx, tx, req.UserID, req.OldPositionID); err != nil {
			if errors.Is(err, positiondomain.ErrNotFound) {
				return orderdomain.ErrPositionNotActive
			}
			return err
		}
		if old.OrderNo != "" {
			if err := s.repo.MarkUpgraded(ctx, tx, old.OrderNo); err != nil {
				return err
			}
		}
		orderNo, err := s.placeOrder(ctx, tx, user, pkg, available, req.BlockchainType, addr)
		if err != nil {
			return err
		}
		resp = &orderdomain.CreateOrderResponse{OrderNo: orderNo}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("position upgraded",
		zap.String("order_no", resp.OrderNo),
		zap.Int64("user_id", int64(req.UserID)),
		zap.Int64("old_position_id", int64(req.OldPositionID)),
		zap.Int16("tier", pkg.Tier),
	)
	return resp, nil
}

func (s *Service) GetByNoAndUser(ctx context.Context, userID snowflake.ID, orderNo string) (*orderdomain.Order, error) {
	return s.repo.FindByNoAndUser(ctx, s.db, orderNo, userID)
}

func (s *Service) ListByUser(ctx context.Context, userID snowflake.ID, limit, offset int) ([]orderdomain.Order, error) {
	return s.repo.ListByUser(ctx, s.db, userID, limit, offset)
}

// placeOrder writes the order, its position and the internal-balance leg
// inside the caller's transaction. available is the purchasing power to
// split against the package price; for upgrades it exceeds the user's
// stored balance by the rolled-forward principal, so the compare-and-swap
// always guards on the balance actually read.
func (s *Service) placeOrder(ctx context.Context, tx *gorm.DB, user *userdomain.User, pkg *catalogdomain.PowerPackage, available decimal.Decimal, rail, addr string) (string, error) {
	internal, external := SplitPayment(available, pkg.Price)

	now := s.clock.Now()
	status := orderdomain.StatusPending
	posStatus := positiondomain.StatusNoPay
	var startTime *time.Time
	if external.IsZero() {
		status = orderdomain.StatusPaid
		posStatus = positiondomain.StatusActive
		startTime = &now
	}

	order := &orderdomain.Order{
		ID:             s.gen.NextID(),
		OrderNo:        s.gen.NextNo(idgen.PrefixOrder),
		UserID:         user.ID,
		PackageID:      pkg.ID,
		Quantity:       1,
		Amount:         pkg.Price,
		AssetPay:       internal,
		CoinPay:        external,
		BlockchainType: rail,
		ReceivingAddr:  addr,
		Status:         status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Insert(ctx, tx, order); err != nil {
		return "", err
	}

	position := &positiondomain.Position{
		ID:            s.gen.NextID(),
		UserID:        user.ID,
		PackageID:     pkg.ID,
		OrderNo:       order.OrderNo,
		Origin:        positiondomain.OriginPurchased,
		Principal:     pkg.Price,
		Tier:          pkg.Tier,
		DailyYieldPct: pkg.DailyYieldPct,
		Status:        posStatus,
		Earnings:      decimal.Zero,
		StartTime:     startTime,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.positionRepo.Insert(ctx, tx, position); err != nil {
		return "", err
	}

	if internal.IsPositive() {
		newAssets := available.Sub(internal)
		if !newAssets.Equal(user.TotalAssets) {
			if err := s.userRepo.UpdateAssetsCAS(ctx, tx, user.ID, newAssets, user.TotalAssets); err != nil {
				return "", err
			}
		}
		if err := s.ledgerSvc.Record(ctx, tx, &ledgerdomain.Transaction{
			UserID:      user.ID,
			Type:        ledgerdomain.TypePurchase,
			Amount:      internal.Neg(),
			Status:      ledgerdomain.StatusCompleted,
			Description: fmt.Sprintf("balance payment for order %s", order.OrderNo),
		}); err != nil {
			return "", err
		}
	}
	return order.OrderNo, nil
}

func (s *Service) resolveReceivingAddr(ctx context.Context, rail string) (string, error) {
	addr, err := s.configSvc.ChainAddress(ctx, rail)
	if err != nil {
		if errors.Is(err, configdomain.ErrUnknownRail) || errors.Is(err, configdomain.ErrKeyNotFound) {
			return "", orderdomain.ErrInvalidPaymentRail
		}
		return "", err
	}
	return addr, nil
}

func (s *Service) activePackage(ctx context.Context, id snowflake.ID) (*catalogdomain.PowerPackage, error) {
	pkg, err := s.catalogSvc.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pkg.Status != catalogdomain.PackageStatusActive {
		return nil, catalogdomain.ErrNotFound
	}
	return pkg, nil
}

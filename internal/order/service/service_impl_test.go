package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	catalogdomain "github.com/hashyield/powergrid/internal/catalog/domain"
	catalogservice "github.com/hashyield/powergrid/internal/catalog/service"
	"github.com/hashyield/powergrid/internal/clock"
	"github.com/hashyield/powergrid/internal/idgen"
	ledgerdomain "github.com/hashyield/powergrid/internal/ledger/domain"
	ledgerservice "github.com/hashyield/powergrid/internal/ledger/service"
	orderdomain "github.com/hashyield/powergrid/internal/order/domain"
	orderrepository "github.com/hashyield/powergrid/internal/order/repository"
	positiondomain "github.com/hashyield/powergrid/internal/position/domain"
	positionrepository "github.com/hashyield/powergrid/internal/position/repository"
	referralservice "github.com/hashyield/powergrid/internal/referral/service"
	configdomain "github.com/hashyield/powergrid/internal/systemconfig/domain"
	configrepository "github.com/hashyield/powergrid/internal/systemconfig/repository"
	configservice "github.com/hashyield/powergrid/internal/systemconfig/service"
	userdomain "github.com/hashyield/powergrid/internal/user/domain"
	userrepository "github.com/hashyield/powergrid/internal/user/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&userdomain.User{},
		&catalogdomain.PowerPackage{},
		&positiondomain.Position{},
		&orderdomain.Order{},
		&ledgerdomain.Transaction{},
		&configdomain.SystemConfig{},
	))
	return db
}

type testEnv struct {
	db    *gorm.DB
	gen   *idgen.Generator
	clock *clock.FakeClock
	svc   orderdomain.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	gen := idgen.New(node)
	log := zap.NewNop()
	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	userRepo := userrepository.Provide()
	ledgerSvc := ledgerservice.NewService(ledgerservice.Params{DB: db, Log: log, GenID: gen})
	configSvc := configservice.NewService(configservice.Params{DB: db, Log: log, Repo: configrepository.Provide(), GenID: gen})
	catalogSvc := catalogservice.NewService(catalogservice.Params{DB: db, Log: log})
	referralSvc := referralservice.NewService(referralservice.Params{Log: log, UserRepo: userRepo})

	svc := NewService(Params{
		DB:           db,
		Log:          log,
		Clock:        clk,
		Gen:          gen,
		Repo:         orderrepository.Provide(),
		PositionRepo: positionrepository.Provide(),
		UserRepo:     userRepo,
		CatalogSvc:   catalogSvc,
		ConfigSvc:    configSvc,
		LedgerSvc:    ledgerSvc,
		ReferralSvc:  referralSvc,
	})

	env := &testEnv{db: db, gen: gen, clock: clk, svc: svc}
	env.seedConfig(t)
	return env
}

func (e *testEnv) seedConfig(t *testing.T) {
	t.Helper()
	rows := []configdomain.SystemConfig{
		{ID: e.gen.NextID(), Key: configdomain.KeyTierThresholds, Value: `[{"lv":1,"recharge":100},{"lv":2,"recharge":500},{"lv":3,"recharge":1000}]`},
		{ID: e.gen.NextID(), Key: configdomain.KeyChainAddresses, Value: `{"TRC20":"TLneMq5PgCubVs","ERC20":"0x1f9090aaE28b8a"}`},
	}
	require.NoError(t, e.db.Create(&rows).Error)
}

func (e *testEnv) seedUser(t *testing.T, assets int64, inviterID, parentInviterID snowflake.ID) *userdomain.User {
	t.Helper()
	user := &userdomain.User{
		ID:              e.gen.NextID(),
		Username:        fmt.Sprintf("user%d", e.gen.NextID()),
		InviteCode:      fmt.Sprintf("IC%d", e.gen.NextID()),
		InviterID:       inviterID,
		ParentInviterID: parentInviterID,
		TotalAssets:     decimal.NewFromInt(assets),
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) seedPackage(t *testing.T, price int64, tier int16, upgradable bool) *catalogdomain.PowerPackage {
	t.Helper()
	pkg := &catalogdomain.PowerPackage{
		ID:            e.gen.NextID(),
		Tier:          tier,
		DailyYieldPct: decimal.NewFromInt(5),
		Price:         decimal.NewFromInt(price),
		Status:        catalogdomain.PackageStatusActive,
		Upgradable:    upgradable,
	}
	require.NoError(t, e.db.Create(pkg).Error)
	return pkg
}

func (e *testEnv) reloadUser(t *testing.T, id snowflake.ID) *userdomain.User {
	t.Helper()
	var user userdomain.User
	require.NoError(t, e.db.Where("id = ?", id).First(&user).Error)
	return &user
}

func (e *testEnv) position(t *testing.T, orderNo string) *positiondomain.Position {
	t.Helper()
	var position positiondomain.Position
	require.NoError(t, e.db.Where("order_no = ?", orderNo).First(&position).Error)
	return &position
}

func (e *testEnv) ledgerEntries(t *testing.T, userID snowflake.ID) []ledgerdomain.Transaction {
	t.Helper()
	var entries []ledgerdomain.Transaction
	require.NoError(t, e.db.Where("user_id = ?", userID).Order("id ASC").Find(&entries).Error)
	return entries
}

func TestSplitPayment(t *testing.T) {
	price := decimal.NewFromInt(100)
	cases := []struct {
		name      string
		available decimal.Decimal
		internal  string
		external  string
	}{
		{"empty balance", decimal.Zero, "0", "100"},
		{"negative balance", decimal.NewFromInt(-5), "0", "100"},
		{"partial cover", decimal.NewFromInt(40), "40", "60"},
		{"exact cover", decimal.NewFromInt(100), "100", "0"},
		{"surplus", decimal.NewFromInt(250), "100", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			internal, external := SplitPayment(tc.available, price)
			assert.True(t, internal.Equal(decimal.RequireFromString(tc.internal)))
			assert.True(t, external.Equal(decimal.RequireFromString(tc.external)))
			assert.True(t, internal.Add(external).Equal(price))
		})
	}

	t.Run("fractional remainder is exact", func(t *testing.T) {
		available := decimal.RequireFromString("33.33333333")
		internal, external := SplitPayment(available, price)
		assert.True(t, internal.Equal(available))
		assert.True(t, internal.Add(external).Equal(price))
	})
}

func TestCreate_PartialBalanceLeavesOrderPending(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, 40, 0, 0)
	pkg := env.seedPackage(t, 100, 1, false)

	resp, err := env.svc.Create(context.Background(), orderdomain.CreateOrderRequest{
		UserID:         user.ID,
		PackageID:      pkg.ID,
		BlockchainType: "TRC20",
	})
	require.NoError(t, err)

	order, err := env.svc.GetByNoAndUser(context.Background(), user.ID, resp.OrderNo)
	require.NoError(t, err)
	assert.Equal(t, orderdomain.StatusPending, order.Status)
	assert.True(t, order.AssetPay.Equal(decimal.NewFromInt(40)))
	assert.True(t, order.CoinPay.Equal(decimal.NewFromInt(60)))
	assert.True(t, order.Amount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "TLneMq5PgCubVs", order.ReceivingAddr)

	position := env.position(t, resp.OrderNo)
	assert.Equal(t, positiondomain.StatusNoPay, position.Status)
	assert.Nil(t, position.StartTime)
	assert.True(t, position.Principal.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, int16(1), position.Tier)

	assert.True(t, env.reloadUser(t, user.ID).TotalAssets.IsZero())

	entries := env.ledgerEntries(t, user.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, ledgerdomain.TypePurchase, entries[0].Type)
	assert.True(t, entries[0].Amount.Equal(decimal.NewFromInt(-40)))
}

func TestCreate_FullBalanceActivatesImmediately(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, 150, 0, 0)
	pkg := env.seedPackage(t, 100, 1, false)

	resp, err := env.svc.Create(context.Background(), orderdomain.CreateOrderRequest{
		UserID:         user.ID,
		PackageID:      pkg.ID,
		BlockchainType: "ERC20",
	})
	require.NoError(t, err)

	order, err := env.svc.GetByNoAndUser(context.Background(), user.ID, resp.OrderNo)
	require.NoError(t, err)
	assert.Equal(t, orderdomain.StatusPaid, order.Status)
	assert.True(t, order.CoinPay.IsZero())

	position := env.position(t, resp.OrderNo)
	assert.Equal(t, positiondomain.StatusActive, position.Status)
	require.NotNil(t, position.StartTime)
	assert.True(t, position.StartTime.Equal(env.clock.Now()))

	assert.True(t, env.reloadUser(t, user.ID).TotalAssets.Equal(decimal.NewFromInt(50)))

	// Fully covered purchases confirm no external payment, so progression
	// and commissions do not apply.
	assert.Equal(t, int16(0), env.reloadUser(t, user.ID).Tier)
}

func TestCreate_UnknownRailRejectedBeforeMutation(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, 40, 0, 0)
	pkg := env.seedPackage(t, 100, 1, false)

	_, err := env.svc.Create(context.Background(), orderdomain.CreateOrderRequest{
		UserID:         user.ID,
		PackageID:      pkg.ID,
		BlockchainType: "DOGE",
	})
	assert.ErrorIs(t, err, orderdomain.ErrInvalidPaymentRail)
	assert.True(t, env.reloadUser(t, user.ID).TotalAssets.Equal(decimal.NewFromInt(40)))
}

func TestCancel_RestoresInternalPortion(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, 40, 0, 0)
	pkg := env.seedPackage(t, 100, 1, false)

	resp, err := env.svc.Create(context.Background(), orderdomain.CreateOrderRequest{
		UserID:         user.ID,
		PackageID:      pkg.ID,
		BlockchainType: "TRC20",
	})
	require.NoError(t, err)
	require.True(t, env.reloadUser(t, user.ID).TotalAssets.IsZero())

	require.NoError(t, env.svc.Cancel(context.Background(), user.ID, resp.OrderNo))

	order, err := env.svc.GetByNoAndUser(context.Background(), user.ID, resp.OrderNo)
	require.NoError(t, err)
	assert.Equal(t, orderdomain.StatusCancelled, order.Status)
	assert.Equal(t, positiondomain.StatusCancelled, env.position(t, resp.OrderNo).Status)
	assert.True(t, env.reloadUser(t, user.ID).TotalAssets.Equal(decimal.NewFromInt(40)))

	entries := env.ledgerEntries(t, user.ID)
	require.Len(t, entries, 2)
	assert.Equal(t, ledgerdomain.TypeCancelPurchase, entries[1].Type)
	assert.True(t, entries[1].Amount.Equal(decimal.NewFromInt(40)))

	// A cancelled order cannot be cancelled or paid again.
	assert.ErrorIs(t, env.svc.Cancel(context.Background(), user.ID, resp.OrderNo), orderdomain.ErrOrderNotPending)
	assert.ErrorIs(t, env.svc.MarkPaid(context.Background(), user.ID, resp.OrderNo), orderdomain.ErrOrderNotPending)
}

func TestMarkPaid_ActivatesAndTracksProgress(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, 40, 0, 0)
	pkg := env.seedPackage(t, 100, 1, false)

	resp, err := env.svc.Create(context.Background(), orderdomain.CreateOrderRequest{
		UserID:         user.ID,
		PackageID:      pkg.ID,
		BlockchainType: "TRC20",
	})
	require.NoError(t, err)

	require.NoError(t, env.svc.MarkPaid(context.Background(), user.ID, resp.OrderNo))

	order, err := env.svc.GetByNoAndUser(context.Background(), user.ID, resp.OrderNo)
	require.NoError(t, err)
	assert.Equal(t, orderdomain.StatusPaid, order.Status)

	position := env.position(t, resp.OrderNo)
	assert.Equal(t, positiondomain.StatusActive, position.Status)
	require.NotNil(t, position.StartTime)

	// Only the externally paid 60 counts toward progression, below the
	// first threshold of 100.
	reloaded := env.reloadUser(t, user.ID)
	assert.True(t, reloaded.UpgradeProgress.Equal(decimal.NewFromInt(60)))
	assert.Equal(t, int16(0), reloaded.Tier)

	entries := env.ledgerEntries(t, user.ID)
	require.Len(t, entries, 2)
	assert.Equal(t, ledgerdomain.TypePurchase, entries[1].Type)
	assert.True(t, entries[1].Amount.Equal(decimal.NewFromInt(60)))

	// Webhook replay loses the status gate and repeats nothing.
	assert.ErrorIs(t, env.svc.MarkPaid(context.Background(), user.ID, resp.OrderNo), orderdomain.ErrOrderNotPending)
	assert.True(t, env.reloadUser(t, user.ID).UpgradeProgress.Equal(decimal.NewFromInt(60)))
	assert.Len(t, env.ledgerEntries(t, user.ID), 2)
}

func TestMarkPaid_PropagatesTwoTierCommissions(t *testing.T) {
	env := newTestEnv(t)
	grandInviter := env.seedUser(t, 0, 0, 0)
	inviter := env.seedUser(t, 0, grandInviter.ID, 0)
	buyer := env.seedUser(t, 0, inviter.ID, grandInviter.ID)
	pkg := env.seedPackage(t, 200, 1, false)

	resp, err := env.svc.Create(context.Background(), orderdomain.CreateOrderRequest{
		UserID:         buyer.ID,
		PackageID:      pkg.ID,
		BlockchainType: "TRC20",
	})
	require.NoError(t, err)
	require.NoError(t, env.svc.MarkPaid(context.Background(), buyer.ID, resp.OrderNo))

	assert.True(t, env.reloadUser(t, inviter.ID).TotalAssets.Equal(decimal.NewFromInt(20)))
	assert.True(t, env.reloadUser(t, grandInviter.ID).TotalAssets.Equal(decimal.NewFromInt(10)))

	inviterEntries := env.ledgerEntries(t, inviter.ID)
	require.Len(t, inviterEntries, 1)
	assert.Equal(t, ledgerdomain.TypeCommission, inviterEntries[0].Type)
	assert.True(t, inviterEntries[0].Amount.Equal(decimal.NewFromInt(20)))

	grandEntries := env.ledgerEntries(t, grandInviter.ID)
	require.Len(t, grandEntries, 1)
	assert.True(t, grandEntries[0].Amount.Equal(decimal.NewFromInt(10)))
}

func TestMarkPaid_NoInvitersSkipsCommissions(t *testing.T) {
	env := newTestEnv(t)
	buyer := env.seedUser(t, 0, 0, 0)
	pkg := env.seedPackage(t, 200, 1, false)

	resp, err := env.svc.Create(context.Background(), orderdomain.CreateOrderRequest{
		UserID:         buyer.ID,
		PackageID:      pkg.ID,
		BlockchainType: "TRC20",
	})
	require.NoError(t, err)
	require.NoError(t, env.svc.MarkPaid(context.Background(), buyer.ID, resp.OrderNo))

	entries := env.ledgerEntries(t, buyer.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, ledgerdomain.TypePurchase, entries[0].Type)
}

func TestMarkPaid_SinglePaymentJumpsMultipleTiers(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, 0, 0, 0)
	pkg := env.seedPackage(t, 1200, 1, false)

	resp, err := env.svc.Create(context.Background(), orderdomain.CreateOrderRequest{
		UserID:         user.ID,
		PackageID:      pkg.ID,
		BlockchainType: "TRC20",
	})
	require.NoError(t, err)
	require.NoError(t, env.svc.MarkPaid(context.Background(), user.ID, resp.OrderNo))

	reloaded := env.reloadUser(t, user.ID)
	assert.Equal(t, int16(3), reloaded.Tier)
	assert.True(t, reloaded.UpgradeProgress.Equal(decimal.NewFromInt(1200)))
}

func TestMarkPaid_TierFoldsProgressAcrossPayments(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, 0, 0, 0)
	pkg := env.seedPackage(t, 300, 1, false)

	// Two externally paid orders; neither alone reaches the 500
	// threshold, together they do. The tier is resolved from the
	// progress stored at payment time, not from the caller's snapshot.
	for i := 0; i < 2; i++ {
		resp, err := env.svc.Create(context.Background(), orderdomain.CreateOrderRequest{
			UserID:         user.ID,
			PackageID:      pkg.ID,
			BlockchainType: "TRC20",
		})
		require.NoError(t, err)
		require.NoError(t, env.svc.MarkPaid(context.Background(), user.ID, resp.OrderNo))
	}

	reloaded := env.reloadUser(t, user.ID)
	assert.True(t, reloaded.UpgradeProgress.Equal(decimal.NewFromInt(600)))
	assert.Equal(t, int16(2), reloaded.Tier)
}

func TestUpgrade_RollsPrincipalForward(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, 100, 0, 0)
	oldPkg := env.seedPackage(t, 100, 1, false)
	newPkg := env.seedPackage(t, 150, 2, true)

	created, err := env.svc.Create(context.Background(), orderdomain.CreateOrderRequest{
		UserID:         user.ID,
		PackageID:      oldPkg.ID,
		BlockchainType: "TRC20",
	})
	require.NoError(t, err)
	oldPosition := env.position(t, created.OrderNo)
	require.Equal(t, positiondomain.StatusActive, oldPosition.Status)
	require.True(t, env.reloadUser(t, user.ID).TotalAssets.IsZero())

	upgraded, err := env.svc.Upgrade(context.Background(), orderdomain.UpgradeOrderRequest{
		UserID:         user.ID,
		OldPositionID:  oldPosition.ID,
		PackageID:      newPkg.ID,
		BlockchainType: "TRC20",
	})
	require.NoError(t, err)

	// Balance 0 plus the rolled-forward principal 100 covers 100 of the
	// 150 price; 50 remains to pay externally.
	order, err := env.svc.GetByNoAndUser(context.Background(), user.ID, upgraded.OrderNo)
	require.NoError(t, err)
	assert.Equal(t, orderdomain.StatusPending, order.Status)
	assert.True(t, order.AssetPay.Equal(decimal.NewFromInt(100)))
	assert.True(t, order.CoinPay.Equal(decimal.NewFromInt(50)))

	assert.Equal(t, positiondomain.StatusSuperseded, env.position(t, created.OrderNo).Status)
	oldOrder, err := env.svc.GetByNoAndUser(context.Background(), user.ID, created.OrderNo)
	require.NoError(t, err)
	assert.Equal(t, orderdomain.StatusUpgraded, oldOrder.Status)

	newPosition := env.position(t, upgraded.OrderNo)
	assert.Equal(t, positiondomain.StatusNoPay, newPosition.Status)
	assert.Equal(t, int16(2), newPosition.Tier)
	assert.True(t, env.reloadUser(t, user.ID).TotalAssets.IsZero())
}

func TestUpgrade_SurplusPrincipalReturnsToBalance(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, 200, 0, 0)
	oldPkg := env.seedPackage(t, 200, 1, false)
	newPkg := env.seedPackage(t, 150, 2, true)

	created, err := env.svc.Create(context.Background(), orderdomain.CreateOrderRequest{
		UserID:         user.ID,
		PackageID:      oldPkg.ID,
		BlockchainType: "TRC20",
	})
	require.NoError(t, err)
	oldPosition := env.position(t, created.OrderNo)

	upgraded, err := env.svc.Upgrade(context.Background(), orderdomain.UpgradeOrderRequest{
		UserID:         user.ID,
		OldPositionID:  oldPosition.ID,
		PackageID:      newPkg.ID,
		BlockchainType: "TRC20",
	})
	require.NoError(t, err)

	// available = 0 + 200 principal; the 150 price is fully covered and
	// the 50 surplus lands back on the balance.
	order, err := env.svc.GetByNoAndUser(context.Background(), user.ID, upgraded.OrderNo)
	require.NoError(t, err)
	assert.Equal(t, orderdomain.StatusPaid, order.Status)
	assert.Equal(t, positiondomain.StatusActive, env.position(t, upgraded.OrderNo).Status)
	assert.True(t, env.reloadUser(t, user.ID).TotalAssets.Equal(decimal.NewFromInt(50)))
}

func TestUpgrade_Guards(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, 100, 0, 0)
	oldPkg := env.seedPackage(t, 100, 2, false)

	created, err := env.svc.Create(context.Background(), orderdomain.CreateOrderRequest{
		UserID:         user.ID,
		PackageID:      oldPkg.ID,
		BlockchainType: "TRC20",
	})
	require.NoError(t, err)
	oldPosition := env.position(t, created.OrderNo)

	t.Run("tier must be strictly higher", func(t *testing.T) {
		sameTier := env.seedPackage(t, 150, 2, true)
		_, err := env.svc.Upgrade(context.Background(), orderdomain.UpgradeOrderRequest{
			UserID:         user.ID,
			OldPositionID:  oldPosition.ID,
			PackageID:      sameTier.ID,
			BlockchainType: "TRC20",
		})
		assert.ErrorIs(t, err, orderdomain.ErrTierNotHigher)
	})

	t.Run("package must allow upgrades", func(t *testing.T) {
		locked := env.seedPackage(t, 300, 3, false)
		_, err := env.svc.Upgrade(context.Background(), orderdomain.UpgradeOrderRequest{
			UserID:         user.ID,
			OldPositionID:  oldPosition.ID,
			PackageID:      locked.ID,
			BlockchainType: "TRC20",
		})
		assert.ErrorIs(t, err, orderdomain.ErrUpgradeDisabled)
	})

	t.Run("position must be active", func(t *testing.T) {
		target := env.seedPackage(t, 300, 3, true)
		require.NoError(t, env.db.Model(&positiondomain.Position{}).
			Where("id = ?", oldPosition.ID).
			Update("status", positiondomain.StatusSuperseded).Error)
		_, err := env.svc.Upgrade(context.Background(), orderdomain.UpgradeOrderRequest{
			UserID:         user.ID,
			OldPositionID:  oldPosition.ID,
			PackageID:      target.ID,
			BlockchainType: "TRC20",
		})
		assert.ErrorIs(t, err, orderdomain.ErrPositionNotActive)
	})
}

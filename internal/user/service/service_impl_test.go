package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/hashyield/powergrid/internal/idgen"
	ledgerdomain "github.com/hashyield/powergrid/internal/ledger/domain"
	ledgerservice "github.com/hashyield/powergrid/internal/ledger/service"
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

type testEnv struct {
	db        *gorm.DB
	gen       *idgen.Generator
	svc       userdomain.Service
	configSvc configdomain.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&userdomain.User{},
		&ledgerdomain.Transaction{},
		&configdomain.SystemConfig{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	gen := idgen.New(node)
	log := zap.NewNop()

	configSvc := configservice.NewService(configservice.Params{
		DB:    db,
		Log:   log,
		Repo:  configrepository.Provide(),
		GenID: gen,
	})
	svc := NewService(Params{
		DB:        db,
		Log:       log,
		Repo:      userrepository.Provide(),
		LedgerSvc: ledgerservice.NewService(ledgerservice.Params{DB: db, Log: log, GenID: gen}),
		ConfigSvc: configSvc,
	})
	return &testEnv{db: db, gen: gen, svc: svc, configSvc: configSvc}
}

func (e *testEnv) seedUser(t *testing.T, assets int64) *userdomain.User {
	t.Helper()
	user := &userdomain.User{
		ID:          e.gen.NextID(),
		Username:    fmt.Sprintf("user%d", e.gen.NextID()),
		InviteCode:  fmt.Sprintf("code%d", e.gen.NextID()),
		TotalAssets: decimal.NewFromInt(assets),
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) reload(t *testing.T, id snowflake.ID) *userdomain.User {
	t.Helper()
	var user userdomain.User
	require.NoError(t, e.db.Where("id = ?", id).First(&user).Error)
	return &user
}

func TestGetAssets(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, 250)

	assets, err := env.svc.GetAssets(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, assets.UserID)
	assert.True(t, assets.TotalAssets.Equal(decimal.NewFromInt(250)))

	_, err = env.svc.GetAssets(context.Background(), env.gen.NextID())
	assert.ErrorIs(t, err, userdomain.ErrNotFound)
}

func TestGrantWelcomeBonusCreditsOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.configSvc.Set(ctx, configdomain.KeyWelcomeBonus, "15"))
	user := env.seedUser(t, 0)

	require.NoError(t, env.svc.GrantWelcomeBonus(ctx, user.ID))
	require.NoError(t, env.svc.GrantWelcomeBonus(ctx, user.ID))

	after := env.reload(t, user.ID)
	assert.True(t, after.TotalAssets.Equal(decimal.NewFromInt(15)))
	assert.True(t, after.CreditBalance.Equal(decimal.NewFromInt(15)))

	var entries []ledgerdomain.Transaction
	require.NoError(t, env.db.Where("user_id = ?", user.ID).Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, ledgerdomain.TypeWelcomeBonus, entries[0].Type)
	assert.True(t, entries[0].Amount.Equal(decimal.NewFromInt(15)))
}

func TestGrantWelcomeBonusZeroDisables(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.configSvc.Set(ctx, configdomain.KeyWelcomeBonus, "0"))
	user := env.seedUser(t, 0)

	require.NoError(t, env.svc.GrantWelcomeBonus(ctx, user.ID))

	after := env.reload(t, user.ID)
	assert.True(t, after.TotalAssets.IsZero())

	var n int64
	require.NoError(t, env.db.Model(&ledgerdomain.Transaction{}).Count(&n).Error)
	assert.EqualValues(t, 0, n)
}

func TestGrantWelcomeBonusUnknownUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.configSvc.Set(ctx, configdomain.KeyWelcomeBonus, "15"))

	err := env.svc.GrantWelcomeBonus(ctx, env.gen.NextID())
	assert.ErrorIs(t, err, userdomain.ErrNotFound)
}

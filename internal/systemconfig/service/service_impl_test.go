package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/hashyield/powergrid/internal/idgen"
	leveldomain "github.com/hashyield/powergrid/internal/level/domain"
	configdomain "github.com/hashyield/powergrid/internal/systemconfig/domain"
	"github.com/hashyield/powergrid/internal/systemconfig/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (configdomain.Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&configdomain.SystemConfig{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Repo:  repository.Provide(),
		GenID: idgen.New(node),
	})
	return svc, db
}

func TestTierThresholds(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.TierThresholds(ctx)
	assert.ErrorIs(t, err, configdomain.ErrKeyNotFound)

	require.NoError(t, svc.Set(ctx, configdomain.KeyTierThresholds,
		`[{"lv":1,"recharge":100},{"lv":2,"recharge":500}]`))

	table, err := svc.TierThresholds(ctx)
	require.NoError(t, err)
	require.Len(t, table, 2)
	assert.Equal(t, int16(2), table[0].Tier)
	assert.True(t, table[0].Recharge.Equal(decimal.NewFromInt(500)))

	require.NoError(t, svc.Set(ctx, configdomain.KeyTierThresholds, `{"not":"a table"}`))
	_, err = svc.TierThresholds(ctx)
	assert.ErrorIs(t, err, leveldomain.ErrMalformedTierConfig)
}

func TestChainAddress(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, configdomain.KeyChainAddresses,
		`{"TRC20":"TLneMq5PgCubVs","ERC20":"0x1f9090aaE28b8a"}`))

	addr, err := svc.ChainAddress(ctx, "TRC20")
	require.NoError(t, err)
	assert.Equal(t, "TLneMq5PgCubVs", addr)

	// Rails match case-insensitively and ignore surrounding whitespace.
	addr, err = svc.ChainAddress(ctx, " erc20 ")
	require.NoError(t, err)
	assert.Equal(t, "0x1f9090aaE28b8a", addr)

	_, err = svc.ChainAddress(ctx, "BEP20")
	assert.ErrorIs(t, err, configdomain.ErrUnknownRail)

	_, err = svc.ChainAddress(ctx, "")
	assert.ErrorIs(t, err, configdomain.ErrUnknownRail)
}

func TestWelcomeBonus(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, configdomain.KeyWelcomeBonus, " 15.5 "))
	bonus, err := svc.WelcomeBonus(ctx)
	require.NoError(t, err)
	assert.True(t, bonus.Equal(decimal.RequireFromString("15.5")))

	require.NoError(t, svc.Set(ctx, configdomain.KeyWelcomeBonus, "plenty"))
	_, err = svc.WelcomeBonus(ctx)
	assert.Error(t, err)
}

func TestSetUpsertsExistingKey(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, configdomain.KeyWelcomeBonus, "10"))
	require.NoError(t, svc.Set(ctx, configdomain.KeyWelcomeBonus, "25"))

	var n int64
	require.NoError(t, db.Model(&configdomain.SystemConfig{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)

	bonus, err := svc.WelcomeBonus(ctx)
	require.NoError(t, err)
	assert.True(t, bonus.Equal(decimal.NewFromInt(25)))

	assert.ErrorIs(t, svc.Set(ctx, "  ", "x"), configdomain.ErrKeyNotFound)
}

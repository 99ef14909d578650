package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	userdomain "github.com/hashyield/powergrid/internal/user/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&userdomain.User{}))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, assets int64) *userdomain.User {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	user := &userdomain.User{
		ID:          node.Generate(),
		Username:    fmt.Sprintf("user%d", node.Generate()),
		InviteCode:  fmt.Sprintf("IC%d", node.Generate()),
		TotalAssets: decimal.NewFromInt(assets),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestUpdateAssetsCASRejectsStaleRead(t *testing.T) {
	db := newTestDB(t)
	repo := Provide()
	ctx := context.Background()
	user := seedUser(t, db, 100)

	// Another writer moves the balance between our read and the swap.
	require.NoError(t, repo.CreditAssets(ctx, db, user.ID, decimal.NewFromInt(50), decimal.Zero))

	err := repo.UpdateAssetsCAS(ctx, db, user.ID, decimal.NewFromInt(60), decimal.NewFromInt(100))
	assert.ErrorIs(t, err, userdomain.ErrBalanceConflict)

	reloaded, err := repo.FindByID(ctx, db, user.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.TotalAssets.Equal(decimal.NewFromInt(150)))
}

func TestUpdateAssetsCASSwapsOnMatchingRead(t *testing.T) {
	db := newTestDB(t)
	repo := Provide()
	ctx := context.Background()
	user := seedUser(t, db, 100)

	require.NoError(t, repo.UpdateAssetsCAS(ctx, db, user.ID, decimal.NewFromInt(40), decimal.NewFromInt(100)))

	reloaded, err := repo.FindByID(ctx, db, user.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.TotalAssets.Equal(decimal.NewFromInt(40)))

	// Replaying the same swap now conflicts: the guard value is gone.
	err = repo.UpdateAssetsCAS(ctx, db, user.ID, decimal.NewFromInt(40), decimal.NewFromInt(100))
	assert.ErrorIs(t, err, userdomain.ErrBalanceConflict)
}

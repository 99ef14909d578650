package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrNotFound = errors.New("user_not_found")
	// ErrBalanceConflict means a compare-and-swap balance update lost a
	// race. The enclosing transaction has been rolled back; the caller may
	// retry the whole operation.
	ErrBalanceConflict = errors.New("balance_conflict")
)

type Service interface {
	GetByID(ctx context.Context, id snowflake.ID) (*User, error)
	GetAssets(ctx context.Context, id snowflake.ID) (*Assets, error)
	// GrantWelcomeBonus credits the configured signup bonus once per user.
	// Replays are a no-op.
	GrantWelcomeBonus(ctx context.Context, id snowflake.ID) error
}

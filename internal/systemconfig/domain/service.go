package domain

import (
	"context"
	"errors"

	leveldomain "github.com/hashyield/powergrid/internal/level/domain"
	"github.com/shopspring/decimal"
)

var (
	ErrKeyNotFound = errors.New("config_key_not_found")
	ErrUnknownRail = errors.New("unknown_payment_rail")
)

type Service interface {
	// TierThresholds returns the validated tier progression table.
	TierThresholds(ctx context.Context) ([]leveldomain.TierThreshold, error)
	// ChainAddress resolves a payment rail (TRC20, ERC20, ...) to the
	// platform receiving address. Unknown rails return ErrUnknownRail.
	ChainAddress(ctx context.Context, rail string) (string, error)
	// WelcomeBonus returns the signup bonus amount; zero disables it.
	WelcomeBonus(ctx context.Context) (decimal.Decimal, error)
	Set(ctx context.Context, key, value string) error
}

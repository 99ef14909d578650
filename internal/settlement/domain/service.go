package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidClosePrice = errors.New("invalid_close_price")

type Service interface {
	// Run settles every active position whose start time is at or before
	// asOf minus the configured safety margin, crediting one day of yield
	// at the supplied closing price. It returns the number of positions
	// settled. The whole batch commits in one transaction; a re-run for
	// the same date is a no-op on aggregate earnings.
	Run(ctx context.Context, asOf time.Time, closePrice decimal.Decimal) (int, error)
}

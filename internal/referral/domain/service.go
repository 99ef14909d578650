// Package domain defines the two-tier referral commission propagator.
package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	ledgerdomain "github.com/hashyield/powergrid/internal/ledger/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Service interface {
	// Propagate credits the direct inviter 10% and the second-level
	// inviter 5% of paidAmount, inside the caller's transaction, and
	// returns the commission ledger entries for the caller to record in
	// the same transaction. A zero inviter id is skipped, not an error.
	Propagate(ctx context.Context, tx *gorm.DB, inviterID, parentInviterID snowflake.ID, paidAmount decimal.Decimal) ([]*ledgerdomain.Transaction, error)
}

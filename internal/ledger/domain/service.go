package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrInvalidUser     = errors.New("ledger_invalid_user")
	ErrInvalidType     = errors.New("ledger_invalid_type")
	ErrInvalidStatus   = errors.New("ledger_invalid_status")
	ErrEntryNotPending = errors.New("ledger_entry_not_pending")
)

type ListRequest struct {
	UserID snowflake.ID
	Type   TransactionType
	Limit  int
	Offset int
}

type Service interface {
	// Record appends entries inside the caller's transaction. Entries
	// without an ID or TxnNo get one assigned. Entries whose RefNo already
	// exists are skipped, making replays of the same logical event inert.
	Record(ctx context.Context, tx *gorm.DB, entries ...*Transaction) error
	ListByUser(ctx context.Context, req ListRequest) ([]Transaction, error)
	// MarkCompleted and MarkFailed are the only permitted mutations: they
	// flip a pending entry's status and return ErrEntryNotPending when the
	// entry is missing or already settled.
	MarkCompleted(ctx context.Context, id snowflake.ID) error
	MarkFailed(ctx context.Context, id snowflake.ID) error
}

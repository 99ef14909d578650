package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/hashyield/powergrid/internal/idgen"
	ledgerdomain "github.com/hashyield/powergrid/internal/ledger/domain"
	"github.com/hashyield/powergrid/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *idgen.Generator
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *idgen.Generator
}

func NewService(p Params) ledgerdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("ledger.service"),
		genID: p.GenID,
	}
}

func (s *Service) Record(ctx context.Context, tx *gorm.DB, entries ...*ledgerdomain.Transaction) error {
	if len(entries) == 0 {
		return nil
	}
	for _, entry := range entries {
		if entry.UserID == 0 {
			return ledgerdomain.ErrInvalidUser
		}
		if strings.TrimSpace(string(entry.Type)) == "" {
			return ledgerdomain.ErrInvalidType
		}
		if strings.TrimSpace(string(entry.Status)) == "" {
			return ledgerdomain.ErrInvalidStatus
		}
		if entry.ID == 0 {
			entry.ID = s.genID.NextID()
		}
		if entry.TxnNo == "" {
			entry.TxnNo = s.genID.NextNo(idgen.PrefixTransaction)
		}

		result := tx.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "ref_no"}},
				DoNothing: true,
			}).
			Create(entry)
		if result.Error != nil {
			// The conflict clause only covers ref_no; a racing replay can
			// still trip another unique index, which is the same dedup.
			if !db.IsDuplicateKeyErr(result.Error) {
				return result.Error
			}
			result.RowsAffected = 0
		}
		if result.RowsAffected == 0 {
			s.log.Debug("ledger entry deduplicated",
				zap.String("type", string(entry.Type)),
				zap.Stringp("ref_no", entry.RefNo),
			)
		}
	}
	return nil
}

func (s *Service) MarkCompleted(ctx context.Context, id snowflake.ID) error {
	return s.flipStatus(ctx, id, ledgerdomain.StatusCompleted)
}

func (s *Service) MarkFailed(ctx context.Context, id snowflake.ID) error {
	return s.flipStatus(ctx, id, ledgerdomain.StatusFailed)
}

func (s *Service) flipStatus(ctx context.Context, id snowflake.ID, status ledgerdomain.TransactionStatus) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
	}
	if status == ledgerdomain.StatusCompleted {
		updates["completed_at"] = gorm.Expr("CURRENT_TIMESTAMP")
	}
	result := s.db.WithContext(ctx).
		Model(&ledgerdomain.Transaction{}).
		Where("id = ? AND status = ?", id, ledgerdomain.StatusPending).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ledgerdomain.ErrEntryNotPending
	}
	return nil
}

func (s *Service) ListByUser(ctx context.Context, req ledgerdomain.ListRequest) ([]ledgerdomain.Transaction, error) {
	if req.UserID == 0 {
		return nil, ledgerdomain.ErrInvalidUser
	}
	limit := req.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := s.db.WithContext(ctx).
		Where("user_id = ?", req.UserID)
	if req.Type != "" {
		query = query.Where("type = ?", req.Type)
	}

	var entries []ledgerdomain.Transaction
	err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(req.Offset).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

package service

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/hashyield/powergrid/internal/catalog/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(p Params) catalogdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("catalog.service"),
	}
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*catalogdomain.PowerPackage, error) {
	var pkg catalogdomain.PowerPackage
	err := s.db.WithContext(ctx).
		Where("id = ?", id).
		First(&pkg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalogdomain.ErrNotFound
		}
		return nil, err
	}
	return &pkg, nil
}

func (s *Service) ListActive(ctx context.Context) ([]catalogdomain.PowerPackage, error) {
	var packages []catalogdomain.PowerPackage
	err := s.db.WithContext(ctx).
		Where("status = ?", catalogdomain.PackageStatusActive).
		Order("sort_order ASC, tier ASC").
		Find(&packages).Error
	if err != nil {
		return nil, err
	}
	return packages, nil
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hashyield/powergrid/internal/idgen"
	leveldomain "github.com/hashyield/powergrid/internal/level/domain"
	configdomain "github.com/hashyield/powergrid/internal/systemconfig/domain"
	"github.com/hashyield/powergrid/internal/systemconfig/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Repo  repository.Repository
	GenID *idgen.Generator
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  repository.Repository
	genID *idgen.Generator
}

func NewService(p Params) configdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("systemconfig.service"),
		repo:  p.Repo,
		genID: p.GenID,
	}
}

func (s *Service) TierThresholds(ctx context.Context) ([]leveldomain.TierThreshold, error) {
	cfg, err := s.repo.FindByKey(ctx, s.db, configdomain.KeyTierThresholds)
	if err != nil {
		return nil, err
	}
	table, err := leveldomain.ParseThresholds(cfg.Value)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", configdomain.KeyTierThresholds, err)
	}
	return table, nil
}

func (s *Service) ChainAddress(ctx context.Context, rail string) (string, error) {
	rail = strings.ToUpper(strings.TrimSpace(rail))
	if rail == "" {
		return "", configdomain.ErrUnknownRail
	}

	cfg, err := s.repo.FindByKey(ctx, s.db, configdomain.KeyChainAddresses)
	if err != nil {
		return "", err
	}
	var addrs map[string]string
	if err := json.Unmarshal([]byte(cfg.Value), &addrs); err != nil {
		return "", fmt.Errorf("parse %s: %w", configdomain.KeyChainAddresses, err)
	}
	addr, ok := addrs[rail]
	if !ok || addr == "" {
		return "", configdomain.ErrUnknownRail
	}
	return addr, nil
}

func (s *Service) WelcomeBonus(ctx context.Context) (decimal.Decimal, error) {
	cfg, err := s.repo.FindByKey(ctx, s.db, configdomain.KeyWelcomeBonus)
	if err != nil {
		return decimal.Zero, err
	}
	bonus, err := decimal.NewFromString(strings.TrimSpace(cfg.Value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse %s: %w", configdomain.KeyWelcomeBonus, err)
	}
	return bonus, nil
}

func (s *Service) Set(ctx context.Context, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return configdomain.ErrKeyNotFound
	}
	return s.repo.Upsert(ctx, s.db, &configdomain.SystemConfig{
		ID:    s.genID.NextID(),
		Key:   key,
		Value: value,
	})
}

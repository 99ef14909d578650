package migration

import (
	"github.com/hashyield/powergrid/internal/config"
	"github.com/hashyield/powergrid/internal/idgen"
	"github.com/hashyield/powergrid/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, gen *idgen.Generator) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			if err := AutoMigrate(conn); err != nil {
				return err
			}
		}

		if cfg.SeedDefaults {
			return seed.EnsureDefaults(conn, gen)
		}
		return nil
	}),
)

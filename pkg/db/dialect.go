package db

import (
	"fmt"
	"strings"

	"github.com/hashyield/powergrid/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Dialect builds the gorm dialector for the configured database type.
// All dialects are pinned to UTC so settlement dates are stable.
func Dialect(cfg config.Config) (gorm.Dialector, error) {
	switch cfg.DBType {
	case "postgres":
		dsn := strings.Join([]string{
			"host=" + cfg.DBHost,
			"port=" + cfg.DBPort,
			"user=" + cfg.DBUser,
			"password=" + cfg.DBPassword,
			"dbname=" + cfg.DBName,
			"sslmode=" + cfg.DBSSLMode,
			"TimeZone=UTC",
		}, " ")
		return postgres.Open(dsn), nil
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
		return mysql.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(cfg.DBName + ".db"), nil
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.DBType)
	}
}

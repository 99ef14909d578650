// Package migration creates the engine's schema on startup so a fresh
// database is usable out of the box.
package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	catalogdomain "github.com/hashyield/powergrid/internal/catalog/domain"
	ledgerdomain "github.com/hashyield/powergrid/internal/ledger/domain"
	orderdomain "github.com/hashyield/powergrid/internal/order/domain"
	positiondomain "github.com/hashyield/powergrid/internal/position/domain"
	settlementdomain "github.com/hashyield/powergrid/internal/settlement/domain"
	configdomain "github.com/hashyield/powergrid/internal/systemconfig/domain"
	userdomain "github.com/hashyield/powergrid/internal/user/domain"
	"gorm.io/gorm"
)

// RunMigrations applies the embedded postgres migrations.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Do not call migrator.Close here because it would close the shared *sql.DB.

	return nil
}

// AutoMigrate builds the schema from the models for the non-postgres
// dialects (mysql and the sqlite dev database), where the embedded SQL
// does not apply.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&userdomain.User{},
		&catalogdomain.PowerPackage{},
		&positiondomain.Position{},
		&orderdomain.Order{},
		&ledgerdomain.Transaction{},
		&settlementdomain.Snapshot{},
		&configdomain.SystemConfig{},
	)
}

package main

import (
	"github.com/hashyield/powergrid/internal/clock"
	"github.com/hashyield/powergrid/internal/config"
	"github.com/hashyield/powergrid/internal/idgen"
	"github.com/hashyield/powergrid/internal/ledger"
	"github.com/hashyield/powergrid/internal/logger"
	"github.com/hashyield/powergrid/internal/migration"
	obsmetrics "github.com/hashyield/powergrid/internal/observability/metrics"
	"github.com/hashyield/powergrid/internal/position"
	"github.com/hashyield/powergrid/internal/scheduler"
	"github.com/hashyield/powergrid/internal/settlement"
	"github.com/hashyield/powergrid/pkg/db"
	"go.uber.org/fx"
)

// Scheduler-only binary: runs the nightly settlement without the HTTP API,
// for deployments that separate the web tier from the batch tier.
func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		db.Module,
		clock.Module,
		idgen.Module,
		obsmetrics.Module,
		migration.Module,

		position.Module,
		ledger.Module,
		settlement.Module,
		scheduler.Module,
	)
	app.Run()
}

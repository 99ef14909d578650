package main

import (
	"github.com/hashyield/powergrid/internal/catalog"
	"github.com/hashyield/powergrid/internal/clock"
	"github.com/hashyield/powergrid/internal/config"
	"github.com/hashyield/powergrid/internal/idgen"
	"github.com/hashyield/powergrid/internal/ledger"
	"github.com/hashyield/powergrid/internal/logger"
	"github.com/hashyield/powergrid/internal/migration"
	obsmetrics "github.com/hashyield/powergrid/internal/observability/metrics"
	"github.com/hashyield/powergrid/internal/order"
	"github.com/hashyield/powergrid/internal/position"
	"github.com/hashyield/powergrid/internal/referral"
	"github.com/hashyield/powergrid/internal/scheduler"
	"github.com/hashyield/powergrid/internal/server"
	"github.com/hashyield/powergrid/internal/settlement"
	"github.com/hashyield/powergrid/internal/systemconfig"
	"github.com/hashyield/powergrid/internal/user"
	"github.com/hashyield/powergrid/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		db.Module,
		clock.Module,
		idgen.Module,
		obsmetrics.Module,
		migration.Module,

		// Domain modules
		user.Module,
		catalog.Module,
		systemconfig.Module,
		ledger.Module,
		referral.Module,
		position.Module,
		order.Module,
		settlement.Module,
		scheduler.Module,

		// HTTP surface
		server.Module,
	)
	app.Run()
}

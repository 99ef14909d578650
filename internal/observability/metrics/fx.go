package metrics

import (
	"github.com/hashyield/powergrid/internal/config"
	"go.uber.org/fx"
)

func ProvideScheduler(cfg config.Config) *SchedulerMetrics {
	return SchedulerWithConfig(Config{
		ServiceName: cfg.AppName,
		Environment: cfg.Environment,
	})
}

var Module = fx.Module("observability.metrics",
	fx.Provide(ProvideScheduler),
)

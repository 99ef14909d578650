package scheduler

import (
	"context"

	"github.com/hashyield/powergrid/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("scheduler",
	fx.Provide(ProvideConfig),
	fx.Provide(NewManager),
	fx.Invoke(registerLifecycle),
)

func registerLifecycle(lc fx.Lifecycle, cfg config.Config, mgr *Manager) {
	if !cfg.SchedulerEnabled {
		return
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return mgr.Start()
		},
		OnStop: func(context.Context) error {
			mgr.Stop()
			return nil
		},
	})
}

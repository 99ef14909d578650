package logger

import (
	"context"

	"github.com/hashyield/powergrid/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func provide(cfg config.Config) (*zap.Logger, error) {
	return New(cfg.LogLevel, cfg.AppName)
}

func flushOnStop(lc fx.Lifecycle, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			// Sync fails on stderr in some environments; shutdown proceeds anyway.
			_ = log.Sync()
			return nil
		},
	})
}

// Module wires the application-wide zap logger.
var Module = fx.Module("logger",
	fx.Provide(provide),
	fx.Invoke(flushOnStop),
)

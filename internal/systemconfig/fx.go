package systemconfig

import (
	"github.com/hashyield/powergrid/internal/systemconfig/repository"
	"github.com/hashyield/powergrid/internal/systemconfig/service"
	"go.uber.org/fx"
)

var Module = fx.Module("systemconfig.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)

package user

import (
	"github.com/hashyield/powergrid/internal/user/repository"
	"github.com/hashyield/powergrid/internal/user/service"
	"go.uber.org/fx"
)

var Module = fx.Module("user.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)

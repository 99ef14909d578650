package order

import (
	"github.com/hashyield/powergrid/internal/order/repository"
	"github.com/hashyield/powergrid/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)

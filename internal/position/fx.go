package position

import (
	"github.com/hashyield/powergrid/internal/position/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("position.repository",
	fx.Provide(repository.Provide),
)

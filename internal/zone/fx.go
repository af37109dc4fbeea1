package zone

import (
	"github.com/railzwaylabs/parkwise/internal/zone/repository"
	"github.com/railzwaylabs/parkwise/internal/zone/service"
	"go.uber.org/fx"
)

var Module = fx.Module("zone.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)

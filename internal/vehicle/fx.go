package vehicle

import (
	"github.com/railzwaylabs/parkwise/internal/vehicle/repository"
	"github.com/railzwaylabs/parkwise/internal/vehicle/service"
	"go.uber.org/fx"
)

var Module = fx.Module("vehicle.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewResolver),
	fx.Provide(service.NewService),
)

package session

import (
	"github.com/railzwaylabs/parkwise/internal/session/repository"
	"github.com/railzwaylabs/parkwise/internal/session/service"
	"go.uber.org/fx"
)

var Module = fx.Module("session.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)

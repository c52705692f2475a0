package auth

import (
	"github.com/neoledsrlbolivia/neopos/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(service.NewService),
)

package cashdrawer

import (
	"github.com/neoledsrlbolivia/neopos/internal/cashdrawer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("cashdrawer.service",
	fx.Provide(service.NewService),
)

package carousel

import (
	"github.com/neoledsrlbolivia/neopos/internal/carousel/service"
	"go.uber.org/fx"
)

var Module = fx.Module("carousel.service",
	fx.Provide(service.NewService),
)

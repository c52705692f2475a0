package quotation

import (
	"github.com/neoledsrlbolivia/neopos/internal/quotation/render"
	"github.com/neoledsrlbolivia/neopos/internal/quotation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("quotation.service",
	fx.Provide(render.NewRenderer),
	fx.Provide(service.NewService),
)

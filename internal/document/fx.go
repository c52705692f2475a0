package document

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Module("document",
	fx.Provide(NewRasterizer),
	fx.Provide(NewGenerator),
	fx.Invoke(func(lc fx.Lifecycle, raster *Rasterizer) {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return raster.Close()
			},
		})
	}),
)

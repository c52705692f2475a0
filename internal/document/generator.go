package document

import (
	"context"

	"github.com/neoledsrlbolivia/neopos/internal/observability/logger"
	"go.uber.org/zap"
)

// Generator runs the linear document pipeline: capture the HTML surface,
// then embed the bitmap into a single-page PDF. No stage retries; the
// first failure propagates and the capture surface is always released.
type Generator struct {
	raster *Rasterizer
}

func NewGenerator(raster *Rasterizer) *Generator {
	return &Generator{raster: raster}
}

// Generate produces the PDF bytes for an already-built HTML document.
func (g *Generator) Generate(ctx context.Context, html string) ([]byte, error) {
	bitmap, err := g.raster.Capture(ctx, html)
	if err != nil {
		return nil, err
	}

	pdf, err := ComposePDF(bitmap)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Debug("document generated",
		zap.Int("bitmap_width_px", bitmap.Width),
		zap.Int("bitmap_height_px", bitmap.Height),
		zap.Int("pdf_bytes", len(pdf)),
	)
	return pdf, nil
}

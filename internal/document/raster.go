package document

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/neoledsrlbolivia/neopos/internal/config"
	"go.uber.org/zap"
)

const (
	// surfaceWidth is the fixed layout width the document stylesheet
	// targets; capture height follows the content.
	surfaceWidth = 1200
	// captureScale doubles the device pixel ratio for print quality.
	captureScale = 2.0

	defaultCaptureTimeout = 30 * time.Second
)

var ErrEmptyCapture = errors.New("empty_capture")

// Bitmap is a captured PNG with its pixel dimensions.
type Bitmap struct {
	PNG    []byte
	Width  int
	Height int
}

// Rasterizer captures rendered HTML as a bitmap using headless Chrome.
// The allocator is shared across invocations; every capture runs in its
// own tab context so concurrent renders cannot collide.
type Rasterizer struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	timeout     time.Duration
	log         *zap.Logger
}

func NewRasterizer(cfg config.Config, log *zap.Logger) *Rasterizer {
	timeout := cfg.Render.Timeout
	if timeout <= 0 {
		timeout = defaultCaptureTimeout
	}

	r := &Rasterizer{
		timeout: timeout,
		log:     log.Named("document.raster"),
	}

	if cfg.Render.ChromeRemoteURL != "" {
		r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), cfg.Render.ChromeRemoteURL)
		return r
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	return r
}

// Capture renders the HTML in a fresh tab and screenshots the full
// scrollable surface at the capture scale. The tab is torn down on every
// exit path.
func (r *Rasterizer) Capture(ctx context.Context, html string) (Bitmap, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tabCtx, tabCancel := chromedp.NewContext(r.allocCtx)
	defer tabCancel()

	done := make(chan struct{})
	var buf []byte
	var runErr error
	go func() {
		defer close(done)
		runErr = chromedp.Run(tabCtx,
			chromedp.EmulateViewport(surfaceWidth, 0, chromedp.EmulateScale(captureScale)),
			chromedp.Navigate("about:blank"),
			chromedp.ActionFunc(func(ctx context.Context) error {
				frameTree, err := page.GetFrameTree().Do(ctx)
				if err != nil {
					return err
				}
				return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
			}),
			chromedp.FullScreenshot(&buf, 100),
		)
	}()

	select {
	case <-ctx.Done():
		tabCancel()
		<-done
		return Bitmap{}, ctx.Err()
	case <-done:
	}
	if runErr != nil {
		r.log.Error("capture failed", zap.Error(runErr))
		return Bitmap{}, runErr
	}
	if len(buf) == 0 {
		return Bitmap{}, ErrEmptyCapture
	}

	dims, err := png.DecodeConfig(bytes.NewReader(buf))
	if err != nil {
		return Bitmap{}, err
	}

	r.log.Debug("surface captured",
		zap.Int("width_px", dims.Width),
		zap.Int("height_px", dims.Height),
	)
	return Bitmap{PNG: buf, Width: dims.Width, Height: dims.Height}, nil
}

// Close releases the shared Chrome allocator.
func (r *Rasterizer) Close() error {
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}

package document

import (
	"bytes"
	"errors"

	"github.com/jung-kurt/gofpdf"
)

// Placement is the scaled, centered position of a bitmap on a page, all
// in point units.
type Placement struct {
	Scale  float64
	X      float64
	Y      float64
	Width  float64
	Height float64
}

var ErrInvalidBitmap = errors.New("invalid_bitmap")

// FitRect computes the largest uniform scale that fits a bitmap of
// pixelW x pixelH inside a pageW x pageH page without distortion, and
// centers it with equal margins on both axes.
func FitRect(pageW, pageH float64, pixelW, pixelH int) (Placement, error) {
	if pixelW <= 0 || pixelH <= 0 {
		return Placement{}, ErrInvalidBitmap
	}

	scale := pageW / float64(pixelW)
	if alt := pageH / float64(pixelH); alt < scale {
		scale = alt
	}

	width := float64(pixelW) * scale
	height := float64(pixelH) * scale
	return Placement{
		Scale:  scale,
		X:      (pageW - width) / 2,
		Y:      (pageH - height) / 2,
		Width:  width,
		Height: height,
	}, nil
}

// ComposePDF embeds a captured bitmap into a single A4 landscape page.
// Content taller than the page aspect ratio renders smaller; it never
// spills onto a second page.
func ComposePDF(bitmap Bitmap) ([]byte, error) {
	pdf := gofpdf.New("L", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()
	placement, err := FitRect(pageW, pageH, bitmap.Width, bitmap.Height)
	if err != nil {
		return nil, err
	}

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("document", opts, bytes.NewReader(bitmap.PNG))
	pdf.ImageOptions("document", placement.X, placement.Y, placement.Width, placement.Height, false, opts, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

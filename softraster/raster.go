// Package softraster rasterizes SVG documents with the pure-Go
// oksvg/rasterx pipeline. It is the default backend: no cgo, no system
// libraries.
package softraster

import (
	"bytes"
	"context"
	"image"
	"image/color"

	"github.com/pkg/errors"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"svgimage/composite"
)

// Rasterizer implements svgimage.Rasterizer on top of oksvg.
type Rasterizer struct{}

func New() *Rasterizer {
	return &Rasterizer{}
}

func (r *Rasterizer) Rasterize(ctx context.Context, svg []byte, width, height int, tint color.NRGBA) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid raster size %dx%d", width, height)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(svg))
	if err != nil {
		return nil, errors.Wrap(err, "parse svg")
	}

	// Stretch the document over the whole canvas instead of clipping it
	// to its declared view box.
	icon.SetTarget(0, 0, float64(width), float64(height))

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(width, height, scanner), 1.0)

	if tint.A != 0 {
		composite.SourceAtop(img, tint)
	}

	return img, nil
}

// Package vipsraster rasterizes SVG documents through libvips. It needs
// cgo and a libvips installation with SVG support; use softraster for a
// pure-Go pipeline. Callers must run vips.Startup before rendering.
package vipsraster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/cshum/vipsgen/vips"
	"github.com/pkg/errors"
)

// Rasterizer implements svgimage.Rasterizer on top of libvips.
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

	img, err := vips.NewSvgloadBuffer(svg, vips.DefaultSvgloadBufferOptions())
	if err != nil {
		return nil, errors.Wrap(err, "load svg")
	}
	defer img.Close()

	// libvips renders at the document's intrinsic size; scale to the
	// exact requested canvas, ignoring the view box aspect ratio.
	if img.Width() != width || img.Height() != height {
		hscale, vscale, err := resizeScales(img.Width(), img.Height(), width, height)
		if err != nil {
			return nil, err
		}
		resizeOpts := vips.DefaultResizeOptions()
		resizeOpts.Kernel = vips.KernelLanczos3
		resizeOpts.Vscale = vscale
		if err := img.Resize(hscale, resizeOpts); err != nil {
			return nil, errors.Wrap(err, "resize to target canvas")
		}
	}

	// This pipeline always runs the tint stage, so "no tint" must be
	// expressed as a colour libvips accepts; see NormalizeTint.
	if err := r.tintAtop(img, width, height, NormalizeTint(tint)); err != nil {
		return nil, err
	}

	buf, err := img.PngsaveBuffer(vips.DefaultPngsaveBufferOptions())
	if err != nil {
		return nil, errors.Wrap(err, "export png")
	}

	decoded, err := png.Decode(bytes.NewReader(buf))
	if err != nil {
		return nil, errors.Wrap(err, "decode exported png")
	}

	out := image.NewRGBA(decoded.Bounds())
	draw.Draw(out, out.Bounds(), decoded, decoded.Bounds().Min, draw.Src)
	return out, nil
}

// resizeScales computes the per-axis scale factors from the loaded
// document to the target canvas. A degenerate document that loads at
// zero size cannot be scaled.
func resizeScales(srcW, srcH, dstW, dstH int) (hscale, vscale float64, err error) {
	if srcW <= 0 || srcH <= 0 {
		return 0, 0, errors.Errorf("svg loaded with degenerate size %dx%d", srcW, srcH)
	}
	return float64(dstW) / float64(srcW), float64(dstH) / float64(srcH), nil
}

// tintAtop composites a uniform colour over the artwork in atop mode:
// the colour is painted wherever the artwork has coverage, and the
// artwork's alpha is kept.
func (r *Rasterizer) tintAtop(img *vips.Image, width, height int, tint color.NRGBA) error {
	ink := []byte(fmt.Sprintf(
		`<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg"><rect width="%d" height="%d" fill="#%02x%02x%02x" fill-opacity="%.6f"/></svg>`,
		width, height, width, height, tint.R, tint.G, tint.B, float64(tint.A)/255))

	overlay, err := vips.NewSvgloadBuffer(ink, vips.DefaultSvgloadBufferOptions())
	if err != nil {
		return errors.Wrap(err, "load tint overlay")
	}
	defer overlay.Close()

	if err := img.Composite2(overlay, vips.BlendModeAtop, vips.DefaultComposite2Options()); err != nil {
		return errors.Wrap(err, "composite tint")
	}
	return nil
}

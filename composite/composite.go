// Package composite implements the Porter-Duff source-atop operation
// used to tint rasterized vector graphics. The image/draw core package
// only provides the source and source-over operators; tinting needs the
// atop variant, which keeps the destination alpha and paints the source
// colour over every covered pixel.
package composite

import (
	"image"
	"image/color"
)

// SourceAtop blends a uniform tint over dst in place. dst is
// alpha-premultiplied; pixels outside the rendered shape (zero alpha)
// stay untouched and the destination alpha is preserved everywhere.
func SourceAtop(dst *image.RGBA, tint color.NRGBA) {
	b := dst.Bounds()

	as := float64(tint.A) / 255
	rs := float64(tint.R) / 255
	gs := float64(tint.G) / 255
	bs := float64(tint.B) / 255

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := dst.RGBAAt(x, y)
			if c.A == 0 {
				continue
			}

			ab := float64(c.A) / 255

			// out = src*src_a*dst_a + dst*(1-src_a), alpha = dst_a
			rn := rs*as*ab + float64(c.R)/255*(1-as)
			gn := gs*as*ab + float64(c.G)/255*(1-as)
			bn := bs*as*ab + float64(c.B)/255*(1-as)

			dst.SetRGBA(x, y, color.RGBA{
				R: uint8(rn*255 + 0.5),
				G: uint8(gn*255 + 0.5),
				B: uint8(bn*255 + 0.5),
				A: c.A,
			})
		}
	}
}

package vipsraster

import "image/color"

// noTintSentinel stands in for "no tint" on this backend. librsvg drops
// fully transparent paint when loading the tint overlay, which leaves
// the later atop composite without an alpha band; a white at alpha
// 1/255 survives loading and is visually a no-op.
var noTintSentinel = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0x01}

// NormalizeTint maps the "no tint" value onto a colour this backend
// accepts. Every other tint passes through unchanged.
func NormalizeTint(tint color.NRGBA) color.NRGBA {
	if tint.A == 0 {
		return noTintSentinel
	}
	return tint
}

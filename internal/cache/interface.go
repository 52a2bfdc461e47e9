package cache

import "svgimage"

// Cache stores encoded render output (PNG bytes) keyed by image
// identity, so repeated requests for the same key skip rasterization.
type Cache interface {
	Get(key svgimage.Identity) ([]byte, bool)
	Set(key svgimage.Identity, value []byte)
	Has(key svgimage.Identity) bool
	Clear()
}

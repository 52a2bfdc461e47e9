package svgimage

import (
	"context"
	"image/color"
	"math"
)

// Source selects the retrieval strategy for an SVG path.
type Source int

const (
	// SourceFile reads the path from the local filesystem.
	SourceFile Source = iota
	// SourceAsset reads the path from the bundled asset filesystem.
	SourceAsset
	// SourceNetwork downloads the path through the cache-backed store.
	SourceNetwork
)

func (s Source) String() string {
	switch s {
	case SourceFile:
		return "file"
	case SourceAsset:
		return "asset"
	case SourceNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// Fetcher overrides the default retrieval strategy for a key. ok=false
// means "no content from here, fall through to the source strategy".
//
// Fetcher identity participates in key equality via interface value
// comparison, so implementations must be comparable. Use a pointer
// receiver; a bare func type would make keys unusable as map keys.
type Fetcher interface {
	Fetch(ctx context.Context, key Key) (data []byte, ok bool, err error)
}

// Key is the canonical descriptor of a rasterization request. Keys are
// immutable values; build them with BuildKey.
type Key struct {
	Path        string
	Source      Source
	PixelWidth  int
	PixelHeight int
	Scale       float64
	// Tint is applied over the rendered pixels. The zero value means
	// "no tint". Tint is excluded from key identity.
	Tint color.NRGBA
	// Fetcher optionally overrides retrieval. May be nil.
	Fetcher Fetcher
}

// Identity is the comparable subset of Key used for cache and dedup
// lookups. Tint and the logical size inputs are deliberately excluded:
// two requests whose logical sizes round to the same pixel dimensions
// share a cache entry.
type Identity struct {
	Path        string
	Source      Source
	PixelWidth  int
	PixelHeight int
	Scale       float64
	Fetcher     Fetcher
}

// Identity returns the comparable identity of the key, suitable for use
// as a map key.
func (k Key) Identity() Identity {
	return Identity{
		Path:        k.Path,
		Source:      k.Source,
		PixelWidth:  k.PixelWidth,
		PixelHeight: k.PixelHeight,
		Scale:       k.Scale,
		Fetcher:     k.Fetcher,
	}
}

// Equal reports whether two keys describe the same cache entry.
func (k Key) Equal(other Key) bool {
	return k.Identity() == other.Identity()
}

// Tinted reports whether the key carries a visible tint.
func (k Key) Tinted() bool {
	return k.Tint.A != 0
}

// Size is a logical (pre-scale) size in display units.
type Size struct {
	Width  float64
	Height float64
}

// Request is a logical display request for an SVG.
type Request struct {
	Path   string
	Source Source
	// Size is the requested logical size. Nil falls back to the ambient
	// display size, then to 100 per axis.
	Size *Size
	// Scale is the requested pixel density. Zero falls back to the
	// ambient device pixel ratio, then to 1.0.
	Scale   float64
	Tint    color.NRGBA
	Fetcher Fetcher
}

// DisplayConfig is the ambient configuration of the display the image
// will be shown on.
type DisplayConfig struct {
	DevicePixelRatio float64
	Size             *Size
}

// defaultLogicalSize is used per axis when neither the request nor the
// display configuration provides a logical size.
const defaultLogicalSize = 100

// BuildKey derives the canonical key for a request. It is synchronous
// and side-effect free; hosts may call it on every display configuration
// change, including per frame during animated transitions.
func BuildKey(req Request, dc DisplayConfig) Key {
	scale := req.Scale
	if scale <= 0 {
		scale = dc.DevicePixelRatio
	}
	if scale <= 0 {
		scale = 1.0
	}

	width := float64(defaultLogicalSize)
	height := float64(defaultLogicalSize)
	switch {
	case req.Size != nil:
		width = req.Size.Width
		height = req.Size.Height
	case dc.Size != nil:
		width = dc.Size.Width
		height = dc.Size.Height
	}

	return Key{
		Path:        req.Path,
		Source:      req.Source,
		PixelWidth:  int(math.Round(width * scale)),
		PixelHeight: int(math.Round(height * scale)),
		Scale:       scale,
		Tint:        req.Tint,
		Fetcher:     req.Fetcher,
	}
}

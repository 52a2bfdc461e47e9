package svgimage

import (
	"context"
	"image"
	"image/color"
	"io/fs"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"svgimage/fetch"
)

// Rasterizer turns an SVG document into a pixel image of exactly the
// requested size, with tint applied over the rendered shapes.
type Rasterizer interface {
	Rasterize(ctx context.Context, svg []byte, width, height int, tint color.NRGBA) (image.Image, error)
}

// Image is a rasterized SVG together with the scale it was rendered at,
// so layout code can recover the logical size (logical = pixel / scale).
type Image struct {
	Image image.Image
	Scale float64
}

// Resolver resolves keys to rasterized images. Each Resolve call is an
// independent operation; the resolver holds no mutable state of its own.
// Hosts are expected to use key identity to avoid issuing duplicate
// concurrent resolutions, but correctness does not depend on that.
type Resolver struct {
	store  fetch.Store
	assets fs.FS
	raster Rasterizer
	logger *zap.Logger
}

// NewResolver creates a resolver. store handles network paths, assets
// serves bundled paths (may be nil if SourceAsset is never used), and
// raster produces the pixels. A nil logger disables logging.
func NewResolver(store fetch.Store, assets fs.FS, raster Rasterizer, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		store:  store,
		assets: assets,
		raster: raster,
		logger: logger,
	}
}

// Resolve produces one image for the key. Retrieval and parse errors
// propagate; an empty result from the cache-backed store is not an error
// and yields the built-in placeholder instead.
func (r *Resolver) Resolve(ctx context.Context, key Key) (*Image, error) {
	if key.Fetcher != nil {
		data, ok, err := key.Fetcher.Fetch(ctx, key)
		if err != nil {
			return nil, errors.Wrapf(err, "custom fetch %s", key.Path)
		}
		if ok {
			return r.rasterize(ctx, key, data)
		}
	}

	switch key.Source {
	case SourceNetwork:
		entry, ok, err := r.store.Fetch(ctx, key.Path)
		if err != nil {
			return nil, errors.Wrapf(err, "fetch %s", key.Path)
		}
		if !ok {
			r.logger.Debug("no content for path, substituting placeholder",
				zap.String("path", key.Path))
			return r.placeholder(ctx, key)
		}
		data, err := os.ReadFile(entry.Path)
		if err != nil {
			return nil, errors.Wrapf(err, "read cached file for %s", key.Path)
		}
		return r.rasterize(ctx, key, data)

	case SourceAsset:
		if r.assets == nil {
			return nil, errors.Errorf("no asset filesystem configured, cannot read %s", key.Path)
		}
		data, err := fs.ReadFile(r.assets, key.Path)
		if err != nil {
			return nil, errors.Wrapf(err, "read asset %s", key.Path)
		}
		return r.rasterize(ctx, key, data)

	case SourceFile:
		data, err := os.ReadFile(key.Path)
		if err != nil {
			return nil, errors.Wrapf(err, "read file %s", key.Path)
		}
		return r.rasterize(ctx, key, data)

	default:
		return nil, errors.Errorf("unknown source %q", key.Source)
	}
}

func (r *Resolver) rasterize(ctx context.Context, key Key, data []byte) (*Image, error) {
	img, err := r.raster.Rasterize(ctx, data, key.PixelWidth, key.PixelHeight, key.Tint)
	if err != nil {
		return nil, errors.Wrapf(err, "rasterize %s", key.Path)
	}
	return &Image{Image: img, Scale: key.Scale}, nil
}

// placeholder renders the built-in icon at its intrinsic size, untinted.
// The produced image still carries the key's scale.
func (r *Resolver) placeholder(ctx context.Context, key Key) (*Image, error) {
	img, err := r.raster.Rasterize(ctx, []byte(placeholderSVG), placeholderSize, placeholderSize, color.NRGBA{})
	if err != nil {
		return nil, errors.Wrap(err, "rasterize placeholder")
	}
	return &Image{Image: img, Scale: key.Scale}, nil
}

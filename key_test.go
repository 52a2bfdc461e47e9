package svgimage

import (
	"context"
	"image/color"
	"testing"
)

// stubFetcher has a non-zero size so distinct allocations get distinct
// addresses; pointers to zero-size variables may compare equal.
type stubFetcher struct{ _ byte }

func (f *stubFetcher) Fetch(ctx context.Context, key Key) ([]byte, bool, error) {
	return nil, false, nil
}

func TestBuildKeyDefaults(t *testing.T) {
	t.Parallel()

	key := BuildKey(Request{Path: "a.svg", Source: SourceAsset}, DisplayConfig{})

	if key.PixelWidth != 100 || key.PixelHeight != 100 {
		t.Fatalf("got %dx%d, want 100x100", key.PixelWidth, key.PixelHeight)
	}
	if key.Scale != 1.0 {
		t.Fatalf("got scale %g, want 1.0", key.Scale)
	}
	if key.Tint != (color.NRGBA{}) {
		t.Fatalf("got tint %v, want zero", key.Tint)
	}
}

func TestBuildKeyAmbientFallbacks(t *testing.T) {
	t.Parallel()

	key := BuildKey(
		Request{Path: "a.svg", Source: SourceAsset},
		DisplayConfig{DevicePixelRatio: 2.0, Size: &Size{Width: 40, Height: 30}},
	)

	if key.PixelWidth != 80 || key.PixelHeight != 60 {
		t.Fatalf("got %dx%d, want 80x60", key.PixelWidth, key.PixelHeight)
	}
	if key.Scale != 2.0 {
		t.Fatalf("got scale %g, want 2.0", key.Scale)
	}
}

func TestBuildKeyRequestOverridesAmbient(t *testing.T) {
	t.Parallel()

	key := BuildKey(
		Request{Path: "a.svg", Source: SourceFile, Size: &Size{Width: 10, Height: 20}, Scale: 3.0},
		DisplayConfig{DevicePixelRatio: 2.0, Size: &Size{Width: 40, Height: 40}},
	)

	if key.PixelWidth != 30 || key.PixelHeight != 60 {
		t.Fatalf("got %dx%d, want 30x60", key.PixelWidth, key.PixelHeight)
	}
	if key.Scale != 3.0 {
		t.Fatalf("got scale %g, want 3.0", key.Scale)
	}
}

func TestBuildKeyRounding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		size  Size
		scale float64
		w, h  int
	}{
		{"round down", Size{Width: 33.4, Height: 33.4}, 1.0, 33, 33},
		{"round half up", Size{Width: 33.5, Height: 33.5}, 1.0, 34, 34},
		{"fractional scale", Size{Width: 40.2, Height: 39.9}, 1.5, 60, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size := tt.size
			key := BuildKey(Request{Path: "a.svg", Size: &size, Scale: tt.scale}, DisplayConfig{})
			if key.PixelWidth != tt.w || key.PixelHeight != tt.h {
				t.Fatalf("got %dx%d, want %dx%d", key.PixelWidth, key.PixelHeight, tt.w, tt.h)
			}
		})
	}
}

func TestBuildKeyEndToEndExample(t *testing.T) {
	t.Parallel()

	key := BuildKey(
		Request{Path: "icons/a.svg", Source: SourceAsset, Size: &Size{Width: 40, Height: 40}},
		DisplayConfig{DevicePixelRatio: 2.0},
	)

	if key.PixelWidth != 80 || key.PixelHeight != 80 || key.Scale != 2.0 {
		t.Fatalf("got %dx%d@%g, want 80x80@2", key.PixelWidth, key.PixelHeight, key.Scale)
	}
}

func TestKeyEqualityIgnoresTintAndLogicalSize(t *testing.T) {
	t.Parallel()

	// Different tints, and logical sizes that round to the same pixel
	// dimensions, must produce equal keys.
	a := BuildKey(Request{
		Path:   "icons/a.svg",
		Source: SourceAsset,
		Size:   &Size{Width: 40, Height: 40},
		Scale:  2.0,
		Tint:   color.NRGBA{R: 0xff, A: 0xff},
	}, DisplayConfig{})
	b := BuildKey(Request{
		Path:   "icons/a.svg",
		Source: SourceAsset,
		Size:   &Size{Width: 40.2, Height: 39.9},
		Scale:  2.0,
	}, DisplayConfig{})

	if !a.Equal(b) {
		t.Fatalf("keys not equal: %+v vs %+v", a, b)
	}

	seen := map[Identity][]byte{a.Identity(): nil}
	if _, ok := seen[b.Identity()]; !ok {
		t.Fatalf("identities differ as map keys")
	}
}

func TestKeyInequality(t *testing.T) {
	t.Parallel()

	base := Request{Path: "icons/a.svg", Source: SourceAsset, Size: &Size{Width: 40, Height: 40}, Scale: 2.0}
	baseKey := BuildKey(base, DisplayConfig{})

	tests := []struct {
		name string
		req  Request
	}{
		{"path", Request{Path: "icons/b.svg", Source: SourceAsset, Size: &Size{Width: 40, Height: 40}, Scale: 2.0}},
		{"source", Request{Path: "icons/a.svg", Source: SourceNetwork, Size: &Size{Width: 40, Height: 40}, Scale: 2.0}},
		{"scale", Request{Path: "icons/a.svg", Source: SourceAsset, Size: &Size{Width: 40, Height: 40}, Scale: 1.0}},
		{"pixel size", Request{Path: "icons/a.svg", Source: SourceAsset, Size: &Size{Width: 50, Height: 40}, Scale: 2.0}},
		{"fetcher", Request{Path: "icons/a.svg", Source: SourceAsset, Size: &Size{Width: 40, Height: 40}, Scale: 2.0, Fetcher: &stubFetcher{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := BuildKey(tt.req, DisplayConfig{})
			if baseKey.Equal(key) {
				t.Fatalf("keys unexpectedly equal for differing %s", tt.name)
			}
		})
	}
}

func TestKeyFetcherIdentity(t *testing.T) {
	t.Parallel()

	f := &stubFetcher{}
	a := BuildKey(Request{Path: "a.svg", Fetcher: f}, DisplayConfig{})
	b := BuildKey(Request{Path: "a.svg", Fetcher: f}, DisplayConfig{})
	c := BuildKey(Request{Path: "a.svg", Fetcher: &stubFetcher{}}, DisplayConfig{})

	if !a.Equal(b) {
		t.Fatalf("same fetcher reference should compare equal")
	}
	if a.Equal(c) {
		t.Fatalf("distinct fetcher references should compare unequal")
	}
}

package vipsraster

import (
	"image/color"
	"testing"
)

func TestNormalizeTintSubstitutesSentinel(t *testing.T) {
	t.Parallel()

	got := NormalizeTint(color.NRGBA{})
	if got != noTintSentinel {
		t.Fatalf("got %v, want sentinel %v", got, noTintSentinel)
	}
	if got.A == 0 {
		t.Fatalf("sentinel must not be fully transparent")
	}
}

func TestNormalizeTintPassesVisibleColours(t *testing.T) {
	t.Parallel()

	want := color.NRGBA{R: 0x12, G: 0x34, B: 0x56, A: 0x78}
	if got := NormalizeTint(want); got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestResizeScales(t *testing.T) {
	t.Parallel()

	hscale, vscale, err := resizeScales(100, 50, 80, 80)
	if err != nil {
		t.Fatalf("resizeScales: %v", err)
	}
	if hscale != 0.8 || vscale != 1.6 {
		t.Fatalf("got %g, %g, want 0.8, 1.6", hscale, vscale)
	}
}

func TestResizeScalesDegenerateSource(t *testing.T) {
	t.Parallel()

	for _, dims := range [][2]int{{0, 100}, {100, 0}, {0, 0}, {-1, 100}} {
		if _, _, err := resizeScales(dims[0], dims[1], 80, 80); err == nil {
			t.Fatalf("expected error for source %dx%d", dims[0], dims[1])
		}
	}
}

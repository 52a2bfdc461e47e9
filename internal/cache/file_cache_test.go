package cache

import (
	"context"
	"testing"

	"svgimage"
)

type stubFetcher struct{}

func (f *stubFetcher) Fetch(ctx context.Context, key svgimage.Key) ([]byte, bool, error) {
	return nil, false, nil
}

func TestFileCacheRoundtrip(t *testing.T) {
	t.Parallel()

	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	key := identity("icons/a.svg", 80)
	c.Set(key, []byte("png-bytes"))

	if !c.Has(key) {
		t.Fatalf("Has = false after Set")
	}
	data, ok := c.Get(key)
	if !ok || string(data) != "png-bytes" {
		t.Fatalf("Get = %q, %v", data, ok)
	}

	other := identity("icons/a.svg", 40)
	if _, ok := c.Get(other); ok {
		t.Fatalf("different pixel size hit the same entry")
	}
}

func TestFileCacheSkipsFetcherKeys(t *testing.T) {
	t.Parallel()

	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	key := identity("a.svg", 100)
	key.Fetcher = &stubFetcher{}

	c.Set(key, []byte("png-bytes"))
	if c.Has(key) {
		t.Fatalf("fetcher-backed key must not be cached on disk")
	}
}

func TestFileCacheClear(t *testing.T) {
	t.Parallel()

	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	key := identity("a.svg", 100)
	c.Set(key, []byte("a"))
	c.Clear()

	if c.Has(key) {
		t.Fatalf("entry survived Clear")
	}
}

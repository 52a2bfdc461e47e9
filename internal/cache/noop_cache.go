package cache

import "svgimage"

type NoopCache struct{}

func NewNoopCache() *NoopCache {
	return &NoopCache{}
}

func (c *NoopCache) Get(key svgimage.Identity) ([]byte, bool) {
	return nil, false
}

func (c *NoopCache) Set(key svgimage.Identity, value []byte) {
}

func (c *NoopCache) Has(key svgimage.Identity) bool {
	return false
}

func (c *NoopCache) Clear() {
}

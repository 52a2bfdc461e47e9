package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"svgimage"
)

// FileCache implements a file-based cache over rendered output.
// Structure: {cacheDir}/{source}/{hash}_{pixelWidth}x{pixelHeight}.png
type FileCache struct {
	mu       sync.RWMutex
	cacheDir string
}

func NewFileCache(cacheDir string) (*FileCache, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &FileCache{
		cacheDir: cacheDir,
	}, nil
}

// buildFilePath builds the file path for an identity. The path string
// is hashed so URLs and nested asset paths stay a single flat name.
func (c *FileCache) buildFilePath(key svgimage.Identity) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%g", key.Path, key.Scale)))
	fileName := fmt.Sprintf("%s_%dx%d.png", hex.EncodeToString(sum[:])[:32], key.PixelWidth, key.PixelHeight)
	return filepath.Join(c.cacheDir, key.Source.String(), fileName)
}

// cacheable reports whether an identity can be stored on disk. Keys
// carrying a custom fetcher have no stable on-disk name across runs.
func cacheable(key svgimage.Identity) bool {
	return key.Fetcher == nil
}

func (c *FileCache) Has(key svgimage.Identity) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !cacheable(key) {
		return false
	}
	_, err := os.Stat(c.buildFilePath(key))
	return err == nil
}

func (c *FileCache) Get(key svgimage.Identity) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !cacheable(key) {
		return nil, false
	}

	data, err := os.ReadFile(c.buildFilePath(key))
	if err != nil {
		return nil, false
	}

	return data, true
}

func (c *FileCache) Set(key svgimage.Identity, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !cacheable(key) {
		return
	}

	filePath := c.buildFilePath(key)
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return
	}

	// Write atomically
	tmpPath := filePath + ".tmp"
	if err := os.WriteFile(tmpPath, value, 0644); err != nil {
		return
	}

	if err := os.Rename(tmpPath, filePath); err != nil {
		os.Remove(tmpPath)
		return
	}
}

func (c *FileCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.RemoveAll(c.cacheDir); err != nil {
		return
	}

	os.MkdirAll(c.cacheDir, 0755)
}

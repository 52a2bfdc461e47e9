package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
)

const (
	fetchHTTPClientTimeout         = 20 * time.Second
	fetchHTTPDialTimeout           = 5 * time.Second
	fetchHTTPKeepAlive             = 30 * time.Second
	fetchHTTPTLSHandshakeTimeout   = 5 * time.Second
	fetchHTTPResponseHeaderTimeout = 10 * time.Second
	fetchHTTPExpectContinueTimeout = 1 * time.Second
	fetchHTTPIdleConnTimeout       = 90 * time.Second
)

// DefaultMaxBytes caps a single downloaded document at 10 MiB.
const DefaultMaxBytes = 10 << 20

var fetchHTTPTransport = &http.Transport{
	Proxy: http.ProxyFromEnvironment,
	DialContext: (&net.Dialer{
		Timeout:   fetchHTTPDialTimeout,
		KeepAlive: fetchHTTPKeepAlive,
	}).DialContext,
	TLSHandshakeTimeout:   fetchHTTPTLSHandshakeTimeout,
	ResponseHeaderTimeout: fetchHTTPResponseHeaderTimeout,
	ExpectContinueTimeout: fetchHTTPExpectContinueTimeout,
	IdleConnTimeout:       fetchHTTPIdleConnTimeout,
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout:   fetchHTTPClientTimeout,
		Transport: fetchHTTPTransport,
	}
}

func newRetryableHTTPClient(retryMax int) *http.Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = retryMax
	retryClient.Logger = nil
	retryClient.HTTPClient = newHTTPClient()

	return retryClient.StandardClient()
}

// DiskStore downloads network content into a content-addressed cache
// directory and serves repeat lookups from disk. A single mutex
// serializes downloads, so concurrent fetches of the same path perform
// one download and hit the cache for the rest.
type DiskStore struct {
	mu       sync.Mutex
	dir      string
	client   *http.Client
	maxBytes int64
}

// NewDiskStore creates the cache directory if needed. retryMax is the
// number of HTTP retries per download; maxBytes <= 0 selects
// DefaultMaxBytes.
func NewDiskStore(dir string, retryMax int, maxBytes int64) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "create download cache directory")
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	return &DiskStore{
		dir:      dir,
		client:   newRetryableHTTPClient(retryMax),
		maxBytes: maxBytes,
	}, nil
}

func (s *DiskStore) cachePath(path string) string {
	sum := sha256.Sum256([]byte(path))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:])[:32]+".svg")
}

// Fetch returns the cached file for path, downloading it first if
// needed. A 404 or 410 from the source is a clean miss.
func (s *DiskStore) Fetch(ctx context.Context, path string) (Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	local := s.cachePath(path)
	if _, err := os.Stat(local); err == nil {
		return Entry{Path: local}, true, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return Entry{}, false, errors.Wrapf(err, "build request for %s", path)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return Entry{}, false, errors.Wrapf(err, "get %s", path)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		// The source has no content. Callers substitute a placeholder.
		return Entry{}, false, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return Entry{}, false, errors.Errorf("get %s: unexpected status %d", path, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return Entry{}, false, errors.Wrapf(err, "read body of %s", path)
	}
	if int64(len(data)) > s.maxBytes {
		return Entry{}, false, errors.Errorf("get %s: body exceeds %d bytes", path, s.maxBytes)
	}

	// Write atomically
	tmp := filepath.Join(s.dir, uuid.New().String()+".tmp")
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return Entry{}, false, errors.Wrap(err, "write temp file")
	}
	if err := os.Rename(tmp, local); err != nil {
		os.Remove(tmp)
		return Entry{}, false, errors.Wrap(err, "store cached file")
	}

	return Entry{Path: local}, true, nil
}

// Clear removes all cached downloads.
func (s *DiskStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.RemoveAll(s.dir); err != nil {
		return errors.Wrap(err, "clear download cache")
	}
	return os.MkdirAll(s.dir, 0755)
}

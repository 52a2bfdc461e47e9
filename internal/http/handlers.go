package http

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image/color"
	"image/png"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"svgimage"
	"svgimage/internal/cache"
	"svgimage/internal/config"
)

type Handlers struct {
	config   *config.Config
	logger   *zap.Logger
	resolver *svgimage.Resolver
	rendered cache.Cache
}

func New(config *config.Config, logger *zap.Logger, resolver *svgimage.Resolver, rendered cache.Cache) *Handlers {
	return &Handlers{
		config:   config,
		logger:   logger,
		resolver: resolver,
		rendered: rendered,
	}
}

func (h *Handlers) RequestLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		start := time.Now()

		ip := h.extractIP(r)

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		bytes := wrapped.bytesWritten

		h.logger.Info("request",
			zap.String("request_id", requestID),
			zap.String("ip", ip),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", wrapped.statusCode),
			zap.Int64("bytes", bytes),
			zap.Int64("duration_ms", duration.Milliseconds()),
			zap.String("user_agent", r.UserAgent()),
		)
	})
}

func (h *Handlers) CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigin := ""

		if h.config.AllowedOrigin != "" {
			allowedOrigin = h.config.AllowedOrigin
		} else {
			host := r.Host
			if origin != "" && strings.HasPrefix(origin, "http://"+host) || strings.HasPrefix(origin, "https://"+host) {
				allowedOrigin = origin
			} else if origin == "" {
				allowedOrigin = "*"
			}
		}

		if allowedOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (h *Handlers) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// HandleRender rasterizes one SVG to PNG.
// GET /render?src=icons/a.svg&source=asset&w=40&h=40&scale=2&color=ff0000
func (h *Handlers) HandleRender(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()

	src := q.Get("src")
	if src == "" {
		http.Error(w, "Missing src parameter", http.StatusBadRequest)
		return
	}

	source, err := parseSource(q.Get("source"), src)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	req := svgimage.Request{
		Path:   src,
		Source: source,
	}

	if size, ok, err := parseSize(q.Get("w"), q.Get("h")); err != nil {
		http.Error(w, "Invalid size", http.StatusBadRequest)
		return
	} else if ok {
		req.Size = &size
	}

	if s := q.Get("scale"); s != "" {
		scale, err := strconv.ParseFloat(s, 64)
		if err != nil || scale <= 0 {
			http.Error(w, "Invalid scale", http.StatusBadRequest)
			return
		}
		req.Scale = scale
	}

	if c := q.Get("color"); c != "" {
		tint, err := parseColor(c)
		if err != nil {
			http.Error(w, "Invalid color", http.StatusBadRequest)
			return
		}
		req.Tint = tint
	}

	key := svgimage.BuildKey(req, svgimage.DisplayConfig{})
	etag := generateETag(key)

	if match := r.Header.Get("If-None-Match"); match == `"`+etag+`"` {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	// The cache is keyed by identity, which by contract excludes the
	// tint: requests differing only in color share one entry.
	if cached, ok := h.rendered.Get(key.Identity()); ok {
		h.serveImage(w, r, cached, etag)
		return
	}

	resolved, err := h.resolver.Resolve(r.Context(), key)
	if err != nil {
		h.logger.Error("Failed to resolve image", zap.String("src", src), zap.Error(err))
		http.Error(w, "Failed to render image", http.StatusBadGateway)
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, resolved.Image); err != nil {
		h.logger.Error("Failed to encode png", zap.String("src", src), zap.Error(err))
		http.Error(w, "Failed to encode image", http.StatusInternalServerError)
		return
	}

	h.rendered.Set(key.Identity(), buf.Bytes())

	h.serveImage(w, r, buf.Bytes(), etag)
}

func (h *Handlers) serveImage(w http.ResponseWriter, r *http.Request, data []byte, etag string) {
	w.Header().Set("ETag", `"`+etag+`"`)
	w.Header().Set("Cache-Control", "public, max-age=31536000")
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	w.Header().Set("Content-Type", "image/png")

	// HEAD request doesn't send body
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}

	w.Write(data)
}

// parseSource maps the source parameter; an empty value is inferred
// from the path. Local files are not served over HTTP.
func parseSource(value, src string) (svgimage.Source, error) {
	switch value {
	case "asset":
		return svgimage.SourceAsset, nil
	case "network":
		return svgimage.SourceNetwork, nil
	case "file":
		return 0, fmt.Errorf("file source is not served over http")
	case "":
		if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
			return svgimage.SourceNetwork, nil
		}
		return svgimage.SourceAsset, nil
	default:
		return 0, fmt.Errorf("unknown source: %s", value)
	}
}

func parseSize(wParam, hParam string) (svgimage.Size, bool, error) {
	if wParam == "" && hParam == "" {
		return svgimage.Size{}, false, nil
	}
	if wParam == "" || hParam == "" {
		return svgimage.Size{}, false, fmt.Errorf("w and h must be given together")
	}

	width, err := strconv.ParseFloat(wParam, 64)
	if err != nil || width <= 0 {
		return svgimage.Size{}, false, fmt.Errorf("invalid width")
	}
	height, err := strconv.ParseFloat(hParam, 64)
	if err != nil || height <= 0 {
		return svgimage.Size{}, false, fmt.Errorf("invalid height")
	}

	return svgimage.Size{Width: width, Height: height}, true, nil
}

// parseColor accepts RRGGBB or RRGGBBAA hex, with an optional leading #.
func parseColor(value string) (color.NRGBA, error) {
	value = strings.TrimPrefix(value, "#")

	if len(value) != 6 && len(value) != 8 {
		return color.NRGBA{}, fmt.Errorf("color must be 6 or 8 hex digits")
	}

	parsed, err := strconv.ParseUint(value, 16, 64)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color: %w", err)
	}

	if len(value) == 6 {
		parsed = parsed<<8 | 0xff
	}

	return color.NRGBA{
		R: uint8(parsed >> 24),
		G: uint8(parsed >> 16),
		B: uint8(parsed >> 8),
		A: uint8(parsed),
	}, nil
}

// generateETag hashes the identity fields only, matching the cache.
func generateETag(key svgimage.Key) string {
	keyStr := fmt.Sprintf("%s_%s_%dx%d_%g",
		key.Path, key.Source, key.PixelWidth, key.PixelHeight, key.Scale)
	hash := sha256.Sum256([]byte(keyStr))
	return hex.EncodeToString(hash[:])[:16]
}

// Not for real production use due to potential spoofing
// but it's fine for a demo
func (h *Handlers) extractIP(r *http.Request) string {
	ip := r.Header.Get("X-Real-Ip")
	if ip != "" {
		return strings.Split(ip, ":")[0]
	}

	addr := r.RemoteAddr
	if addr != "" {
		return strings.Split(addr, ":")[0]
	}

	return "unknown"
}

type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += int64(n)
	return n, err
}

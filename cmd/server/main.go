package main

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/cshum/vipsgen/vips"
	"go.uber.org/zap"

	"svgimage"
	"svgimage/fetch"
	"svgimage/internal/cache"
	"svgimage/internal/config"
	httphandlers "svgimage/internal/http"
	"svgimage/internal/logger"
	"svgimage/softraster"
	"svgimage/vipsraster"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	var raster svgimage.Rasterizer
	switch cfg.Backend {
	case "soft":
		raster = softraster.New()
	case "vips":
		vipsConfig := &vips.Config{
			ConcurrencyLevel: cfg.VipsConcurrency,
			MaxCacheMem:      cfg.VipsMaxCacheMB * 1024 * 1024, // Convert MB to bytes
			MaxCacheFiles:    0,                                // Disable disk cache
			MaxCacheSize:     0,                                // Disable disk cache
			ReportLeaks:      false,
			CacheTrace:       false,
			VectorEnabled:    true,
		}

		// Set up logging
		vips.SetLogging(func(domain string, level vips.LogLevel, message string) {
			// Map vips log levels to zap levels
			if level >= vips.LogLevelError {
				log.Error("vips", zap.String("domain", domain), zap.Int("level", int(level)), zap.String("message", message))
			} else if level >= vips.LogLevelWarning {
				log.Warn("vips", zap.String("domain", domain), zap.Int("level", int(level)), zap.String("message", message))
			}
			// Ignore info/debug messages to keep logs clean
		}, vips.LogLevelError)

		vips.Startup(vipsConfig)
		defer vips.Shutdown()

		log.Info("VIPS initialized",
			zap.Int("max_cache_mb", cfg.VipsMaxCacheMB),
			zap.Int("concurrency", cfg.VipsConcurrency),
		)
		raster = vipsraster.New()
	default:
		log.Fatal("Unknown render backend", zap.String("backend", cfg.Backend))
	}

	log.Info("Starting svgimage server",
		zap.Int("port", cfg.Port),
		zap.String("asset_dir", cfg.AssetDir),
		zap.String("backend", cfg.Backend),
	)

	rendered, err := cache.NewCache(cfg.CacheType, cfg.CacheFileDir, cfg.CacheMemoryEntries, log)
	if err != nil {
		log.Fatal("Failed to initialize cache", zap.Error(err))
	}

	store, err := fetch.NewDiskStore(cfg.DownloadCacheDir, cfg.HTTPRetryMax, cfg.MaxDownloadSize)
	if err != nil {
		log.Fatal("Failed to initialize download store", zap.Error(err))
	}

	resolver := svgimage.NewResolver(store, os.DirFS(cfg.AssetDir), raster, log)

	handlers := httphandlers.New(cfg, log, resolver, rendered)

	mux := http.NewServeMux()

	mux.HandleFunc("/render", handlers.HandleRender)
	mux.HandleFunc("/healthz", handlers.HandleHealthz)

	handler := handlers.CORSMiddleware(handlers.RequestLoggingMiddleware(mux))

	if cfg.Prewarm {
		go prewarmAssets(cfg.AssetDir, cfg.PrewarmWorkers, resolver, rendered, log)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: handler,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.Int("port", cfg.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server stopped")
}

// prewarmAssets rasterizes every bundled SVG at its default size so the
// first real request for each icon is a cache hit.
func prewarmAssets(assetDir string, workerLimit int, resolver *svgimage.Resolver, rendered cache.Cache, log *zap.Logger) {
	var paths []string
	err := filepath.WalkDir(assetDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".svg") {
			return nil
		}
		rel, err := filepath.Rel(assetDir, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		log.Warn("Asset scan failed", zap.Error(err))
		return
	}
	if len(paths) == 0 {
		return
	}

	log.Info("Starting asset prewarm", zap.Int("assets", len(paths)))

	// Worker pool size configured via env (defaults to 1)
	if workerLimit <= 0 {
		workerLimit = 1
	}

	workerChan := make(chan struct{}, workerLimit)
	var wg sync.WaitGroup

	for _, path := range paths {
		key := svgimage.BuildKey(svgimage.Request{
			Path:   path,
			Source: svgimage.SourceAsset,
		}, svgimage.DisplayConfig{})

		if rendered.Has(key.Identity()) {
			continue
		}

		wg.Add(1)
		workerChan <- struct{}{} // Acquire worker slot

		go func(key svgimage.Key) {
			defer wg.Done()
			defer func() { <-workerChan }() // Release worker slot

			resolved, err := resolver.Resolve(context.Background(), key)
			if err != nil {
				log.Debug("Prewarm render failed", zap.String("path", key.Path), zap.Error(err))
				return
			}

			var buf bytes.Buffer
			if err := png.Encode(&buf, resolved.Image); err != nil {
				log.Debug("Prewarm encode failed", zap.String("path", key.Path), zap.Error(err))
				return
			}
			rendered.Set(key.Identity(), buf.Bytes())
		}(key)
	}

	wg.Wait()
	log.Info("Asset prewarm completed")
}

package config

import (
	"os"
	"path/filepath"
	"strconv"
)

type Config struct {
	Port               int
	AssetDir           string
	Backend            string
	CacheType          string
	CacheMemoryEntries int
	CacheFileDir       string
	DownloadCacheDir   string
	MaxDownloadSize    int64
	HTTPRetryMax       int
	VipsMaxCacheMB     int
	VipsConcurrency    int
	LogLevel           string
	AllowedOrigin      string
	Prewarm            bool
	PrewarmWorkers     int
}

func Load() *Config {
	assetDir := getEnv("ASSET_DIR", "assets")
	cacheType := getEnv("CACHE", "memory")

	cfg := &Config{
		Port:               getEnvInt("PORT", 8080),
		AssetDir:           assetDir,
		Backend:            getEnv("BACKEND", "soft"),
		CacheType:          cacheType,
		CacheMemoryEntries: getEnvInt("CACHE_MEMORY_ENTRIES", 2000),
		CacheFileDir:       getEnv("CACHE_FILE_DIR", filepath.Join(assetDir, "cache")),
		DownloadCacheDir:   getEnv("DOWNLOAD_CACHE_DIR", filepath.Join(os.TempDir(), "svgimage-downloads")),
		MaxDownloadSize:    getEnvInt64("MAX_DOWNLOAD_SIZE", 10485760), // 10MB default
		HTTPRetryMax:       getEnvInt("HTTP_RETRY_MAX", 2),
		VipsMaxCacheMB:     getEnvInt("VIPS_MAX_CACHE_MB", 256),
		VipsConcurrency:    getEnvInt("VIPS_CONCURRENCY", 1),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		AllowedOrigin:      getEnv("ALLOWED_ORIGIN", ""),
		Prewarm:            getEnvBool("PREWARM", false),
		PrewarmWorkers:     getEnvInt("PREWARM_WORKERS", 1),
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func (c *Config) UseVips() bool {
	return c.Backend == "vips"
}

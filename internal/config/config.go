package config

import (
	"fmt"
	"os"
	"time"

	"github.com/vjranagit/curvecatalog/pkg/catalog"
)

// Config holds the application configuration
type Config struct {
	Server  ServerConfig  `json:"server"`
	Catalog CatalogConfig `json:"catalog"`
	Cache   CacheConfig   `json:"cache"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	ListenAddr string        `json:"listen_addr"`
	Timeout    time.Duration `json:"timeout"`
}

// CatalogConfig holds catalog store configuration
type CatalogConfig struct {
	Path             string `json:"path"`
	CompressionLevel int    `json:"compression_level"`
	EnableJournal    bool   `json:"enable_journal"`
	DocsDir          string `json:"docs_dir"`
}

// CacheConfig holds rendered-page cache configuration
type CacheConfig struct {
	Capacity int           `json:"capacity"`
	TTL      time.Duration `json:"ttl"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr: getEnv("LISTEN_ADDR", ":8480"),
			Timeout:    30 * time.Second,
		},
		Catalog: CatalogConfig{
			Path:             getEnv("STORAGE_PATH", "./data"),
			CompressionLevel: getEnvInt("COMPRESSION_LEVEL", 3),
			EnableJournal:    getEnvBool("ENABLE_JOURNAL", true),
			DocsDir:          getEnv("DOCS_DIR", "./docs_md"),
		},
		Cache: CacheConfig{
			Capacity: getEnvInt("CACHE_CAPACITY", 256),
			TTL:      time.Duration(getEnvInt("CACHE_TTL_SECONDS", 300)) * time.Second,
		},
	}
}

// ToCatalogConfig converts to catalog.Config
func (c *Config) ToCatalogConfig() *catalog.Config {
	return &catalog.Config{
		Path:             c.Catalog.Path,
		CompressionLevel: c.Catalog.CompressionLevel,
		EnableJournal:    c.Catalog.EnableJournal,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server listen address is required")
	}

	if c.Catalog.Path == "" {
		return fmt.Errorf("catalog path is required")
	}

	if c.Catalog.CompressionLevel < 1 || c.Catalog.CompressionLevel > 4 {
		return fmt.Errorf("compression level must be between 1 and 4")
	}

	if c.Catalog.DocsDir == "" {
		return fmt.Errorf("docs directory is required")
	}

	if c.Cache.Capacity < 1 {
		return fmt.Errorf("cache capacity must be at least 1")
	}

	return nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var intVal int
		if _, err := fmt.Sscanf(value, "%d", &intVal); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

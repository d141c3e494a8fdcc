package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config represents the top-level configuration for hourcount.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Ingestion IngestionConfig `koanf:"ingestion"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port int    `koanf:"port"`
	Host string `koanf:"host"`
	Mode string `koanf:"mode"` // "debug" or "release"
}

// DatabaseConfig holds the embedded database settings.
type DatabaseConfig struct {
	DSN          string `koanf:"dsn"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	AutoMigrate  bool   `koanf:"auto_migrate"`
}

// IngestionConfig holds settings for the event aggregation pass.
type IngestionConfig struct {
	// BatchSize is the number of unique (customer, minute) keys accumulated
	// before a flush to the counter table.
	BatchSize int `koanf:"batch_size"`

	// WorkerCount bounds how many batch flushes may run concurrently.
	WorkerCount int `koanf:"worker_count"`
}

// Load loads the configuration from the given file path and environment variables.
// An empty configPath skips the file layer and uses defaults plus env overrides.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	defaults := map[string]interface{}{
		"server.port":             8000,
		"server.host":             "0.0.0.0",
		"server.mode":             "release",
		"database.dsn":            "file:hourcount.db?_pragma=busy_timeout(5000)",
		"database.max_open_conns": 10,
		"database.max_idle_conns": 5,
		"database.auto_migrate":   true,
		"ingestion.batch_size":    1000,
		"ingestion.worker_count":  4,
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	// 2. Load from file
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// 3. Load from Environment Variables
	// HOURCOUNT_SERVER__PORT=9090 overrides server.port
	if err := k.Load(env.Provider("HOURCOUNT_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "HOURCOUNT_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Ingestion.BatchSize <= 0 {
		return nil, fmt.Errorf("ingestion.batch_size must be positive, got %d", cfg.Ingestion.BatchSize)
	}
	if cfg.Ingestion.WorkerCount <= 0 {
		return nil, fmt.Errorf("ingestion.worker_count must be positive, got %d", cfg.Ingestion.WorkerCount)
	}

	return &cfg, nil
}

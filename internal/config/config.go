// Package config loads application configuration from file and
// environment via viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Steam   SteamConfig   `mapstructure:"steam"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Loader  LoaderConfig  `mapstructure:"loader"`
	Quota   QuotaConfig   `mapstructure:"quota"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// SteamConfig holds Web API credentials and the default owner reference.
type SteamConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Identifier string `mapstructure:"identifier"` // vanity name, profile URL, or SteamID64
}

// CacheConfig holds cache location and TTLs.
type CacheConfig struct {
	Dir        string        `mapstructure:"dir"`
	CatalogTTL time.Duration `mapstructure:"catalog_ttl"`
	DetailTTL  time.Duration `mapstructure:"detail_ttl"`
}

// LoaderConfig tunes load runs.
type LoaderConfig struct {
	MaxItems int `mapstructure:"max_items"` // 0 loads the whole catalog
}

// QuotaConfig bounds asset cache growth reporting.
type QuotaConfig struct {
	BudgetBytes int64 `mapstructure:"budget_bytes"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Cache: CacheConfig{
			Dir:        defaultCachePath(),
			CatalogTTL: 24 * time.Hour,
			DetailTTL:  7 * 24 * time.Hour,
		},
		Loader: LoaderConfig{
			MaxItems: 100,
		},
		Quota: QuotaConfig{
			BudgetBytes: 512 * 1024 * 1024,
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS.
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "gamevault", "gamevault.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "gamevault", "gamevault.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS.
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "gamevault")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "gamevault")
	}
}

// defaultCachePath returns the default cache directory for the current OS.
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "gamevault", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "gamevault", "cache")
	}
}

// LoadConfig loads configuration from file and environment.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(defaultConfigPath())
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("GAMEVAULT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the current configuration to file.
func SaveConfig(cfg *Config) error {
	configPath := defaultConfigPath()
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	viper.Set("steam.api_key", cfg.Steam.APIKey)
	viper.Set("steam.identifier", cfg.Steam.Identifier)
	viper.Set("cache.dir", cfg.Cache.Dir)
	viper.Set("cache.catalog_ttl", cfg.Cache.CatalogTTL)
	viper.Set("cache.detail_ttl", cfg.Cache.DetailTTL)
	viper.Set("loader.max_items", cfg.Loader.MaxItems)
	viper.Set("quota.budget_bytes", cfg.Quota.BudgetBytes)
	viper.Set("logging.file", cfg.Logging.File)
	viper.Set("logging.level", cfg.Logging.Level)

	configFile := filepath.Join(configPath, "config.yaml")
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// IsConfigured returns true if the Web API key is set.
func (c *Config) IsConfigured() bool {
	return c.Steam.APIKey != ""
}

// ClearCache removes all cached data on disk.
func ClearCache(cfg *Config) error {
	if cfg.Cache.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(cfg.Cache.Dir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

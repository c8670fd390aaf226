package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Known product provider names, in their default lookup order
const (
	ProviderOpenFoodFacts         = "openfoodfacts"
	ProviderOpenFoodFactsRegional = "openfoodfacts_de"
	ProviderUPCitemdb             = "upcitemdb"
)

// Config holds all configuration for the application
type Config struct {
	Server        ServerConfig
	Household     HouseholdConfig
	Database      DatabaseConfig
	Cache         CacheConfig
	Lookup        LookupConfig
	OpenFoodFacts OpenFoodFactsConfig
	UPCitemdb     UPCitemdbConfig
	RateLimit     RateLimitConfig
	Log           LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// HouseholdConfig selects the single household this instance serves
type HouseholdConfig struct {
	ID string `mapstructure:"id"`
}

// DatabaseConfig holds SQLite configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// CacheConfig holds product lookup cache configuration
type CacheConfig struct {
	Type       string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL   string        `mapstructure:"redis_url"`
	TTL        time.Duration `mapstructure:"ttl"`         // 0 keeps entries forever
	MaxEntries int           `mapstructure:"max_entries"` // memory only, 0 is unbounded
}

// LookupConfig holds the product provider chain configuration
type LookupConfig struct {
	ProviderTimeout time.Duration `mapstructure:"provider_timeout"`
	Language        string        `mapstructure:"language"`
	UserAgent       string        `mapstructure:"user_agent"`
	Providers       []string      `mapstructure:"providers"`
}

// OpenFoodFactsConfig holds the global and regional Open Food Facts endpoints
type OpenFoodFactsConfig struct {
	BaseURL         string `mapstructure:"base_url"`
	RegionalBaseURL string `mapstructure:"regional_base_url"`
}

// UPCitemdbConfig holds UPCitemdb API configuration
type UPCitemdbConfig struct {
	BaseURL           string `mapstructure:"base_url"`
	APIKey            string `mapstructure:"api_key"` // empty uses the trial endpoint
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
}

// RateLimitConfig holds API rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute per client, 0 disables
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load loads configuration from a .env file, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/pantry/")

	// Environment variable settings, e.g. PANTRY_CACHE_REDIS_URL
	v.SetEnvPrefix("PANTRY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads a .env file from the working directory if there is one.
// Variables already set in the environment win.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(".env")
}

// setDefaults sets default configuration values.
// Every key needs a default so AutomaticEnv can bind it during Unmarshal.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:4200"})

	v.SetDefault("household.id", "00000000-0000-0000-0000-000000000001")
	v.SetDefault("database.path", "pantry.db")

	// Cache defaults; product identities do not change, so entries never expire
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "0s")
	v.SetDefault("cache.max_entries", 0)

	// Lookup defaults
	v.SetDefault("lookup.provider_timeout", "4s")
	v.SetDefault("lookup.language", "de")
	v.SetDefault("lookup.user_agent", "PantryBackend/1.0")
	v.SetDefault("lookup.providers", []string{
		ProviderOpenFoodFacts,
		ProviderOpenFoodFactsRegional,
		ProviderUPCitemdb,
	})

	v.SetDefault("openfoodfacts.base_url", "https://world.openfoodfacts.org")
	v.SetDefault("openfoodfacts.regional_base_url", "https://de.openfoodfacts.org")

	v.SetDefault("upcitemdb.base_url", "https://api.upcitemdb.com")
	v.SetDefault("upcitemdb.api_key", "")
	v.SetDefault("upcitemdb.requests_per_minute", 6)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 120)

	v.SetDefault("log.level", "info")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Household.ID == "" {
		return fmt.Errorf("household id is required (set PANTRY_HOUSEHOLD_ID)")
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	if config.Cache.TTL < 0 || config.Cache.MaxEntries < 0 {
		return fmt.Errorf("cache ttl and max entries must not be negative")
	}

	if config.Lookup.ProviderTimeout <= 0 {
		return fmt.Errorf("lookup provider timeout must be positive, got: %s", config.Lookup.ProviderTimeout)
	}

	if len(config.Lookup.Providers) == 0 {
		return fmt.Errorf("at least one lookup provider is required")
	}
	for _, name := range config.Lookup.Providers {
		switch name {
		case ProviderOpenFoodFacts, ProviderOpenFoodFactsRegional, ProviderUPCitemdb:
		default:
			return fmt.Errorf("unknown lookup provider: %s", name)
		}
	}

	if config.UPCitemdb.RequestsPerMinute <= 0 {
		return fmt.Errorf("upcitemdb requests per minute must be positive")
	}

	if config.RateLimit.PerIP < 0 {
		return fmt.Errorf("rate limit per ip must not be negative")
	}

	return nil
}

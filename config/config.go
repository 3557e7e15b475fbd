package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Gemini   GeminiConfig
	Scraper  ScraperConfig
	Cache    CacheConfig
	Pipeline PipelineConfig
	UsageLog UsageLogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// GeminiConfig holds generation-service configuration. BackupAPIKey is an
// optional second credential used when the primary hits its quota.
type GeminiConfig struct {
	APIKey       string        `mapstructure:"api_key"`
	BackupAPIKey string        `mapstructure:"backup_api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	Model        string        `mapstructure:"model"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
	BaseDelay    time.Duration `mapstructure:"base_delay"`
}

// APIKeys returns the ordered credential list.
func (g GeminiConfig) APIKeys() []string {
	keys := []string{g.APIKey}
	if g.BackupAPIKey != "" {
		keys = append(keys, g.BackupAPIKey)
	}
	return keys
}

// ScraperConfig holds scraping-proxy configuration
type ScraperConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// PipelineConfig holds the pipeline timeout tunables
type PipelineConfig struct {
	ScrapeTimeout time.Duration `mapstructure:"scrape_timeout"`
	SearchTimeout time.Duration `mapstructure:"search_timeout"`
}

// UsageLogConfig holds usage-audit persistence configuration
type UsageLogConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/similarlinks/")

	// Environment variable settings
	v.SetEnvPrefix("SIMILARLINKS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
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

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Gemini defaults. The key entries register the env-only keys with viper
	// so AutomaticEnv can populate them during Unmarshal.
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.backup_api_key", "")
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.max_attempts", 3)
	v.SetDefault("gemini.base_delay", "2s")

	// Scraper defaults
	v.SetDefault("scraper.api_key", "")
	v.SetDefault("scraper.base_url", "http://api.scraperapi.com")

	// Cache defaults
	v.SetDefault("cache.ttl", "24h")

	// Pipeline defaults
	v.SetDefault("pipeline.scrape_timeout", "20s")
	v.SetDefault("pipeline.search_timeout", "18s")

	// Usage log defaults
	v.SetDefault("usagelog.enabled", false)
	v.SetDefault("usagelog.dsn", "")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Gemini.APIKey == "" {
		return fmt.Errorf("Gemini API key is required (set SIMILARLINKS_GEMINI_API_KEY)")
	}

	if config.Scraper.APIKey == "" {
		return fmt.Errorf("Scraper API key is required (set SIMILARLINKS_SCRAPER_API_KEY)")
	}

	if config.UsageLog.Enabled && config.UsageLog.DSN == "" {
		return fmt.Errorf("usage log DSN is required when usage logging is enabled")
	}

	return nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Fetcher   FetcherConfig   `mapstructure:"fetcher"`
	Sites     SitesConfig     `mapstructure:"sites"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// FetcherConfig holds the outbound page fetcher settings
type FetcherConfig struct {
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	BackoffBase    time.Duration `mapstructure:"backoff_base"`
	BackoffJitter  time.Duration `mapstructure:"backoff_jitter"`
	PacingMin      time.Duration `mapstructure:"pacing_min"`
	PacingMax      time.Duration `mapstructure:"pacing_max"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
	TLSFingerprint bool          `mapstructure:"tls_fingerprint"`
}

// SitesConfig holds the origins of the supported sites
type SitesConfig struct {
	SnapdealBaseURL  string `mapstructure:"snapdeal_base_url"`
	ShopCluesBaseURL string `mapstructure:"shopclues_base_url"`
	MaxCards         int    `mapstructure:"max_cards"`
}

// RateLimitConfig holds rate limiting configuration, in requests per minute
type RateLimitConfig struct {
	PerIP    int `mapstructure:"per_ip"`
	Upstream int `mapstructure:"upstream"`
}

// Load loads configuration from environment variables and config files
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
	v.AddConfigPath("/etc/shopscout/")

	// SHOPSCOUT_FETCHER_MAX_ATTEMPTS -> fetcher.max_attempts
	v.SetEnvPrefix("SHOPSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
// AutomaticEnv only resolves keys viper already knows, so every key needs a default.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Fetcher defaults
	v.SetDefault("fetcher.timeout", "15s")
	v.SetDefault("fetcher.max_attempts", 3)
	v.SetDefault("fetcher.backoff_base", "1s")
	v.SetDefault("fetcher.backoff_jitter", "1s")
	v.SetDefault("fetcher.pacing_min", "1s")
	v.SetDefault("fetcher.pacing_max", "3s")
	v.SetDefault("fetcher.max_body_bytes", 10<<20)
	v.SetDefault("fetcher.tls_fingerprint", true)

	// Site defaults
	v.SetDefault("sites.snapdeal_base_url", "https://www.snapdeal.com")
	v.SetDefault("sites.shopclues_base_url", "https://www.shopclues.com")
	v.SetDefault("sites.max_cards", 40)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.upstream", 30)
}

// loadEnvFile loads ./.env into the process environment when present.
// Variables that are already set are left untouched.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return gotenv.Load(".env")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Server.Port == "" {
		return fmt.Errorf("server port is required (set SHOPSCOUT_SERVER_PORT)")
	}

	f := config.Fetcher
	if f.MaxAttempts < 1 {
		return fmt.Errorf("fetcher max_attempts must be at least 1, got: %d", f.MaxAttempts)
	}
	if f.Timeout <= 0 {
		return fmt.Errorf("fetcher timeout must be positive, got: %s", f.Timeout)
	}
	if f.BackoffBase < 0 || f.BackoffJitter < 0 || f.PacingMin < 0 {
		return fmt.Errorf("fetcher delays must not be negative")
	}
	if f.PacingMin > f.PacingMax {
		return fmt.Errorf("fetcher pacing_min (%s) must not exceed pacing_max (%s)", f.PacingMin, f.PacingMax)
	}
	if f.MaxBodyBytes <= 0 {
		return fmt.Errorf("fetcher max_body_bytes must be positive, got: %d", f.MaxBodyBytes)
	}

	if config.Sites.SnapdealBaseURL == "" || config.Sites.ShopCluesBaseURL == "" {
		return fmt.Errorf("site base URLs are required")
	}
	if config.Sites.MaxCards <= 0 {
		return fmt.Errorf("sites max_cards must be positive, got: %d", config.Sites.MaxCards)
	}

	return nil
}

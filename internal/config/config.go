package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string
	Platform    PlatformConfig
	Session     SessionConfig
	Assistant   AssistantConfig
	Content     ContentConfig
	Price       PriceConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
}

// PlatformConfig points at the hosted commerce platform's GraphQL endpoint.
// The access token is the one the Merchant Center shell would otherwise inject.
type PlatformConfig struct {
	APIURL      string // e.g. https://api.us-central1.gcp.commercetools.com
	ProjectKey  string
	AccessToken string
}

// SessionConfig signs the console session token issued on login.
type SessionConfig struct {
	Secret string
	TTL    time.Duration
}

// AssistantConfig is used to call the hosted chat service. The signing secret
// lives in deliverable configuration; that exposure is inherited from the
// original design, not a recommendation.
type AssistantConfig struct {
	BaseURL  string // empty means the assistant endpoint returns 503
	Secret   string
	TokenTTL time.Duration
}

// ContentConfig feeds the CMS web-component embed (one-way attribute passing).
type ContentConfig struct {
	BaseURL string
	Locale  string
}

// PriceConfig tunes the price update sequencer. SettleDelay is the pause
// between the remove and add phases while the platform settles the first
// mutation; the right interval is an integration detail of the target
// platform, not a guarantee.
type PriceConfig struct {
	SettleDelay   time.Duration
	SweepInterval string // cron spec for the stale-workflow sweeper
	StaleAfter    time.Duration
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

type CORSConfig struct {
	AllowedOrigins []string
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("SESSION_TTL_MINUTES", "480")
	viper.SetDefault("ASSISTANT_TOKEN_TTL_MINUTES", "60")
	viper.SetDefault("PRICE_SETTLE_DELAY_MS", "1000")
	viper.SetDefault("PRICE_SWEEP_CRON", "@every 1m")
	viper.SetDefault("PRICE_STALE_AFTER_MINUTES", "10")
	viper.SetDefault("RATE_LIMIT_RPS", "20")
	viper.SetDefault("RATE_LIMIT_BURST", "40")
	viper.SetDefault("CONTENT_LOCALE", "en-US")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if .env doesn't exist, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		LogLevel:    getEnvOrViper("LOG_LEVEL", "info"),
		Platform: PlatformConfig{
			APIURL:      strings.TrimSuffix(strings.TrimSpace(getEnvOrViper("CTP_API_URL", "")), "/"),
			ProjectKey:  strings.TrimSpace(getEnvOrViper("CTP_PROJECT_KEY", "")),
			AccessToken: strings.TrimSpace(getEnvOrViper("CTP_ACCESS_TOKEN", "")),
		},
		Session: SessionConfig{
			Secret: getEnvOrViper("SESSION_SECRET", ""),
			TTL:    time.Duration(viper.GetInt("SESSION_TTL_MINUTES")) * time.Minute,
		},
		Assistant: AssistantConfig{
			BaseURL:  strings.TrimSuffix(strings.TrimSpace(getEnvOrViper("ASSISTANT_BASE_URL", "")), "/"),
			Secret:   getEnvOrViper("ASSISTANT_JWT_SECRET", ""),
			TokenTTL: time.Duration(viper.GetInt("ASSISTANT_TOKEN_TTL_MINUTES")) * time.Minute,
		},
		Content: ContentConfig{
			BaseURL: strings.TrimSpace(getEnvOrViper("CONTENT_BASE_URL", "")),
			Locale:  getEnvOrViper("CONTENT_LOCALE", "en-US"),
		},
		Price: PriceConfig{
			SettleDelay:   time.Duration(viper.GetInt("PRICE_SETTLE_DELAY_MS")) * time.Millisecond,
			SweepInterval: getEnvOrViper("PRICE_SWEEP_CRON", "@every 1m"),
			StaleAfter:    time.Duration(viper.GetInt("PRICE_STALE_AFTER_MINUTES")) * time.Minute,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:             viper.GetInt("RATE_LIMIT_BURST"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getEnvOrViper("CORS_ALLOWED_ORIGINS", "*")),
		},
	}

	// Validate required fields
	if cfg.Platform.APIURL == "" {
		return nil, fmt.Errorf("CTP_API_URL is required")
	}
	if cfg.Platform.ProjectKey == "" {
		return nil, fmt.Errorf("CTP_PROJECT_KEY is required")
	}
	if cfg.Platform.AccessToken == "" {
		return nil, fmt.Errorf("CTP_ACCESS_TOKEN is required")
	}
	if cfg.Session.Secret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds everything the bot reads from the environment. The backend
// base URL is the single endpoint-prefix value; all three API paths hang
// off it.
type Config struct {
	TelegramToken  string        `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	APIBaseURL     string        `envconfig:"BHB_API_BASE_URL" required:"true"`
	RequestTimeout time.Duration `envconfig:"BHB_API_TIMEOUT" default:"30s"`
	RatePerMinute  int           `envconfig:"BHB_API_RATE_LIMIT" default:"60"`
	DownloadDir    string        `envconfig:"OFFER_DOWNLOAD_DIR" default:"data/offers"`
	Environment    string        `envconfig:"APP_ENV" default:"development"`
}

// IsProduction reports whether the bot runs with production logging.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	parsed, err := url.Parse(cfg.APIBaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("BHB_API_BASE_URL %q is not an absolute URL", cfg.APIBaseURL)
	}
	if cfg.RatePerMinute <= 0 {
		return nil, fmt.Errorf("BHB_API_RATE_LIMIT must be positive, got %d", cfg.RatePerMinute)
	}

	return &cfg, nil
}

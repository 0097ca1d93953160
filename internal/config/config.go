// Package config loads client configuration from the environment, with an
// optional .env file for development.
package config

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Config is the full client configuration.
type Config struct {
	// BaseURL is the trip-planner backend origin, without a trailing slash.
	BaseURL string `env:"VOYAGO_API_BASE_URL" envDefault:"http://localhost:8080"`

	RequestTimeout time.Duration `env:"VOYAGO_REQUEST_TIMEOUT" envDefault:"10s"`
	RequestRetries int           `env:"VOYAGO_REQUEST_RETRIES" envDefault:"3"`

	// TokenTTL bounds how long a persisted token is honored; the token's
	// own exp claim may shorten it further.
	TokenTTL time.Duration `env:"VOYAGO_TOKEN_TTL" envDefault:"24h"`
	// TokenFile is where the token record is persisted. Empty selects the
	// default location under the user config dir.
	TokenFile string `env:"VOYAGO_TOKEN_FILE"`

	GoogleClientID     string `env:"VOYAGO_GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"VOYAGO_GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"VOYAGO_GOOGLE_REDIRECT_URL"`

	LogLevel string `env:"VOYAGO_LOG_LEVEL" envDefault:"info"`
}

var loadDotenv sync.Once

// Load parses the environment into a Config. A missing .env file is fine.
func Load() (Config, error) {
	loadDotenv.Do(func() {
		_ = godotenv.Load()
	})

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "[config.Load] parse environment")
	}

	if cfg.TokenFile == "" {
		cfg.TokenFile = defaultTokenFile()
	}
	return cfg, nil
}

// defaultTokenFile places the token record under the user config dir,
// falling back to the working directory when none is resolvable.
func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".voyago-token.json"
	}
	return filepath.Join(dir, "voyago", "token.json")
}

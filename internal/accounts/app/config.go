package app

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// EmailIdentity enables the two-field variant: email becomes a second
	// unique key and the login identity.
	EmailIdentity bool `env:"ACCOUNTS_EMAIL_IDENTITY" envDefault:"false"`

	DatabaseFile string `env:"ACCOUNTS_DATABASE_FILE" envDefault:"accounts.db"` // Path to SQLite database file
	PepperFile   string `env:"ACCOUNTS_PEPPER_FILE"   envDefault:"pepper"`      // Path to password-hashing pepper file

	Env                 string        `env:"ENV"                   envDefault:"dev"`  // Environment (dev, staging, prod)
	LogLevel            string        `env:"LOG_LEVEL"             envDefault:"info"` // Log level (debug, info, warn, error)
	LogFormat           string        `env:"LOG_FORMAT"            envDefault:"json"` // Log format (json, text)
	Port                int           `env:"PORT"                  envDefault:"8080"` // HTTP server port
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`  // Graceful shutdown timeout
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

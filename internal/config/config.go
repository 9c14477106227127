// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage drivers accepted by DB_DRIVER.
const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Config is built once at startup and passed to the components that need it.
type Config struct {
	Port int `env:"PORT" envDefault:"8000"`

	// GoogleClientID is the OAuth client ID Google ID tokens must be issued for.
	GoogleClientID string `env:"GOOGLE_CLIENT_ID,required,notEmpty"`
	// AccessTokenSecret signs issued access tokens.
	AccessTokenSecret string `env:"ACCESS_TOKEN_SECRET,required,notEmpty"`

	DBDriver      string `env:"DB_DRIVER" envDefault:"mongo"`
	MongoURI      string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"auth"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"./data/auth.db"`

	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"https://resutrents-clients.vercel.app,http://localhost:5173"`
}

// Load reads a .env file if one exists, then parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	} else if err != nil {
		slog.Debug("No .env file found, using environment variables")
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values the env tags cannot express.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverMongo, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("invalid DB_DRIVER %q: want %s, %s or %s", c.DBDriver, DriverMongo, DriverSQLite, DriverMemory)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

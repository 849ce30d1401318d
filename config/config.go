// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"deadgrid/server/game"
)

// Store kinds accepted by StoreKind.
const (
	StoreJSON     = "json"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// Config is the full server configuration. Every field is read from a
// DEADGRID_ prefixed variable.
type Config struct {
	Addr           string   `env:"ADDR" envDefault:":8080"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	StoreKind   string `env:"STORE" envDefault:"json"`
	JSONPath    string `env:"JSON_PATH" envDefault:"runs.json"`
	PostgresDSN string `env:"POSTGRES_DSN" envDefault:"host=localhost user=deadgrid password=deadgrid dbname=deadgrid sslmode=disable"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"deadgrid.db"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	LogFile   string `env:"LOG_FILE"`

	LeaderboardTTL   time.Duration `env:"LEADERBOARD_TTL" envDefault:"30s"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MaxSessions      int           `env:"MAX_SESSIONS" envDefault:"1000"`
	SessionIdleAfter time.Duration `env:"SESSION_IDLE_AFTER" envDefault:"30m"`

	Rules game.Rules `envPrefix:"RULES_"`
}

// Load reads an optional .env file, then parses the environment.
func Load(dotenvPaths ...string) (Config, error) {
	if len(dotenvPaths) == 0 {
		dotenvPaths = []string{".env"}
	}
	for _, p := range dotenvPaths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", p, err)
		}
	}
	return Parse(env.Options{Prefix: "DEADGRID_"})
}

// Parse parses the configuration with the given env options. Tests pass an
// Environment map here instead of touching the process environment.
func Parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	switch c.StoreKind {
	case StoreJSON, StorePostgres, StoreSQLite:
	default:
		return fmt.Errorf("unknown store %q (want json, postgres or sqlite)", c.StoreKind)
	}
	if strings.TrimSpace(c.Addr) == "" {
		return errors.New("listen address is required")
	}
	r := c.Rules
	if r.GridWidth < 1 || r.GridHeight < 1 {
		return fmt.Errorf("grid %dx%d must be at least 1x1", r.GridWidth, r.GridHeight)
	}
	if r.ActionsPerDay < 1 {
		return fmt.Errorf("actions per day must be positive, got %d", r.ActionsPerDay)
	}
	if r.MaxHealth < 1 || r.StartHealth < 1 || r.StartHealth > r.MaxHealth {
		return fmt.Errorf("start health %d must be in [1, %d]", r.StartHealth, r.MaxHealth)
	}
	if c.MaxSessions < 1 {
		return fmt.Errorf("max sessions must be positive, got %d", c.MaxSessions)
	}
	return nil
}

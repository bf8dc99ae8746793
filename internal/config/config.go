package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds application configuration. Values come from
// <baseDir>/config.json overridden by CAPSULED_* environment variables.
type Config struct {
	// Bind is the interface the HTTP server listens on.
	Bind string `json:"bind" env:"CAPSULED_BIND" env-default:"127.0.0.1"`

	// Port is the HTTP server port.
	Port int `json:"port" env:"CAPSULED_PORT" env-default:"8005"`

	// DefaultAuthor is recorded on capsules created without an author.
	DefaultAuthor string `json:"default_author" env:"CAPSULED_DEFAULT_AUTHOR" env-default:"Kai"`

	// DBMaxOpenConns limits open database connections. Setting it to 1
	// serializes all database access (reduces "database is locked" errors).
	// 0 means the sql.DB default.
	DBMaxOpenConns int `json:"db_max_open_conns" env:"CAPSULED_DB_MAX_OPEN_CONNS"`

	// DBMaxIdleConns limits idle database connections. 0 means the sql.DB
	// default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns" env:"CAPSULED_DB_MAX_IDLE_CONNS"`

	// LogLevel is one of: debug, info, warn, error.
	LogLevel string `json:"log_level" env:"CAPSULED_LOG_LEVEL" env-default:"info"`
}

// Load reads configuration from baseDir/config.json plus the environment.
// A missing config file is not an error; env and defaults still apply.
func Load(baseDir string) (*Config, error) {
	cfg := &Config{}

	path := filepath.Join(baseDir, "config.json")
	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

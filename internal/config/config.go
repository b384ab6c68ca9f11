// Package config reads the service configuration from the environment, after
// loading a .env file when one is present.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	HTTPAddr       string
	DatabaseDriver string
	DatabaseURL    string
	PostgresHost   string
	PostgresPort   string
	PostgresUser   string
	PostgresPass   string
	PostgresDB     string
	SQLitePath     string
	SecretKey      string
	JWTSecret      string
	BaseURL        string
	VoteLinkTTL    time.Duration
	AllowedOrigins []string
	LogLevel       slog.Level
	LogFile        string
}

// Load reads .env (a missing file is fine) and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds the configuration from a lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		HTTPAddr:       valueOr(getenv("HTTP_ADDR"), "0.0.0.0:8080"),
		DatabaseDriver: valueOr(getenv("DATABASE_DRIVER"), DriverPostgres),
		DatabaseURL:    getenv("DATABASE_URL"),
		PostgresHost:   valueOr(getenv("POSTGRES_HOST"), "localhost"),
		PostgresPort:   valueOr(getenv("POSTGRES_PORT"), "5432"),
		PostgresUser:   getenv("POSTGRES_USER"),
		PostgresPass:   getenv("POSTGRES_PASSWORD"),
		PostgresDB:     getenv("POSTGRES_DB"),
		SQLitePath:     valueOr(getenv("SQLITE_PATH"), "data/voting.db"),
		SecretKey:      getenv("SECRET_KEY"),
		JWTSecret:      getenv("JWT_SECRET"),
		BaseURL:        strings.TrimRight(valueOr(getenv("BASE_URL"), "http://localhost:8080"), "/"),
		LogFile:        getenv("LOG_FILE"),
	}

	switch cfg.DatabaseDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}

	if ttl := getenv("VOTE_LINK_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("invalid VOTE_LINK_TTL %q", ttl)
		}
		cfg.VoteLinkTTL = d
	}

	for _, origin := range strings.Split(getenv("ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	if level := getenv("LOG_LEVEL"); level != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q", level)
		}
	}

	return cfg, nil
}

// RequireSecrets reports missing secrets. Binaries that sign or verify tokens
// call it; the migration tool does not.
func (c *Config) RequireSecrets() error {
	if c.SecretKey == "" {
		return errors.New("SECRET_KEY required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET required")
	}
	return nil
}

// NewLogger returns a JSON logger writing to stderr and, when LOG_FILE is
// set, to a size-rotated file as well.
func (c *Config) NewLogger() *slog.Logger {
	var out io.Writer = os.Stderr
	if c.LogFile != "" {
		out = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   c.LogFile,
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		})
	}
	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: c.LogLevel}))
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

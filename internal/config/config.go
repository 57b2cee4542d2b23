package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Database
	DBDriver    string // "postgres" or "sqlite"
	DatabaseURL string // postgres DSN; built from DB_* parts when empty
	SQLitePath  string

	// Redis is optional; an empty address disables the account cache.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret      string
	AllowedOrigins string
	CSRFMode       string // token, origin or off
}

// Load reads configuration from environment variables.
// A .env file is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DBDriver:       strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		SQLitePath:     getEnv("SQLITE_PATH", "./data/om.db"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
		CSRFMode:       strings.ToLower(strings.TrimSpace(getEnv("CSRF_MODE", "token"))),
	}

	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if parsedDB, err := strconv.Atoi(dbStr); err == nil {
			cfg.RedisDB = parsedDB
		}
	}

	if cfg.DatabaseURL == "" && cfg.DBDriver == "postgres" {
		cfg.DatabaseURL = postgresDSNFromParts()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return errors.New("DB_DRIVER must be postgres or sqlite")
	}
	switch c.CSRFMode {
	case "", "token", "origin", "off":
	default:
		return errors.New("CSRF_MODE must be token, origin or off")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Origins splits ALLOWED_ORIGINS on commas.
func (c *Config) Origins() []string {
	if c.AllowedOrigins == "" {
		return nil
	}
	parts := strings.Split(c.AllowedOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func postgresDSNFromParts() string {
	parts := []struct{ key, env, def string }{
		{"host", "DB_HOST", "localhost"},
		{"user", "DB_USER", ""},
		{"password", "DB_PASSWORD", ""},
		{"dbname", "DB_NAME", ""},
		{"port", "DB_PORT", "5432"},
		{"sslmode", "DB_SSLMODE", "disable"},
	}
	fields := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := getEnv(p.env, p.def); v != "" {
			fields = append(fields, p.key+"="+v)
		}
	}
	return strings.Join(fields, " ")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Package config loads and validates environment-based configuration.
package config

import (
	"errors"
	"fmt"
	"missing-maps-service/internal/domain"
	"missing-maps-service/internal/services"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// ConfigError represents a configuration error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: field %q: %s", e.Field, e.Message)
}

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	Port string

	// Storage. DBDriver is "sqlite" (DBPath) or "postgres" (DatabaseURL).
	DBDriver    string
	DBPath      string
	DatabaseURL string
	SeedPath    string

	OnlineRoutingURL     string
	OnlineRoutingTimeout time.Duration // 0 leaves the transport default in place.
	RoutingType          domain.RoutingType

	// Optional integrations, disabled when empty.
	RedisURL   string
	CacheTTL   time.Duration
	AMQPURL    string
	NavlinkURL string

	Workers    int
	// MaxPending caps accepted but unfinished resolutions. 0 keeps the pool default.
	MaxPending int
}

// Get returns the value of key, or fallback when it is unset or empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Load reads configuration from the environment and validates it.
// All invalid fields are reported together.
func Load() (*Config, error) {
	var errs []error

	cfg := &Config{
		Port:             Get("PORT", "8080"),
		DBDriver:         strings.ToLower(Get("DB_DRIVER", "sqlite")),
		DBPath:           Get("DB_PATH", "data/app.db"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		SeedPath:         Get("SEED_PATH", "data/seeds/missing_maps.json"),
		OnlineRoutingURL: Get("ONLINE_ROUTING_URL", services.DefaultOnlineRoutingURL),
		RedisURL:         os.Getenv("REDIS_URL"),
		AMQPURL:          os.Getenv("AMQP_URL"),
		NavlinkURL:       os.Getenv("NAVLINK_URL"),
	}

	var err error
	if cfg.OnlineRoutingTimeout, err = parseDuration("ONLINE_ROUTING_TIMEOUT", 0); err != nil {
		errs = append(errs, err)
	}
	if cfg.CacheTTL, err = parseDuration("CACHE_TTL", 10*time.Minute); err != nil {
		errs = append(errs, err)
	}
	if cfg.Workers, err = parseInt("WORKERS", 4); err != nil {
		errs = append(errs, err)
	}
	if cfg.MaxPending, err = parseInt("MAX_PENDING", 0); err != nil {
		errs = append(errs, err)
	}

	rt, err := domain.ParseRoutingType(os.Getenv("ROUTING_TYPE"))
	if err != nil {
		errs = append(errs, &ConfigError{Field: "ROUTING_TYPE", Message: err.Error()})
	}
	cfg.RoutingType = rt

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values and cross-field requirements.
func (c *Config) Validate() error {
	var errs []error

	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		errs = append(errs, &ConfigError{Field: "PORT", Message: "must be an integer between 1 and 65535"})
	}

	switch c.DBDriver {
	case "sqlite":
		if strings.TrimSpace(c.DBPath) == "" {
			errs = append(errs, &ConfigError{Field: "DB_PATH", Message: "required when DB_DRIVER=sqlite"})
		}
	case "postgres":
		if strings.TrimSpace(c.DatabaseURL) == "" {
			errs = append(errs, &ConfigError{Field: "DATABASE_URL", Message: "required when DB_DRIVER=postgres"})
		}
	default:
		errs = append(errs, &ConfigError{Field: "DB_DRIVER", Message: "must be sqlite or postgres"})
	}

	if u, err := url.Parse(c.OnlineRoutingURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, &ConfigError{Field: "ONLINE_ROUTING_URL", Message: "must be an absolute URL"})
	}
	if c.OnlineRoutingTimeout < 0 {
		errs = append(errs, &ConfigError{Field: "ONLINE_ROUTING_TIMEOUT", Message: "cannot be negative"})
	}
	if c.Workers < 1 {
		errs = append(errs, &ConfigError{Field: "WORKERS", Message: "must be at least 1"})
	}
	if c.MaxPending < 0 {
		errs = append(errs, &ConfigError{Field: "MAX_PENDING", Message: "cannot be negative"})
	}
	if c.RedisURL != "" && c.CacheTTL <= 0 {
		errs = append(errs, &ConfigError{Field: "CACHE_TTL", Message: "must be positive when REDIS_URL is set"})
	}

	return errors.Join(errs...)
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, &ConfigError{Field: key, Message: "must be a duration such as 30s or 10m"}
	}
	return d, nil
}

func parseInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ConfigError{Field: key, Message: "must be a valid integer"}
	}
	return n, nil
}

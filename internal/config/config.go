// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

type Config struct {
	// HTTP Server
	Port            string
	ShutdownTimeout time.Duration

	// Database
	DBDriver     string
	SQLiteDBPath string
	DatabaseURL  string

	// AMQP events; disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string

	// Logging
	LogLevel  string
	LogFormat string

	// parseErrs holds values that were set but unreadable.
	parseErrs []error
}

// Load reads the configuration from environment variables, applying
// defaults for anything unset. Values that cannot be parsed are reported
// by Validate.
func Load() *Config {
	c := &Config{
		Port:         lookup("PORT", "8080"),
		DBDriver:     strings.ToLower(lookup("DB_DRIVER", DriverSQLite)),
		SQLiteDBPath: lookup("SQLITE_DB_PATH", "./data/splitledger.db"),
		DatabaseURL:  lookup("DATABASE_URL", ""),
		AMQPURL:      lookup("AMQP_URL", ""),
		AMQPExchange: lookup("AMQP_EXCHANGE", "splitledger.events"),
		LogLevel:     strings.ToLower(lookup("LOG_LEVEL", "info")),
		LogFormat:    strings.ToLower(lookup("LOG_FORMAT", "text")),
	}

	// Some hosting providers still hand out the legacy postgres:// scheme.
	if rest, ok := strings.CutPrefix(c.DatabaseURL, "postgres://"); ok {
		c.DatabaseURL = "postgresql://" + rest
	}

	timeout, err := time.ParseDuration(lookup("SHUTDOWN_TIMEOUT", "10s"))
	if err != nil {
		c.parseErrs = append(c.parseErrs, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err))
	}
	c.ShutdownTimeout = timeout

	return c
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	errs := slices.Clone(c.parseErrs)
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if port, err := strconv.Atoi(c.Port); err != nil {
		fail("invalid port '%s': must be a number", c.Port)
	} else if port < 1 || port > 65535 {
		fail("invalid port %d: must be between 1 and 65535", port)
	}

	if c.ShutdownTimeout <= 0 && len(c.parseErrs) == 0 {
		fail("invalid shutdown timeout %v: must be positive", c.ShutdownTimeout)
	}

	switch c.DBDriver {
	case DriverSQLite:
		if c.SQLiteDBPath == "" {
			fail("SQLite database path cannot be empty when using sqlite driver")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			fail("DATABASE_URL is required when using postgres driver")
		} else if scheme, err := urlScheme(c.DatabaseURL); err != nil {
			fail("invalid DATABASE_URL: %w", err)
		} else if scheme != "postgresql" {
			fail("invalid DATABASE_URL scheme '%s': must be 'postgres' or 'postgresql'", scheme)
		}
	default:
		fail("invalid database driver '%s': must be %s or %s", c.DBDriver, DriverSQLite, DriverPostgres)
	}

	if c.AMQPURL != "" {
		if scheme, err := urlScheme(c.AMQPURL); err != nil {
			fail("invalid AMQP URL: %w", err)
		} else if scheme != "amqp" && scheme != "amqps" {
			fail("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", scheme)
		}
		if c.AMQPExchange == "" {
			fail("AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if !slices.Contains(logLevels, c.LogLevel) {
		fail("invalid log level '%s': must be one of %v", c.LogLevel, logLevels)
	}
	if !slices.Contains(logFormats, c.LogFormat) {
		fail("invalid log format '%s': must be one of %v", c.LogFormat, logFormats)
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %w", errors.Join(errs...))
	}
	return nil
}

func lookup(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func urlScheme(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	return u.Scheme, nil
}

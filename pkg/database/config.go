package database

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds PostgreSQL connection parameters.
// A non-empty DSN is used verbatim and replaces the discrete fields.
type Config struct {
	DSN             string `toml:"dsn"`
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	Name            string `toml:"name"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	SSLMode         string `toml:"ssl_mode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime string `toml:"conn_max_lifetime"`
	ConnTimeout     string `toml:"conn_timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	DSN             string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    string
	MaxIdleConns    string
	ConnMaxLifetime string
	ConnTimeout     string
}

// ConnMaxLifetimeDuration returns ConnMaxLifetime as a time.Duration.
func (c *Config) ConnMaxLifetimeDuration() time.Duration {
	d, _ := time.ParseDuration(c.ConnMaxLifetime)
	return d
}

// ConnTimeoutDuration returns ConnTimeout as a time.Duration.
func (c *Config) ConnTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ConnTimeout)
	return d
}

// Dsn returns the PostgreSQL connection string.
func (c *Config) Dsn() string {
	if c.DSN != "" {
		return c.DSN
	}
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.Host, c.Port, c.Name, c.User, c.Password, c.SSLMode,
	)
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	for dst, v := range c.strings(overlay) {
		if v != "" {
			*dst = v
		}
	}
	for dst, v := range c.ints(overlay) {
		if v != 0 {
			*dst = v
		}
	}
}

func (c *Config) strings(src *Config) map[*string]string {
	return map[*string]string{
		&c.DSN:             src.DSN,
		&c.Host:            src.Host,
		&c.Name:            src.Name,
		&c.User:            src.User,
		&c.Password:        src.Password,
		&c.SSLMode:         src.SSLMode,
		&c.ConnMaxLifetime: src.ConnMaxLifetime,
		&c.ConnTimeout:     src.ConnTimeout,
	}
}

func (c *Config) ints(src *Config) map[*int]int {
	return map[*int]int{
		&c.Port:         src.Port,
		&c.MaxOpenConns: src.MaxOpenConns,
		&c.MaxIdleConns: src.MaxIdleConns,
	}
}

func (c *Config) loadDefaults() {
	defaults := Config{
		Host:            "localhost",
		Port:            5432,
		SSLMode:         "disable",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: "15m",
		ConnTimeout:     "5s",
	}
	defaults.Merge(c)
	*c = defaults
}

func (c *Config) loadEnv(env *Env) {
	lookup := func(name string) string {
		if name == "" {
			return ""
		}
		return os.Getenv(name)
	}

	c.Merge(&Config{
		DSN:             lookup(env.DSN),
		Host:            lookup(env.Host),
		Name:            lookup(env.Name),
		User:            lookup(env.User),
		Password:        lookup(env.Password),
		SSLMode:         lookup(env.SSLMode),
		ConnMaxLifetime: lookup(env.ConnMaxLifetime),
		ConnTimeout:     lookup(env.ConnTimeout),
		Port:            atoi(lookup(env.Port)),
		MaxOpenConns:    atoi(lookup(env.MaxOpenConns)),
		MaxIdleConns:    atoi(lookup(env.MaxIdleConns)),
	})
}

// atoi returns 0 for empty or malformed input, which Merge ignores.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func (c *Config) validate() error {
	if c.DSN == "" {
		if c.Name == "" {
			return fmt.Errorf("name required")
		}
		if c.User == "" {
			return fmt.Errorf("user required")
		}
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return fmt.Errorf("max_idle_conns (%d) exceeds max_open_conns (%d)", c.MaxIdleConns, c.MaxOpenConns)
	}
	if _, err := time.ParseDuration(c.ConnMaxLifetime); err != nil {
		return fmt.Errorf("invalid conn_max_lifetime: %w", err)
	}
	if _, err := time.ParseDuration(c.ConnTimeout); err != nil {
		return fmt.Errorf("invalid conn_timeout: %w", err)
	}
	return nil
}

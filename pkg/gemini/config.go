package gemini

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds Gemini API connection, polling, and retry parameters.
// An empty APIKey is valid at load time; calls fail with ErrNotConfigured.
type Config struct {
	APIKey            string `toml:"api_key"`
	BaseURL           string `toml:"base_url"`
	Model             string `toml:"model"`
	PollInterval      string `toml:"poll_interval"`
	MaxPollAttempts   int    `toml:"max_poll_attempts"`
	RequireActive     bool   `toml:"require_active"`
	MaxAttempts       int    `toml:"max_attempts"`
	InitialBackoff    string `toml:"initial_backoff"`
	UploadConcurrency int    `toml:"upload_concurrency"`
	RequestTimeout    string `toml:"request_timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	APIKey            string
	BaseURL           string
	Model             string
	PollInterval      string
	MaxPollAttempts   string
	RequireActive     string
	MaxAttempts       string
	InitialBackoff    string
	UploadConcurrency string
	RequestTimeout    string
}

// PollIntervalDuration returns PollInterval as a time.Duration.
func (c *Config) PollIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.PollInterval)
	return d
}

// InitialBackoffDuration returns InitialBackoff as a time.Duration.
func (c *Config) InitialBackoffDuration() time.Duration {
	d, _ := time.ParseDuration(c.InitialBackoff)
	return d
}

// RequestTimeoutDuration returns RequestTimeout as a time.Duration.
func (c *Config) RequestTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.RequestTimeout)
	return d
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
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.PollInterval != "" {
		c.PollInterval = overlay.PollInterval
	}
	if overlay.MaxPollAttempts != 0 {
		c.MaxPollAttempts = overlay.MaxPollAttempts
	}
	if overlay.RequireActive {
		c.RequireActive = true
	}
	if overlay.MaxAttempts != 0 {
		c.MaxAttempts = overlay.MaxAttempts
	}
	if overlay.InitialBackoff != "" {
		c.InitialBackoff = overlay.InitialBackoff
	}
	if overlay.UploadConcurrency != 0 {
		c.UploadConcurrency = overlay.UploadConcurrency
	}
	if overlay.RequestTimeout != "" {
		c.RequestTimeout = overlay.RequestTimeout
	}
}

func (c *Config) loadDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if c.Model == "" {
		c.Model = "gemini-2.5-flash"
	}
	if c.PollInterval == "" {
		c.PollInterval = "1s"
	}
	if c.MaxPollAttempts == 0 {
		c.MaxPollAttempts = 30
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 3
	}
	if c.InitialBackoff == "" {
		c.InitialBackoff = "2s"
	}
	if c.UploadConcurrency == 0 {
		c.UploadConcurrency = 1
	}
	if c.RequestTimeout == "" {
		c.RequestTimeout = "5m"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.APIKey != "" {
		if v := os.Getenv(env.APIKey); v != "" {
			c.APIKey = v
		}
	}
	if env.BaseURL != "" {
		if v := os.Getenv(env.BaseURL); v != "" {
			c.BaseURL = v
		}
	}
	if env.Model != "" {
		if v := os.Getenv(env.Model); v != "" {
			c.Model = v
		}
	}
	if env.PollInterval != "" {
		if v := os.Getenv(env.PollInterval); v != "" {
			c.PollInterval = v
		}
	}
	if env.MaxPollAttempts != "" {
		if v := os.Getenv(env.MaxPollAttempts); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.MaxPollAttempts = n
			}
		}
	}
	if env.RequireActive != "" {
		if v := os.Getenv(env.RequireActive); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				c.RequireActive = b
			}
		}
	}
	if env.MaxAttempts != "" {
		if v := os.Getenv(env.MaxAttempts); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.MaxAttempts = n
			}
		}
	}
	if env.InitialBackoff != "" {
		if v := os.Getenv(env.InitialBackoff); v != "" {
			c.InitialBackoff = v
		}
	}
	if env.UploadConcurrency != "" {
		if v := os.Getenv(env.UploadConcurrency); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.UploadConcurrency = n
			}
		}
	}
	if env.RequestTimeout != "" {
		if v := os.Getenv(env.RequestTimeout); v != "" {
			c.RequestTimeout = v
		}
	}
}

func (c *Config) validate() error {
	if c.MaxPollAttempts < 1 {
		return fmt.Errorf("max_poll_attempts must be positive")
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be positive")
	}
	if c.UploadConcurrency < 1 {
		return fmt.Errorf("upload_concurrency must be positive")
	}
	if _, err := time.ParseDuration(c.PollInterval); err != nil {
		return fmt.Errorf("invalid poll_interval: %w", err)
	}
	if _, err := time.ParseDuration(c.InitialBackoff); err != nil {
		return fmt.Errorf("invalid initial_backoff: %w", err)
	}
	if _, err := time.ParseDuration(c.RequestTimeout); err != nil {
		return fmt.Errorf("invalid request_timeout: %w", err)
	}
	return nil
}

// Package config loads medbrief configuration from TOML files and
// MEDBRIEF_* environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/medbrief/pkg/database"
	"github.com/JaimeStill/medbrief/pkg/gemini"
	"github.com/JaimeStill/medbrief/pkg/speech"
	"github.com/JaimeStill/medbrief/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvMedbriefEnv             = "MEDBRIEF_ENV"
	EnvMedbriefShutdownTimeout = "MEDBRIEF_SHUTDOWN_TIMEOUT"
	EnvMedbriefVersion         = "MEDBRIEF_VERSION"
)

var databaseEnv = &database.Env{
	DSN:             "MEDBRIEF_DB_DSN",
	Host:            "MEDBRIEF_DB_HOST",
	Port:            "MEDBRIEF_DB_PORT",
	Name:            "MEDBRIEF_DB_NAME",
	User:            "MEDBRIEF_DB_USER",
	Password:        "MEDBRIEF_DB_PASSWORD",
	SSLMode:         "MEDBRIEF_DB_SSL_MODE",
	MaxOpenConns:    "MEDBRIEF_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "MEDBRIEF_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "MEDBRIEF_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "MEDBRIEF_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "MEDBRIEF_STORAGE_CONTAINER_NAME",
	ConnectionString: "MEDBRIEF_STORAGE_CONNECTION_STRING",
	ServiceURL:       "MEDBRIEF_STORAGE_SERVICE_URL",
	MaxListSize:      "MEDBRIEF_STORAGE_MAX_LIST_SIZE",
}

var geminiEnv = &gemini.Env{
	APIKey:            "MEDBRIEF_GEMINI_API_KEY",
	BaseURL:           "MEDBRIEF_GEMINI_BASE_URL",
	Model:             "MEDBRIEF_GEMINI_MODEL",
	PollInterval:      "MEDBRIEF_GEMINI_POLL_INTERVAL",
	MaxPollAttempts:   "MEDBRIEF_GEMINI_MAX_POLL_ATTEMPTS",
	RequireActive:     "MEDBRIEF_GEMINI_REQUIRE_ACTIVE",
	MaxAttempts:       "MEDBRIEF_GEMINI_MAX_ATTEMPTS",
	InitialBackoff:    "MEDBRIEF_GEMINI_INITIAL_BACKOFF",
	UploadConcurrency: "MEDBRIEF_GEMINI_UPLOAD_CONCURRENCY",
	RequestTimeout:    "MEDBRIEF_GEMINI_REQUEST_TIMEOUT",
}

var speechEnv = &speech.Env{
	APIKey:         "MEDBRIEF_ELEVENLABS_API_KEY",
	BaseURL:        "MEDBRIEF_ELEVENLABS_BASE_URL",
	VoiceID:        "MEDBRIEF_ELEVENLABS_VOICE_ID",
	ModelID:        "MEDBRIEF_ELEVENLABS_MODEL_ID",
	RequestTimeout: "MEDBRIEF_ELEVENLABS_REQUEST_TIMEOUT",
}

// Config is the root configuration for the medbrief service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Logging         LoggingConfig   `toml:"logging"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	API             APIConfig       `toml:"api"`
	Gemini          gemini.Config   `toml:"gemini"`
	Speech          speech.Config   `toml:"speech"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the MEDBRIEF_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvMedbriefEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Logging.Merge(&overlay.Logging)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Gemini.Merge(&overlay.Gemini)
	c.Speech.Merge(&overlay.Speech)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}

	genv := *geminiEnv
	genv.APIKey = envKey(genv.APIKey, "GEMINI_API_KEY")
	senv := *speechEnv
	senv.APIKey = envKey(senv.APIKey, "ELEVENLABS_API_KEY")

	finalizers := []struct {
		name string
		fn   func() error
	}{
		{"server", c.Server.Finalize},
		{"logging", c.Logging.Finalize},
		{"database", func() error { return c.Database.Finalize(databaseEnv) }},
		{"storage", func() error { return c.Storage.Finalize(storageEnv) }},
		{"api", c.API.Finalize},
		{"gemini", func() error { return c.Gemini.Finalize(&genv) }},
		{"speech", func() error { return c.Speech.Finalize(&senv) }},
	}

	for _, f := range finalizers {
		if err := f.fn(); err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
	}
	return nil
}

// envKey returns name, or the unprefixed legacy variable when only it is set.
func envKey(name, legacy string) string {
	if os.Getenv(name) == "" && os.Getenv(legacy) != "" {
		return legacy
	}
	return name
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvMedbriefShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvMedbriefVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvMedbriefEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

package speech

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds text-to-speech provider parameters.
type Config struct {
	APIKey          string  `toml:"api_key"`
	BaseURL         string  `toml:"base_url"`
	VoiceID         string  `toml:"voice_id"`
	ModelID         string  `toml:"model_id"`
	Stability       float64 `toml:"stability"`
	SimilarityBoost float64 `toml:"similarity_boost"`
	RequestTimeout  string  `toml:"request_timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	APIKey         string
	BaseURL        string
	VoiceID        string
	ModelID        string
	RequestTimeout string
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
	if overlay.VoiceID != "" {
		c.VoiceID = overlay.VoiceID
	}
	if overlay.ModelID != "" {
		c.ModelID = overlay.ModelID
	}
	if overlay.Stability != 0 {
		c.Stability = overlay.Stability
	}
	if overlay.SimilarityBoost != 0 {
		c.SimilarityBoost = overlay.SimilarityBoost
	}
	if overlay.RequestTimeout != "" {
		c.RequestTimeout = overlay.RequestTimeout
	}
}

func (c *Config) loadDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.elevenlabs.io"
	}
	if c.VoiceID == "" {
		c.VoiceID = "EXAVITQu4vr4xnSDxMaL"
	}
	if c.ModelID == "" {
		c.ModelID = "eleven_multilingual_v2"
	}
	if c.Stability == 0 {
		c.Stability = 0.5
	}
	if c.SimilarityBoost == 0 {
		c.SimilarityBoost = 0.75
	}
	if c.RequestTimeout == "" {
		c.RequestTimeout = "1m"
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
	if env.VoiceID != "" {
		if v := os.Getenv(env.VoiceID); v != "" {
			c.VoiceID = v
		}
	}
	if env.ModelID != "" {
		if v := os.Getenv(env.ModelID); v != "" {
			c.ModelID = v
		}
	}
	if env.RequestTimeout != "" {
		if v := os.Getenv(env.RequestTimeout); v != "" {
			c.RequestTimeout = v
		}
	}
}

func (c *Config) validate() error {
	if c.Stability < 0 || c.Stability > 1 {
		return fmt.Errorf("stability must be between 0 and 1: %s", strconv.FormatFloat(c.Stability, 'f', -1, 64))
	}
	if c.SimilarityBoost < 0 || c.SimilarityBoost > 1 {
		return fmt.Errorf("similarity_boost must be between 0 and 1: %s", strconv.FormatFloat(c.SimilarityBoost, 'f', -1, 64))
	}
	if _, err := time.ParseDuration(c.RequestTimeout); err != nil {
		return fmt.Errorf("invalid request_timeout: %w", err)
	}
	return nil
}

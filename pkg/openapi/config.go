package openapi

import (
	"fmt"
	"net/url"
	"os"
)

// Config holds the document metadata. ServerURL, when set, replaces the API
// base path as the advertised server (e.g. behind a reverse proxy).
type Config struct {
	Title       string `toml:"title"`
	Description string `toml:"description"`
	ServerURL   string `toml:"server_url"`
}

// ConfigEnv names the environment variables that override Config.
type ConfigEnv struct {
	Title       string
	Description string
	ServerURL   string
}

// Finalize applies defaults, then environment overrides, then validates.
func (c *Config) Finalize(env *ConfigEnv) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites fields that overlay sets.
func (c *Config) Merge(overlay *Config) {
	src := overlay.fields()
	for name, dst := range c.fields() {
		if v := *src[name]; v != "" {
			*dst = v
		}
	}
}

// Server returns ServerURL when set, otherwise basePath.
func (c *Config) Server(basePath string) string {
	if c.ServerURL != "" {
		return c.ServerURL
	}
	return basePath
}

func (c *Config) fields() map[string]*string {
	return map[string]*string{
		"title":       &c.Title,
		"description": &c.Description,
		"server_url":  &c.ServerURL,
	}
}

func (c *Config) loadDefaults() {
	if c.Title == "" {
		c.Title = "medbrief API"
	}
	if c.Description == "" {
		c.Description = "Clinical brief generation from patient documents: structured summaries, narration, chat, letters and timelines."
	}
}

func (c *Config) loadEnv(env *ConfigEnv) {
	names := env.fields()
	for name, dst := range c.fields() {
		if names[name] == "" {
			continue
		}
		if v := os.Getenv(names[name]); v != "" {
			*dst = v
		}
	}
}

func (e *ConfigEnv) fields() map[string]string {
	return map[string]string{
		"title":       e.Title,
		"description": e.Description,
		"server_url":  e.ServerURL,
	}
}

func (c *Config) validate() error {
	if c.ServerURL == "" {
		return nil
	}
	if _, err := url.ParseRequestURI(c.ServerURL); err != nil {
		return fmt.Errorf("invalid openapi server_url: %w", err)
	}
	return nil
}

package storage

import (
	"errors"
	"os"
	"strconv"
)

// Config holds Azure Blob Storage connection parameters. Either
// ConnectionString or ServiceURL must be set; a ServiceURL alone
// authenticates with the default Azure credential chain.
type Config struct {
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	ServiceURL       string `toml:"service_url"`
	MaxListSize      int32  `toml:"max_list_size"`
}

// Env names the environment variables that override Config.
type Env struct {
	ContainerName    string
	ConnectionString string
	ServiceURL       string
	MaxListSize      string
}

// Finalize applies defaults, environment overrides and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites fields that overlay sets.
func (c *Config) Merge(overlay *Config) {
	src := overlay.strings()
	for name, dst := range c.strings() {
		if v := *src[name]; v != "" {
			*dst = v
		}
	}
	if overlay.MaxListSize != 0 {
		c.MaxListSize = overlay.MaxListSize
	}
}

func (c *Config) strings() map[string]*string {
	return map[string]*string{
		"container_name":    &c.ContainerName,
		"connection_string": &c.ConnectionString,
		"service_url":       &c.ServiceURL,
	}
}

func (c *Config) loadDefaults() {
	if c.ContainerName == "" {
		c.ContainerName = "clinical-documents"
	}
	if c.MaxListSize == 0 {
		c.MaxListSize = 50
	}
	c.MaxListSize = min(c.MaxListSize, MaxListCap)
}

func (c *Config) loadEnv(env *Env) {
	names := map[string]string{
		"container_name":    env.ContainerName,
		"connection_string": env.ConnectionString,
		"service_url":       env.ServiceURL,
	}
	for name, dst := range c.strings() {
		if names[name] == "" {
			continue
		}
		if v := os.Getenv(names[name]); v != "" {
			*dst = v
		}
	}

	if env.MaxListSize == "" {
		return
	}
	if n, err := strconv.Atoi(os.Getenv(env.MaxListSize)); err == nil && n > 0 {
		c.MaxListSize = int32(min(n, int(MaxListCap)))
	}
}

func (c *Config) validate() error {
	if c.ContainerName == "" {
		return errors.New("container_name required")
	}
	if c.ConnectionString == "" && c.ServiceURL == "" {
		return errors.New("connection_string or service_url required")
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/JaimeStill/medbrief/pkg/formatting"
	"github.com/JaimeStill/medbrief/pkg/middleware"
	"github.com/JaimeStill/medbrief/pkg/openapi"
	"github.com/JaimeStill/medbrief/pkg/pagination"
)

const (
	EnvAPIBasePath      = "MEDBRIEF_API_BASE_PATH"
	EnvAPIMaxUploadSize = "MEDBRIEF_API_MAX_UPLOAD_SIZE"
	EnvAPIMaxFiles      = "MEDBRIEF_API_MAX_FILES"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "MEDBRIEF_CORS_ENABLED",
	Origins:          "MEDBRIEF_CORS_ORIGINS",
	AllowedMethods:   "MEDBRIEF_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "MEDBRIEF_CORS_ALLOWED_HEADERS",
	ExposedHeaders:   "MEDBRIEF_CORS_EXPOSED_HEADERS",
	AllowCredentials: "MEDBRIEF_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "MEDBRIEF_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "MEDBRIEF_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "MEDBRIEF_PAGINATION_MAX_PAGE_SIZE",
}

var authEnv = &middleware.AuthEnv{
	Enabled:   "MEDBRIEF_AUTH_ENABLED",
	IssuerURL: "MEDBRIEF_AUTH_ISSUER_URL",
	ClientID:  "MEDBRIEF_AUTH_CLIENT_ID",
}

var openapiEnv = &openapi.ConfigEnv{
	Title:       "MEDBRIEF_OPENAPI_TITLE",
	Description: "MEDBRIEF_OPENAPI_DESCRIPTION",
	ServerURL:   "MEDBRIEF_OPENAPI_SERVER_URL",
}

// APIConfig holds API routing, upload limits, CORS, pagination, auth and
// OpenAPI settings.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	MaxFiles      int                   `toml:"max_files"`
	CORS          middleware.CORSConfig `toml:"cors"`
	Pagination    pagination.Config     `toml:"pagination"`
	Auth          middleware.AuthConfig `toml:"auth"`
	OpenAPI       openapi.Config        `toml:"openapi"`
}

// MaxUploadSizeBytes returns MaxUploadSize parsed as a byte count.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, _ := formatting.ParseBytes(c.MaxUploadSize)
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.OpenAPI.Finalize(openapiEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}
	if overlay.MaxFiles != 0 {
		c.MaxFiles = overlay.MaxFiles
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
	c.Auth.Merge(&overlay.Auth)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "50MB"
	}
	if c.MaxFiles == 0 {
		c.MaxFiles = 5
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvAPIMaxUploadSize); v != "" {
		c.MaxUploadSize = v
	}
	if v := os.Getenv(EnvAPIMaxFiles); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxFiles = n
		}
	}
}

func (c *APIConfig) validate() error {
	if size, err := formatting.ParseBytes(c.MaxUploadSize); err != nil || size <= 0 {
		return fmt.Errorf("invalid max_upload_size %q", c.MaxUploadSize)
	}
	if c.MaxFiles < 1 {
		return fmt.Errorf("max_files must be positive, got %d", c.MaxFiles)
	}
	return nil
}

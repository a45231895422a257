// Package gemini wraps the Google GenAI SDK for the three calls the
// summarizer needs: file upload, file status polling, and generateContent
// with retry on model overload.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"google.golang.org/genai"
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Client issues Gemini API requests with a single API key.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
	sleep  SleepFunc

	once   sync.Once
	sdk    *genai.Client
	sdkErr error
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client handed to the SDK.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithSleep replaces the wait used between polls and retries.
func WithSleep(fn SleepFunc) Option {
	return func(c *Client) {
		c.sleep = fn
	}
}

// New creates a Client from a finalized Config. The SDK client is built on
// first use so an unconfigured Client can still be constructed.
func New(cfg Config, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.RequestTimeoutDuration()},
		logger: logger.With("system", "gemini"),
		sleep:  sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

// Config returns the client configuration.
func (c *Client) Config() Config {
	return c.cfg
}

func (c *Client) client(ctx context.Context) (*genai.Client, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	c.once.Do(func() {
		c.sdk, c.sdkErr = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:     c.cfg.APIKey,
			Backend:    genai.BackendGeminiAPI,
			HTTPClient: c.http,
			HTTPOptions: genai.HTTPOptions{
				BaseURL:    c.cfg.BaseURL,
				APIVersion: apiVersion,
			},
		})
		if c.sdkErr != nil {
			c.sdkErr = fmt.Errorf("create genai client: %w", c.sdkErr)
		}
	})
	return c.sdk, c.sdkErr
}

const apiVersion = "v1beta"

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

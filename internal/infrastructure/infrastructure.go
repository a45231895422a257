// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, database, storage, AI providers)
// that domain systems require.
package infrastructure

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/JaimeStill/medbrief/internal/config"
	"github.com/JaimeStill/medbrief/pkg/database"
	"github.com/JaimeStill/medbrief/pkg/gemini"
	"github.com/JaimeStill/medbrief/pkg/lifecycle"
	"github.com/JaimeStill/medbrief/pkg/speech"
	"github.com/JaimeStill/medbrief/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Gemini    *gemini.Client
	Speech    *speech.Client
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
// Missing provider keys are logged, not returned: the affected endpoints
// report them per request.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := newLogger(os.Stderr, cfg.Logging)

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	gc := gemini.New(cfg.Gemini, logger)
	if !gc.Configured() {
		logger.Warn("gemini api key not configured; summaries, chat and letters are disabled")
	}

	sc := speech.New(cfg.Speech, nil, logger)
	if !sc.Configured() {
		logger.Warn("elevenlabs api key not configured; summary generation is disabled")
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Storage:   store,
		Gemini:    gc,
		Speech:    sc,
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	return nil
}

func newLogger(w io.Writer, cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

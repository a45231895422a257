// Package database opens the PostgreSQL pool (pgx stdlib driver) and ties
// it to the lifecycle coordinator.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/JaimeStill/medbrief/pkg/lifecycle"
)

const (
	startupAttempts = 5
	startupBackoff  = 2 * time.Second
)

// System owns the pool.
type System interface {
	Connection() *sql.DB
	// Ping reports ErrNotReady when the server cannot be reached within the
	// configured connection timeout.
	Ping(ctx context.Context) error
	Start(lc *lifecycle.Coordinator) error
}

type database struct {
	conn        *sql.DB
	logger      *slog.Logger
	connTimeout time.Duration
}

// New configures a pool for cfg. sql.Open does not dial, so New succeeds
// without a reachable server.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	db, err := sql.Open("pgx", cfg.Dsn())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	return &database{
		conn:        db,
		logger:      logger.With("system", "database"),
		connTimeout: cfg.ConnTimeoutDuration(),
	}, nil
}

func (d *database) Connection() *sql.DB {
	return d.conn
}

func (d *database) Ping(ctx context.Context) error {
	if d.connTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.connTimeout)
		defer cancel()
	}

	if err := d.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrNotReady, err)
	}
	return nil
}

// Start waits for the server during startup, retrying while it comes up,
// and closes the pool once shutdown begins.
func (d *database) Start(lc *lifecycle.Coordinator) error {
	lc.OnStartup(func() {
		if err := d.awaitServer(lc.Context()); err != nil {
			d.logger.Error("database unreachable at startup", "attempts", startupAttempts, "error", err)
			return
		}
		d.logger.Info("database connection established")
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()

		stats := d.conn.Stats()
		if err := d.conn.Close(); err != nil {
			d.logger.Error("database close failed", "error", err)
			return
		}
		d.logger.Info("database connection closed", "open", stats.OpenConnections, "wait_count", stats.WaitCount)
	})

	return nil
}

func (d *database) awaitServer(ctx context.Context) error {
	var err error
	for attempt := 1; attempt <= startupAttempts; attempt++ {
		if err = d.Ping(ctx); err == nil {
			return nil
		}
		if attempt == startupAttempts {
			break
		}

		d.logger.Warn("database not ready, retrying", "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(startupBackoff):
		}
	}
	return err
}

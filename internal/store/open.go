package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"trading-journal/internal/config"
	apperrors "trading-journal/internal/errors"
	"trading-journal/pkg/utils"
)

// Open returns the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite, "":
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		logger.Debug().Str("driver", config.DriverSQLite).Str("path", cfg.SQLitePath).Msg("Opening database")
		s, err := NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil

	case config.DriverPostgres:
		retry := utils.DefaultRetryConfig()
		retry.MaxAttempts = cfg.ConnectAttempts
		retry.InitialDelay = 500 * time.Millisecond
		retry.OnRetry = func(attempt int, err error) {
			logger.Warn().Err(err).Int("attempt", attempt).Msg("Database not ready, retrying")
		}

		logger.Debug().Str("driver", config.DriverPostgres).Msg("Opening database")
		s, err := utils.RetryWithResult(ctx, retry, func() (*PostgresStore, error) {
			return NewPostgresStore(ctx, cfg.PostgresDSN)
		})
		if err != nil {
			return nil, err
		}
		return s, nil

	default:
		return nil, apperrors.Wrapf(apperrors.ErrUnsupportedStore, "driver %q", cfg.Driver)
	}
}

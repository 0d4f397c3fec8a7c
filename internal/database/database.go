package database

import (
	"context"
	"fmt"
	"time"

	"candle-labels/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// PoolSettings tunes the connection pool.
type PoolSettings struct {
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

// DefaultPoolSettings returns settings suitable for a small single-node deployment.
func DefaultPoolSettings() PoolSettings {
	return PoolSettings{
		MaxConns:          10,
		MinConns:          2,
		MaxConnLifetime:   1 * time.Hour,
		MaxConnIdleTime:   30 * time.Minute,
		HealthCheckPeriod: 1 * time.Minute,
	}
}

// SettingsFromConfig derives pool settings from the application configuration.
func SettingsFromConfig(cfg config.DatabaseConfig) PoolSettings {
	s := DefaultPoolSettings()
	s.MaxConns = int32(cfg.MaxConnections)
	s.MinConns = int32(cfg.MinConnections)
	s.MaxConnLifetime = time.Duration(cfg.MaxConnLifetime) * time.Second
	return s
}

// NewPool creates a PostgreSQL connection pool from the application configuration.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*pgxpool.Pool, error) {
	logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Int("max_connections", cfg.MaxConnections).
		Int("min_connections", cfg.MinConnections).
		Msg("creating database connection pool")

	return Connect(ctx, cfg.ConnectionString(), SettingsFromConfig(cfg), logger)
}

// Connect creates a pool for connString and verifies connectivity.
func Connect(ctx context.Context, connString string, settings PoolSettings, logger zerolog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	poolConfig.MaxConns = settings.MaxConns
	poolConfig.MinConns = settings.MinConns
	poolConfig.MaxConnLifetime = settings.MaxConnLifetime
	poolConfig.MaxConnIdleTime = settings.MaxConnIdleTime
	poolConfig.HealthCheckPeriod = settings.HealthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().Msg("database connection pool created successfully")

	return pool, nil
}

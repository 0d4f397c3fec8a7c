package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Schema is the catalogue schema. Statements are idempotent.
const Schema = `
	CREATE SEQUENCE IF NOT EXISTS candle_sequence_seq;

	CREATE TABLE IF NOT EXISTS categories (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS candles (
		id BIGSERIAL PRIMARY KEY,
		sequence_number BIGINT NOT NULL DEFAULT nextval('candle_sequence_seq'),
		category_id BIGINT REFERENCES categories(id) ON DELETE SET NULL,
		name VARCHAR(200) NOT NULL,
		tagline VARCHAR(200) NOT NULL DEFAULT '',
		description TEXT NOT NULL,
		practice TEXT NOT NULL,
		ritual_text TEXT NOT NULL DEFAULT '',
		color VARCHAR(100) NOT NULL DEFAULT '',
		scent VARCHAR(200) NOT NULL DEFAULT '',
		brand_name VARCHAR(100) NOT NULL DEFAULT 'АРТ-СВЕЧИ',
		website VARCHAR(200) NOT NULL DEFAULT 'art-svechi.ligardi.ru',
		logo_image VARCHAR(500) NOT NULL DEFAULT '',
		qr_image VARCHAR(500) NOT NULL DEFAULT '',
		quantity INTEGER NOT NULL DEFAULT 1 CHECK (quantity BETWEEN 1 AND 100),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_candles_category_id ON candles(category_id);
	CREATE INDEX IF NOT EXISTS idx_candles_sequence_number ON candles(sequence_number);

	CREATE TABLE IF NOT EXISTS label_sets (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(200) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS label_set_candles (
		label_set_id BIGINT NOT NULL REFERENCES label_sets(id) ON DELETE CASCADE,
		candle_id BIGINT NOT NULL REFERENCES candles(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		PRIMARY KEY (label_set_id, position)
	);
`

// Migrate applies the schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		logger.Error().Err(err).Msg("failed to apply schema")
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	logger.Info().Msg("database schema is up to date")
	return nil
}

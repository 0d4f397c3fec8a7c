package repository

import (
	"context"
	"errors"
	"fmt"

	"candle-labels/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// labelSetRepository implements the LabelSetRepository interface using PostgreSQL.
type labelSetRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewLabelSetRepository creates a new PostgreSQL-backed label set repository.
func NewLabelSetRepository(pool *pgxpool.Pool, logger zerolog.Logger) LabelSetRepository {
	return &labelSetRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "label_set").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *labelSetRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateLabelSet inserts a label set within the provided transaction.
func (r *labelSetRepository) CreateLabelSet(ctx context.Context, tx pgx.Tx, set *model.LabelSet) error {
	query := `
		INSERT INTO label_sets (name, description)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	if err := tx.QueryRow(ctx, query, set.Name, set.Description).Scan(&set.ID, &set.CreatedAt); err != nil {
		r.logger.Error().
			Err(err).
			Str("name", set.Name).
			Msg("failed to create label set")
		return fmt.Errorf("failed to create label set: %w", err)
	}

	r.logger.Debug().
		Int64("label_set_id", set.ID).
		Msg("label set created successfully")

	return nil
}

// CreateLabelSetCandles inserts the ordered candle links within the provided transaction.
func (r *labelSetRepository) CreateLabelSetCandles(ctx context.Context, tx pgx.Tx, links []model.LabelSetCandle) error {
	if len(links) == 0 {
		return nil
	}

	query := `
		INSERT INTO label_set_candles (label_set_id, candle_id, position)
		VALUES ($1, $2, $3)
	`

	batch := &pgx.Batch{}
	for _, link := range links {
		batch.Queue(query, link.LabelSetID, link.CandleID, link.Position)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(links); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Int64("label_set_id", links[i].LabelSetID).
				Int64("candle_id", links[i].CandleID).
				Msg("failed to link candle to label set")
			return fmt.Errorf("failed to link candle to label set: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(links)).
		Msg("label set candles linked successfully")

	return nil
}

// GetAll retrieves all label sets, newest first.
func (r *labelSetRepository) GetAll(ctx context.Context) ([]model.LabelSet, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, description, created_at
		FROM label_sets
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query label sets")
		return nil, fmt.Errorf("failed to query label sets: %w", err)
	}
	defer rows.Close()

	sets := []model.LabelSet{}
	for rows.Next() {
		var s model.LabelSet
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.CreatedAt); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan label set row")
			return nil, fmt.Errorf("failed to scan label set: %w", err)
		}
		sets = append(sets, s)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating label set rows")
		return nil, fmt.Errorf("error iterating label sets: %w", err)
	}

	return sets, nil
}

// GetByID retrieves a label set and its candle IDs in position order.
func (r *labelSetRepository) GetByID(ctx context.Context, id int64) (*model.LabelSet, []int64, error) {
	var set model.LabelSet
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, description, created_at
		FROM label_sets
		WHERE id = $1
	`, id).Scan(&set.ID, &set.Name, &set.Description, &set.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("label_set_id", id).Msg("label set not found")
			return nil, nil, nil
		}
		r.logger.Error().Err(err).Int64("label_set_id", id).Msg("failed to query label set")
		return nil, nil, fmt.Errorf("failed to query label set: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT candle_id
		FROM label_set_candles
		WHERE label_set_id = $1
		ORDER BY position
	`, id)
	if err != nil {
		r.logger.Error().
			Err(err).
			Int64("label_set_id", id).
			Msg("failed to query label set candles")
		return nil, nil, fmt.Errorf("failed to query label set candles: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var candleID int64
		if err := rows.Scan(&candleID); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan label set candle row")
			return nil, nil, fmt.Errorf("failed to scan label set candle: %w", err)
		}
		ids = append(ids, candleID)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating label set candle rows")
		return nil, nil, fmt.Errorf("error iterating label set candles: %w", err)
	}

	return &set, ids, nil
}

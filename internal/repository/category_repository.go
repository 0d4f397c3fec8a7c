package repository

import (
	"context"
	"errors"
	"fmt"

	"candle-labels/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// pgUniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// categoryRepository implements the CategoryRepository interface using PostgreSQL.
type categoryRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCategoryRepository creates a new PostgreSQL-backed category repository.
func NewCategoryRepository(pool *pgxpool.Pool, logger zerolog.Logger) CategoryRepository {
	return &categoryRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "category").Logger(),
	}
}

// GetAll retrieves all categories ordered by name.
func (r *categoryRepository) GetAll(ctx context.Context) ([]model.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at FROM categories ORDER BY name`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query categories")
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan category row")
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating category rows")
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// GetByID retrieves a category by its ID.
func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	var c model.Category
	err := r.pool.QueryRow(ctx, `SELECT id, name, created_at FROM categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("category_id", id).Msg("failed to query category")
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	return &c, nil
}

// Create inserts a category.
func (r *categoryRepository) Create(ctx context.Context, name string) (*model.Category, error) {
	var c model.Category
	err := r.pool.QueryRow(ctx,
		`INSERT INTO categories (name) VALUES ($1) RETURNING id, name, created_at`, name,
	).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			r.logger.Debug().Str("name", name).Msg("category already exists")
			return nil, model.ErrCategoryExists
		}
		r.logger.Error().Err(err).Str("name", name).Msg("failed to create category")
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return &c, nil
}

// GetOrCreate returns the category with the given name, creating it if needed.
// The no-op update makes RETURNING yield the existing row on conflict.
func (r *categoryRepository) GetOrCreate(ctx context.Context, name string) (*model.Category, error) {
	query := `
		INSERT INTO categories (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, created_at
	`

	var c model.Category
	if err := r.pool.QueryRow(ctx, query, name).Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
		r.logger.Error().Err(err).Str("name", name).Msg("failed to get or create category")
		return nil, fmt.Errorf("failed to get or create category: %w", err)
	}

	return &c, nil
}

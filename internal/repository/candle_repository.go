package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"candle-labels/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// candleColumns selects a candle joined with its optional category.
const candleColumns = `
	c.id, c.sequence_number, c.category_id, c.name, c.tagline, c.description, c.practice,
	c.ritual_text, c.color, c.scent, c.brand_name, c.website, c.logo_image, c.qr_image,
	c.quantity, c.is_active, c.created_at, c.updated_at,
	cat.id, cat.name, cat.created_at`

// sortColumns whitelists ORDER BY targets.
var sortColumns = map[string]string{
	model.SortBySequence:  "c.sequence_number",
	model.SortByName:      "c.name",
	model.SortByCreatedAt: "c.created_at",
	model.SortByUpdatedAt: "c.updated_at",
}

// candleRepository implements the CandleRepository interface using PostgreSQL.
type candleRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCandleRepository creates a new PostgreSQL-backed candle repository.
func NewCandleRepository(pool *pgxpool.Pool, logger zerolog.Logger) CandleRepository {
	return &candleRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "candle").Logger(),
	}
}

// List retrieves candles matching the filter, sorted and paginated.
func (r *candleRepository) List(ctx context.Context, filter model.CandleFilter) ([]model.Candle, error) {
	var (
		where []string
		args  []any
	)

	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		where = append(where, fmt.Sprintf("c.category_id = $%d", len(args)))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		where = append(where, fmt.Sprintf("c.is_active = $%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		where = append(where, fmt.Sprintf("(c.name ILIKE $%d OR c.tagline ILIKE $%d)", len(args), len(args)))
	}

	query := "SELECT " + candleColumns + `
		FROM candles c
		LEFT JOIN categories cat ON cat.id = c.category_id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY " + orderBy(filter.SortBy, filter.SortOrder)

	args = append(args, filter.Limit, filter.Skip)
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", filter.Limit).
			Int("skip", filter.Skip).
			Msg("failed to query candles")
		return nil, fmt.Errorf("failed to query candles: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// GetByID retrieves a single candle by its ID.
func (r *candleRepository) GetByID(ctx context.Context, id int64) (*model.Candle, error) {
	query := "SELECT " + candleColumns + `
		FROM candles c
		LEFT JOIN categories cat ON cat.id = c.category_id
		WHERE c.id = $1`

	c, err := scanCandle(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("candle_id", id).Msg("candle not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("candle_id", id).Msg("failed to query candle")
		return nil, fmt.Errorf("failed to query candle: %w", err)
	}

	return c, nil
}

// GetByIDs retrieves the candles that exist among ids.
func (r *candleRepository) GetByIDs(ctx context.Context, ids []int64) ([]model.Candle, error) {
	if len(ids) == 0 {
		return []model.Candle{}, nil
	}

	query := "SELECT " + candleColumns + `
		FROM candles c
		LEFT JOIN categories cat ON cat.id = c.category_id
		WHERE c.id = ANY($1)
		ORDER BY c.sequence_number`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query candles by IDs")
		return nil, fmt.Errorf("failed to query candles by IDs: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// Create inserts a candle.
func (r *candleRepository) Create(ctx context.Context, in *model.CandleCreate) (*model.Candle, error) {
	query := `
		WITH c AS (
			INSERT INTO candles (category_id, name, tagline, description, practice, ritual_text,
				color, scent, brand_name, website, logo_image, qr_image, quantity, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			RETURNING *
		)
		SELECT ` + candleColumns + `
		FROM c
		LEFT JOIN categories cat ON cat.id = c.category_id`

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	c, err := scanCandle(r.pool.QueryRow(ctx, query,
		in.CategoryID, in.Name, in.Tagline, in.Description, in.Practice, in.RitualText,
		in.Color, in.Scent, in.BrandName, in.Website, in.LogoImage, in.QRImage,
		model.ClampQuantity(in.Quantity), active,
	))
	if err != nil {
		r.logger.Error().Err(err).Str("name", in.Name).Msg("failed to create candle")
		return nil, fmt.Errorf("failed to create candle: %w", err)
	}

	r.logger.Debug().
		Int64("candle_id", c.ID).
		Int64("sequence_number", c.SequenceNumber).
		Msg("candle created successfully")

	return c, nil
}

// Update applies a partial update; NULL parameters keep the stored value.
func (r *candleRepository) Update(ctx context.Context, id int64, u *model.CandleUpdate) (*model.Candle, error) {
	query := `
		WITH c AS (
			UPDATE candles SET
				category_id = COALESCE($2, category_id),
				name = COALESCE($3, name),
				tagline = COALESCE($4, tagline),
				description = COALESCE($5, description),
				practice = COALESCE($6, practice),
				ritual_text = COALESCE($7, ritual_text),
				color = COALESCE($8, color),
				scent = COALESCE($9, scent),
				brand_name = COALESCE($10, brand_name),
				website = COALESCE($11, website),
				logo_image = COALESCE($12, logo_image),
				qr_image = COALESCE($13, qr_image),
				quantity = COALESCE($14, quantity),
				is_active = COALESCE($15, is_active),
				updated_at = $16
			WHERE id = $1
			RETURNING *
		)
		SELECT ` + candleColumns + `
		FROM c
		LEFT JOIN categories cat ON cat.id = c.category_id`

	var quantity *int
	if u.Quantity != nil {
		q := model.ClampQuantity(*u.Quantity)
		quantity = &q
	}

	c, err := scanCandle(r.pool.QueryRow(ctx, query,
		id, u.CategoryID, u.Name, u.Tagline, u.Description, u.Practice, u.RitualText,
		u.Color, u.Scent, u.BrandName, u.Website, u.LogoImage, u.QRImage,
		quantity, u.IsActive, time.Now(),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("candle_id", id).Msg("candle not found for update")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("candle_id", id).Msg("failed to update candle")
		return nil, fmt.Errorf("failed to update candle: %w", err)
	}

	return c, nil
}

// AdjustQuantity adds delta to the stored quantity in a single statement.
func (r *candleRepository) AdjustQuantity(ctx context.Context, id int64, delta int) (*model.Candle, error) {
	query := `
		WITH c AS (
			UPDATE candles SET
				quantity = LEAST($3, GREATEST($2, quantity + $4)),
				updated_at = NOW()
			WHERE id = $1
			RETURNING *
		)
		SELECT ` + candleColumns + `
		FROM c
		LEFT JOIN categories cat ON cat.id = c.category_id`

	c, err := scanCandle(r.pool.QueryRow(ctx, query, id, model.MinQuantity, model.MaxQuantity, delta))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).
			Int64("candle_id", id).
			Int("delta", delta).
			Msg("failed to adjust candle quantity")
		return nil, fmt.Errorf("failed to adjust quantity: %w", err)
	}

	return c, nil
}

// Delete removes a candle.
func (r *candleRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM candles WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Int64("candle_id", id).Msg("failed to delete candle")
		return false, fmt.Errorf("failed to delete candle: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *candleRepository) collect(rows pgx.Rows) ([]model.Candle, error) {
	candles := []model.Candle{}
	for rows.Next() {
		c, err := scanCandle(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan candle row")
			return nil, fmt.Errorf("failed to scan candle: %w", err)
		}
		candles = append(candles, *c)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating candle rows")
		return nil, fmt.Errorf("error iterating candles: %w", err)
	}

	return candles, nil
}

func scanCandle(row pgx.Row) (*model.Candle, error) {
	var (
		c          model.Candle
		catID      *int64
		catName    *string
		catCreated *time.Time
	)

	err := row.Scan(
		&c.ID, &c.SequenceNumber, &c.CategoryID, &c.Name, &c.Tagline, &c.Description, &c.Practice,
		&c.RitualText, &c.Color, &c.Scent, &c.BrandName, &c.Website, &c.LogoImage, &c.QRImage,
		&c.Quantity, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
		&catID, &catName, &catCreated,
	)
	if err != nil {
		return nil, err
	}

	if catID != nil {
		c.Category = &model.Category{ID: *catID}
		if catName != nil {
			c.Category.Name = *catName
		}
		if catCreated != nil {
			c.Category.CreatedAt = *catCreated
		}
	}

	return &c, nil
}

// orderBy builds a whitelisted ORDER BY clause with id as a tiebreaker.
func orderBy(sortBy, sortOrder string) string {
	col, ok := sortColumns[sortBy]
	if !ok {
		col = sortColumns[model.SortBySequence]
	}

	dir := "ASC"
	if strings.EqualFold(sortOrder, model.SortDesc) {
		dir = "DESC"
	}

	return fmt.Sprintf("%s %s, c.id %s", col, dir, dir)
}

package repository

import (
	"context"

	"candle-labels/internal/model"

	"github.com/jackc/pgx/v5"
)

// CandleRepository defines the interface for candle data access operations.
type CandleRepository interface {
	// List retrieves candles matching the filter, sorted and paginated.
	List(ctx context.Context, filter model.CandleFilter) ([]model.Candle, error)

	// GetByID retrieves a single candle by its ID. Returns nil, nil when absent.
	GetByID(ctx context.Context, id int64) (*model.Candle, error)

	// GetByIDs retrieves the candles that exist among ids, in no particular order.
	GetByIDs(ctx context.Context, ids []int64) ([]model.Candle, error)

	// Create inserts a candle. The store assigns id, sequence number and timestamps.
	Create(ctx context.Context, c *model.CandleCreate) (*model.Candle, error)

	// Update applies a partial update. Returns nil, nil when absent.
	Update(ctx context.Context, id int64, u *model.CandleUpdate) (*model.Candle, error)

	// AdjustQuantity adds delta to the stored quantity, clamped to the allowed range.
	// Returns nil, nil when absent.
	AdjustQuantity(ctx context.Context, id int64, delta int) (*model.Candle, error)

	// Delete removes a candle. Reports whether a row was deleted.
	Delete(ctx context.Context, id int64) (bool, error)
}

// CategoryRepository defines the interface for category data access operations.
type CategoryRepository interface {
	// GetAll retrieves all categories ordered by name.
	GetAll(ctx context.Context) ([]model.Category, error)

	// GetByID retrieves a category by its ID. Returns nil, nil when absent.
	GetByID(ctx context.Context, id int64) (*model.Category, error)

	// Create inserts a category. Returns model.ErrCategoryExists on a duplicate name.
	Create(ctx context.Context, name string) (*model.Category, error)

	// GetOrCreate returns the category with the given name, creating it if needed.
	GetOrCreate(ctx context.Context, name string) (*model.Category, error)
}

// LabelSetRepository defines the interface for saved label selections.
type LabelSetRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateLabelSet inserts a label set within the provided transaction and fills its ID.
	CreateLabelSet(ctx context.Context, tx pgx.Tx, set *model.LabelSet) error

	// CreateLabelSetCandles inserts the ordered candle links within the provided transaction.
	CreateLabelSetCandles(ctx context.Context, tx pgx.Tx, links []model.LabelSetCandle) error

	// GetAll retrieves all label sets, newest first.
	GetAll(ctx context.Context) ([]model.LabelSet, error)

	// GetByID retrieves a label set and its candle IDs in position order.
	// Returns nil, nil, nil when absent.
	GetByID(ctx context.Context, id int64) (*model.LabelSet, []int64, error)
}

package service

import (
	"context"
	"io"

	"candle-labels/internal/label"
	"candle-labels/internal/model"
)

// CandleService defines operations for candle management.
type CandleService interface {
	// List retrieves candles matching the filter. Limit defaults to 100 and is capped at 500.
	List(ctx context.Context, filter model.CandleFilter) ([]model.Candle, error)

	// GetByID retrieves a single candle by ID.
	GetByID(ctx context.Context, id int64) (*model.Candle, error)

	// Create validates and stores a new candle.
	Create(ctx context.Context, req *model.CandleCreate) (*model.Candle, error)

	// Update applies a partial update.
	Update(ctx context.Context, id int64, req *model.CandleUpdate) (*model.Candle, error)

	// ChangeQuantity sets or adjusts the print quantity, clamped to [1, 100].
	ChangeQuantity(ctx context.Context, id int64, req *model.QuantityChange) (*model.Candle, error)

	// Delete removes a candle.
	Delete(ctx context.Context, id int64) error
}

// CategoryService defines operations for category management.
type CategoryService interface {
	// GetAll retrieves all categories ordered by name.
	GetAll(ctx context.Context) ([]model.Category, error)

	// Create stores a new category.
	Create(ctx context.Context, req *model.CategoryCreate) (*model.Category, error)
}

// LabelSetService defines operations for saved label selections.
type LabelSetService interface {
	// Create stores a named selection, preserving candle order.
	Create(ctx context.Context, req *model.LabelSetRequest) (*model.LabelSetResponse, error)

	// GetAll retrieves all label sets, newest first.
	GetAll(ctx context.Context) ([]model.LabelSet, error)

	// GetByID retrieves a label set with its candles in position order.
	GetByID(ctx context.Context, id int64) (*model.LabelSetResponse, error)
}

// LabelService renders printable label sheets.
type LabelService interface {
	// Generate composes and renders the sheet for req.CandleIDs.
	Generate(ctx context.Context, req *label.Request) (*Document, error)

	// GenerateForSet renders a saved label set with the options in req.
	GenerateForSet(ctx context.Context, setID int64, req *label.Request) (*Document, error)
}

// ImportService handles bulk candle import.
type ImportService interface {
	// Import creates a candle per row of a CSV or JSON file. Row failures are
	// collected and do not stop the batch.
	Import(ctx context.Context, filename string, r io.Reader) (*model.ImportResult, error)

	// WriteTemplate writes the CSV import template.
	WriteTemplate(w io.Writer) error
}

// UploadService stores and serves logo and QR images.
type UploadService interface {
	// Upload stores an image of the given kind ("logo" or "qr").
	Upload(ctx context.Context, kind, filename string, r io.Reader) (*model.UploadResult, error)

	// Open returns the stored asset under dir/filename.
	Open(ctx context.Context, dir, filename string) (io.ReadCloser, error)
}

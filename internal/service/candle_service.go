package service

import (
	"context"
	"fmt"

	"candle-labels/internal/model"
	"candle-labels/internal/repository"

	"github.com/rs/zerolog"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// candleService implements CandleService.
type candleService struct {
	candleRepo   repository.CandleRepository
	categoryRepo repository.CategoryRepository
	logger       zerolog.Logger
}

// NewCandleService creates a new candle service.
func NewCandleService(
	candleRepo repository.CandleRepository,
	categoryRepo repository.CategoryRepository,
	logger zerolog.Logger,
) CandleService {
	return &candleService{
		candleRepo:   candleRepo,
		categoryRepo: categoryRepo,
		logger:       logger.With().Str("service", "candle").Logger(),
	}
}

// List retrieves candles matching the filter.
func (s *candleService) List(ctx context.Context, filter model.CandleFilter) ([]model.Candle, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Skip < 0 {
		filter.Skip = 0
	}

	candles, err := s.candleRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).
			Int("limit", filter.Limit).
			Int("skip", filter.Skip).
			Msg("failed to list candles")
		return nil, fmt.Errorf("failed to get candles: %w", err)
	}

	s.logger.Debug().
		Int("count", len(candles)).
		Int("limit", filter.Limit).
		Int("skip", filter.Skip).
		Str("sort_by", filter.SortBy).
		Msg("retrieved candles")

	return candles, nil
}

// GetByID retrieves a single candle by ID.
func (s *candleService) GetByID(ctx context.Context, id int64) (*model.Candle, error) {
	if id <= 0 {
		return nil, model.ErrCandleNotFound
	}

	candle, err := s.candleRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("candle_id", id).Msg("failed to get candle by ID")
		return nil, fmt.Errorf("failed to get candle: %w", err)
	}

	if candle == nil {
		s.logger.Debug().Int64("candle_id", id).Msg("candle not found")
		return nil, model.ErrCandleNotFound
	}

	return candle, nil
}

// Create validates and stores a new candle.
func (s *candleService) Create(ctx context.Context, req *model.CandleCreate) (*model.Candle, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := s.ensureCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	candle, err := s.candleRepo.Create(ctx, req)
	if err != nil {
		s.logger.Error().Err(err).Str("name", req.Name).Msg("failed to create candle")
		return nil, fmt.Errorf("failed to create candle: %w", err)
	}

	s.logger.Info().
		Int64("candle_id", candle.ID).
		Int64("sequence_number", candle.SequenceNumber).
		Msg("candle created")

	return candle, nil
}

// Update applies a partial update.
func (s *candleService) Update(ctx context.Context, id int64, req *model.CandleUpdate) (*model.Candle, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := s.ensureCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	candle, err := s.candleRepo.Update(ctx, id, req)
	if err != nil {
		s.logger.Error().Err(err).Int64("candle_id", id).Msg("failed to update candle")
		return nil, fmt.Errorf("failed to update candle: %w", err)
	}

	if candle == nil {
		return nil, model.ErrCandleNotFound
	}

	s.logger.Info().Int64("candle_id", id).Msg("candle updated")

	return candle, nil
}

// ChangeQuantity sets an absolute quantity or applies a delta.
func (s *candleService) ChangeQuantity(ctx context.Context, id int64, req *model.QuantityChange) (*model.Candle, error) {
	var (
		candle *model.Candle
		err    error
	)

	switch {
	case req.Quantity != nil:
		q := model.ClampQuantity(*req.Quantity)
		candle, err = s.candleRepo.Update(ctx, id, &model.CandleUpdate{Quantity: &q})
	case req.Delta != nil:
		candle, err = s.candleRepo.AdjustQuantity(ctx, id, *req.Delta)
	default:
		return nil, model.NewDomainError(model.ErrCodeInvalidRequest, "quantity or delta is required")
	}

	if err != nil {
		s.logger.Error().Err(err).Int64("candle_id", id).Msg("failed to change candle quantity")
		return nil, fmt.Errorf("failed to change quantity: %w", err)
	}

	if candle == nil {
		return nil, model.ErrCandleNotFound
	}

	s.logger.Debug().
		Int64("candle_id", id).
		Int("quantity", candle.Quantity).
		Msg("candle quantity changed")

	return candle, nil
}

// Delete removes a candle.
func (s *candleService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.candleRepo.Delete(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("candle_id", id).Msg("failed to delete candle")
		return fmt.Errorf("failed to delete candle: %w", err)
	}

	if !deleted {
		return model.ErrCandleNotFound
	}

	s.logger.Info().Int64("candle_id", id).Msg("candle deleted")

	return nil
}

func (s *candleService) ensureCategory(ctx context.Context, id *int64) error {
	if id == nil {
		return nil
	}

	category, err := s.categoryRepo.GetByID(ctx, *id)
	if err != nil {
		s.logger.Error().Err(err).Int64("category_id", *id).Msg("failed to get category")
		return fmt.Errorf("failed to get category: %w", err)
	}

	if category == nil {
		return model.ErrCategoryNotFound
	}

	return nil
}

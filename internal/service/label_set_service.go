package service

import (
	"context"
	"fmt"
	"strings"

	"candle-labels/internal/model"
	"candle-labels/internal/repository"

	"github.com/rs/zerolog"
)

// labelSetService implements LabelSetService.
type labelSetService struct {
	labelSetRepo repository.LabelSetRepository
	candleRepo   repository.CandleRepository
	logger       zerolog.Logger
}

// NewLabelSetService creates a new label set service.
func NewLabelSetService(
	labelSetRepo repository.LabelSetRepository,
	candleRepo repository.CandleRepository,
	logger zerolog.Logger,
) LabelSetService {
	return &labelSetService{
		labelSetRepo: labelSetRepo,
		candleRepo:   candleRepo,
		logger:       logger.With().Str("service", "label_set").Logger(),
	}
}

// Create stores a named selection inside a transaction.
func (s *labelSetService) Create(ctx context.Context, req *model.LabelSetRequest) (*model.LabelSetResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, model.MissingField("name")
	}
	if len(req.CandleIDs) == 0 {
		return nil, model.ErrEmptySelection
	}

	candles, err := s.candleRepo.GetByIDs(ctx, req.CandleIDs)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load candles for label set")
		return nil, fmt.Errorf("failed to create label set: %w", err)
	}
	byID := indexCandles(candles)
	for _, id := range req.CandleIDs {
		if _, ok := byID[id]; !ok {
			s.logger.Warn().Int64("candle_id", id).Msg("label set references unknown candle")
			return nil, model.ErrCandleNotFound
		}
	}

	tx, err := s.labelSetRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create label set: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	set := &model.LabelSet{Name: req.Name, Description: strings.TrimSpace(req.Description)}
	if err = s.labelSetRepo.CreateLabelSet(ctx, tx, set); err != nil {
		s.logger.Error().Err(err).Str("name", set.Name).Msg("failed to create label set")
		return nil, fmt.Errorf("failed to create label set: %w", err)
	}

	links := make([]model.LabelSetCandle, len(req.CandleIDs))
	for i, id := range req.CandleIDs {
		links[i] = model.LabelSetCandle{LabelSetID: set.ID, CandleID: id, Position: i}
	}

	if err = s.labelSetRepo.CreateLabelSetCandles(ctx, tx, links); err != nil {
		s.logger.Error().
			Err(err).
			Int64("label_set_id", set.ID).
			Int("candle_count", len(links)).
			Msg("failed to link candles to label set")
		return nil, fmt.Errorf("failed to create label set: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Int64("label_set_id", set.ID).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create label set: %w", err)
	}

	s.logger.Info().
		Int64("label_set_id", set.ID).
		Int("candle_count", len(links)).
		Msg("label set created")

	return &model.LabelSetResponse{
		LabelSet:  *set,
		CandleIDs: req.CandleIDs,
		Candles:   ordered(req.CandleIDs, byID),
	}, nil
}

// GetAll retrieves all label sets.
func (s *labelSetService) GetAll(ctx context.Context) ([]model.LabelSet, error) {
	sets, err := s.labelSetRepo.GetAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get label sets")
		return nil, fmt.Errorf("failed to get label sets: %w", err)
	}
	return sets, nil
}

// GetByID retrieves a label set with its candles in position order. Deleting a
// candle removes its link, so it drops out of both CandleIDs and Candles.
func (s *labelSetService) GetByID(ctx context.Context, id int64) (*model.LabelSetResponse, error) {
	set, ids, err := s.labelSetRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("label_set_id", id).Msg("failed to get label set")
		return nil, fmt.Errorf("failed to get label set: %w", err)
	}

	if set == nil {
		s.logger.Debug().Int64("label_set_id", id).Msg("label set not found")
		return nil, model.ErrLabelSetNotFound
	}

	candles, err := s.candleRepo.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Error().Err(err).Int64("label_set_id", id).Msg("failed to retrieve candle details")
		return nil, fmt.Errorf("failed to retrieve candle details: %w", err)
	}

	return &model.LabelSetResponse{
		LabelSet:  *set,
		CandleIDs: ids,
		Candles:   ordered(ids, indexCandles(candles)),
	}, nil
}

func indexCandles(candles []model.Candle) map[int64]model.Candle {
	byID := make(map[int64]model.Candle, len(candles))
	for _, c := range candles {
		byID[c.ID] = c
	}
	return byID
}

// ordered returns the candles for ids in that order, skipping missing ones.
func ordered(ids []int64, byID map[int64]model.Candle) []model.Candle {
	out := make([]model.Candle, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"candle-labels/internal/label"
	"candle-labels/internal/model"
	"candle-labels/internal/repository"

	"github.com/rs/zerolog"
)

// Document is a rendered label sheet.
type Document struct {
	HTML     []byte
	Filename string
	Pages    int
	Labels   int
	Skipped  []int64
}

// LabelDefaults are the fallbacks applied to candles without their own images or category.
type LabelDefaults struct {
	Logo          string
	QR            string
	Uncategorized string
}

// labelService implements LabelService.
type labelService struct {
	candleRepo   repository.CandleRepository
	labelSetRepo repository.LabelSetRepository
	inliner      label.ImageInliner
	defaults     LabelDefaults
	now          func() time.Time
	logger       zerolog.Logger
}

// NewLabelService creates a new label service. inliner may be nil.
func NewLabelService(
	candleRepo repository.CandleRepository,
	labelSetRepo repository.LabelSetRepository,
	inliner label.ImageInliner,
	defaults LabelDefaults,
	logger zerolog.Logger,
) LabelService {
	return &labelService{
		candleRepo:   candleRepo,
		labelSetRepo: labelSetRepo,
		inliner:      inliner,
		defaults:     defaults,
		now:          time.Now,
		logger:       logger.With().Str("service", "label").Logger(),
	}
}

// Generate fetches the selected candles, composes the sheet and renders it.
func (s *labelService) Generate(ctx context.Context, req *label.Request) (*Document, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if len(req.CandleIDs) == 0 {
		return nil, label.ErrEmptySelection
	}

	candles, err := s.candleRepo.GetByIDs(ctx, req.CandleIDs)
	if err != nil {
		s.logger.Error().Err(err).Int("count", len(req.CandleIDs)).Msg("failed to load candles for labels")
		return nil, fmt.Errorf("failed to load candles: %w", err)
	}

	sheet, err := label.Compose(req.CandleIDs, indexCandles(candles))
	if err != nil {
		if errors.Is(err, label.ErrEmptySelection) {
			s.logger.Warn().Int("requested", len(req.CandleIDs)).Msg("no printable candles in selection")
		}
		return nil, err
	}

	if len(sheet.Skipped) > 0 {
		s.logger.Warn().Ints64("skipped", sheet.Skipped).Msg("skipped unknown candles")
	}

	var buf bytes.Buffer
	err = label.Render(ctx, &buf, sheet, label.Options{
		PrintType:     req.PrintType,
		DefaultLogo:   s.defaults.Logo,
		DefaultQR:     s.defaults.QR,
		Uncategorized: s.defaults.Uncategorized,
		Inliner:       s.inliner,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to render label sheet")
		return nil, fmt.Errorf("failed to render labels: %w", err)
	}

	s.logger.Info().
		Int("candles", len(req.CandleIDs)-len(sheet.Skipped)).
		Int("labels", len(sheet.Instances)).
		Int("pages", len(sheet.Pages)).
		Str("print_type", req.PrintType).
		Msg("label sheet generated")

	return &Document{
		HTML:     buf.Bytes(),
		Filename: label.Filename(s.now()),
		Pages:    len(sheet.Pages),
		Labels:   len(sheet.Instances),
		Skipped:  sheet.Skipped,
	}, nil
}

// GenerateForSet renders the saved selection in its stored order.
func (s *labelService) GenerateForSet(ctx context.Context, setID int64, req *label.Request) (*Document, error) {
	set, ids, err := s.labelSetRepo.GetByID(ctx, setID)
	if err != nil {
		s.logger.Error().Err(err).Int64("label_set_id", setID).Msg("failed to get label set")
		return nil, fmt.Errorf("failed to get label set: %w", err)
	}
	if set == nil {
		return nil, model.ErrLabelSetNotFound
	}

	req.CandleIDs = ids
	return s.Generate(ctx, req)
}

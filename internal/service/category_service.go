package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"candle-labels/internal/model"
	"candle-labels/internal/repository"

	"github.com/rs/zerolog"
)

// categoryService implements CategoryService.
type categoryService struct {
	categoryRepo repository.CategoryRepository
	logger       zerolog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(categoryRepo repository.CategoryRepository, logger zerolog.Logger) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		logger:       logger.With().Str("service", "category").Logger(),
	}
}

// GetAll retrieves all categories.
func (s *categoryService) GetAll(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categoryRepo.GetAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get categories")
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

// Create stores a new category.
func (s *categoryService) Create(ctx context.Context, req *model.CategoryCreate) (*model.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, model.MissingField("name")
	}

	category, err := s.categoryRepo.Create(ctx, name)
	if err != nil {
		if errors.Is(err, model.ErrCategoryExists) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("name", name).Msg("failed to create category")
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.Info().Int64("category_id", category.ID).Str("name", name).Msg("category created")

	return category, nil
}

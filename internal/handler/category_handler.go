package handler

import (
	"net/http"

	"candle-labels/internal/model"
	"candle-labels/internal/service"

	"github.com/rs/zerolog"
)

// CategoryHandler handles category-related HTTP requests.
type CategoryHandler struct {
	service service.CategoryService
	logger  zerolog.Logger
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(service service.CategoryService, logger zerolog.Logger) *CategoryHandler {
	return &CategoryHandler{
		service: service,
		logger:  logger.With().Str("handler", "category").Logger(),
	}
}

// GetAll handles GET /api/categories.
func (h *CategoryHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.GetAll(r.Context())
	if err != nil {
		handleError(w, r, err, "failed to retrieve categories", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, categories)
}

// Create handles POST /api/categories.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CategoryCreate
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	category, err := h.service.Create(r.Context(), &req)
	if err != nil {
		handleError(w, r, err, "failed to create category", h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, category)
}

package handler

import (
	"net/http"
	"strings"

	"candle-labels/internal/model"
	"candle-labels/internal/service"

	"github.com/rs/zerolog"
	"github.com/spf13/cast"
)

// CandleHandler handles candle-related HTTP requests.
type CandleHandler struct {
	service service.CandleService
	logger  zerolog.Logger
}

// NewCandleHandler creates a new candle handler.
func NewCandleHandler(service service.CandleService, logger zerolog.Logger) *CandleHandler {
	return &CandleHandler{
		service: service,
		logger:  logger.With().Str("handler", "candle").Logger(),
	}
}

// List handles GET /api/candles.
func (h *CandleHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseCandleFilter(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidRequest, err.Error(), h.logger)
		return
	}

	candles, err := h.service.List(r.Context(), filter)
	if err != nil {
		handleError(w, r, err, "failed to retrieve candles", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, candles)
}

// parseCandleFilter reads list parameters. is_active defaults to true; "all" disables the filter.
func parseCandleFilter(r *http.Request) (model.CandleFilter, error) {
	q := r.URL.Query()
	active := true
	filter := model.CandleFilter{
		IsActive:  &active,
		Search:    strings.TrimSpace(q.Get("search")),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	}

	var err error
	if v := q.Get("skip"); v != "" {
		if filter.Skip, err = cast.ToIntE(v); err != nil {
			return filter, errInvalidParam("skip")
		}
	}
	if v := q.Get("limit"); v != "" {
		if filter.Limit, err = cast.ToIntE(v); err != nil {
			return filter, errInvalidParam("limit")
		}
	}
	if v := q.Get("category_id"); v != "" {
		id, err := cast.ToInt64E(v)
		if err != nil {
			return filter, errInvalidParam("category_id")
		}
		filter.CategoryID = &id
	}
	switch v := strings.ToLower(q.Get("is_active")); v {
	case "":
	case "all":
		filter.IsActive = nil
	default:
		b, err := cast.ToBoolE(v)
		if err != nil {
			return filter, errInvalidParam("is_active")
		}
		filter.IsActive = &b
	}

	return filter, nil
}

func errInvalidParam(name string) error {
	return model.NewDomainError(model.ErrCodeInvalidRequest, "invalid "+name+" parameter")
}

// GetByID handles GET /api/candles/{id}.
func (h *CandleHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	candle, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		handleError(w, r, err, "failed to retrieve candle", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, candle)
}

// Create handles POST /api/candles.
func (h *CandleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CandleCreate
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	candle, err := h.service.Create(r.Context(), &req)
	if err != nil {
		handleError(w, r, err, "failed to create candle", h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, candle)
}

// Update handles PUT /api/candles/{id}.
func (h *CandleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.CandleUpdate
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	candle, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		handleError(w, r, err, "failed to update candle", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, candle)
}

// ChangeQuantity handles PATCH /api/candles/{id}/quantity.
func (h *CandleHandler) ChangeQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.QuantityChange
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	candle, err := h.service.ChangeQuantity(r.Context(), id, &req)
	if err != nil {
		handleError(w, r, err, "failed to update quantity", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, candle)
}

// Delete handles DELETE /api/candles/{id}.
func (h *CandleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleError(w, r, err, "failed to delete candle", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Candle deleted successfully"})
}

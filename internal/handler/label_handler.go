package handler

import (
	"net/http"

	"candle-labels/internal/label"
	"candle-labels/internal/model"
	"candle-labels/internal/service"

	"github.com/rs/zerolog"
	"github.com/spf13/cast"
)

// LabelHandler handles label sheet generation and saved label sets.
type LabelHandler struct {
	labels service.LabelService
	sets   service.LabelSetService
	logger zerolog.Logger
}

// NewLabelHandler creates a new label handler.
func NewLabelHandler(labels service.LabelService, sets service.LabelSetService, logger zerolog.Logger) *LabelHandler {
	return &LabelHandler{
		labels: labels,
		sets:   sets,
		logger: logger.With().Str("handler", "label").Logger(),
	}
}

// Generate handles POST /api/generate-labels.
func (h *LabelHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req label.Request
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	doc, err := h.labels.Generate(r.Context(), &req)
	if err != nil {
		handleError(w, r, err, "failed to generate labels", h.logger)
		return
	}

	h.writeDocument(w, r, doc, req.Download)
}

// GenerateForSet handles POST /api/label-sets/{id}/labels. An empty body uses the defaults.
func (h *LabelHandler) GenerateForSet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req label.Request
	if r.ContentLength != 0 {
		if !decodeJSON(w, r, &req, h.logger) {
			return
		}
	}

	doc, err := h.labels.GenerateForSet(r.Context(), id, &req)
	if err != nil {
		handleError(w, r, err, "failed to generate labels", h.logger)
		return
	}

	h.writeDocument(w, r, doc, req.Download)
}

func (h *LabelHandler) writeDocument(w http.ResponseWriter, r *http.Request, doc *service.Document, download bool) {
	if !download {
		download = cast.ToBool(r.URL.Query().Get("download"))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if download {
		w.Header().Set("Content-Disposition", "attachment; filename="+doc.Filename)
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc.HTML); err != nil {
		h.logger.Warn().Err(err).Msg("failed to write label sheet")
	}
}

// ListSets handles GET /api/label-sets.
func (h *LabelHandler) ListSets(w http.ResponseWriter, r *http.Request) {
	sets, err := h.sets.GetAll(r.Context())
	if err != nil {
		handleError(w, r, err, "failed to retrieve label sets", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, sets)
}

// CreateSet handles POST /api/label-sets.
func (h *LabelHandler) CreateSet(w http.ResponseWriter, r *http.Request) {
	var req model.LabelSetRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	set, err := h.sets.Create(r.Context(), &req)
	if err != nil {
		handleError(w, r, err, "failed to create label set", h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, set)
}

// GetSet handles GET /api/label-sets/{id}.
func (h *LabelHandler) GetSet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	set, err := h.sets.GetByID(r.Context(), id)
	if err != nil {
		handleError(w, r, err, "failed to retrieve label set", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, set)
}

package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"candle-labels/internal/asset"
	"candle-labels/internal/model"
	"candle-labels/internal/service"

	"github.com/rs/zerolog"
)

// FileHandler handles bulk import, the import template, image uploads and asset serving.
type FileHandler struct {
	imports   service.ImportService
	uploads   service.UploadService
	maxUpload int64
	logger    zerolog.Logger
}

// NewFileHandler creates a new file handler. maxUpload bounds multipart request bodies.
func NewFileHandler(imports service.ImportService, uploads service.UploadService, maxUpload int64, logger zerolog.Logger) *FileHandler {
	return &FileHandler{
		imports:   imports,
		uploads:   uploads,
		maxUpload: maxUpload,
		logger:    logger.With().Str("handler", "file").Logger(),
	}
}

// Import handles POST /api/candles/import with a multipart "file" field.
func (h *FileHandler) Import(w http.ResponseWriter, r *http.Request) {
	file, header, ok := h.formFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	result, err := h.imports.Import(r.Context(), header.Filename, file)
	if err != nil {
		handleError(w, r, err, "failed to import candles", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Template handles GET /api/candles/template/csv.
func (h *FileHandler) Template(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=candles_template.csv")
	w.WriteHeader(http.StatusOK)
	if err := h.imports.WriteTemplate(w); err != nil {
		h.logger.Error().Err(err).Msg("failed to write CSV template")
	}
}

// Upload handles POST /api/upload/{kind} for logo and QR images.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	file, header, ok := h.formFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	result, err := h.uploads.Upload(r.Context(), r.PathValue("kind"), header.Filename, file)
	if err != nil {
		handleError(w, r, err, "failed to upload file", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Serve handles GET /uploads/{dir}/{filename}.
func (h *FileHandler) Serve(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")

	rc, err := h.uploads.Open(r.Context(), r.PathValue("dir"), filename)
	if err != nil {
		handleError(w, r, err, "failed to read file", h.logger)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", asset.ContentType(filename))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn().Err(err).Str("filename", filename).Msg("failed to stream asset")
	}
}

// formFile extracts the "file" field of a size-limited multipart request.
func (h *FileHandler) formFile(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, bool) {
	if h.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, r, http.StatusRequestEntityTooLarge, model.ErrCodeInvalidFile, "file is too large", h.logger)
		case errors.Is(err, http.ErrMissingFile):
			writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "file is required", h.logger)
		default:
			writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidFile, "invalid multipart form", h.logger)
		}
		return nil, nil, false
	}

	header.Filename = filepath.Base(header.Filename)
	if header.Filename == "." || header.Filename == "/" {
		file.Close()
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "file name is required", h.logger)
		return nil, nil, false
	}

	return file, header, true
}

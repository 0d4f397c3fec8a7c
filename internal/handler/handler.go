package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"candle-labels/internal/middleware"
	"candle-labels/internal/model"

	"github.com/rs/zerolog"
	"github.com/spf13/cast"
)

// MessageResponse is returned by endpoints that have no resource to echo back.
type MessageResponse struct {
	Message string `json:"message"`
}

// domainStatus maps domain error codes to HTTP status codes.
var domainStatus = map[string]int{
	model.ErrCodeInvalidJSON:        http.StatusBadRequest,
	model.ErrCodeMissingField:       http.StatusBadRequest,
	model.ErrCodeInvalidRequest:     http.StatusBadRequest,
	model.ErrCodeUnsupportedFormat:  http.StatusBadRequest,
	model.ErrCodeUnsupportedFile:    http.StatusBadRequest,
	model.ErrCodeInvalidFile:        http.StatusBadRequest,
	model.ErrCodeCategoryNotFound:   http.StatusBadRequest,
	model.ErrCodeCandleNotFound:     http.StatusNotFound,
	model.ErrCodeLabelSetNotFound:   http.StatusNotFound,
	model.ErrCodeNotFound:           http.StatusNotFound,
	model.ErrCodeCategoryExists:     http.StatusConflict,
	model.ErrCodeEmptySelection:     http.StatusUnprocessableEntity,
	model.ErrCodeInvalidCredentials: http.StatusUnauthorized,
	model.ErrCodeUnauthorised:       http.StatusUnauthorized,
	model.ErrCodeForbidden:          http.StatusForbidden,
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response carrying the request's correlation ID.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, logger zerolog.Logger) {
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Str("code", code).Str("error", message).Int("status", status).Msg("handler error")

	writeJSON(w, status, model.ErrorResponse{
		Error:         code,
		Message:       message,
		CorrelationID: middleware.RequestIDFromContext(r.Context()),
	})
}

// handleError writes a domain error with its mapped status. Any other error
// becomes a 500 with fallback as the message.
func handleError(w http.ResponseWriter, r *http.Request, err error, fallback string, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		status, ok := domainStatus[domainErr.Code]
		if !ok {
			status = http.StatusInternalServerError
		}
		writeError(w, r, status, domainErr.Code, domainErr.Message, logger)
		return
	}

	logger.Error().Err(err).Str("path", r.URL.Path).Msg(fallback)
	writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, fallback, logger)
}

// decodeJSON decodes the request body into dst, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, logger zerolog.Logger) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", logger)
		return false
	}
	return true
}

// pathID parses a positive integer path parameter.
func pathID(w http.ResponseWriter, r *http.Request, name string, logger zerolog.Logger) (int64, bool) {
	id, err := cast.ToInt64E(r.PathValue(name))
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidRequest, "invalid "+name, logger)
		return 0, false
	}
	return id, true
}

package utils

import (
	"errors"
	"fmt"
	"net/http"

	"ms-events/internal/logger"
	"ms-events/internal/store"
	"ms-events/internal/validation"
)

const internalErrorMessage = "An unexpected error occurred"

// StatusFor maps a service error to an HTTP status, envelope code and client-safe message.
// internal is true when the message was replaced and the error should be logged.
func StatusFor(err error) (status int, code, message string, internal bool) {
	if ve, ok := validation.As(err); ok {
		return http.StatusBadRequest, CodeBadRequest, ve.Error(), false
	}
	switch {
	case errors.Is(err, store.ErrEventNotFound):
		return http.StatusNotFound, CodeNotFound, store.ErrEventNotFound.Error(), false
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, CodeNotFound, "Resource not found", false
	case errors.Is(err, store.ErrSlugConflict):
		return http.StatusConflict, CodeConflict, store.ErrSlugConflict.Error(), false
	default:
		return http.StatusInternalServerError, CodeInternalError, internalErrorMessage, true
	}
}

// WriteServiceError writes the envelope for err. Internal errors are logged with op
// and answered with a generic message.
func WriteServiceError(w http.ResponseWriter, log *logger.Logger, op string, err error) {
	status, code, message, internal := StatusFor(err)
	switch {
	case internal:
		log.Error("API", fmt.Sprintf("%s: %v", op, err))
	case errors.Unwrap(err) != nil:
		log.Debug("API", fmt.Sprintf("%s: %v: %v", op, err, errors.Unwrap(err)))
	default:
		log.Debug("API", fmt.Sprintf("%s: %v", op, err))
	}
	WriteError(w, status, code, message)
}

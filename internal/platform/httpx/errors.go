// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/creatorlink/creatorlink/internal/shared"
)

// StatusFor maps an error class to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrValidation),
		errors.Is(err, shared.ErrConflict),
		errors.Is(err, shared.ErrInvalidCredentials):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// RespondError writes err as a message body. Server errors are logged and
// answered with a generic message.
func RespondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		if logger != nil {
			logger.Error("request failed", slog.Any("error", err))
		}
		Message(w, status, shared.InternalErrorMessage)
		return
	}
	Message(w, status, shared.UserSafeMessage(err))
}

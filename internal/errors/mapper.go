package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Map converts a service error into an HTTP status code and a stable,
// user-facing message. Keeps handlers clean by centralizing the mapping.
// Unknown errors (storage failures included) become a generic 500 so
// internal detail never leaks to clients.
func Map(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusOK, ""

	case errors.Is(err, ErrMatchNotFound),
		errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound, err.Error()

	case errors.Is(err, ErrDuplicateMatch),
		errors.Is(err, ErrDuplicateRating),
		errors.Is(err, ErrUsernameTaken),
		errors.Is(err, ErrEmailTaken):
		return http.StatusConflict, err.Error()

	case errors.Is(err, ErrNotParticipant):
		return http.StatusForbidden, err.Error()

	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error()

	case errors.Is(err, ErrInvalidArgument),
		errors.Is(err, ErrIncompleteProfile):
		return http.StatusBadRequest, err.Error()

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "request timed out"

	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout, "request was canceled"

	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func wrapf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}

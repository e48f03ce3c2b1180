package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/task-manager-api/internal/api/middleware"
	"github.com/phrazzld/task-manager-api/internal/api/shared"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/service"
	"github.com/phrazzld/task-manager-api/internal/service/auth"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// LoginFailedMessage is the only message a failed login ever returns.
const LoginFailedMessage = "Unable to login"

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrRevokedToken),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	// Ownership mismatches surface as ErrTaskNotFound too
	case store.IsNotFoundError(err):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrDisallowedUpdate),
		errors.Is(err, store.ErrEmailExists),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns the client-facing message for err. Not found
// and internal errors get an empty message, which means an empty body.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var validationErr *domain.ValidationError
	switch {
	case MapErrorToStatusCode(err) == http.StatusUnauthorized:
		return middleware.UnauthenticatedMessage

	case errors.Is(err, service.ErrInvalidCredentials):
		return LoginFailedMessage

	case errors.Is(err, domain.ErrDisallowedUpdate):
		return domain.ErrDisallowedUpdate.Error()

	case errors.Is(err, store.ErrEmailExists):
		return "email: is already in use"

	case errors.As(err, &validationErr):
		return validationErr.Error()

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return ""
	}
}

// HandleAPIError writes the response for err: status from
// MapErrorToStatusCode, body from GetSafeErrorMessage, with the redacted
// error logged (ERROR for 5xx).
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/api/shared"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/service/auth"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// sessionFromRequest returns the user and token placed in the context by the
// auth middleware. It writes a 401 and returns false when they are missing.
func sessionFromRequest(w http.ResponseWriter, r *http.Request) (*domain.User, string, bool) {
	user, ok := shared.UserFromContext(r.Context())
	if !ok {
		HandleAPIError(w, r, auth.ErrMissingToken)
		return nil, "", false
	}
	token, ok := shared.TokenFromContext(r.Context())
	if !ok {
		HandleAPIError(w, r, auth.ErrMissingToken)
		return nil, "", false
	}
	return user, token, true
}

// getPathUUID extracts a UUID from the URL path parameters. A malformed id
// cannot name an existing resource, so it is reported as notFound.
func getPathUUID(r *http.Request, paramName string, notFound error) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, paramName))
	if err != nil {
		return uuid.Nil, notFound
	}
	return id, nil
}

// taskIDFromPath extracts the {id} task parameter, writing a 404 on failure.
func taskIDFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := getPathUUID(r, "id", store.ErrTaskNotFound)
	if err != nil {
		HandleAPIError(w, r, err)
		return uuid.Nil, false
	}
	return id, true
}

// parseAndValidateRequest decodes a JSON body leniently and runs struct
// validation. It writes the error response and returns false on failure.
func parseAndValidateRequest(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := shared.DecodeJSON(r, v); err != nil {
		HandleAPIError(w, r, err)
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		HandleAPIError(w, r, err)
		return false
	}
	return true
}

// parseUpdateRequest decodes a PATCH body whose struct lists the allowed
// fields; anything else is rejected as an invalid update.
func parseUpdateRequest(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := shared.DecodeStrictJSON(r, v); err != nil {
		HandleAPIError(w, r, err)
		return false
	}
	return true
}

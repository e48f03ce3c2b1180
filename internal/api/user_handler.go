package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/task-manager-api/internal/api/shared"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/service"
)

// UserHandler handles registration, sessions and the profile.
type UserHandler struct {
	users  service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler with the given dependencies.
func NewUserHandler(users service.UserService, logger *slog.Logger) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{
		users:  users,
		logger: logger.With(slog.String("component", "user_handler")),
	}
}

// Register handles POST /users.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !parseAndValidateRequest(w, r, &req) {
		return
	}

	user, token, err := h.users.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Age:      req.Age,
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, AuthResponse{User: user.Public(), Token: token})
}

// Login handles POST /users/login. Every credential failure produces the
// same 400 response.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		HandleAPIError(w, r, service.ErrInvalidCredentials)
		return
	}

	user, token, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{User: user.Public(), Token: token})
}

// Logout handles POST /users/logout. Only the presented token is revoked.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, token, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.users.Logout(r.Context(), user.ID, token); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithStatus(w, r, http.StatusOK)
}

// LogoutAll handles POST /users/logoutAll.
func (h *UserHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	user, _, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.users.LogoutAll(r.Context(), user.ID); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithStatus(w, r, http.StatusOK)
}

// Me handles GET /users/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, _, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, user.Public())
}

// UpdateMe handles PATCH /users/me.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, _, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !parseUpdateRequest(w, r, &req) {
		return
	}

	updated, err := h.users.UpdateProfile(r.Context(), user, req.Patch())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, updated.Public())
}

// DeleteMe handles DELETE /users/me. The user's tasks go with it.
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	user, _, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	deleted, err := h.users.DeleteSelf(r.Context(), user)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("account closed",
		slog.String("user_id", deleted.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, deleted.Public())
}

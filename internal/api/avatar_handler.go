package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/phrazzld/task-manager-api/internal/api/shared"
	"github.com/phrazzld/task-manager-api/internal/avatar"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/service"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// AvatarFormField is the multipart field carrying the upload.
const AvatarFormField = "avatar"

// multipartOverhead is the room left for boundaries and part headers on
// top of the file itself.
const multipartOverhead = 64 << 10

// AvatarHandler handles avatar upload, removal and retrieval.
type AvatarHandler struct {
	users  service.UserService
	logger *slog.Logger
}

// NewAvatarHandler creates a new AvatarHandler.
func NewAvatarHandler(users service.UserService, logger *slog.Logger) *AvatarHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AvatarHandler{
		users:  users,
		logger: logger.With(slog.String("component", "avatar_handler")),
	}
}

// Upload handles POST /users/me/avatar.
func (h *AvatarHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user, _, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, avatar.MaxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(avatar.MaxUploadBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			HandleAPIError(w, r, avatar.ErrTooLarge)
			return
		}
		HandleAPIError(w, r, avatar.ErrNotImage)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(AvatarFormField)
	if err != nil {
		HandleAPIError(w, r, avatar.ErrNotImage)
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, avatar.MaxUploadBytes+1))
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	if err := h.users.SetAvatar(r.Context(), user.ID, header.Filename, data); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("avatar stored",
		slog.String("user_id", user.ID.String()),
		slog.Int("upload_bytes", len(data)))
	shared.RespondWithStatus(w, r, http.StatusOK)
}

// Delete handles DELETE /users/me/avatar.
func (h *AvatarHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, _, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.users.ClearAvatar(r.Context(), user.ID); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithStatus(w, r, http.StatusOK)
}

// Get handles GET /users/{id}/avatar. It needs no session.
func (h *AvatarHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := getPathUUID(r, "id", store.ErrAvatarNotFound)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	data, err := h.users.GetAvatar(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", avatar.ContentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).Debug("avatar write aborted",
			slog.String("user_id", userID.String()))
	}
}

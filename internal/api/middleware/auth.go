package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/task-manager-api/internal/api/shared"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/service/auth"
)

// UnauthenticatedMessage is the only message a rejected request receives.
const UnauthenticatedMessage = "Please authenticate"

// Authenticator resolves a bearer token to a user whose live token set
// contains it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// AuthMiddleware guards routes that need a live session.
type AuthMiddleware struct {
	authenticator Authenticator
	logger        *slog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(authenticator Authenticator, logger *slog.Logger) *AuthMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthMiddleware{
		authenticator: authenticator,
		logger:        logger.With(slog.String("component", "auth_middleware")),
	}
}

// Authenticate checks the Authorization header and stores the user and token
// in the request context. Any token problem yields the same 401; the handler
// is not called.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContextOrDefault(r.Context(), m.logger)

		token, ok := bearerToken(r)
		if !ok {
			log.Debug("request without bearer token", slog.String("path", r.URL.Path))
			shared.RespondWithError(w, r, http.StatusUnauthorized, UnauthenticatedMessage)
			return
		}

		user, err := m.authenticator.Authenticate(r.Context(), token)
		if err != nil {
			if isAuthError(err) {
				log.Debug("authentication rejected", slog.String("reason", err.Error()))
				shared.RespondWithError(w, r, http.StatusUnauthorized, UnauthenticatedMessage)
				return
			}
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "", err)
			return
		}

		ctx := shared.WithSession(r.Context(), user, token)
		ctx = logger.WithLogger(ctx, log.With(slog.String("user_id", user.ID.String())))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	token = strings.TrimSpace(token)
	return token, ok && token != ""
}

func isAuthError(err error) bool {
	return errors.Is(err, auth.ErrInvalidToken) ||
		errors.Is(err, auth.ErrExpiredToken) ||
		errors.Is(err, auth.ErrRevokedToken) ||
		errors.Is(err, auth.ErrMissingToken)
}

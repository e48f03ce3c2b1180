package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/api/shared"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authenticatorFunc func(ctx context.Context, token string) (*domain.User, error)

func (f authenticatorFunc) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	return f(ctx, token)
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	t.Parallel()

	user := &domain.User{ID: uuid.New(), Name: "Ann"}

	tests := []struct {
		name           string
		authHeader     string
		authErr        error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "valid token",
			authHeader:     "Bearer live-token",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing auth header",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"error":"Please authenticate"}`,
		},
		{
			name:           "not a bearer header",
			authHeader:     "Basic dXNlcjpwYXNz",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"error":"Please authenticate"}`,
		},
		{
			name:           "empty bearer token",
			authHeader:     "Bearer   ",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"error":"Please authenticate"}`,
		},
		{
			name:           "bad signature",
			authHeader:     "Bearer forged",
			authErr:        auth.ErrInvalidToken,
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"error":"Please authenticate"}`,
		},
		{
			name:           "expired token",
			authHeader:     "Bearer old",
			authErr:        auth.ErrExpiredToken,
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"error":"Please authenticate"}`,
		},
		{
			name:           "revoked token",
			authHeader:     "Bearer logged-out",
			authErr:        auth.ErrRevokedToken,
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"error":"Please authenticate"}`,
		},
		{
			name:           "store failure",
			authHeader:     "Bearer live-token",
			authErr:        errors.New("connection refused"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var seenToken string
			authenticator := authenticatorFunc(func(ctx context.Context, token string) (*domain.User, error) {
				seenToken = token
				if tc.authErr != nil {
					return nil, tc.authErr
				}
				return user, nil
			})

			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				got, ok := shared.UserFromContext(r.Context())
				require.True(t, ok)
				assert.Equal(t, user.ID, got.ID)
				token, ok := shared.TokenFromContext(r.Context())
				require.True(t, ok)
				assert.Equal(t, "live-token", token)
				w.WriteHeader(http.StatusOK)
			})

			ctx, _ := logger.NewCaptureContext(context.Background())
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil).WithContext(ctx)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			rr := httptest.NewRecorder()

			NewAuthMiddleware(authenticator, nil).Authenticate(next).ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)
			assert.Equal(t, tc.expectedStatus == http.StatusOK, called, "handler must only run for a live session")
			if tc.expectedBody != "" {
				assert.JSONEq(t, tc.expectedBody, rr.Body.String())
			}
			if tc.expectedStatus == http.StatusInternalServerError {
				assert.Empty(t, rr.Body.String())
			}
			if tc.authErr != nil {
				assert.NotEmpty(t, seenToken)
			}
		})
	}
}

func TestAuthMiddlewareRedactsInfrastructureErrors(t *testing.T) {
	authenticator := authenticatorFunc(func(ctx context.Context, token string) (*domain.User, error) {
		return nil, errors.New("dial postgres://app:s3cretpw@db:5432/tasks failed")
	})

	ctx, logs := logger.NewCaptureContext(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/tasks", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer live-token")
	rr := httptest.NewRecorder()

	NewAuthMiddleware(authenticator, nil).
		Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).
		ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, logs.String(), "s3cretpw")
	assert.Contains(t, logs.String(), "API error response")
}

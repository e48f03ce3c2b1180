package api

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/task-manager-api/internal/api/middleware"
	"github.com/phrazzld/task-manager-api/internal/config"
	"github.com/phrazzld/task-manager-api/internal/mocks"
	"github.com/phrazzld/task-manager-api/internal/service"
	"github.com/phrazzld/task-manager-api/internal/service/auth"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-at-least-32-characters"

// testEnv wires the real services over in-memory stores.
type testEnv struct {
	users   *mocks.MockUserStore
	tasks   *mocks.MockTaskStore
	emitter *mocks.MockEventEmitter
	router  http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	env := &testEnv{
		users:   mocks.NewMockUserStore(),
		tasks:   mocks.NewMockTaskStore(),
		emitter: &mocks.MockEventEmitter{},
	}
	tx := &mocks.MockTransactor{}

	tokens, err := auth.NewJWTService(config.AuthConfig{JWTSecret: testSecret})
	require.NoError(t, err)

	userSvc, err := service.NewUserService(env.users, env.tasks, tx, &mocks.MockPasswordHasher{}, tokens, env.emitter, log)
	require.NoError(t, err)
	taskSvc, err := service.NewTaskService(env.tasks, tx, log)
	require.NoError(t, err)

	r := chi.NewRouter()
	Mount(r, Handlers{
		Users:   NewUserHandler(userSvc, log),
		Avatars: NewAvatarHandler(userSvc, log),
		Tasks:   NewTaskHandler(taskSvc, log),
		Auth:    middleware.NewAuthMiddleware(userSvc, log),
	})
	env.router = r
	return env
}

// do sends a JSON request. A non-empty token is sent as a bearer token.
func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

// register creates a user through the API and returns the decoded response.
func (e *testEnv) register(t *testing.T, name, email string) AuthResponse {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/users", "", map[string]interface{}{
		"name": name, "email": email, "password": "mypass1",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func decodeInto[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

// multipartUpload builds a multipart body with data under field.
func multipartUpload(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/storefront/admin-console/internal/domain"
	"github.com/storefront/admin-console/internal/middleware"
	"github.com/storefront/admin-console/internal/service"
	"github.com/storefront/admin-console/internal/session"
	"github.com/storefront/admin-console/internal/testutil"
	"github.com/storefront/admin-console/internal/websocket"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "admin@example.com"
	testPassword = "secret"
	testToken    = "token-abc"
)

type testEnv struct {
	echo     *echo.Echo
	auth     *service.AuthService
	gateway  *testutil.MockCategoryGateway
	sessions *session.Store
	managers *service.CategoryManagerRegistry
}

func newTestEnv(t *testing.T, categories ...domain.Category) *testEnv {
	t.Helper()

	gateway := testutil.NewMockCategoryGateway(categories...)
	registry := service.NewCategoryManagerRegistry(gateway, service.NewImageService(), nil, zerolog.Nop(), service.CategoryManagerConfig{
		DebounceDelay: 10 * time.Millisecond,
		ImageHost:     "http://img.test",
	})
	store := session.NewStore(time.Hour)
	auth := service.NewAuthService(testutil.NewMockAuthGateway(testEmail, testPassword, testToken), store, registry, nil)

	return &testEnv{echo: echo.New(), auth: auth, gateway: gateway, sessions: store, managers: registry}
}

// newAuthServiceWithGateway swaps the login backend while keeping the env's stores
func newAuthServiceWithGateway(env *testEnv, gateway domain.AuthGateway) *service.AuthService {
	return service.NewAuthService(gateway, env.sessions, env.managers, nil)
}

// withStreams rebuilds the env's auth service on top of hub
func (env *testEnv) withStreams(hub *websocket.Hub) {
	env.auth = service.NewAuthService(testutil.NewMockAuthGateway(testEmail, testPassword, testToken), env.sessions, env.managers, hub)
}

// fakeStream is a hub client without a connection
type fakeStream struct {
	id        string
	sessionID uuid.UUID
}

func (f *fakeStream) ID() string { return f.id }
func (f *fakeStream) SessionID() uuid.UUID { return f.sessionID }
func (f *fakeStream) Send(data []byte) error { return nil }
func (f *fakeStream) Close() error { return nil }

// login opens a session through the service and returns it
func (env *testEnv) login(t *testing.T) *session.Session {
	t.Helper()
	result, err := env.auth.Login(context.Background(), testEmail, testPassword)
	require.NoError(t, err)
	return result.Session
}

// newContext builds an echo context carrying sess, as RequireSession would
func (env *testEnv) newContext(req *http.Request, sess *session.Session) (echo.Context, *httptest.ResponseRecorder) {
	if sess != nil {
		ctx := context.WithValue(req.Context(), middleware.SessionKey, sess)
		req = req.WithContext(ctx)
	}
	rec := httptest.NewRecorder()
	return env.echo.NewContext(req, rec), rec
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

// multipartRequest builds a category form request; image is attached when filename is set
func multipartRequest(t *testing.T, method, target string, fields map[string]string, filename string, image []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if filename != "" {
		part, err := writer.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, target, body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	return req
}

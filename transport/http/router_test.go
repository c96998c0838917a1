package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-kit/log"
	"github.com/layer-3/warden/adapters/events"
	"github.com/layer-3/warden/adapters/identity"
	"github.com/layer-3/warden/adapters/tokenizer"
	"github.com/layer-3/warden/core"
	"github.com/layer-3/warden/ports"
	"github.com/layer-3/warden/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

type testServer struct {
	router   *gin.Engine
	registry *prometheus.Registry
}

func newTestServer(t *testing.T, staticDir string) *testServer {
	t.Helper()
	return newTestServerWithPublisher(t, staticDir, events.NopPublisher{})
}

func newTestServerWithPublisher(t *testing.T, staticDir string, pub ports.EventPublisher) *testServer {
	t.Helper()
	keys, err := tokenizer.NewKeys([]byte("test-secret"))
	require.NoError(t, err)

	src, err := identity.NewStaticSource(identity.Entry{
		ClientID:     "foo",
		ClientSecret: "bar",
		Subject:      "b@b.com",
		Organization: "ACME",
	})
	require.NoError(t, err)

	authService := service.NewAuthService(tokenizer.NewJWTTokenizer(keys), src, pub, log.NewNopLogger())
	reg := prometheus.NewRegistry()

	return &testServer{
		router:   SetupRouter(authService, Options{Registry: reg, StaticDir: staticDir}),
		registry: reg,
	}
}

func (s *testServer) do(method, target, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T) string {
	t.Helper()
	rec := s.do(http.MethodPost, "/login", `{"client_id":"foo","client_secret":"bar"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Bearer", resp.TokenType)
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestLoginStatuses(t *testing.T) {
	srv := newTestServer(t, "")

	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{"missing client id", `{"client_id":"","client_secret":"bar"}`, http.StatusBadRequest, "Missing credentials"},
		{"missing secret", `{"client_id":"foo"}`, http.StatusBadRequest, "Missing credentials"},
		{"malformed body", `{"client_id":`, http.StatusBadRequest, "Missing credentials"},
		{"wrong credentials", `{"client_id":"foo","client_secret":"wrong"}`, http.StatusUnauthorized, "Wrong credentials"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(http.MethodPost, "/login", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, errorMessage(t, rec))
		})
	}

	srv.login(t)

	expected := `
# HELP warden_logins_total Login attempts by outcome.
# TYPE warden_logins_total counter
warden_logins_total{outcome="missing_credentials"} 3
warden_logins_total{outcome="success"} 1
warden_logins_total{outcome="wrong_credentials"} 1
`
	require.NoError(t, testutil.GatherAndCompare(srv.registry, strings.NewReader(expected), "warden_logins_total"))
}

type countingPublisher struct {
	mu       sync.Mutex
	outcomes []core.LoginOutcome
}

func (p *countingPublisher) PublishLogin(_ context.Context, event core.LoginEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.outcomes = append(p.outcomes, event.Outcome)
	return nil
}

func TestLoginEventPerAttempt(t *testing.T) {
	pub := &countingPublisher{}
	srv := newTestServerWithPublisher(t, "", pub)

	for _, body := range []string{
		`{"client_id":`,
		`not json at all`,
		`{"client_id":"","client_secret":"bar"}`,
		`{"client_id":"foo","client_secret":"wrong"}`,
	} {
		rec := srv.do(http.MethodPost, "/login", body)
		assert.NotEqual(t, http.StatusOK, rec.Code, body)
	}
	srv.login(t)

	assert.Equal(t, []core.LoginOutcome{
		core.LoginMissingCredentials,
		core.LoginMissingCredentials,
		core.LoginMissingCredentials,
		core.LoginWrongCredentials,
		core.LoginSuccess,
	}, pub.outcomes)

	expected := `
# HELP warden_logins_total Login attempts by outcome.
# TYPE warden_logins_total counter
warden_logins_total{outcome="missing_credentials"} 3
warden_logins_total{outcome="success"} 1
warden_logins_total{outcome="wrong_credentials"} 1
`
	require.NoError(t, testutil.GatherAndCompare(srv.registry, strings.NewReader(expected), "warden_logins_total"))
}

func TestPrivate(t *testing.T) {
	srv := newTestServer(t, "")
	token := srv.login(t)

	t.Run("valid token", func(t *testing.T) {
		rec := srv.do(http.MethodGet, "/private", "", "Authorization", "Bearer "+token)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Welcome to the protected area :)\nYour data:\nEmail: b@b.com\nCompany: ACME", rec.Body.String())
	})

	for name, header := range map[string]string{
		"no header":     "",
		"wrong scheme":  "Basic " + token,
		"garbage token": "Bearer not-a-token",
	} {
		t.Run(name, func(t *testing.T) {
			var rec *httptest.ResponseRecorder
			if header == "" {
				rec = srv.do(http.MethodGet, "/private", "")
			} else {
				rec = srv.do(http.MethodGet, "/private", "", "Authorization", header)
			}
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Invalid token", errorMessage(t, rec))
		})
	}

	expected := `
# HELP warden_token_verifications_total Bearer token verifications by outcome.
# TYPE warden_token_verifications_total counter
warden_token_verifications_total{outcome="invalid"} 3
warden_token_verifications_total{outcome="valid"} 1
`
	require.NoError(t, testutil.GatherAndCompare(srv.registry, strings.NewReader(expected), "warden_token_verifications_total"))
}

func TestErrorTable(t *testing.T) {
	for _, r := range errorResponses {
		got := responseFor(fmt.Errorf("%w: detail that must not leak", r.err))
		assert.Equal(t, r.status, got.status)
		assert.Equal(t, r.message, got.message)
		assert.NotContains(t, got.message, "detail")
	}

	assert.Equal(t, http.StatusInternalServerError, responseFor(errors.New("boom")).status)
}

func TestPublicRoutes(t *testing.T) {
	srv := newTestServer(t, "")

	rec := srv.do(http.MethodGet, "/public", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to the public area :)", rec.Body.String())

	rec = srv.do(http.MethodGet, "/test", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"name":"World"}`, rec.Body.String())
}

func TestRequestID(t *testing.T) {
	srv := newTestServer(t, "")

	rec := srv.do(http.MethodGet, "/public", "")
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	rec = srv.do(http.MethodGet, "/public", "", requestIDHeader, "abc-123")
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestStaticFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>app</h1>"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o600))

	srv := newTestServer(t, dir)

	rec := srv.do(http.MethodGet, "/app.js", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "console.log(1)", rec.Body.String())

	rec = srv.do(http.MethodGet, "/some/client/route", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<h1>app</h1>", rec.Body.String())

	rec = srv.do(http.MethodGet, "/../../etc/passwd", "")
	assert.Equal(t, "<h1>app</h1>", rec.Body.String())
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t, "")
	handler := WithCORS(srv.router, []string{"http://localhost:5173"})

	req := httptest.NewRequest(http.MethodOptions, "/login", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"example.com/mentalreset/internal/api"
	"example.com/mentalreset/internal/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("STORAGE_BACKEND", config.StorageSQLite)
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "resets.db"))
	t.Setenv("JWT_SECRET", "cli-test-secret")
	cfg, err := config.LoadFrom("")
	require.NoError(t, err)
	return cfg
}

func bearer(t *testing.T, secret, sub string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func call(t *testing.T, srv *httptest.Server, method, path, token, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
	resp, err := client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestBuildAppServesResetFlow(t *testing.T) {
	cfg := testConfig(t)
	a, err := buildApp(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer a.Close()

	srv := httptest.NewServer(a.router)
	defer srv.Close()

	token := bearer(t, cfg.JWTSecret, "user-7")

	resp := call(t, srv, http.MethodPost, "/v1/drafts", token, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var draft api.DraftResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&draft))

	resp = call(t, srv, http.MethodPut, "/v1/drafts/"+draft.DraftID+"/mood", token, `{"mood":"overwhelmed"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = call(t, srv, http.MethodPost, "/v1/drafts/"+draft.DraftID+"/activities/water/toggle", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = call(t, srv, http.MethodPost, "/v1/drafts/"+draft.DraftID+"/save", token, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = call(t, srv, http.MethodGet, "/v1/sessions", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed api.SessionsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	require.Len(t, listed.Sessions, 1)
	assert.Equal(t, "overwhelmed", listed.Sessions[0].Mood)
	assert.Equal(t, []string{"water"}, listed.Sessions[0].Activities)

	resp = call(t, srv, http.MethodGet, "/sessions", "", "")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, cfg.SignInRoute, resp.Header.Get("Location"))
}

func TestBuildAppHealthzPingsBackend(t *testing.T) {
	cfg := testConfig(t)
	a, err := buildApp(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer a.Close()

	srv := httptest.NewServer(a.router)
	defer srv.Close()

	resp := call(t, srv, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	a.backend.Close()
	resp = call(t, srv, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestBuildAppDiscardsDraftsOnSignOut(t *testing.T) {
	cfg := testConfig(t)
	a, err := buildApp(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer a.Close()

	srv := httptest.NewServer(a.router)
	defer srv.Close()

	token := bearer(t, cfg.JWTSecret, "user-8")
	resp := call(t, srv, http.MethodPost, "/v1/drafts", token, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var draft api.DraftResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&draft))

	resp = call(t, srv, http.MethodPost, "/v1/auth/signout", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = call(t, srv, http.MethodGet, "/v1/drafts/"+draft.DraftID, "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = call(t, srv, http.MethodGet, "/v1/sessions", token, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestBuildAppRejectsUnknownPolicy(t *testing.T) {
	cfg := testConfig(t)
	cfg.SelectionPolicy = "greedy"
	_, err := buildApp(context.Background(), cfg, zaptest.NewLogger(t))
	require.ErrorContains(t, err, "unknown activity policy")
}

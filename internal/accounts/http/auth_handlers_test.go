package http

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/tabtrack/accounts/internal/accounts/service"
	"github.com/tabtrack/accounts/internal/accounts/store/drivers/sqlite"
	"github.com/tabtrack/accounts/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	pepperPath := filepath.Join(os.TempDir(), "accounts-http-test-pepper")
	cryptox.SetPepperPath(pepperPath)

	os.Remove(pepperPath)
	defer os.Remove(pepperPath)

	os.Exit(m.Run())
}

func newTestServer(t *testing.T, emailIdentity bool) *httptest.Server {
	t.Helper()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "accounts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	router := NewRouter("test", st, logger)
	router.AuthService = &service.AuthService{Store: st, EmailIdentity: emailIdentity}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body map[string]string) (int, map[string]any) {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func TestSignupAndLoginFlow(t *testing.T) {
	srv := newTestServer(t, false)

	// signup(username="alice", password="s3cret") succeeds
	code, body := postJSON(t, srv.URL+"/api/auth/signup", map[string]string{
		"username": "alice",
		"password": "s3cret",
	})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, body["success"])
	require.Equal(t, "User created", body["message"])
	require.Equal(t, "alice", body["username"])

	// a second signup for the same username fails
	code, body = postJSON(t, srv.URL+"/api/auth/signup", map[string]string{
		"username": "alice",
		"password": "other",
	})
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, false, body["success"])
	require.Equal(t, "Username already exists", body["message"])

	// correct credentials log in
	code, body = postJSON(t, srv.URL+"/api/auth/login", map[string]string{
		"username": "alice",
		"password": "s3cret",
	})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, body["success"])
	require.Equal(t, "Login successful", body["message"])
	require.Equal(t, "alice", body["username"])

	// wrong password still answers 200, success=false
	code, body = postJSON(t, srv.URL+"/api/auth/login", map[string]string{
		"username": "alice",
		"password": "wrong",
	})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, false, body["success"])
	require.Equal(t, "Invalid credentials", body["message"])
}

func TestLoginUnknownUserMatchesWrongPassword(t *testing.T) {
	srv := newTestServer(t, false)

	code, body := postJSON(t, srv.URL+"/api/auth/login", map[string]string{
		"username": "ghost",
		"password": "whatever",
	})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, false, body["success"])
	require.Equal(t, "Invalid credentials", body["message"],
		"unknown user and wrong password must be indistinguishable")
}

func TestSignupValidation(t *testing.T) {
	srv := newTestServer(t, false)

	t.Run("missing username", func(t *testing.T) {
		code, body := postJSON(t, srv.URL+"/api/auth/signup", map[string]string{
			"password": "s3cret",
		})
		require.Equal(t, http.StatusBadRequest, code)
		require.Equal(t, false, body["success"])
		require.Equal(t, "username is required", body["message"])
	})

	t.Run("missing password", func(t *testing.T) {
		code, body := postJSON(t, srv.URL+"/api/auth/signup", map[string]string{
			"username": "someone",
		})
		require.Equal(t, http.StatusBadRequest, code)
		require.Equal(t, "password is required", body["message"])
	})

	t.Run("malformed body", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/api/auth/signup", "application/json",
			bytes.NewReader([]byte("{not json")))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestEmailIdentityVariantOverHTTP(t *testing.T) {
	srv := newTestServer(t, true)

	code, body := postJSON(t, srv.URL+"/api/auth/signup", map[string]string{
		"email":    "alice@example.com",
		"username": "alice",
		"password": "s3cret",
	})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, body["success"])
	require.Equal(t, "alice@example.com", body["email"])

	t.Run("signup without email rejected", func(t *testing.T) {
		code, body := postJSON(t, srv.URL+"/api/auth/signup", map[string]string{
			"username": "bob",
			"password": "s3cret",
		})
		require.Equal(t, http.StatusBadRequest, code)
		require.Equal(t, "email is required", body["message"])
	})

	t.Run("duplicate email names the email field", func(t *testing.T) {
		code, body := postJSON(t, srv.URL+"/api/auth/signup", map[string]string{
			"email":    "alice@example.com",
			"username": "alice2",
			"password": "s3cret",
		})
		require.Equal(t, http.StatusBadRequest, code)
		require.Equal(t, "Email already exists", body["message"])
	})

	t.Run("duplicate username names the username field", func(t *testing.T) {
		code, body := postJSON(t, srv.URL+"/api/auth/signup", map[string]string{
			"email":    "alice2@example.com",
			"username": "alice",
			"password": "s3cret",
		})
		require.Equal(t, http.StatusBadRequest, code)
		require.Equal(t, "Username already exists", body["message"])
	})

	t.Run("login by email recovers username", func(t *testing.T) {
		code, body := postJSON(t, srv.URL+"/api/auth/login", map[string]string{
			"email":    "alice@example.com",
			"password": "s3cret",
		})
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, true, body["success"])
		require.Equal(t, "Login successful", body["message"])
		require.Equal(t, "alice@example.com", body["email"])
		require.Equal(t, "alice", body["username"])
	})
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t, false)

	resp, err := http.Get(srv.URL + "/livez")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp2, err := http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusOK, resp2.StatusCode)

	var health map[string]any
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&health))
	require.Equal(t, "ok", health["status"])
}

// AngelaMos | 2026
// handler_test.go

package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/jobtrack/internal/config"
	"github.com/angelamos/jobtrack/internal/middleware"
)

func passthrough(next http.Handler) http.Handler {
	return next
}

func newTestRouter(
	t *testing.T,
	provider UserProvider,
	authCfg config.AuthConfig,
) (chi.Router, *Service) {
	t.Helper()

	svc := newTestService(t, provider, authCfg)
	cookies := NewCookieWriter(false, time.Hour)
	handler := NewHandler(svc, cookies)

	tokens := svc.jwt
	authenticator := middleware.Guard(tokens, nil, middleware.RoutePolicy{})

	router := chi.NewRouter()
	handler.RegisterRoutes(router, authenticator, passthrough, passthrough)
	return router, svc
}

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestLoginEndpoint(t *testing.T) {
	provider := newFakeUserProvider()
	provider.add(t, "ada@example.com", "correct-password")
	router, _ := newTestRouter(t, provider, config.AuthConfig{})

	t.Run("success sets session and csrf cookies", func(t *testing.T) {
		rec := postJSON(t, router, "/auth/login", LoginRequest{
			Email:    "ada@example.com",
			Password: "correct-password",
		})

		require.Equal(t, http.StatusOK, rec.Code)

		var resp LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.AccessToken)
		assert.Equal(t, "ada@example.com", resp.User.Email)

		cookies := rec.Result().Cookies()
		names := make(map[string]*http.Cookie, len(cookies))
		for _, cookie := range cookies {
			names[cookie.Name] = cookie
		}

		session := names[middleware.SessionCookieName]
		require.NotNil(t, session)
		assert.True(t, session.HttpOnly)
		assert.Equal(t, resp.AccessToken, session.Value)

		csrf := names[middleware.CSRFCookieName]
		require.NotNil(t, csrf)
		assert.False(t, csrf.HttpOnly)
	})

	t.Run("wrong password yields invalid credentials", func(t *testing.T) {
		rec := postJSON(t, router, "/auth/login", LoginRequest{
			Email:    "ada@example.com",
			Password: "wrong-password",
		})

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		body := decodeErrorBody(t, rec)
		assert.Equal(t, "INVALID_CREDENTIALS", body["code"])
	})

	t.Run("unknown email is indistinguishable from wrong password", func(t *testing.T) {
		rec := postJSON(t, router, "/auth/login", LoginRequest{
			Email:    "ghost@example.com",
			Password: "any-password",
		})

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		body := decodeErrorBody(t, rec)
		assert.Equal(t, "INVALID_CREDENTIALS", body["code"])
	})

	t.Run("malformed body is a bad request", func(t *testing.T) {
		req := httptest.NewRequest(
			http.MethodPost,
			"/auth/login",
			bytes.NewReader([]byte("{not json")),
		)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRegisterEndpoint(t *testing.T) {
	t.Run("creates account", func(t *testing.T) {
		router, _ := newTestRouter(t, newFakeUserProvider(), config.AuthConfig{})

		rec := postJSON(t, router, "/auth/register", RegisterRequest{
			Email:    "new@example.com",
			Username: "newbie",
			Password: "a-strong-password",
		})

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp UserResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "new@example.com", resp.Email)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		provider := newFakeUserProvider()
		provider.add(t, "taken@example.com", "existing-password")
		router, _ := newTestRouter(t, provider, config.AuthConfig{})

		rec := postJSON(t, router, "/auth/register", RegisterRequest{
			Email:    "taken@example.com",
			Username: "newbie",
			Password: "a-strong-password",
		})

		require.Equal(t, http.StatusConflict, rec.Code)
		body := decodeErrorBody(t, rec)
		assert.Equal(t, "CONFLICT", body["code"])
	})

	t.Run("wrong invitation code rejected", func(t *testing.T) {
		router, _ := newTestRouter(t, newFakeUserProvider(), config.AuthConfig{
			InvitationCode: "friends-only",
		})

		rec := postJSON(t, router, "/auth/register", RegisterRequest{
			Email:    "new@example.com",
			Username: "newbie",
			Password: "a-strong-password",
			Code:     "wrong",
		})

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		body := decodeErrorBody(t, rec)
		assert.Equal(t, "INVITATION_MISMATCH", body["code"])
	})

	t.Run("short password fails validation", func(t *testing.T) {
		router, _ := newTestRouter(t, newFakeUserProvider(), config.AuthConfig{})

		rec := postJSON(t, router, "/auth/register", RegisterRequest{
			Email:    "new@example.com",
			Username: "newbie",
			Password: "short",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCsrfEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, newFakeUserProvider(), config.AuthConfig{})

	req := httptest.NewRequest(http.MethodGet, "/auth/csrf", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp CSRFResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.CSRFToken)

	cookie := findCookie(t, rec, middleware.CSRFCookieName)
	assert.Equal(t, resp.CSRFToken, cookie.Value)
	assert.False(t, cookie.HttpOnly)
}

func TestLogoutEndpoint(t *testing.T) {
	provider := newFakeUserProvider()
	user := provider.add(t, "ada@example.com", "correct-password")
	router, svc := newTestRouter(t, provider, config.AuthConfig{})

	token, err := svc.jwt.CreateSessionToken(SessionTokenClaims{
		UserID: user.ID,
		Email:  user.Email,
		Plan:   user.Plan,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)

	cookie := findCookie(t, rec, middleware.SessionCookieName)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}

func TestGetMeEndpoint(t *testing.T) {
	provider := newFakeUserProvider()
	user := provider.add(t, "ada@example.com", "correct-password")
	router, svc := newTestRouter(t, provider, config.AuthConfig{})

	t.Run("without token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		body := decodeErrorBody(t, rec)
		assert.Equal(t, "INVALID_SESSION", body["code"])
	})

	t.Run("with session cookie", func(t *testing.T) {
		token, err := svc.jwt.CreateSessionToken(SessionTokenClaims{
			UserID: user.ID,
			Email:  user.Email,
			Plan:   user.Plan,
		})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.AddCookie(&http.Cookie{
			Name:  middleware.SessionCookieName,
			Value: token,
		})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp UserResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, user.ID, resp.ID)
		assert.Equal(t, user.Email, resp.Email)
	})
}

// AngelaMos | 2026
// csrf_test.go

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveCSRF(t *testing.T, csrf *CSRF, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	csrf.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rec, req)
	return rec
}

func TestCSRFHandler(t *testing.T) {
	csrf := NewCSRF([]string{"/v1/auth/login", "/health"})

	withPair := func(method, path, cookie, header string) *http.Request {
		req := httptest.NewRequest(method, path, nil)
		if cookie != "" {
			req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: cookie})
		}
		if header != "" {
			req.Header.Set(CSRFHeaderName, header)
		}
		return req
	}

	t.Run("matching pair passes", func(t *testing.T) {
		req := withPair(http.MethodPost, "/v1/users/me", "tok", "tok")
		assert.Equal(t, http.StatusOK, serveCSRF(t, csrf, req).Code)
	})

	t.Run("missing header rejected", func(t *testing.T) {
		req := withPair(http.MethodPost, "/v1/users/me", "tok", "")
		rec := serveCSRF(t, csrf, req)

		require.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "CSRF_MISMATCH")
	})

	t.Run("missing cookie rejected", func(t *testing.T) {
		req := withPair(http.MethodPost, "/v1/users/me", "", "tok")
		assert.Equal(t, http.StatusForbidden, serveCSRF(t, csrf, req).Code)
	})

	t.Run("mismatched pair rejected", func(t *testing.T) {
		req := withPair(http.MethodPost, "/v1/users/me", "tok", "other")
		assert.Equal(t, http.StatusForbidden, serveCSRF(t, csrf, req).Code)
	})

	t.Run("non-mutating methods skip the check", func(t *testing.T) {
		for _, method := range []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodOptions,
		} {
			req := withPair(method, "/v1/users/me", "", "")
			assert.Equal(t, http.StatusOK, serveCSRF(t, csrf, req).Code, method)
		}
	})

	t.Run("all mutating methods are checked", func(t *testing.T) {
		for _, method := range []string{
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		} {
			req := withPair(method, "/v1/users/me", "", "")
			assert.Equal(
				t,
				http.StatusForbidden,
				serveCSRF(t, csrf, req).Code,
				method,
			)
		}
	})

	t.Run("exempt path skips the check", func(t *testing.T) {
		req := withPair(http.MethodPost, "/v1/auth/login", "", "")
		assert.Equal(t, http.StatusOK, serveCSRF(t, csrf, req).Code)
	})

	t.Run("exemption is exact-path", func(t *testing.T) {
		req := withPair(http.MethodPost, "/v1/auth/login/extra", "", "")
		assert.Equal(t, http.StatusForbidden, serveCSRF(t, csrf, req).Code)
	})
}

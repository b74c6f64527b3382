// AngelaMos | 2026
// handler_test.go

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecker struct {
	err error
}

func (f *fakeChecker) Ping(_ context.Context) error {
	return f.err
}

func newRouter(h *Handler) chi.Router {
	router := chi.NewRouter()
	h.RegisterRoutes(router)
	return router
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	handler := NewHandler(&fakeChecker{}, &fakeChecker{})
	router := newRouter(handler)

	rec := get(router, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body["ok"])
}

func TestLiveness(t *testing.T) {
	handler := NewHandler(&fakeChecker{}, &fakeChecker{})
	router := newRouter(handler)

	for _, path := range []string{"/healthz", "/livez"} {
		rec := get(router, path)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	handler.SetShutdown(true)
	rec := get(router, "/livez")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestReadiness(t *testing.T) {
	t.Run("healthy dependencies", func(t *testing.T) {
		handler := NewHandler(&fakeChecker{}, &fakeChecker{})
		router := newRouter(handler)

		rec := get(router, "/readyz")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp ReadinessResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Len(t, resp.Checks, 2)
	})

	t.Run("degraded when a dependency fails", func(t *testing.T) {
		handler := NewHandler(
			&fakeChecker{err: errors.New("connection refused")},
			&fakeChecker{},
		)
		router := newRouter(handler)

		rec := get(router, "/readyz")
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var resp ReadinessResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "degraded", resp.Status)
	})

	t.Run("not ready before startup completes", func(t *testing.T) {
		handler := NewHandler(&fakeChecker{}, &fakeChecker{})
		handler.SetReady(false)
		router := newRouter(handler)

		rec := get(router, "/readyz")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

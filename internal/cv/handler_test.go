// AngelaMos | 2026
// handler_test.go

package cv

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/jobtrack/internal/middleware"
)

type fakeGenerator struct {
	lastJob RenderJob
}

func (f *fakeGenerator) Generate(_ context.Context, job RenderJob) (string, error) {
	f.lastJob = job
	return "job-123", nil
}

// premiumStub mimics the guard: it injects an authenticated premium
// user into the context so handler logic can be tested in isolation.
func premiumStub(userID int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), middleware.UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func TestGenerateEndpoint(t *testing.T) {
	generator := &fakeGenerator{}
	handler := NewHandler(generator)

	router := chi.NewRouter()
	handler.RegisterRoutes(router, premiumStub(42))

	t.Run("queues a render job", func(t *testing.T) {
		payload, err := json.Marshal(GenerateRequest{
			TemplateID: "modern",
			Format:     "pdf",
		})
		require.NoError(t, err)

		req := httptest.NewRequest(
			http.MethodPost,
			"/cv/generate",
			bytes.NewReader(payload),
		)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusAccepted, rec.Code)

		var resp GenerateResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "job-123", resp.JobID)
		assert.Equal(t, "queued", resp.Status)

		assert.Equal(t, int64(42), generator.lastJob.UserID)
		assert.Equal(t, "modern", generator.lastJob.TemplateID)
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		payload, err := json.Marshal(GenerateRequest{
			TemplateID: "modern",
			Format:     "html",
		})
		require.NoError(t, err)

		req := httptest.NewRequest(
			http.MethodPost,
			"/cv/generate",
			bytes.NewReader(payload),
		)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects unauthenticated context", func(t *testing.T) {
		bare := chi.NewRouter()
		NewHandler(generator).RegisterRoutes(bare, func(next http.Handler) http.Handler {
			return next
		})

		payload, err := json.Marshal(GenerateRequest{
			TemplateID: "modern",
			Format:     "pdf",
		})
		require.NoError(t, err)

		req := httptest.NewRequest(
			http.MethodPost,
			"/cv/generate",
			bytes.NewReader(payload),
		)
		rec := httptest.NewRecorder()
		bare.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

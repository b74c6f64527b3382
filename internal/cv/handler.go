// AngelaMos | 2026
// handler.go

package cv

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/angelamos/jobtrack/internal/core"
	"github.com/angelamos/jobtrack/internal/middleware"
)

type Handler struct {
	generator Generator
	validator *validator.Validate
}

func NewHandler(generator Generator) *Handler {
	return &Handler{
		generator: generator,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes mounts the premium surface. The gate re-checks the
// caller's plan against the store, not the token.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	premiumGate func(http.Handler) http.Handler,
) {
	r.Route("/cv", func(r chi.Router) {
		r.Use(premiumGate)
		r.Post("/generate", h.Generate)
	})
}

type GenerateRequest struct {
	TemplateID string `json:"template_id" validate:"required,max=64"`
	Format     string `json:"format" validate:"required,oneof=pdf docx"`
}

type GenerateResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == 0 {
		core.JSONError(w, core.InvalidSessionError())
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	jobID, err := h.generator.Generate(r.Context(), RenderJob{
		UserID:     userID,
		TemplateID: req.TemplateID,
		Format:     req.Format,
	})
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Accepted(w, GenerateResponse{
		JobID:  jobID,
		Status: "queued",
	})
}

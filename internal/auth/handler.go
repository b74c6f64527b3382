// AngelaMos | 2026
// handler.go

package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/angelamos/jobtrack/internal/core"
	"github.com/angelamos/jobtrack/internal/middleware"
)

type Handler struct {
	service   *Service
	cookies   *CookieWriter
	validator *validator.Validate
}

func NewHandler(service *Service, cookies *CookieWriter) *Handler {
	return &Handler{
		service:   service,
		cookies:   cookies,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes mounts the auth surface. Login and register sit behind
// their own named fixed-window limiters; the activation, invitation and
// csrf endpoints precede session establishment and stay public.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	loginLimiter, registerLimiter func(http.Handler) http.Handler,
) {
	r.Route("/auth", func(r chi.Router) {
		r.With(loginLimiter).Post("/login", h.Login)
		r.With(registerLimiter).Post("/register", h.Register)
		r.Post("/activate", h.Activate)
		r.Post("/invitation/verify", h.VerifyInvitation)
		r.Get("/csrf", h.Csrf)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Get("/me", h.GetMe)
			r.Post("/logout", h.Logout)
		})
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	identity, err := h.service.ValidateUser(r.Context(), req.Email, req.Password)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	if identity == nil {
		core.JSONError(w, core.InvalidCredentialsError())
		return
	}

	result, err := h.service.Login(r.Context(), identity)
	if err != nil {
		if errors.Is(err, core.ErrAccountInactive) {
			core.JSONError(w, core.AccountInactiveError())
			return
		}
		core.InternalServerError(w, err)
		return
	}

	h.cookies.SetSessionCookie(w, result.AccessToken)

	if csrfToken, csrfErr := core.GenerateCSRFToken(); csrfErr == nil {
		h.cookies.SetCSRFCookie(w, csrfToken)
	}

	core.OK(w, LoginResponse{
		AccessToken: result.AccessToken,
		User:        result.User,
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	identity, err := h.service.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, core.ErrInvitationMismatch) {
			core.JSONError(w, core.InvitationMismatchError())
			return
		}
		if errors.Is(err, core.ErrDuplicateKey) {
			core.JSONError(w, core.DuplicateError("email"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, toUserResponse(identity))
}

// Csrf issues a fresh double-submit token: one copy as a script-readable
// cookie, one in the body for clients that prefer reading it there.
func (h *Handler) Csrf(w http.ResponseWriter, r *http.Request) {
	token, err := core.GenerateCSRFToken()
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	h.cookies.SetCSRFCookie(w, token)
	core.OK(w, CSRFResponse{CSRFToken: token})
}

func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	var req ActivateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	identity, err := h.service.Activate(r.Context(), req.Token)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.Unauthorized(w, "invalid or expired activation token")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, toUserResponse(identity))
}

func (h *Handler) VerifyInvitation(w http.ResponseWriter, r *http.Request) {
	var req VerifyInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	if err := h.service.VerifyInvitationCode(req.Code); err != nil {
		core.JSONError(w, core.InvitationMismatchError())
		return
	}

	core.OK(w, SuccessResponse{Success: true})
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == 0 {
		core.JSONError(w, core.InvalidSessionError())
		return
	}

	user, err := h.service.GetCurrentUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, user)
}

// Logout clears the session cookie. Tokens are stateless, so there is
// nothing to revoke server-side; the cookie removal ends the browser
// session and the token ages out at its TTL.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.ClearSessionCookie(w)
	core.NoContent(w)
}

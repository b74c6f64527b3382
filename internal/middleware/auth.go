// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/angelamos/jobtrack/internal/core"
)

const (
	UserIDKey    contextKey = "user_id"
	UserEmailKey contextKey = "user_email"
	UserPlanKey  contextKey = "user_plan"
	ClaimsKey    contextKey = "session_claims"
)

// SessionCookieName carries the signed session token; the cookie is
// HttpOnly and set by the auth handler.
const SessionCookieName = "jobtrack_session"

// SessionClaims is the decoded identity a verified token attaches to the
// request context. Plan reflects the plan at issuance time only; premium
// gating re-reads the store.
type SessionClaims struct {
	UserID int64
	Email  string
	Plan   string
}

type TokenVerifier interface {
	VerifySessionToken(
		ctx context.Context,
		token string,
	) (*SessionClaims, error)
}

// Access is the server-side authorization state of a user, re-fetched per
// request wherever a decision must not trust stale token claims.
type Access struct {
	Plan string
	Role string
}

type AccessSource interface {
	GetAccess(ctx context.Context, userID int64) (Access, error)
}

// RoutePolicy is the static per-route authorization contract. Routes are
// private by default; public is an explicit opt-out at the registration
// site, and premium is an explicit opt-in.
type RoutePolicy struct {
	Public          bool
	RequiresPremium bool
}

// Guard builds the per-request decision pipeline for a route group,
// evaluated strictly in order: public check, token verification, premium
// check. Composition over inheritance: each step either rejects or
// delegates to the next.
func Guard(
	verifier TokenVerifier,
	access AccessSource,
	policy RoutePolicy,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if policy.Public {
				next.ServeHTTP(w, r)
				return
			}

			token := ExtractToken(r)
			if token == "" {
				core.JSONError(w, core.InvalidSessionError())
				return
			}

			claims, err := verifier.VerifySessionToken(r.Context(), token)
			if err != nil {
				handleTokenError(w, err)
				return
			}

			ctx := withClaims(r.Context(), claims)

			if policy.RequiresPremium {
				current, err := access.GetAccess(ctx, claims.UserID)
				if err != nil {
					if errors.Is(err, core.ErrNotFound) {
						core.JSONError(w, core.InvalidSessionError())
						return
					}
					core.InternalServerError(w, err)
					return
				}

				if !PlanSatisfiesPremium(current.Plan) {
					core.JSONError(w, core.UnauthorizedScopeError())
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin re-fetches the caller's role from the store; it never
// trusts anything carried in the token.
func RequireAdmin(access AccessSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := GetUserID(r.Context())
			if userID == 0 {
				core.JSONError(w, core.InvalidSessionError())
				return
			}

			current, err := access.GetAccess(r.Context(), userID)
			if err != nil {
				if errors.Is(err, core.ErrNotFound) {
					core.JSONError(w, core.InvalidSessionError())
					return
				}
				core.InternalServerError(w, err)
				return
			}

			if current.Role != "admin" {
				core.JSONError(
					w,
					core.ForbiddenError("insufficient permissions"),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// PlanSatisfiesPremium reports whether a pricing plan clears the premium
// gate. Enterprise is a superset of premium.
func PlanSatisfiesPremium(plan string) bool {
	switch plan {
	case "premium", "enterprise":
		return true
	default:
		return false
	}
}

// ExtractToken pulls the session token from the Authorization header,
// falling back to the session cookie for browser clients.
func ExtractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}

	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}

	return ""
}

func handleTokenError(w http.ResponseWriter, err error) {
	if core.IsAppError(err) {
		core.JSONError(w, err)
		return
	}

	switch {
	case errors.Is(err, core.ErrTokenExpired):
		core.JSONError(w, core.TokenExpiredError())
	case errors.Is(err, core.ErrTokenInvalid):
		core.JSONError(w, core.TokenInvalidError())
	default:
		core.JSONError(w, core.TokenInvalidError())
	}
}

func withClaims(ctx context.Context, claims *SessionClaims) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
	ctx = context.WithValue(ctx, UserEmailKey, claims.Email)
	ctx = context.WithValue(ctx, UserPlanKey, claims.Plan)
	ctx = context.WithValue(ctx, ClaimsKey, claims)
	return ctx
}

func GetUserID(ctx context.Context) int64 {
	if id, ok := ctx.Value(UserIDKey).(int64); ok {
		return id
	}
	return 0
}

func GetUserEmail(ctx context.Context) string {
	if email, ok := ctx.Value(UserEmailKey).(string); ok {
		return email
	}
	return ""
}

func GetUserPlan(ctx context.Context) string {
	if plan, ok := ctx.Value(UserPlanKey).(string); ok {
		return plan
	}
	return ""
}

func GetClaims(ctx context.Context) *SessionClaims {
	if claims, ok := ctx.Value(ClaimsKey).(*SessionClaims); ok {
		return claims
	}
	return nil
}

func IsAuthenticated(ctx context.Context) bool {
	return GetUserID(ctx) != 0
}

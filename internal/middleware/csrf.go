// AngelaMos | 2026
// csrf.go

package middleware

import (
	"net/http"

	"github.com/angelamos/jobtrack/internal/core"
)

const (
	// CSRFCookieName is deliberately not HttpOnly: the double-submit
	// pattern only works if the frontend can read the cookie and echo it
	// into the header.
	CSRFCookieName = "jobtrack_csrf"
	CSRFHeaderName = "X-CSRF-Token"
)

// CSRF enforces the double-submit-cookie check on mutating methods. The
// exempt paths either precede session establishment (login, register,
// activation) or are inherently safe (csrf issuance, health probes), so
// they carry no cross-site risk.
type CSRF struct {
	exempt map[string]struct{}
}

func NewCSRF(exemptPaths []string) *CSRF {
	exempt := make(map[string]struct{}, len(exemptPaths))
	for _, path := range exemptPaths {
		exempt[path] = struct{}{}
	}
	return &CSRF{exempt: exempt}
}

func (c *CSRF) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isMutating(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		if _, ok := c.exempt[r.URL.Path]; ok {
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(CSRFCookieName)
		if err != nil || cookie.Value == "" {
			core.JSONError(w, core.CsrfMismatchError())
			return
		}

		header := r.Header.Get(CSRFHeaderName)
		if header == "" || !core.ConstantTimeEquals(cookie.Value, header) {
			core.JSONError(w, core.CsrfMismatchError())
			return
		}

		next.ServeHTTP(w, r)
	})
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

// AngelaMos | 2026
// cookies.go

package auth

import (
	"net/http"
	"time"

	"github.com/angelamos/jobtrack/internal/middleware"
)

// CookieWriter owns the session-transport conventions: the session token
// travels HttpOnly, the CSRF token stays script-readable so the client
// can echo it into a header, both are SameSite=Lax, and Secure is set
// only in production so plain-HTTP local testing keeps working.
type CookieWriter struct {
	secure     bool
	sessionTTL time.Duration
}

func NewCookieWriter(production bool, sessionTTL time.Duration) *CookieWriter {
	return &CookieWriter{
		secure:     production,
		sessionTTL: sessionTTL,
	}
}

func (c *CookieWriter) SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c *CookieWriter) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c *CookieWriter) SetCSRFCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CSRFCookieName,
		Value:    token,
		Path:     "/",
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

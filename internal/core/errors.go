// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"net/http"
	"strings"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateKey       = errors.New("duplicate key")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrInvalidSession     = errors.New("invalid session")
	ErrUnauthorizedScope  = errors.New("unauthorized scope")
	ErrInvitationMismatch = errors.New("invitation code mismatch")
	ErrAccountInactive    = errors.New("account not activated")
	ErrCsrfMismatch       = errors.New("csrf token mismatch")
	ErrRateLimited        = errors.New("rate limited")
)

// AppError is the boundary representation of every failure this service
// reports to clients. Handlers and middleware translate internal errors
// into one of these; nothing below the boundary writes HTTP responses.
type AppError struct {
	Err     error  `json:"-"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Code    string `json:"code"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Type is the lowercase taxonomy tag mirrored into response bodies.
func (e *AppError) Type() string {
	return strings.ToLower(e.Code)
}

func NewAppError(err error, message string, status int, code string) *AppError {
	return &AppError{
		Err:     err,
		Message: message,
		Status:  status,
		Code:    code,
	}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func InvalidCredentialsError() *AppError {
	return NewAppError(
		ErrInvalidCredentials,
		"invalid email or password",
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
	)
}

func TokenExpiredError() *AppError {
	return NewAppError(
		ErrTokenExpired,
		"session expired, please log in again",
		http.StatusUnauthorized,
		"TOKEN_EXPIRED",
	)
}

func TokenInvalidError() *AppError {
	return NewAppError(
		ErrTokenInvalid,
		"invalid authentication token",
		http.StatusUnauthorized,
		"INVALID_TOKEN",
	)
}

func InvalidSessionError() *AppError {
	return NewAppError(
		ErrInvalidSession,
		"no valid session for this request",
		http.StatusUnauthorized,
		"INVALID_SESSION",
	)
}

func UnauthorizedScopeError() *AppError {
	return NewAppError(
		ErrUnauthorizedScope,
		"this feature requires a premium plan, please upgrade",
		http.StatusForbidden,
		"UNAUTHORIZED_SCOPE",
	)
}

func InvitationMismatchError() *AppError {
	return NewAppError(
		ErrInvitationMismatch,
		"invalid invitation code",
		http.StatusUnauthorized,
		"INVITATION_MISMATCH",
	)
}

func AccountInactiveError() *AppError {
	return NewAppError(
		ErrAccountInactive,
		"account pending activation",
		http.StatusForbidden,
		"ACCOUNT_INACTIVE",
	)
}

func CsrfMismatchError() *AppError {
	return NewAppError(
		ErrCsrfMismatch,
		"missing or mismatched CSRF token",
		http.StatusForbidden,
		"CSRF_MISMATCH",
	)
}

func RateLimitedError(message string) *AppError {
	return NewAppError(
		ErrRateLimited,
		message,
		http.StatusTooManyRequests,
		"RATE_LIMITED",
	)
}

func UnauthorizedError(message string) *AppError {
	if message == "" {
		message = "authentication required"
	}
	return NewAppError(
		ErrUnauthorized,
		message,
		http.StatusUnauthorized,
		"UNAUTHORIZED",
	)
}

func ForbiddenError(message string) *AppError {
	if message == "" {
		message = "forbidden"
	}
	return NewAppError(ErrForbidden, message, http.StatusForbidden, "FORBIDDEN")
}

func NotFoundError(resource string) *AppError {
	return NewAppError(
		ErrNotFound,
		resource+" not found",
		http.StatusNotFound,
		"NOT_FOUND",
	)
}

func DuplicateError(field string) *AppError {
	return NewAppError(
		ErrDuplicateKey,
		field+" already exists",
		http.StatusConflict,
		"CONFLICT",
	)
}

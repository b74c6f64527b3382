// AngelaMos | 2026
// dto.go

package auth

import (
	"time"
)

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Username string `json:"username" validate:"required,min=1,max=100"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Code     string `json:"code,omitempty"  validate:"omitempty,max=128"`
}

type ActivateRequest struct {
	Token string `json:"token" validate:"required"`
}

type VerifyInvitationRequest struct {
	Code string `json:"code" validate:"required,max=128"`
}

type UserResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Plan      string    `json:"plan"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	User        UserResponse `json:"user"`
}

type CSRFResponse struct {
	CSRFToken string `json:"csrf_token"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

type User struct {
	ID                  int64      `db:"id"`
	Email               string     `db:"email"`
	PasswordHash        string     `db:"password_hash"`
	Name                string     `db:"name"`
	Phone               string     `db:"phone"`
	Plan                string     `db:"plan"`
	Role                string     `db:"role"`
	IsActive            bool       `db:"is_active"`
	ActivationToken     *string    `db:"activation_token"`
	ActivationExpiresAt *time.Time `db:"activation_expires_at"`
	CreatedAt           time.Time  `db:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at"`
	DeletedAt           *time.Time `db:"deleted_at"`
}

func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	PlanFree       = "free"
	PlanPremium    = "premium"
	PlanEnterprise = "enterprise"
)

func ValidPlan(plan string) bool {
	switch plan {
	case PlanFree, PlanPremium, PlanEnterprise:
		return true
	default:
		return false
	}
}

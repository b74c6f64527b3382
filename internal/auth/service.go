// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelamos/jobtrack/internal/config"
	"github.com/angelamos/jobtrack/internal/core"
)

// UserInfo is the credential-store view of a user the auth core works
// with. The password hash never crosses the service boundary outward.
type UserInfo struct {
	ID           int64
	Email        string
	Name         string
	Phone        string
	Plan         string
	Role         string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
}

type CreateUserParams struct {
	Email               string
	PasswordHash        string
	Name                string
	Phone               string
	Active              bool
	ActivationToken     string
	ActivationExpiresAt *time.Time
}

// UserProvider is the credential-store contract. Lookups return
// core.ErrNotFound, creation returns core.ErrDuplicateKey on an email
// collision.
type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id int64) (*UserInfo, error)
	Create(ctx context.Context, params CreateUserParams) (*UserInfo, error)
	ActivateByToken(ctx context.Context, token string) (*UserInfo, error)
}

// Identity is the sanitized result of credential verification; it never
// carries the password hash.
type Identity struct {
	ID        int64
	Email     string
	Name      string
	Plan      string
	Active    bool
	CreatedAt time.Time
}

type LoginResult struct {
	AccessToken string
	User        UserResponse
}

type Service struct {
	users UserProvider
	jwt   *TokenManager
	cfg   config.AuthConfig
}

func NewService(
	users UserProvider,
	jwt *TokenManager,
	cfg config.AuthConfig,
) *Service {
	return &Service{
		users: users,
		jwt:   jwt,
		cfg:   cfg,
	}
}

// ValidateUser verifies an email/password pair. An unknown email and a
// wrong password are indistinguishable to the caller: both return
// (nil, nil), and both cost one full bcrypt comparison.
func (s *Service) ValidateUser(
	ctx context.Context,
	email, password string,
) (*Identity, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // enumeration defense, result discarded
			_, _ = core.VerifyPasswordTimingSafe(password, nil)
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, err := core.VerifyPasswordTimingSafe(password, &user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, nil
	}

	return sanitize(user), nil
}

// Login issues a session token for an already-validated identity.
func (s *Service) Login(
	_ context.Context,
	identity *Identity,
) (*LoginResult, error) {
	if s.cfg.RequireActivation && !identity.Active {
		return nil, fmt.Errorf("login: %w", core.ErrAccountInactive)
	}

	accessToken, err := s.jwt.CreateSessionToken(SessionTokenClaims{
		UserID: identity.ID,
		Email:  identity.Email,
		Plan:   identity.Plan,
	})
	if err != nil {
		return nil, fmt.Errorf("create session token: %w", err)
	}

	return &LoginResult{
		AccessToken: accessToken,
		User:        toUserResponse(identity),
	}, nil
}

// Register creates an account behind the invitation gate. When no
// invitation code is configured the gate is open.
func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*Identity, error) {
	if err := s.VerifyInvitationCode(req.Code); err != nil {
		return nil, err
	}

	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	params := CreateUserParams{
		Email:        req.Email,
		PasswordHash: passwordHash,
		Name:         req.Username,
		Phone:        req.Phone,
		Active:       true,
	}

	if s.cfg.RequireActivation {
		token, tokenErr := core.GenerateActivationToken()
		if tokenErr != nil {
			return nil, fmt.Errorf("generate activation token: %w", tokenErr)
		}

		expiresAt := time.Now().Add(s.cfg.ActivationTTL)
		params.Active = false
		params.ActivationToken = token
		params.ActivationExpiresAt = &expiresAt
	}

	user, err := s.users.Create(ctx, params)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, fmt.Errorf("register: %w", core.ErrDuplicateKey)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return sanitize(user), nil
}

// VerifyInvitationCode is the stateless gate check. The comparison is
// constant-time; the code is a shared operator secret, not a per-user
// record.
func (s *Service) VerifyInvitationCode(code string) error {
	if s.cfg.InvitationCode == "" {
		return nil
	}

	if !core.ConstantTimeEquals(code, s.cfg.InvitationCode) {
		return fmt.Errorf(
			"verify invitation code: %w",
			core.ErrInvitationMismatch,
		)
	}

	return nil
}

// Activate completes a pending registration from the emailed token.
func (s *Service) Activate(ctx context.Context, token string) (*Identity, error) {
	user, err := s.users.ActivateByToken(ctx, token)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("activate: %w", core.ErrNotFound)
		}
		return nil, fmt.Errorf("activate: %w", err)
	}

	return sanitize(user), nil
}

func (s *Service) GetCurrentUser(
	ctx context.Context,
	userID int64,
) (*UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := toUserResponse(sanitize(user))
	return &resp, nil
}

func sanitize(u *UserInfo) *Identity {
	return &Identity{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Plan:      u.Plan,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
	}
}

func toUserResponse(identity *Identity) UserResponse {
	return UserResponse{
		ID:        identity.ID,
		Email:     identity.Email,
		Name:      identity.Name,
		Plan:      identity.Plan,
		IsActive:  identity.Active,
		CreatedAt: identity.CreatedAt,
	}
}

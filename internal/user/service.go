// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelamos/jobtrack/internal/auth"
	"github.com/angelamos/jobtrack/internal/core"
	"github.com/angelamos/jobtrack/internal/middleware"
)

// Service is the credential store the auth core and guard chain depend
// on. Emails are lowercased here so the repository can stay exact-match.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByID(
	ctx context.Context,
	id int64,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) Create(
	ctx context.Context,
	params auth.CreateUserParams,
) (*auth.UserInfo, error) {
	user := &User{
		Email:               strings.ToLower(params.Email),
		PasswordHash:        params.PasswordHash,
		Name:                params.Name,
		Phone:               params.Phone,
		Plan:                PlanFree,
		Role:                RoleUser,
		IsActive:            params.Active,
		ActivationExpiresAt: params.ActivationExpiresAt,
	}

	if params.ActivationToken != "" {
		token := params.ActivationToken
		user.ActivationToken = &token
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) ActivateByToken(
	ctx context.Context,
	token string,
) (*auth.UserInfo, error) {
	user, err := s.repo.ActivateByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

// GetAccess feeds the guard chain's server-side authorization re-check;
// it always reflects the stored plan and role, never token claims.
func (s *Service) GetAccess(
	ctx context.Context,
	userID int64,
) (middleware.Access, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return middleware.Access{}, err
	}

	return middleware.Access{
		Plan: user.Plan,
		Role: user.Role,
	}, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateUser(
	ctx context.Context,
	id int64,
	req UpdateUserRequest,
) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}

	if req.Phone != nil {
		user.Phone = *req.Phone
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// UpdateUserPlan takes effect on the next premium-gated request without
// forcing re-login, because the gate re-reads the store.
func (s *Service) UpdateUserPlan(
	ctx context.Context,
	id int64,
	plan string,
) (*User, error) {
	if !ValidPlan(plan) {
		return nil, fmt.Errorf(
			"update plan: invalid plan %q: %w",
			plan,
			core.ErrInvalidInput,
		)
	}

	if err := s.repo.UpdatePlan(ctx, id, plan); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, id)
}

func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) GetMe(ctx context.Context, userID int64) (*User, error) {
	if userID == 0 {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	return s.repo.GetByID(ctx, userID)
}

func (s *Service) UpdateMe(
	ctx context.Context,
	userID int64,
	req UpdateUserRequest,
) (*User, error) {
	if userID == 0 {
		return nil, fmt.Errorf("update me: %w", core.ErrUnauthorized)
	}

	return s.UpdateUser(ctx, userID, req)
}

func (s *Service) DeleteMe(ctx context.Context, userID int64) error {
	if userID == 0 {
		return fmt.Errorf("delete me: %w", core.ErrUnauthorized)
	}

	return s.repo.SoftDelete(ctx, userID)
}

func (s *Service) EmailExists(
	ctx context.Context,
	email string,
) (bool, error) {
	return s.repo.ExistsByEmail(ctx, strings.ToLower(email))
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Phone:        u.Phone,
		Plan:         u.Plan,
		Role:         u.Role,
		PasswordHash: u.PasswordHash,
		Active:       u.IsActive,
		CreatedAt:    u.CreatedAt,
	}
}

var (
	_ auth.UserProvider       = (*Service)(nil)
	_ middleware.AccessSource = (*Service)(nil)
)

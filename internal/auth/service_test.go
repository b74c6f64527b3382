// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/jobtrack/internal/config"
	"github.com/angelamos/jobtrack/internal/core"
)

// fakeUserProvider is an in-memory credential store keyed by email.
type fakeUserProvider struct {
	users  map[string]*UserInfo
	nextID int64
}

func newFakeUserProvider() *fakeUserProvider {
	return &fakeUserProvider{
		users:  make(map[string]*UserInfo),
		nextID: 1,
	}
}

func (f *fakeUserProvider) GetByEmail(
	_ context.Context,
	email string,
) (*UserInfo, error) {
	user, ok := f.users[strings.ToLower(email)]
	if !ok {
		return nil, core.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserProvider) GetByID(
	_ context.Context,
	id int64,
) (*UserInfo, error) {
	for _, user := range f.users {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeUserProvider) Create(
	_ context.Context,
	params CreateUserParams,
) (*UserInfo, error) {
	email := strings.ToLower(params.Email)
	if _, exists := f.users[email]; exists {
		return nil, core.ErrDuplicateKey
	}

	user := &UserInfo{
		ID:           f.nextID,
		Email:        email,
		Name:         params.Name,
		Phone:        params.Phone,
		Plan:         "free",
		Role:         "user",
		PasswordHash: params.PasswordHash,
		Active:       params.Active,
		CreatedAt:    time.Now(),
	}
	f.nextID++
	f.users[email] = user

	copied := *user
	return &copied, nil
}

func (f *fakeUserProvider) ActivateByToken(
	_ context.Context,
	_ string,
) (*UserInfo, error) {
	return nil, core.ErrNotFound
}

func (f *fakeUserProvider) add(t *testing.T, email, password string) *UserInfo {
	t.Helper()

	hash, err := core.HashPassword(password)
	require.NoError(t, err)

	user := &UserInfo{
		ID:           f.nextID,
		Email:        strings.ToLower(email),
		Name:         "Test User",
		Plan:         "free",
		Role:         "user",
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    time.Now(),
	}
	f.nextID++
	f.users[user.Email] = user
	return user
}

func newTestService(
	t *testing.T,
	users UserProvider,
	authCfg config.AuthConfig,
) *Service {
	t.Helper()

	tokens, err := NewTokenManager(testJWTConfig())
	require.NoError(t, err)

	return NewService(users, tokens, authCfg)
}

func TestValidateUser(t *testing.T) {
	provider := newFakeUserProvider()
	provider.add(t, "ada@example.com", "correct-password")
	svc := newTestService(t, provider, config.AuthConfig{})

	ctx := context.Background()

	t.Run("valid credentials return sanitized identity", func(t *testing.T) {
		identity, err := svc.ValidateUser(ctx, "ada@example.com", "correct-password")
		require.NoError(t, err)
		require.NotNil(t, identity)

		assert.Equal(t, "ada@example.com", identity.Email)
		assert.Equal(t, "free", identity.Plan)
	})

	t.Run("unknown email returns nil without error", func(t *testing.T) {
		identity, err := svc.ValidateUser(ctx, "ghost@example.com", "whatever")
		require.NoError(t, err)
		assert.Nil(t, identity)
	})

	t.Run("wrong password returns nil without error", func(t *testing.T) {
		identity, err := svc.ValidateUser(ctx, "ada@example.com", "wrong-password")
		require.NoError(t, err)
		assert.Nil(t, identity)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("issues verifiable session token", func(t *testing.T) {
		provider := newFakeUserProvider()
		user := provider.add(t, "ada@example.com", "correct-password")
		svc := newTestService(t, provider, config.AuthConfig{})

		identity, err := svc.ValidateUser(ctx, user.Email, "correct-password")
		require.NoError(t, err)
		require.NotNil(t, identity)

		result, err := svc.Login(ctx, identity)
		require.NoError(t, err)
		require.NotEmpty(t, result.AccessToken)

		claims, err := svc.jwt.VerifySessionToken(ctx, result.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, user.Email, claims.Email)
	})

	t.Run("inactive account blocked when activation required", func(t *testing.T) {
		provider := newFakeUserProvider()
		user := provider.add(t, "pending@example.com", "correct-password")
		user.Active = false

		svc := newTestService(t, provider, config.AuthConfig{
			RequireActivation: true,
		})

		identity, err := svc.ValidateUser(ctx, user.Email, "correct-password")
		require.NoError(t, err)
		require.NotNil(t, identity)

		_, err = svc.Login(ctx, identity)
		require.ErrorIs(t, err, core.ErrAccountInactive)
	})
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	req := RegisterRequest{
		Email:    "new@example.com",
		Username: "newbie",
		Password: "a-strong-password",
	}

	t.Run("open gate when no invitation code configured", func(t *testing.T) {
		provider := newFakeUserProvider()
		svc := newTestService(t, provider, config.AuthConfig{})

		identity, err := svc.Register(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", identity.Email)
		assert.True(t, identity.Active)
	})

	t.Run("matching invitation code passes", func(t *testing.T) {
		provider := newFakeUserProvider()
		svc := newTestService(t, provider, config.AuthConfig{
			InvitationCode: "friends-only",
		})

		gated := req
		gated.Code = "friends-only"

		_, err := svc.Register(ctx, gated)
		require.NoError(t, err)
	})

	t.Run("wrong invitation code is rejected", func(t *testing.T) {
		provider := newFakeUserProvider()
		svc := newTestService(t, provider, config.AuthConfig{
			InvitationCode: "friends-only",
		})

		gated := req
		gated.Code = "strangers"

		_, err := svc.Register(ctx, gated)
		require.ErrorIs(t, err, core.ErrInvitationMismatch)
		assert.Empty(t, provider.users)
	})

	t.Run("duplicate email surfaces conflict", func(t *testing.T) {
		provider := newFakeUserProvider()
		provider.add(t, "new@example.com", "existing-password")
		svc := newTestService(t, provider, config.AuthConfig{})

		_, err := svc.Register(ctx, req)
		require.ErrorIs(t, err, core.ErrDuplicateKey)
	})

	t.Run("stores a hash, never the password", func(t *testing.T) {
		provider := newFakeUserProvider()
		svc := newTestService(t, provider, config.AuthConfig{})

		_, err := svc.Register(ctx, req)
		require.NoError(t, err)

		stored := provider.users["new@example.com"]
		require.NotNil(t, stored)
		assert.NotEqual(t, req.Password, stored.PasswordHash)
		assert.True(t, strings.HasPrefix(stored.PasswordHash, "$2a$"))
	})

	t.Run("activation flow creates pending account", func(t *testing.T) {
		provider := newFakeUserProvider()
		svc := newTestService(t, provider, config.AuthConfig{
			RequireActivation: true,
			ActivationTTL:     24 * time.Hour,
		})

		identity, err := svc.Register(ctx, req)
		require.NoError(t, err)
		assert.False(t, identity.Active)
	})
}

func TestVerifyInvitationCode(t *testing.T) {
	t.Run("empty configured code admits everyone", func(t *testing.T) {
		svc := newTestService(t, newFakeUserProvider(), config.AuthConfig{})

		assert.NoError(t, svc.VerifyInvitationCode(""))
		assert.NoError(t, svc.VerifyInvitationCode("anything"))
	})

	t.Run("configured code must match exactly", func(t *testing.T) {
		svc := newTestService(t, newFakeUserProvider(), config.AuthConfig{
			InvitationCode: "friends-only",
		})

		assert.NoError(t, svc.VerifyInvitationCode("friends-only"))
		require.ErrorIs(
			t,
			svc.VerifyInvitationCode("FRIENDS-ONLY"),
			core.ErrInvitationMismatch,
		)
		require.ErrorIs(
			t,
			svc.VerifyInvitationCode(""),
			core.ErrInvitationMismatch,
		)
	})
}

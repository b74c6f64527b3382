// AngelaMos | 2026
// jwt.go

package auth

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/angelamos/jobtrack/internal/config"
	"github.com/angelamos/jobtrack/internal/core"
	"github.com/angelamos/jobtrack/internal/middleware"
)

// TokenManager signs and verifies the stateless session tokens. Validity
// is fully determined by signature and expiry; the server keeps no
// session table.
type TokenManager struct {
	key jwk.Key
	cfg config.JWTConfig

	// now is swapped out in tests to pin the clock.
	now func() time.Time
}

// NewTokenManager fails when the signing secret is missing or blank.
// Startup must abort on that error; running without a verifiable secret
// would turn every token check into fail-open.
func NewTokenManager(cfg config.JWTConfig) (*TokenManager, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, fmt.Errorf("jwt: signing secret is required and must not be blank")
	}

	key, err := jwk.Import([]byte(cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("jwt: import signing key: %w", err)
	}

	if setErr := key.Set(jwk.AlgorithmKey, jwa.HS256()); setErr != nil {
		return nil, fmt.Errorf("jwt: set algorithm: %w", setErr)
	}

	return &TokenManager{
		key: key,
		cfg: cfg,
		now: time.Now,
	}, nil
}

// SessionTokenClaims is the claim set embedded at issuance. Plan is a
// snapshot; premium gating re-reads the store instead of trusting it.
type SessionTokenClaims struct {
	UserID int64
	Email  string
	Plan   string
}

func (m *TokenManager) CreateSessionToken(
	claims SessionTokenClaims,
) (string, error) {
	now := m.now()

	token, err := jwt.NewBuilder().
		JwtID(uuid.New().String()).
		Issuer(m.cfg.Issuer).
		Audience([]string{m.cfg.Audience}).
		Subject(strconv.FormatInt(claims.UserID, 10)).
		IssuedAt(now).
		Expiration(now.Add(m.cfg.SessionTokenTTL)).
		Claim("email", claims.Email).
		Claim("plan", claims.Plan).
		Build()
	if err != nil {
		return "", fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), m.key))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return string(signed), nil
}

// VerifySessionToken checks signature, issuer, audience and expiry, and
// returns the decoded identity. Expiry is inclusive: a token inspected at
// exactly its expiration instant is already expired. Failure kinds stay
// distinct so the guard layer can tell "session expired" from "invalid
// token".
func (m *TokenManager) VerifySessionToken(
	_ context.Context,
	tokenString string,
) (*middleware.SessionClaims, error) {
	// Signature check only here; temporal checks are explicit below so
	// the expired/invalid distinction never depends on parser internals.
	token, err := jwt.Parse(
		[]byte(tokenString),
		jwt.WithKey(jwa.HS256(), m.key),
		jwt.WithValidate(false),
	)
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
	}

	if issuer, ok := token.Issuer(); !ok || issuer != m.cfg.Issuer {
		return nil, fmt.Errorf(
			"verify token: issuer mismatch: %w",
			core.ErrTokenInvalid,
		)
	}

	if !audienceContains(token, m.cfg.Audience) {
		return nil, fmt.Errorf(
			"verify token: audience mismatch: %w",
			core.ErrTokenInvalid,
		)
	}

	expiresAt, ok := token.Expiration()
	if !ok {
		return nil, fmt.Errorf(
			"verify token: missing expiration: %w",
			core.ErrTokenInvalid,
		)
	}

	if !m.now().Before(expiresAt) {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenExpired)
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, fmt.Errorf(
			"verify token: missing subject: %w",
			core.ErrTokenInvalid,
		)
	}

	userID, err := strconv.ParseInt(subject, 10, 64)
	if err != nil {
		return nil, fmt.Errorf(
			"verify token: malformed subject: %w",
			core.ErrTokenInvalid,
		)
	}

	var email string
	if err := token.Get("email", &email); err != nil {
		return nil, fmt.Errorf(
			"verify token: missing email claim: %w",
			core.ErrTokenInvalid,
		)
	}

	var plan string
	if err := token.Get("plan", &plan); err != nil {
		return nil, fmt.Errorf(
			"verify token: missing plan claim: %w",
			core.ErrTokenInvalid,
		)
	}

	return &middleware.SessionClaims{
		UserID: userID,
		Email:  email,
		Plan:   plan,
	}, nil
}

func audienceContains(token jwt.Token, audience string) bool {
	values, ok := token.Audience()
	if !ok {
		return false
	}
	for _, value := range values {
		if value == audience {
			return true
		}
	}
	return false
}

// AngelaMos | 2026
// security_test.go

package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	t.Run("produces verifiable hash", func(t *testing.T) {
		hash, err := HashPassword("correct horse battery staple")
		require.NoError(t, err)
		require.NotEmpty(t, hash)

		valid, err := VerifyPassword("correct horse battery staple", hash)
		require.NoError(t, err)
		assert.True(t, valid)
	})

	t.Run("rejects empty password", func(t *testing.T) {
		_, err := HashPassword("")
		require.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("same password hashes differently", func(t *testing.T) {
		first, err := HashPassword("hunter2")
		require.NoError(t, err)

		second, err := HashPassword("hunter2")
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})

	t.Run("uses bcrypt with configured cost", func(t *testing.T) {
		hash, err := HashPassword("hunter2")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$2a$10$"))
	})
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)

	t.Run("wrong password is not an error", func(t *testing.T) {
		valid, err := VerifyPassword("hunter3", hash)
		require.NoError(t, err)
		assert.False(t, valid)
	})

	t.Run("garbage hash is an error", func(t *testing.T) {
		_, err := VerifyPassword("hunter2", "not-a-bcrypt-hash")
		require.Error(t, err)
	})
}

func TestVerifyPasswordTimingSafe(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)

	t.Run("matches with real hash", func(t *testing.T) {
		valid, err := VerifyPasswordTimingSafe("hunter2", &hash)
		require.NoError(t, err)
		assert.True(t, valid)
	})

	t.Run("nil hash always fails without error", func(t *testing.T) {
		valid, err := VerifyPasswordTimingSafe("hunter2", nil)
		require.NoError(t, err)
		assert.False(t, valid)
	})

	t.Run("empty hash always fails without error", func(t *testing.T) {
		empty := ""
		valid, err := VerifyPasswordTimingSafe("hunter2", &empty)
		require.NoError(t, err)
		assert.False(t, valid)
	})
}

func TestGenerateSecureToken(t *testing.T) {
	t.Run("tokens are unique", func(t *testing.T) {
		seen := make(map[string]struct{})
		for range 50 {
			token, err := GenerateSecureToken(32)
			require.NoError(t, err)
			require.NotEmpty(t, token)

			_, dup := seen[token]
			require.False(t, dup)
			seen[token] = struct{}{}
		}
	})

	t.Run("url safe", func(t *testing.T) {
		token, err := GenerateCSRFToken()
		require.NoError(t, err)
		assert.NotContains(t, token, "+")
		assert.NotContains(t, token, "/")
		assert.NotContains(t, token, "=")
	})
}

func TestConstantTimeEquals(t *testing.T) {
	assert.True(t, ConstantTimeEquals("abc", "abc"))
	assert.False(t, ConstantTimeEquals("abc", "abd"))
	assert.False(t, ConstantTimeEquals("abc", "abcd"))
	assert.True(t, ConstantTimeEquals("", ""))
}

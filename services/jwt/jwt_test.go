package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret"

	access, refresh, err := GenerateToken(42, "user@example.com", secret)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	t.Run("access claims round-trip", func(t *testing.T) {
		claims, err := ValidateAndGetClaims(access, secret)
		require.NoError(t, err)
		assert.EqualValues(t, 42, claims["id"])
		assert.Equal(t, "user@example.com", claims["email"])
		assert.Equal(t, "access", claims["type"])
	})

	t.Run("wrong secret is rejected", func(t *testing.T) {
		_, err := ValidateAndGetClaims(access, "other-secret")
		assert.Error(t, err)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		_, err := ValidateAndGetClaims("not.a.token", secret)
		assert.Error(t, err)
	})

	t.Run("empty secret cannot mint", func(t *testing.T) {
		_, _, err := GenerateToken(42, "user@example.com", "")
		assert.Error(t, err)
	})
}

package tests

import (
	"testing"
	"time"

	"github.com/bannerhive/bannerhive/app/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecretKey = "test-secret-key-at-least-32-characters-long"

func newTokenService(t *testing.T, accessTTL time.Duration) services.TokenService {
	t.Helper()
	svc, err := services.NewTokenService(accessTTL, 24*time.Hour, "bannerhive", "bannerhive-api", testSecretKey)
	require.NoError(t, err)
	return svc
}

func TestTokenService(t *testing.T) {
	t.Run("RequiresSecret", func(t *testing.T) {
		_, err := services.NewTokenService(time.Hour, 24*time.Hour, "bannerhive", "bannerhive-api", "")
		assert.Error(t, err)
	})

	t.Run("GenerateAndValidate", func(t *testing.T) {
		svc := newTokenService(t, time.Hour)

		access, refresh, err := svc.GenerateTokens(42, false)
		require.NoError(t, err)
		assert.NotEmpty(t, access)
		assert.NotEmpty(t, refresh)
		assert.NotEqual(t, access, refresh)

		claims, err := svc.ValidateToken(access)
		require.NoError(t, err)
		assert.Equal(t, uint(42), claims.UserID)
		assert.False(t, claims.IsAdmin)
		assert.Equal(t, "access", claims.TokenType)
		assert.NotEmpty(t, claims.TokenID)
	})

	t.Run("AdminClaim", func(t *testing.T) {
		svc := newTokenService(t, time.Hour)

		access, _, err := svc.GenerateTokens(7, true)
		require.NoError(t, err)

		claims, err := svc.ValidateToken(access)
		require.NoError(t, err)
		assert.True(t, claims.IsAdmin)
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		svc := newTokenService(t, -time.Minute)

		access, _, err := svc.GenerateTokens(42, false)
		require.NoError(t, err)

		_, err = svc.ValidateToken(access)
		assert.ErrorIs(t, err, services.ErrTokenExpired)
	})

	t.Run("MalformedToken", func(t *testing.T) {
		svc := newTokenService(t, time.Hour)

		_, err := svc.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, services.ErrTokenInvalid)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		svc := newTokenService(t, time.Hour)
		other, err := services.NewTokenService(time.Hour, 24*time.Hour, "bannerhive", "bannerhive-api", "another-secret-key-at-least-32-chars!")
		require.NoError(t, err)

		access, _, err := svc.GenerateTokens(42, false)
		require.NoError(t, err)

		_, err = other.ValidateToken(access)
		assert.ErrorIs(t, err, services.ErrTokenInvalid)
	})

	t.Run("RefreshRotation", func(t *testing.T) {
		svc := newTokenService(t, time.Hour)

		_, refresh, err := svc.GenerateTokens(42, true)
		require.NoError(t, err)

		newAccess, newRefresh, err := svc.RefreshToken(refresh)
		require.NoError(t, err)

		claims, err := svc.ValidateToken(newAccess)
		require.NoError(t, err)
		assert.Equal(t, uint(42), claims.UserID)
		assert.True(t, claims.IsAdmin)
		assert.NotEmpty(t, newRefresh)
	})

	t.Run("RefreshRejectsAccessToken", func(t *testing.T) {
		svc := newTokenService(t, time.Hour)

		access, _, err := svc.GenerateTokens(42, false)
		require.NoError(t, err)

		_, _, err = svc.RefreshToken(access)
		assert.Error(t, err)
	})
}

package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kalindhi/kalindhi-api/internal/auth"
	"github.com/kalindhi/kalindhi-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := newTestTokenManager()

	t.Run("user token", func(t *testing.T) {
		token, err := tm.GenerateUserToken("user-1", "asha@example.com")
		require.NoError(t, err)

		claims, err := tm.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.SubjectID())
		assert.Equal(t, "asha@example.com", claims.Email)
		assert.False(t, claims.IsAdmin)
		assert.NotEmpty(t, claims.ID)
		assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, time.Minute)
	})

	t.Run("admin token", func(t *testing.T) {
		token, err := tm.GenerateAdminToken("admin-1", "ops@example.com")
		require.NoError(t, err)

		claims, err := tm.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "admin-1", claims.SubjectID())
		assert.True(t, claims.IsAdmin)
		assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)
	})
}

func TestTokenManager_Rejects(t *testing.T) {
	tm := newTestTokenManager()

	t.Run("expired", func(t *testing.T) {
		expiredTM := auth.NewTokenManager(testSecret, -time.Second, -time.Second)
		token, err := expiredTM.GenerateUserToken("user-1", "asha@example.com")
		require.NoError(t, err)

		_, err = tm.ValidateToken(token)
		assert.ErrorIs(t, err, models.ErrUnauthorized)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("tampered payload", func(t *testing.T) {
		token, err := tm.GenerateUserToken("user-1", "asha@example.com")
		require.NoError(t, err)

		tampered := []byte(token)
		tampered[len(tampered)/2] ^= 0x01
		_, err = tm.ValidateToken(string(tampered))
		assert.ErrorIs(t, err, models.ErrUnauthorized)
	})

	t.Run("none algorithm", func(t *testing.T) {
		claims := &models.TokenClaims{
			Email: "asha@example.com",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "user-1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = tm.ValidateToken(token)
		assert.ErrorIs(t, err, models.ErrUnauthorized)
	})

	t.Run("missing subject", func(t *testing.T) {
		claims := &models.TokenClaims{
			Email: "asha@example.com",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = tm.ValidateToken(token)
		assert.ErrorIs(t, err, models.ErrUnauthorized)
	})

	t.Run("missing expiry", func(t *testing.T) {
		claims := &models.TokenClaims{
			Email:            "asha@example.com",
			RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = tm.ValidateToken(token)
		assert.ErrorIs(t, err, models.ErrUnauthorized)
	})
}

func TestGenerateOTPCode(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 500; i++ {
		code, err := auth.GenerateOTPCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		assert.NotEqual(t, byte('0'), code[0])
		seen[code] = struct{}{}
	}
	assert.Greater(t, len(seen), 450)
}

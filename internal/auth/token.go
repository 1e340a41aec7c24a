package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/kalindhi/kalindhi-api/internal/models"
)

// TokenManager handles JWT token generation and validation. Tokens are
// stateless: nothing is stored server-side and there is no revocation.
type TokenManager struct {
	secret           []byte
	userTokenExpiry  time.Duration
	adminTokenExpiry time.Duration
	now              func() time.Time
}

// NewTokenManager creates a new TokenManager
func NewTokenManager(secret string, userExpiry, adminExpiry time.Duration) *TokenManager {
	return &TokenManager{
		secret:           []byte(secret),
		userTokenExpiry:  userExpiry,
		adminTokenExpiry: adminExpiry,
		now:              time.Now,
	}
}

// GenerateUserToken issues a token for a customer account
func (tm *TokenManager) GenerateUserToken(userID, email string) (string, error) {
	return tm.sign(userID, email, false, tm.userTokenExpiry)
}

// GenerateAdminToken issues a token carrying the admin role marker
func (tm *TokenManager) GenerateAdminToken(adminID, email string) (string, error) {
	return tm.sign(adminID, email, true, tm.adminTokenExpiry)
}

func (tm *TokenManager) sign(subject, email string, isAdmin bool, expiry time.Duration) (string, error) {
	now := tm.now()

	claims := &models.TokenClaims{
		Email:   email,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken verifies a token and returns its claims. Every failure
// (malformed, bad signature, expired, missing subject) wraps models.ErrUnauthorized.
func (tm *TokenManager) ValidateToken(tokenString string) (*models.TokenClaims, error) {
	claims := &models.TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(tm.now), jwt.WithExpirationRequired())

	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrUnauthorized, err)
	}

	if !token.Valid {
		return nil, models.ErrUnauthorized
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", models.ErrUnauthorized)
	}

	return claims, nil
}

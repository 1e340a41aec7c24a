package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the claim set carried by session tokens. The subject id is
// stored in the registered "sub" claim. IsAdmin is only present on admin tokens.
type TokenClaims struct {
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin,omitempty"`
	jwt.RegisteredClaims
}

// SubjectID returns the id of the account the token was issued to
func (c *TokenClaims) SubjectID() string {
	return c.Subject
}

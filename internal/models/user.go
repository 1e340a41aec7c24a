package models

import (
	"time"
)

const ProviderGoogle = "google"

type User struct {
	ID           string
	Name         string
	Email        string
	Phone        *string
	PasswordHash *string // NULL for federated accounts
	IsVerified   bool
	Provider     *string
	ProviderID   *string
	CreatedAt    time.Time
}

// HasPassword reports whether the account can authenticate with a local password
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// PublicUser is the client-safe projection of a User
type PublicUser struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	IsVerified bool      `json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
	}
}

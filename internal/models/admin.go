package models

import "time"

// Admin is a back-office account. It lives in its own credential space and
// cannot log in until IsApproved is set.
type Admin struct {
	ID           string
	Name         string
	Email        string
	Phone        *string
	PasswordHash string
	IsApproved   bool
	CreatedAt    time.Time
}

// PublicAdmin is the projection returned on successful admin verification
type PublicAdmin struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AdminListing is the projection used by admin management endpoints
type AdminListing struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      *string   `json:"phone,omitempty"`
	IsApproved bool      `json:"isApproved"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (a *Admin) Public() *PublicAdmin {
	return &PublicAdmin{ID: a.ID, Name: a.Name, Email: a.Email}
}

func (a *Admin) Listing() *AdminListing {
	return &AdminListing{
		ID:         a.ID,
		Name:       a.Name,
		Email:      a.Email,
		Phone:      a.Phone,
		IsApproved: a.IsApproved,
		CreatedAt:  a.CreatedAt,
	}
}

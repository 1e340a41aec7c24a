package services

import (
	"context"

	"github.com/kalindhi/kalindhi-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, name, passwordHash *string) (*models.User, error)
	MarkVerified(ctx context.Context, email string) (*models.User, error)
	Delete(ctx context.Context, id string) error
}

// AdminRepository defines the interface for admin account data access
type AdminRepository interface {
	GetByID(ctx context.Context, id string) (*models.Admin, error)
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
	List(ctx context.Context) ([]*models.Admin, error)
	Create(ctx context.Context, admin *models.Admin) (*models.Admin, error)
	SetApproved(ctx context.Context, id string, approved bool) (*models.Admin, error)
	Delete(ctx context.Context, id string) error
}

// EnquiryRepository defines the interface for contact enquiry data access
type EnquiryRepository interface {
	Create(ctx context.Context, name, email, message string) (*models.Enquiry, error)
	List(ctx context.Context) ([]*models.Enquiry, error)
	SetRead(ctx context.Context, id string, read bool) error
	SetArchived(ctx context.Context, id string, archived bool) error
	Delete(ctx context.Context, id string) error
}

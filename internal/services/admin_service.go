package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/kalindhi/kalindhi-api/internal/models"
	pkglogger "github.com/kalindhi/kalindhi-api/pkg/logger"
)

// AdminService backs the admin dashboard: travelers, admin accounts and
// contact enquiries.
type AdminService struct {
	users       UserRepository
	admins      AdminRepository
	enquiries   EnquiryRepository
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewAdminService creates a new AdminService.
func NewAdminService(
	users UserRepository,
	admins AdminRepository,
	enquiries EnquiryRepository,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *AdminService {
	return &AdminService{
		users:       users,
		admins:      admins,
		enquiries:   enquiries,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// internal logs err and hides it behind models.ErrInternalServer, passing
// through models.ErrNotFound
func (s *AdminService) internal(msg string, err error, attrs ...any) error {
	if errors.Is(err, models.ErrNotFound) {
		return models.ErrNotFound
	}
	s.logger.Error(msg, append(attrs, slog.Any("error", err))...)
	return models.ErrInternalServer
}

func (s *AdminService) ListUsers(ctx context.Context) ([]*models.PublicUser, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, s.internal("failed to list users", err)
	}

	out := make([]*models.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}

func (s *AdminService) DeleteUser(ctx context.Context, actorID, userID string) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		return s.internal("failed to delete user", err, slog.String("user_id", userID))
	}
	s.auditLogger.LogAdminAction(ctx, "user_deleted", actorID, userID)
	return nil
}

func (s *AdminService) ListAdmins(ctx context.Context) ([]*models.AdminListing, error) {
	admins, err := s.admins.List(ctx)
	if err != nil {
		return nil, s.internal("failed to list admins", err)
	}

	out := make([]*models.AdminListing, 0, len(admins))
	for _, a := range admins {
		out = append(out, a.Listing())
	}
	return out, nil
}

// ApproveAdmin is the out-of-band approval step for access requests
func (s *AdminService) ApproveAdmin(ctx context.Context, actorID, adminID string) (*models.AdminListing, error) {
	admin, err := s.admins.SetApproved(ctx, adminID, true)
	if err != nil {
		return nil, s.internal("failed to approve admin", err, slog.String("admin_id", adminID))
	}
	s.auditLogger.LogAdminAction(ctx, "admin_approved", actorID, adminID)
	return admin.Listing(), nil
}

// DeleteAdmin removes another admin. Removing yourself is refused with
// models.ErrSelfAction. Ids are compared as parsed UUIDs, so case and
// formatting variants of the caller's own id are refused too.
func (s *AdminService) DeleteAdmin(ctx context.Context, actorID, adminID string) error {
	target, err := uuid.Parse(adminID)
	if err != nil {
		return models.ErrNotFound
	}
	if actor, err := uuid.Parse(actorID); err == nil && actor == target {
		return models.ErrSelfAction
	}
	adminID = target.String()

	if err := s.admins.Delete(ctx, adminID); err != nil {
		return s.internal("failed to delete admin", err, slog.String("admin_id", adminID))
	}
	s.auditLogger.LogAdminAction(ctx, "admin_deleted", actorID, adminID)
	return nil
}

func (s *AdminService) ListEnquiries(ctx context.Context) ([]*models.Enquiry, error) {
	enquiries, err := s.enquiries.List(ctx)
	if err != nil {
		return nil, s.internal("failed to list enquiries", err)
	}
	return enquiries, nil
}

func (s *AdminService) SetEnquiryRead(ctx context.Context, id string, read bool) error {
	if err := s.enquiries.SetRead(ctx, id, read); err != nil {
		return s.internal("failed to update enquiry", err, slog.String("enquiry_id", id))
	}
	return nil
}

func (s *AdminService) SetEnquiryArchived(ctx context.Context, id string, archived bool) error {
	if err := s.enquiries.SetArchived(ctx, id, archived); err != nil {
		return s.internal("failed to update enquiry", err, slog.String("enquiry_id", id))
	}
	return nil
}

func (s *AdminService) DeleteEnquiry(ctx context.Context, actorID, id string) error {
	if err := s.enquiries.Delete(ctx, id); err != nil {
		return s.internal("failed to delete enquiry", err, slog.String("enquiry_id", id))
	}
	s.auditLogger.LogAdminAction(ctx, "enquiry_deleted", actorID, id)
	return nil
}

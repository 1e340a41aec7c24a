package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/kalindhi/kalindhi-api/internal/auth"
	"github.com/kalindhi/kalindhi-api/internal/models"
	pkgauth "github.com/kalindhi/kalindhi-api/pkg/auth"
	pkglogger "github.com/kalindhi/kalindhi-api/pkg/logger"
)

// AdminAuthService implements the two-step admin login: approved account
// plus password, then an emailed code.
type AdminAuthService struct {
	admins        AdminRepository
	otp           *OTPService
	tm            *auth.TokenManager
	timing        *auth.TimingDelay
	dispatcher    Dispatcher
	operatorEmail string
	logger        *slog.Logger
	auditLogger   *pkglogger.AuditLogger
	compare       func(hash, password string) error
}

func NewAdminAuthService(
	admins AdminRepository,
	otp *OTPService,
	tm *auth.TokenManager,
	timing *auth.TimingDelay,
	dispatcher Dispatcher,
	operatorEmail string,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *AdminAuthService {
	return &AdminAuthService{
		admins:        admins,
		otp:           otp,
		tm:            tm,
		timing:        timing,
		dispatcher:    dispatcher,
		operatorEmail: operatorEmail,
		logger:        logger,
		auditLogger:   auditLogger,
		compare:       pkgauth.ComparePassword,
	}
}

// AccessRequest is the data accepted by RequestAccess
type AccessRequest struct {
	Name     string
	Email    string
	Phone    *string
	Password string
}

// AdminLoginResult tells the client where the code was sent
type AdminLoginResult struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

// AdminVerifyResult carries the admin session token
type AdminVerifyResult struct {
	Token string              `json:"token"`
	Admin *models.PublicAdmin `json:"admin"`
}

// RequestAccess creates an unapproved admin account and notifies the operator
func (s *AdminAuthService) RequestAccess(ctx context.Context, in AccessRequest) error {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return models.NewValidationError("Name, email and password are required")
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return err
	}

	admin, err := s.admins.Create(ctx, &models.Admin{
		Name:         name,
		Email:        email,
		Phone:        trimmedOrNil(in.Phone),
		PasswordHash: hash,
		IsApproved:   false,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return models.NewValidationError("An access request for this email already exists")
		}
		s.logger.Error("failed to create admin", slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
		EventType: "admin_access_requested",
		Principal: pkglogger.PrincipalAdmin,
		SubjectID: admin.ID,
		Email:     admin.Email,
		Success:   true,
	})

	if s.operatorEmail == "" {
		s.logger.Warn("no operator email configured, access request not forwarded", slog.String("admin_id", admin.ID))
		return nil
	}
	s.dispatcher.Dispatch(adminAccessRequestEmail(s.operatorEmail, admin))

	return nil
}

// Login checks approval before the password so that an unapproved account
// never reveals whether its password is right.
func (s *AdminAuthService) Login(ctx context.Context, email, password string) (*AdminLoginResult, error) {
	start := time.Now()
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, models.NewValidationError("Email and password are required")
	}

	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			_ = s.compare(pkgauth.DummyHash(), password)
			s.loginFailed(ctx, start, "", email, "unknown_email")
			return nil, models.ErrUnauthorized
		}
		s.logger.Error("failed to get admin by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if !admin.IsApproved {
		s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
			EventType:     "admin_login_failed",
			Principal:     pkglogger.PrincipalAdmin,
			SubjectID:     admin.ID,
			Email:         admin.Email,
			FailureReason: "not_approved",
		})
		return nil, models.ErrAdminNotApproved
	}

	if err := s.compare(admin.PasswordHash, password); err != nil {
		s.loginFailed(ctx, start, admin.ID, email, "invalid_password")
		return nil, models.ErrUnauthorized
	}

	if err := s.otp.Issue(ctx, admin.Email, models.OTPPurposeAdminLogin); err != nil {
		s.logger.Error("failed to issue admin otp", slog.String("admin_id", admin.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return &AdminLoginResult{Message: "OTP sent", Email: admin.Email}, nil
}

func (s *AdminAuthService) loginFailed(ctx context.Context, start time.Time, adminID, email, reason string) {
	s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
		EventType:     "admin_login_failed",
		Principal:     pkglogger.PrincipalAdmin,
		SubjectID:     adminID,
		Email:         email,
		FailureReason: reason,
	})
	s.timing.WaitFrom(ctx, start)
}

// Verify exchanges a valid code for an admin token. The account is looked up
// again so that a revoked approval or deleted account cannot finish logging in.
func (s *AdminAuthService) Verify(ctx context.Context, email, code string) (*AdminVerifyResult, error) {
	email = strings.TrimSpace(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return nil, models.NewValidationError("Email and code are required")
	}

	if err := s.otp.Verify(ctx, email, code); err != nil {
		if errors.Is(err, models.ErrInvalidOTP) {
			s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
				EventType:     "admin_otp_failed",
				Principal:     pkglogger.PrincipalAdmin,
				Email:         email,
				FailureReason: "invalid_or_expired_code",
			})
			return nil, models.ErrInvalidOTP
		}
		s.logger.Error("failed to verify admin otp", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrUnauthorized
		}
		s.logger.Error("failed to get admin by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if !admin.IsApproved {
		return nil, models.ErrAdminNotApproved
	}

	if err := s.otp.Consume(ctx, email); err != nil {
		s.logger.Error("failed to consume admin otp", slog.String("admin_id", admin.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	token, err := s.tm.GenerateAdminToken(admin.ID, admin.Email)
	if err != nil {
		s.logger.Error("failed to generate admin token", slog.String("admin_id", admin.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
		EventType: "admin_login_success",
		Principal: pkglogger.PrincipalAdmin,
		SubjectID: admin.ID,
		Email:     admin.Email,
		Success:   true,
	})

	return &AdminVerifyResult{Token: token, Admin: admin.Public()}, nil
}

// EnsureMainAdmin creates the Main Administrator account if it does not
// exist and makes sure it is approved. The password is only used on creation.
func (s *AdminAuthService) EnsureMainAdmin(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}

	existing, err := s.admins.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.IsApproved {
			return nil
		}
		_, err = s.admins.SetApproved(ctx, existing.ID, true)
		if err == nil {
			s.logger.Info("main admin approved", slog.String("admin_id", existing.ID))
		}
		return err
	case !errors.Is(err, models.ErrNotFound):
		return err
	}

	if password == "" {
		s.logger.Warn("main admin does not exist and MAIN_ADMIN_PASSWORD is not set",
			slog.String("email", pkglogger.SanitizedEmail(email)))
		return nil
	}

	hash, err := pkgauth.HashPassword(password)
	if err != nil {
		return err
	}

	admin, err := s.admins.Create(ctx, &models.Admin{
		Name:         "Main Administrator",
		Email:        email,
		PasswordHash: hash,
		IsApproved:   true,
	})
	if err != nil {
		return err
	}

	s.logger.Info("main admin created", slog.String("admin_id", admin.ID))
	return nil
}

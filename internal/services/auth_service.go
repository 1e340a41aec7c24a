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

// AuthService handles customer signup, login and OTP verification
type AuthService struct {
	users       UserRepository
	otp         *OTPService
	tm          *auth.TokenManager
	timing      *auth.TimingDelay
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
	compare     func(hash, password string) error
}

// NewAuthService creates a new AuthService. timing may be nil.
func NewAuthService(
	users UserRepository,
	otp *OTPService,
	tm *auth.TokenManager,
	timing *auth.TimingDelay,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *AuthService {
	return &AuthService{
		users:       users,
		otp:         otp,
		tm:          tm,
		timing:      timing,
		logger:      logger,
		auditLogger: auditLogger,
		compare:     pkgauth.ComparePassword,
	}
}

// SignupInput is the data accepted by Signup
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Phone    *string
}

// SignupResult acknowledges a registration
type SignupResult struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

// LoginResult carries a session token and the public user projection
type LoginResult struct {
	Token string             `json:"token"`
	User  *models.PublicUser `json:"user"`
}

// VerifyResult is returned after a successful OTP verification
type VerifyResult struct {
	Message string             `json:"message"`
	Token   string             `json:"token"`
	User    *models.PublicUser `json:"user"`
}

// ProfileUpdate holds the optional fields of a profile change
type ProfileUpdate struct {
	Name     *string
	Password *string
}

// Signup creates an unverified account and sends a verification code
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*SignupResult, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, models.NewValidationError("Name, email and password are required")
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, models.ErrConflict
	} else if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check existing user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, &models.User{
		Name:         name,
		Email:        email,
		Phone:        trimmedOrNil(in.Phone),
		PasswordHash: &hash,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := s.otp.Issue(ctx, user.Email, models.OTPPurposeUserVerification); err != nil {
		// The account exists; the user can ask for a new code via resend.
		s.logger.Error("failed to issue signup otp", slog.String("user_id", user.ID), slog.Any("error", err))
	}

	s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
		EventType: "signup",
		Principal: pkglogger.PrincipalUser,
		SubjectID: user.ID,
		Email:     user.Email,
		Success:   true,
	})

	return &SignupResult{
		Message: "Signup successful. Please verify your email with the code we sent.",
		Email:   user.Email,
	}, nil
}

// Login checks credentials. Unknown email and wrong password both return
// models.ErrUnauthorized after the same padded delay. An unverified account
// gets a fresh code and models.ErrEmailNotVerified.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	start := time.Now()
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, models.NewValidationError("Email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			_ = s.compare(pkgauth.DummyHash(), password)
			s.loginFailed(ctx, start, "", email, "unknown_email")
			return nil, models.ErrUnauthorized
		}
		s.logger.Error("failed to get user by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	hash := pkgauth.DummyHash()
	if user.HasPassword() {
		hash = *user.PasswordHash
	}
	if err := s.compare(hash, password); err != nil || !user.HasPassword() {
		s.loginFailed(ctx, start, user.ID, email, "invalid_password")
		return nil, models.ErrUnauthorized
	}

	if !user.IsVerified {
		if err := s.otp.Issue(ctx, user.Email, models.OTPPurposeUserVerification); err != nil {
			s.logger.Error("failed to issue login otp", slog.String("user_id", user.ID), slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
		s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
			EventType:     "login_failed",
			Principal:     pkglogger.PrincipalUser,
			SubjectID:     user.ID,
			Email:         user.Email,
			FailureReason: "email_not_verified",
		})
		return nil, models.ErrEmailNotVerified
	}

	token, err := s.tm.GenerateUserToken(user.ID, user.Email)
	if err != nil {
		s.logger.Error("failed to generate token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
		EventType: "login_success",
		Principal: pkglogger.PrincipalUser,
		SubjectID: user.ID,
		Email:     user.Email,
		Success:   true,
	})

	return &LoginResult{Token: token, User: user.Public()}, nil
}

func (s *AuthService) loginFailed(ctx context.Context, start time.Time, userID, email, reason string) {
	s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
		EventType:     "login_failed",
		Principal:     pkglogger.PrincipalUser,
		SubjectID:     userID,
		Email:         email,
		FailureReason: reason,
	})
	s.timing.WaitFrom(ctx, start)
}

// VerifyOTP marks the account verified and returns a session token. This is
// the only path that sets the verification flag.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) (*VerifyResult, error) {
	email = strings.TrimSpace(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return nil, models.NewValidationError("Email and code are required")
	}

	if err := s.otp.Verify(ctx, email, code); err != nil {
		if errors.Is(err, models.ErrInvalidOTP) {
			s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
				EventType:     "otp_verify_failed",
				Principal:     pkglogger.PrincipalUser,
				Email:         email,
				FailureReason: "invalid_or_expired_code",
			})
			return nil, models.ErrInvalidOTP
		}
		s.logger.Error("failed to verify otp", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	user, err := s.users.MarkVerified(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// A code issued for an admin login does not verify a customer account.
			return nil, models.ErrInvalidOTP
		}
		s.logger.Error("failed to mark user verified", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := s.otp.Consume(ctx, email); err != nil {
		s.logger.Error("failed to consume otp", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	token, err := s.tm.GenerateUserToken(user.ID, user.Email)
	if err != nil {
		s.logger.Error("failed to generate token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
		EventType: "email_verified",
		Principal: pkglogger.PrincipalUser,
		SubjectID: user.ID,
		Email:     user.Email,
		Success:   true,
	})

	return &VerifyResult{Message: "Email verified successfully", Token: token, User: user.Public()}, nil
}

// ResendOTP issues a fresh code regardless of the current verification state
func (s *AuthService) ResendOTP(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return models.NewValidationError("Email is required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to get user by email", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.otp.Issue(ctx, user.Email, models.OTPPurposeUserVerification); err != nil {
		s.logger.Error("failed to reissue otp", slog.String("user_id", user.ID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	return nil
}

// GetProfile returns the public projection for the token subject
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*models.PublicUser, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return user.Public(), nil
}

// UpdateProfile changes the name and/or password. Email cannot change here
// and the current password is not required.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (*models.PublicUser, error) {
	var name, hash *string

	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		if trimmed == "" {
			return nil, models.NewValidationError("Name cannot be empty")
		}
		name = &trimmed
	}

	if in.Password != nil && *in.Password != "" {
		h, err := hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		hash = &h
	}

	if name == nil && hash == nil {
		return s.GetProfile(ctx, userID)
	}

	user, err := s.users.UpdateProfile(ctx, userID, name, hash)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to update profile", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if hash != nil {
		s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
			EventType: "password_changed",
			Principal: pkglogger.PrincipalUser,
			SubjectID: user.ID,
			Email:     user.Email,
			Success:   true,
		})
	}

	return user.Public(), nil
}

// hashPassword maps password policy failures to validation errors
func hashPassword(password string) (string, error) {
	hash, err := pkgauth.HashPassword(password)
	if err != nil {
		switch {
		case errors.Is(err, pkgauth.ErrEmptyPassword):
			return "", models.NewValidationError("Password is required")
		case errors.Is(err, pkgauth.ErrPasswordTooLong):
			return "", models.NewValidationError("Password must be at most 72 bytes")
		}
		return "", models.ErrInternalServer
	}
	return hash, nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kalindhi/kalindhi-api/internal/auth"
	"github.com/kalindhi/kalindhi-api/internal/models"
	pkglogger "github.com/kalindhi/kalindhi-api/pkg/logger"
)

// OTPRepository is the persistence side of the OTP ledger
type OTPRepository interface {
	DeleteByEmail(ctx context.Context, email string) error
	Insert(ctx context.Context, email, code string, expiresAt time.Time) (*models.OTPEntry, error)
	FindValid(ctx context.Context, email, code string) (*models.OTPEntry, error)
}

// Dispatcher hands a message to the asynchronous notifier
type Dispatcher interface {
	Dispatch(msg models.EmailMessage) bool
}

// OTPService issues, checks and consumes one-time codes. Codes are shared by
// the user and admin flows, keyed only by email.
type OTPService struct {
	repo       OTPRepository
	dispatcher Dispatcher
	expiry     time.Duration
	logger     *slog.Logger
	now        func() time.Time
	generate   func() (string, error)
}

func NewOTPService(repo OTPRepository, dispatcher Dispatcher, expiry time.Duration, logger *slog.Logger) *OTPService {
	if expiry <= 0 {
		expiry = models.OTPExpiry
	}
	return &OTPService{
		repo:       repo,
		dispatcher: dispatcher,
		expiry:     expiry,
		logger:     logger,
		now:        time.Now,
		generate:   auth.GenerateOTPCode,
	}
}

// Issue replaces any live code for email with a fresh one and queues the
// email. Delivery failures are not reported; only store errors are.
func (s *OTPService) Issue(ctx context.Context, email string, purpose models.OTPPurpose) error {
	code, err := s.generate()
	if err != nil {
		return err
	}

	// Two independent statements; concurrent issuance for one email can interleave.
	if err := s.repo.DeleteByEmail(ctx, email); err != nil {
		return fmt.Errorf("failed to clear previous otp: %w", err)
	}

	if _, err := s.repo.Insert(ctx, email, code, s.now().Add(s.expiry)); err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}

	if !s.dispatcher.Dispatch(otpEmail(email, code, purpose, s.expiry)) {
		s.logger.Warn("otp email not queued",
			slog.String("email", pkglogger.SanitizedEmail(email)),
			slog.String("purpose", string(purpose)))
	}

	return nil
}

// Verify reports models.ErrInvalidOTP when no live code matches. Wrong and
// expired codes are indistinguishable.
func (s *OTPService) Verify(ctx context.Context, email, code string) error {
	if _, err := s.repo.FindValid(ctx, email, code); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrInvalidOTP
		}
		return fmt.Errorf("failed to look up otp: %w", err)
	}
	return nil
}

// Consume removes the codes for email after a successful verification
func (s *OTPService) Consume(ctx context.Context, email string) error {
	if err := s.repo.DeleteByEmail(ctx, email); err != nil {
		return fmt.Errorf("failed to consume otp: %w", err)
	}
	return nil
}

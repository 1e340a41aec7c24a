package services

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/kalindhi/kalindhi-api/internal/models"
)

// ContactService stores public enquiries and forwards them to the operator
type ContactService struct {
	enquiries     EnquiryRepository
	dispatcher    Dispatcher
	operatorEmail string
	logger        *slog.Logger
}

func NewContactService(enquiries EnquiryRepository, dispatcher Dispatcher, operatorEmail string, logger *slog.Logger) *ContactService {
	return &ContactService{
		enquiries:     enquiries,
		dispatcher:    dispatcher,
		operatorEmail: operatorEmail,
		logger:        logger,
	}
}

// Submit records an enquiry. The operator notification is best effort.
func (s *ContactService) Submit(ctx context.Context, name, email, message string) (*models.Enquiry, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	message = strings.TrimSpace(message)

	if name == "" || email == "" || message == "" {
		return nil, models.NewValidationError("Name, email and message are required")
	}
	if utf8.RuneCountInString(name) > models.EnquiryNameMaxLen || utf8.RuneCountInString(email) > models.EnquiryEmailMaxLen {
		return nil, models.NewValidationError("Name or email too long")
	}

	enquiry, err := s.enquiries.Create(ctx, name, email, message)
	if err != nil {
		s.logger.Error("failed to store enquiry", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if s.operatorEmail != "" {
		s.dispatcher.Dispatch(enquiryEmail(s.operatorEmail, enquiry))
	}

	return enquiry, nil
}

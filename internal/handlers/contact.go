package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/kalindhi/kalindhi-api/internal/models"
	pkghttp "github.com/kalindhi/kalindhi-api/pkg/http"
)

// ContactServiceInterface accepts public enquiries
type ContactServiceInterface interface {
	Submit(ctx context.Context, name, email, message string) (*models.Enquiry, error)
}

// ContactHandler handles the public contact form
type ContactHandler struct {
	service ContactServiceInterface
	logger  *slog.Logger
}

func NewContactHandler(service ContactServiceInterface, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{service: service, logger: logger}
}

// ContactRequest represents the contact form body
type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,max=191"`
	Message string `json:"message" validate:"required"`
}

// Submit handles POST /contact
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if _, err := h.service.Submit(r.Context(), req.Name, req.Email, req.Message); err != nil {
		writeServiceError(w, r, h.logger, err, errorMessages{})
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, OKResponse{OK: true})
}

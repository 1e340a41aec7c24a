package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/kalindhi/kalindhi-api/internal/services"
	pkghttp "github.com/kalindhi/kalindhi-api/pkg/http"
)

// AdminAuthServiceInterface defines the admin two-step login contract
type AdminAuthServiceInterface interface {
	RequestAccess(ctx context.Context, in services.AccessRequest) error
	Login(ctx context.Context, email, password string) (*services.AdminLoginResult, error)
	Verify(ctx context.Context, email, code string) (*services.AdminVerifyResult, error)
}

// AdminAuthHandler handles admin access requests and logins
type AdminAuthHandler struct {
	service AdminAuthServiceInterface
	logger  *slog.Logger
}

func NewAdminAuthHandler(service AdminAuthServiceInterface, logger *slog.Logger) *AdminAuthHandler {
	return &AdminAuthHandler{service: service, logger: logger}
}

// RequestAccessRequest represents the request body for an admin access request
type RequestAccessRequest struct {
	Name     string  `json:"name" validate:"required,max=120"`
	Email    string  `json:"email" validate:"required,email,max=191"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
	Password string  `json:"password" validate:"required"`
}

// RequestAccess handles POST /admin/request-access
func (h *AdminAuthHandler) RequestAccess(w http.ResponseWriter, r *http.Request) {
	var req RequestAccessRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.service.RequestAccess(r.Context(), services.AccessRequest{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err, errorMessages{})
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, MessageResponse{
		Message: "Access request submitted. You can sign in once an administrator approves it.",
	})
}

// Login handles POST /admin/login
func (h *AdminAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, h.logger, err, errorMessages{})
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, res)
}

// Verify handles POST /admin/verify
func (h *AdminAuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.service.Verify(r.Context(), req.Email, req.Code)
	if err != nil {
		writeServiceError(w, r, h.logger, err, errorMessages{})
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, res)
}

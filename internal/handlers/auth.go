package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kalindhi/kalindhi-api/internal/auth"
	"github.com/kalindhi/kalindhi-api/internal/models"
	"github.com/kalindhi/kalindhi-api/internal/services"
	pkghttp "github.com/kalindhi/kalindhi-api/pkg/http"
)

// AuthServiceInterface defines the interface for customer auth business logic
type AuthServiceInterface interface {
	Signup(ctx context.Context, in services.SignupInput) (*services.SignupResult, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	VerifyOTP(ctx context.Context, email, code string) (*services.VerifyResult, error)
	ResendOTP(ctx context.Context, email string) error
	GetProfile(ctx context.Context, userID string) (*models.PublicUser, error)
	UpdateProfile(ctx context.Context, userID string, in services.ProfileUpdate) (*models.PublicUser, error)
}

// AuthHandler handles customer authentication requests
type AuthHandler struct {
	service AuthServiceInterface
	logger  *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: service, logger: logger}
}

// SignupRequest represents the request body for signup
type SignupRequest struct {
	Name     string  `json:"name" validate:"required,max=120"`
	Email    string  `json:"email" validate:"required,email,max=191"`
	Password string  `json:"password" validate:"required"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// VerifyOTPRequest carries an emailed code
type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required"`
	Code  string `json:"code" validate:"required"`
}

// ResendOTPRequest represents the request body for resending a code
type ResendOTPRequest struct {
	Email string `json:"email" validate:"required"`
}

// UpdateProfileRequest holds the optional profile fields
type UpdateProfileRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=120"`
	Password *string `json:"password"`
}

// ProfileResponse wraps the public user projection
type ProfileResponse struct {
	User *models.PublicUser `json:"user"`
}

// UpdateProfileResponse is returned after a profile change
type UpdateProfileResponse struct {
	Message string             `json:"message"`
	User    *models.PublicUser `json:"user"`
}

// Signup handles POST /auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.service.Signup(r.Context(), services.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err, errorMessages{conflict: "Email already registered"})
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, res)
}

// Login handles POST /auth/login. Unverified accounts get a 403 carrying
// requiresVerification instead of a token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, models.ErrEmailNotVerified) {
			pkghttp.WriteVerificationRequired(w, req.Email)
			return
		}
		writeServiceError(w, r, h.logger, err, errorMessages{})
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, res)
}

// VerifyOTP handles POST /auth/verify-otp
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.service.VerifyOTP(r.Context(), req.Email, req.Code)
	if err != nil {
		writeServiceError(w, r, h.logger, err, errorMessages{})
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, res)
}

// ResendOTP handles POST /auth/resend-otp
func (h *AuthHandler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req ResendOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.ResendOTP(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, h.logger, err, errorMessages{notFound: "User not found"})
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, MessageResponse{Message: "A new verification code has been sent"})
}

// GetProfile handles GET /auth/profile
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetClaimsFromContext(r.Context())
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	user, err := h.service.GetProfile(r.Context(), claims.SubjectID())
	if err != nil {
		writeServiceError(w, r, h.logger, err, errorMessages{notFound: "User not found"})
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, ProfileResponse{User: user})
}

// UpdateProfile handles PUT /auth/profile
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetClaimsFromContext(r.Context())
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), claims.SubjectID(), services.ProfileUpdate{
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err, errorMessages{notFound: "User not found"})
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, UpdateProfileResponse{Message: "Profile updated", User: user})
}

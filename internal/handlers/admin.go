package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kalindhi/kalindhi-api/internal/auth"
	"github.com/kalindhi/kalindhi-api/internal/models"
	"github.com/kalindhi/kalindhi-api/internal/services"
	pkghttp "github.com/kalindhi/kalindhi-api/pkg/http"
)

// multipartOverhead is the slack allowed on top of the image size for form boundaries and headers
const multipartOverhead = 64 << 10

// AdminServiceInterface defines the back-office operations
type AdminServiceInterface interface {
	ListUsers(ctx context.Context) ([]*models.PublicUser, error)
	DeleteUser(ctx context.Context, actorID, userID string) error
	ListAdmins(ctx context.Context) ([]*models.AdminListing, error)
	ApproveAdmin(ctx context.Context, actorID, adminID string) (*models.AdminListing, error)
	DeleteAdmin(ctx context.Context, actorID, adminID string) error
	ListEnquiries(ctx context.Context) ([]*models.Enquiry, error)
	SetEnquiryRead(ctx context.Context, id string, read bool) error
	SetEnquiryArchived(ctx context.Context, id string, archived bool) error
	DeleteEnquiry(ctx context.Context, actorID, id string) error
}

// UploadServiceInterface stores admin images
type UploadServiceInterface interface {
	Upload(ctx context.Context, r io.Reader) (*services.UploadResult, error)
}

// AdminHandler serves the admin dashboard API
type AdminHandler struct {
	service       AdminServiceInterface
	uploads       UploadServiceInterface
	maxUploadSize int64
	logger        *slog.Logger
}

// NewAdminHandler creates a new AdminHandler. uploads may be nil when object
// storage is not configured.
func NewAdminHandler(service AdminServiceInterface, uploads UploadServiceInterface, maxUploadSize int64, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		service:       service,
		uploads:       uploads,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// EnquiryReadRequest toggles the read flag
type EnquiryReadRequest struct {
	IsRead *bool `json:"is_read" validate:"required"`
}

// EnquiryArchiveRequest toggles the archived flag
type EnquiryArchiveRequest struct {
	IsArchived *bool `json:"is_archived" validate:"required"`
}

// UsersResponse lists travelers
type UsersResponse struct {
	Users []*models.PublicUser `json:"users"`
}

// AdminsResponse lists administrators
type AdminsResponse struct {
	Admins []*models.AdminListing `json:"admins"`
}

// AdminResponse wraps a single administrator
type AdminResponse struct {
	Admin *models.AdminListing `json:"admin"`
}

// EnquiriesResponse lists contact enquiries
type EnquiriesResponse struct {
	Enquiries []*models.Enquiry `json:"enquiries"`
}

func actorID(r *http.Request) string {
	if claims := auth.GetClaimsFromContext(r.Context()); claims != nil {
		return claims.SubjectID()
	}
	return ""
}

// ListUsers handles GET /admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err, errorMessages{})
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, UsersResponse{Users: users})
}

// DeleteUser handles DELETE /admin/users/{id}
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteUser(r.Context(), actorID(r), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, h.logger, err, errorMessages{notFound: "User not found"})
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, OKResponse{OK: true})
}

// ListAdmins handles GET /admin/admins
func (h *AdminHandler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.service.ListAdmins(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err, errorMessages{})
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, AdminsResponse{Admins: admins})
}

// ApproveAdmin handles PATCH /admin/admins/{id}/approve
func (h *AdminHandler) ApproveAdmin(w http.ResponseWriter, r *http.Request) {
	admin, err := h.service.ApproveAdmin(r.Context(), actorID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.logger, err, errorMessages{notFound: "Admin not found"})
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, AdminResponse{Admin: admin})
}

// DeleteAdmin handles DELETE /admin/admins/{id}
func (h *AdminHandler) DeleteAdmin(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteAdmin(r.Context(), actorID(r), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, h.logger, err, errorMessages{notFound: "Admin not found"})
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, OKResponse{OK: true})
}

// ListEnquiries handles GET /admin/enquiries
func (h *AdminHandler) ListEnquiries(w http.ResponseWriter, r *http.Request) {
	enquiries, err := h.service.ListEnquiries(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err, errorMessages{})
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, EnquiriesResponse{Enquiries: enquiries})
}

// SetEnquiryRead handles PATCH /admin/enquiries/{id}/read
func (h *AdminHandler) SetEnquiryRead(w http.ResponseWriter, r *http.Request) {
	var req EnquiryReadRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.SetEnquiryRead(r.Context(), chi.URLParam(r, "id"), *req.IsRead); err != nil {
		writeServiceError(w, r, h.logger, err, errorMessages{notFound: "Enquiry not found"})
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, OKResponse{OK: true})
}

// SetEnquiryArchived handles PATCH /admin/enquiries/{id}/archive
func (h *AdminHandler) SetEnquiryArchived(w http.ResponseWriter, r *http.Request) {
	var req EnquiryArchiveRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.SetEnquiryArchived(r.Context(), chi.URLParam(r, "id"), *req.IsArchived); err != nil {
		writeServiceError(w, r, h.logger, err, errorMessages{notFound: "Enquiry not found"})
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, OKResponse{OK: true})
}

// DeleteEnquiry handles DELETE /admin/enquiries/{id}
func (h *AdminHandler) DeleteEnquiry(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteEnquiry(r.Context(), actorID(r), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, h.logger, err, errorMessages{notFound: "Enquiry not found"})
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, OKResponse{OK: true})
}

// Upload handles POST /admin/uploads with a multipart "image" field
func (h *AdminHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.uploads == nil {
		pkghttp.WriteError(w, http.StatusServiceUnavailable, "Image storage is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+multipartOverhead)

	file, _, err := r.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			pkghttp.WriteError(w, http.StatusRequestEntityTooLarge, "Image is too large")
		case errors.Is(err, http.ErrMissingFile):
			writeBadRequest(w, "image is required")
		default:
			writeBadRequest(w, "Invalid multipart form")
		}
		return
	}
	defer file.Close()

	res, err := h.uploads.Upload(r.Context(), file)
	if err != nil {
		writeServiceError(w, r, h.logger, err, errorMessages{})
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, res)
}

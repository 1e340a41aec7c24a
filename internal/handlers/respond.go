package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/kalindhi/kalindhi-api/internal/models"
	pkghttp "github.com/kalindhi/kalindhi-api/pkg/http"
)

// MessageResponse is the body of acknowledgement-only responses
type MessageResponse struct {
	Message string `json:"message"`
}

// OKResponse is the body of back-office mutations
type OKResponse struct {
	OK bool `json:"ok"`
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	pkghttp.WriteBadRequest(w, msg)
}

// errorMessages overrides the default client message per sentinel
type errorMessages struct {
	unauthorized string
	notFound     string
	conflict     string
}

// writeServiceError maps service errors to status codes. Anything not
// recognised is logged and answered with a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, msgs errorMessages) {
	var ve *models.ValidationError

	switch {
	case errors.As(err, &ve):
		pkghttp.WriteBadRequest(w, ve.Message)
	case errors.Is(err, models.ErrInvalidOTP):
		pkghttp.WriteBadRequest(w, "Invalid or expired code")
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, "Bad request")
	case errors.Is(err, models.ErrUnauthorized):
		pkghttp.WriteUnauthorized(w, orDefault(msgs.unauthorized, "Invalid credentials"))
	case errors.Is(err, models.ErrAdminNotApproved):
		pkghttp.WriteForbidden(w, "Account pending approval")
	case errors.Is(err, models.ErrSelfAction):
		pkghttp.WriteForbidden(w, "You cannot remove your own account")
	case errors.Is(err, models.ErrForbidden):
		pkghttp.WriteForbidden(w, "Forbidden")
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, orDefault(msgs.notFound, "Not found"))
	case errors.Is(err, models.ErrConflict):
		pkghttp.WriteConflict(w, orDefault(msgs.conflict, "Already exists"))
	default:
		if !errors.Is(err, models.ErrInternalServer) {
			logger.ErrorContext(r.Context(), "unhandled service error",
				slog.String("path", r.URL.Path),
				slog.Any("error", err))
		}
		pkghttp.WriteInternalError(w)
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

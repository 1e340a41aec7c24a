package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/kalindhi/kalindhi-api/internal/services"
	pkglogger "github.com/kalindhi/kalindhi-api/pkg/logger"
)

// OAuthServiceInterface runs the Google authorization code flow
type OAuthServiceInterface interface {
	Begin(ctx context.Context) (string, error)
	Complete(ctx context.Context, state, code string) (*services.LoginResult, error)
}

// OAuthHandler redirects between the browser, Google and the client app
type OAuthHandler struct {
	service      OAuthServiceInterface
	clientOrigin string
	logger       *slog.Logger
}

func NewOAuthHandler(service OAuthServiceInterface, clientOrigin string, logger *slog.Logger) *OAuthHandler {
	return &OAuthHandler{
		service:      service,
		clientOrigin: strings.TrimRight(clientOrigin, "/"),
		logger:       logger,
	}
}

// Begin handles GET /auth/google
func (h *OAuthHandler) Begin(w http.ResponseWriter, r *http.Request) {
	consentURL, err := h.service.Begin(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to start google login", slog.Any("error", err))
		h.fail(w, r)
		return
	}
	http.Redirect(w, r, consentURL, http.StatusFound)
}

// Callback handles GET /auth/google/callback
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	res, err := h.service.Complete(r.Context(), q.Get("state"), q.Get("code"))
	if err != nil {
		h.logger.WarnContext(r.Context(), "google login failed", slog.Any("error", err))
		h.fail(w, r)
		return
	}

	params := url.Values{}
	params.Set("token", res.Token)
	params.Set("name", res.User.Name)
	params.Set("email", res.User.Email)

	h.logger.InfoContext(r.Context(), "google login completed",
		slog.String("email", pkglogger.SanitizedEmail(res.User.Email)))

	http.Redirect(w, r, h.clientOrigin+"/auth/callback?"+params.Encode(), http.StatusFound)
}

func (h *OAuthHandler) fail(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.clientOrigin+"/login?error=google", http.StatusFound)
}

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/kalindhi/kalindhi-api/internal/background"
	pkghttp "github.com/kalindhi/kalindhi-api/pkg/http"
)

const healthCheckTimeout = 2 * time.Second

// HealthChecker reports whether a dependency is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// MailStats exposes the notifier counters
type MailStats interface {
	Stats() background.NotifierStats
}

// HealthHandler reports process health
type HealthHandler struct {
	db     HealthChecker
	mail   MailStats
	logger *slog.Logger
}

func NewHealthHandler(db HealthChecker, mail MailStats, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{db: db, mail: mail, logger: logger}
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status   string                    `json:"status"`
	Database string                    `json:"database"`
	Mail     *background.NotifierStats `json:"mail,omitempty"`
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	resp := HealthResponse{Status: "healthy", Database: "up"}
	if h.mail != nil {
		stats := h.mail.Stats()
		resp.Mail = &stats
	}

	if err := h.db.HealthCheck(ctx); err != nil {
		h.logger.ErrorContext(r.Context(), "health check failed", slog.Any("error", err))
		resp.Status = "unhealthy"
		resp.Database = "down"
		pkghttp.WriteJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, resp)
}

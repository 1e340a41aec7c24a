package logger

import (
	"context"
	"log/slog"
	"time"
)

// Principal distinguishes the two credential spaces in audit records
type Principal string

const (
	PrincipalUser  Principal = "user"
	PrincipalAdmin Principal = "admin"
)

// AuditEvent represents a security audit event
type AuditEvent struct {
	EventType     string
	Principal     Principal
	SubjectID     string
	Email         string // logged masked
	Success       bool
	FailureReason string
}

// AuditLogger writes security-relevant events as structured log records
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{
		logger: logger,
	}
}

// LogAuthAttempt logs login, OTP and token issuance outcomes
func (al *AuditLogger) LogAuthAttempt(ctx context.Context, event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "auth"),
		slog.String("event_type", event.EventType),
		slog.Bool("success", event.Success),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.Principal != "" {
		attrs = append(attrs, slog.String("principal", string(event.Principal)))
	}
	if event.SubjectID != "" {
		attrs = append(attrs, slog.String("subject_id", event.SubjectID))
	}
	if event.Email != "" {
		attrs = append(attrs, slog.String("email", SanitizedEmail(event.Email)))
	}
	if event.FailureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", event.FailureReason))
	}

	level := slog.LevelInfo
	if !event.Success {
		level = slog.LevelWarn
	}
	al.logger.LogAttrs(ctx, level, "audit", attrs...)
}

// LogAdminAction records back-office actions performed by an admin token holder
func (al *AuditLogger) LogAdminAction(ctx context.Context, eventType, actorID, targetID string) {
	al.logger.LogAttrs(ctx, slog.LevelInfo, "audit",
		slog.String("audit_type", "admin"),
		slog.String("event_type", eventType),
		slog.String("actor_id", actorID),
		slog.String("target_id", targetID),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	)
}

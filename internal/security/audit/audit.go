package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/aryan0dhankhar/threadline/internal/infrastructure/logger"
)

// Outcomes recorded on audit lines
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

type Logger struct {
	logger *slog.Logger
}

func NewLogger(log *slog.Logger) *Logger {
	if log == nil {
		log = slog.Default()
	}
	return &Logger{logger: log}
}

func (al *Logger) LogAction(ctx context.Context, username, action, resource, resourceID, status, details string) {
	al.logger.LogAttrs(ctx, slog.LevelInfo, "audit",
		slog.String("action", action),
		slog.String("resource", resource),
		slog.String("resource_id", resourceID),
		slog.String("username", username),
		slog.String("status", status),
		slog.String("details", details),
		slog.String("request_id", logger.RequestID(ctx)),
		slog.Time("timestamp", time.Now().UTC()),
	)
}

func (al *Logger) LogRegister(ctx context.Context, username, status, details string) {
	al.LogAction(ctx, username, "register", "user", username, status, details)
}

func (al *Logger) LogLogin(ctx context.Context, identifier, status, details string) {
	al.LogAction(ctx, identifier, "login", "session", "", status, details)
}

func (al *Logger) LogLogout(ctx context.Context, username, tokenID string) {
	al.LogAction(ctx, username, "logout", "session", tokenID, StatusSuccess, "")
}

func (al *Logger) LogCommentCreated(ctx context.Context, username, commentID, parentID string) {
	al.LogAction(ctx, username, "create", "comment", commentID, StatusSuccess, "parent="+parentID)
}

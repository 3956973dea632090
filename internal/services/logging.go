package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/interview-service/internal/auth"
	"github.com/SAP-F-2025/interview-service/internal/utils"
)

// ServiceLogger writes one structured record per service operation.
type ServiceLogger struct {
	logger *slog.Logger
}

func NewServiceLogger(logger *slog.Logger, service string) *ServiceLogger {
	return &ServiceLogger{logger: logger.With("service", service)}
}

// ===== OPERATION LOGGING =====

// LogOperation picks the level from the error class: caller mistakes are warnings,
// missing resources are info and everything else is an error.
func (l *ServiceLogger) LogOperation(ctx context.Context, operation string, caller *auth.Identity, resourceID uint, resourceType string, duration time.Duration, err error) {
	level := slog.LevelInfo
	status := "success"

	if err != nil {
		level = slog.LevelError
		status = "error"

		switch {
		case IsValidation(err):
			level, status = slog.LevelWarn, "validation_error"
		case IsState(err):
			level, status = slog.LevelWarn, "state_error"
		case IsUnauthenticated(err), IsForbidden(err):
			level, status = slog.LevelWarn, "unauthorized"
		case IsNotFound(err):
			status = "not_found"
		}
	}

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.Uint64("resource_id", uint64(resourceID)),
		slog.String("resource_type", resourceType),
		slog.String("status", status),
		slog.Duration("duration", duration),
	}
	if caller != nil {
		attrs = append(attrs, slog.String("user_id", caller.UserID), slog.String("role", string(caller.Role)))
	}
	if requestID := utils.RequestIDFromContext(ctx); requestID != "" {
		attrs = append(attrs, slog.String("request_id", requestID))
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		if ve, ok := err.(ValidationErrors); ok {
			attrs = append(attrs, slog.Int("validation_errors_count", len(ve)))
		}
	}

	l.logger.LogAttrs(ctx, level, fmt.Sprintf("%s operation %s", operation, status), attrs...)
}

// Track returns a func that logs the operation when deferred with a pointer to the named error.
//
//	defer s.ops.Track(ctx, "interview.update", caller, id, "interview")(&err)
func (l *ServiceLogger) Track(ctx context.Context, operation string, caller *auth.Identity, resourceID uint, resourceType string) func(*error) {
	start := time.Now()
	return func(errp *error) {
		var err error
		if errp != nil {
			err = *errp
		}
		l.LogOperation(ctx, operation, caller, resourceID, resourceType, time.Since(start), err)
	}
}

package core

import (
	"context"
	"log/slog"

	"github.com/JonMunkholm/inbound/internal/logging"
)

// AuditAction identifies a ledger-changing operation.
type AuditAction string

const (
	ActionUpload AuditAction = "upload"
	ActionScan   AuditAction = "scan"
	ActionExport AuditAction = "export"
	ActionReset  AuditAction = "reset"

	ActionRestore AuditAction = "restore"
)

// AuditSeverity ranks how destructive an action is.
type AuditSeverity string

const (
	SeverityLow      AuditSeverity = "low"
	SeverityHigh     AuditSeverity = "high"
	SeverityCritical AuditSeverity = "critical"
)

// determineSeverity returns the severity recorded for an action.
func determineSeverity(action AuditAction) AuditSeverity {
	switch action {
	case ActionUpload, ActionExport:
		return SeverityHigh
	case ActionReset:
		return SeverityCritical
	default:
		return SeverityLow
	}
}

// audit writes a structured audit record. Scans are logged at debug level
// since a receiving shift produces thousands of them.
func (s *Service) audit(ctx context.Context, action AuditAction, args ...any) {
	level := slog.LevelInfo
	if action == ActionScan {
		level = slog.LevelDebug
	}

	attrs := []any{
		"action", string(action),
		"severity", string(determineSeverity(action)),
	}
	attrs = append(attrs, OriginFromContext(ctx).logAttrs()...)
	attrs = append(attrs, args...)

	logging.WithFields(ctx, "session_id", s.sessionID).Log(ctx, level, "audit", attrs...)
}

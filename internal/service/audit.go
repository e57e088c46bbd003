package service

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	"github.com/sakif/memories-api/internal/model"
	"github.com/sakif/memories-api/internal/repository"
)

// AuditService writes the request/response audit log.
//
// It sits between the audit middleware (which captures raw bytes) and the
// LogRepository (which persists rows). The one rule it owns: auditing must
// never fail the request it observes, so Record swallows persistence errors
// after logging them.
type AuditService struct {
	logs   repository.LogRepository
	logger *slog.Logger
}

func NewAuditService(logs repository.LogRepository, logger *slog.Logger) *AuditService {
	return &AuditService{
		logs:   logs,
		logger: logger,
	}
}

// Record appends one audit row for a completed invocation.
//
// source identifies the operation ("PUT /memories/{id}"); request and
// response are the observed payloads, stored as strings. JSON responses are
// compacted so rows stay one-line greppable; anything that isn't valid JSON
// is stored as-is.
func (s *AuditService) Record(ctx context.Context, source, request, response string) {
	entry := &model.LogEntry{
		Request:  request,
		Response: compactJSON(response),
		Source:   source,
	}

	if err := s.logs.Append(ctx, entry); err != nil {
		s.logger.Error("failed to persist audit log entry",
			slog.String("source", source),
			slog.String("error", err.Error()),
		)
	}
}

func compactJSON(s string) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(s)); err != nil {
		return s
	}
	return buf.String()
}

// Package services – LogService
//
// This file implements LogService, a thin application wrapper over the logs
// table. The WebApp pushes client-side diagnostics through it and operators
// read recent entries back via the HTTP API.
package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"supportdesk/internal/domain"
	"supportdesk/internal/repo"
)

// LogService exposes read and append access to the application log store.
type LogService struct {
	DB *gorm.DB
}

// Append writes one log entry. Level defaults to "info" when blank and an
// empty message is rejected with ErrEmptyMessage.
func (s *LogService) Append(ctx context.Context, level, message, logCtx string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return ErrEmptyMessage
	}
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		level = "info"
	}
	return repo.CreateLog(ctx, s.DB, &domain.Log{
		Level:   level,
		Message: message,
		Context: logCtx,
	})
}

// List returns the newest entries, optionally filtered by level.
func (s *LogService) List(ctx context.Context, level string, limit int) ([]domain.Log, error) {
	return repo.ListLogs(ctx, s.DB, strings.ToLower(strings.TrimSpace(level)), limit)
}

// Recent returns entries from the last N hours, optionally filtered by level.
func (s *LogService) Recent(ctx context.Context, hours int, level string, limit int) ([]domain.Log, error) {
	return repo.ListRecentLogs(ctx, s.DB, hours, strings.ToLower(strings.TrimSpace(level)), limit)
}

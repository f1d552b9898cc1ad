// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Log model,
// the append-only store behind the log inspection endpoints.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"supportdesk/internal/domain"
)

// CreateLog appends a single log row. Timestamp defaults to now (UTC) when
// the caller leaves it zero.
func CreateLog(ctx context.Context, db *gorm.DB, entry *domain.Log) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(entry).Error
}

// ListLogs returns the most recent log entries, newest first, optionally
// filtered by level. A limit <= 0 falls back to 100.
func ListLogs(ctx context.Context, db *gorm.DB, level string, limit int) ([]domain.Log, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []domain.Log
	q := db.WithContext(ctx).Order("timestamp desc, id desc").Limit(limit)
	if level != "" {
		q = q.Where("level = ?", level)
	}
	err := q.Find(&out).Error
	return out, err
}

// ListRecentLogs returns log entries newer than now-hours, newest first,
// optionally filtered by level. Hours <= 0 falls back to 24.
func ListRecentLogs(ctx context.Context, db *gorm.DB, hours int, level string, limit int) ([]domain.Log, error) {
	if hours <= 0 {
		hours = 24
	}
	if limit <= 0 {
		limit = 500
	}
	cutoff := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	var out []domain.Log
	q := db.WithContext(ctx).
		Where("timestamp > ?", cutoff).
		Order("timestamp desc, id desc").
		Limit(limit)
	if level != "" {
		q = q.Where("level = ?", level)
	}
	err := q.Find(&out).Error
	return out, err
}

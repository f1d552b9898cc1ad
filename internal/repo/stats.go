// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries used
// primarily for conditional responses (e.g., ETag generation) in the HTTP
// layer. Each function is context-aware and safe to call from services or
// handlers.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"supportdesk/internal/domain"
)

// RequestsStats returns aggregate metadata for the requests table: the total
// number of rows and the maximum UpdatedAt timestamp among those rows.
//
// When no requests exist, the returned count is 0 and maxUpdatedAt is nil.
// The pair is cheap to compute and changes whenever any ticket or its thread
// changes, which makes it a usable ETag source for the overview listing.
func RequestsStats(ctx context.Context, db *gorm.DB) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Request{})

	// Count
	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}

// ThreadStats returns aggregate metadata for messages within a request: the
// total number of rows and the maximum Timestamp among those rows. When the
// thread is empty, the returned count is 0 and maxTimestamp is nil.
func ThreadStats(ctx context.Context, db *gorm.DB, requestID int64) (count int64, maxTimestamp *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Message{}).Where("request_id = ?", requestID)

	// Count
	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	var row struct {
		Timestamp time.Time
	}
	if err = q.Select("timestamp").Order("timestamp DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.Timestamp, nil
}

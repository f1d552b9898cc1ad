// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Request model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a request is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// Functions:
//
//   - CreateRequest(ctx, db, userID, issue) -> *domain.Request, error
//     Inserts a new Request row with status pending and UTC timestamps.
//
//   - GetRequest(ctx, db, id) -> *domain.Request, error
//     Fetches a single request by ID, or ErrNotFound if missing.
//
//   - ListRequests(ctx, db, statuses) -> []domain.Request, error
//     Returns requests filtered by status set (all when empty), newest first.
//
//   - ListRequestsByUser(ctx, db, userID, statuses) -> []domain.Request, error
//     Same as ListRequests scoped to one requester.
//
//   - UpdateRequestFields(ctx, db, id, fields) -> error
//     Applies a partial column update and refreshes updated_at.
//     Returns ErrNotFound when no row matched.
//
// This repository is designed to be wrapped by a higher-level service
// (see services.RequestService) which enforces business rules such as the
// assign check-then-set and atomic request+seed-message creation.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"supportdesk/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateRequest inserts a new Request row for userID with the given issue
// text. Status starts as pending and both timestamps are set to the same
// UTC instant.
//
// On success, it returns the persisted Request. On failure, it returns a DB error.
func CreateRequest(ctx context.Context, db *gorm.DB, userID int64, issue string) (*domain.Request, error) {
	now := time.Now().UTC()
	r := &domain.Request{
		UserID:    userID,
		Issue:     issue,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.WithContext(ctx).Create(r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

// GetRequest fetches a single request by its ID. If the record does not
// exist, it returns ErrNotFound. On other DB errors, the raw error is returned.
func GetRequest(ctx context.Context, db *gorm.DB, id int64) (*domain.Request, error) {
	var r domain.Request
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRequests returns requests whose status is in statuses, ordered by
// creation time descending (most recent first). An empty statuses slice
// returns all requests. On DB error, it returns the error.
func ListRequests(ctx context.Context, db *gorm.DB, statuses []string) ([]domain.Request, error) {
	var out []domain.Request
	q := db.WithContext(ctx).Order("created_at desc")
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	err := q.Find(&out).Error
	return out, err
}

// ListRequestsByUser returns requests opened by userID, optionally filtered
// by status set, ordered by creation time descending.
func ListRequestsByUser(ctx context.Context, db *gorm.DB, userID int64, statuses []string) ([]domain.Request, error) {
	var out []domain.Request
	q := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc")
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	err := q.Find(&out).Error
	return out, err
}

// ListRequestsByUpdated returns requests in statuses ordered by updated_at
// descending, the ordering used for the conversation overview listing.
func ListRequestsByUpdated(ctx context.Context, db *gorm.DB, statuses []string) ([]domain.Request, error) {
	var out []domain.Request
	q := db.WithContext(ctx).Order("updated_at desc")
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	err := q.Find(&out).Error
	return out, err
}

// UpdateRequestFields applies a partial update to the request identified by
// id. The fields map holds column -> value pairs; updated_at is always
// refreshed to the current UTC time. If no rows are affected (request
// missing), it returns ErrNotFound. On DB error, the raw error is returned.
func UpdateRequestFields(ctx context.Context, db *gorm.DB, id int64, fields map[string]any) error {
	if fields == nil {
		fields = map[string]any{}
	}
	fields["updated_at"] = time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.Request{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

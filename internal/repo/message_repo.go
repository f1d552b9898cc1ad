// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Message model.
package repo

import (
	"time"

	"gorm.io/gorm"

	"supportdesk/internal/domain"
)

// CreateMessage inserts a new message row with a UTC timestamp.
func CreateMessage(db *gorm.DB, requestID, senderID int64, senderType, body string) (*domain.Message, error) {
	m := &domain.Message{
		RequestID:  requestID,
		SenderID:   senderID,
		SenderType: senderType,
		Body:       body,
		Timestamp:  time.Now().UTC(),
	}
	return m, db.Create(m).Error
}

// ListMessages returns all messages of a request ordered deterministically
// (Timestamp ASC, ID ASC).
func ListMessages(db *gorm.DB, requestID int64) ([]domain.Message, error) {
	var out []domain.Message
	err := db.
		Where("request_id = ?", requestID).
		Order("timestamp ASC, id ASC").
		Find(&out).Error
	return out, err
}

// ListMessagesSince returns messages of a request strictly newer than since,
// ordered (Timestamp ASC, ID ASC). Messages stamped exactly at since are
// excluded so pollers never see duplicates.
func ListMessagesSince(db *gorm.DB, requestID int64, since time.Time) ([]domain.Message, error) {
	var out []domain.Message
	err := db.
		Where("request_id = ? AND timestamp > ?", requestID, since).
		Order("timestamp ASC, id ASC").
		Find(&out).Error
	return out, err
}

// LatestMessage returns the newest message of a request, or ErrNotFound when
// the thread is empty.
func LatestMessage(db *gorm.DB, requestID int64) (*domain.Message, error) {
	var m domain.Message
	err := db.
		Where("request_id = ?", requestID).
		Order("timestamp DESC, id DESC").
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CountMessages uses a raw COUNT so a missing table surfaces as an error.
func CountMessages(db *gorm.DB, requestID int64) (int64, error) {
	var total int64
	err := db.Raw("SELECT COUNT(*) FROM messages WHERE request_id = ?", requestID).Scan(&total).Error
	return total, err
}

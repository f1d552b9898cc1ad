// Package domain defines the persistence models for support requests,
// conversation messages, and application logs. These types are mapped with
// GORM and form the core data layer of the support desk application.
package domain

import (
	"strings"
	"time"
)

// Canonical request statuses. A request starts as pending, moves to
// in_progress when an admin takes it, and ends resolved.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
)

// Sender types for messages within a request thread.
const (
	SenderUser   = "user"
	SenderAdmin  = "admin"
	SenderSystem = "system"
)

// SystemSenderID is the synthetic sender id used for system-generated
// messages (assignment and resolution audit entries).
const SystemSenderID int64 = 0

// Request represents a single support ticket opened by a Telegram user.
// The issue text is immutable after creation; everything else evolves as
// admins work the ticket.
//
// Fields:
//   - ID: autoincrement primary key, also the public ticket number.
//   - UserID: Telegram user id of the requester (64-bit); indexed.
//   - Issue: the original problem description, set once at creation.
//   - AssignedAdmin: Telegram user id of the claiming admin; nil until assigned.
//   - Status: pending | in_progress | resolved.
//   - Solution: resolution text; nil until the request is resolved.
//   - CreatedAt / UpdatedAt: UTC timestamps; UpdatedAt is refreshed on every
//     mutation including message appends.
type Request struct {
	ID            int64     `json:"id"             gorm:"primaryKey;autoIncrement"`
	UserID        int64     `json:"user_id"        gorm:"not null;index:idx_user_requests"`
	Issue         string    `json:"issue"          gorm:"type:text;not null"`
	AssignedAdmin *int64    `json:"assigned_admin" gorm:"index"`
	Status        string    `json:"status"         gorm:"type:varchar(16);not null;default:'pending';index"`
	Solution      *string   `json:"solution"       gorm:"type:text"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName returns the database table name for Request.
func (Request) TableName() string { return "requests" }

// Message represents a single entry in a request's conversation thread.
// Messages are append-only: they are never edited or deleted.
//
// Fields:
//   - ID: autoincrement primary key.
//   - RequestID: foreign key to the owning request (indexed with Timestamp).
//   - SenderID: Telegram user id of the author; SystemSenderID for system rows.
//   - SenderType: user | admin | system (enforced by DB constraint).
//   - Body: the message text (serialized as "message" for API compatibility).
//   - Timestamp: UTC creation time, the thread ordering key.
type Message struct {
	ID         int64     `json:"id"          gorm:"primaryKey;autoIncrement"`
	RequestID  int64     `json:"request_id"  gorm:"not null;index:idx_request_msgs,priority:1"`
	SenderID   int64     `json:"sender_id"   gorm:"not null"`
	SenderType string    `json:"sender_type" gorm:"type:varchar(16);not null;check:sender_type IN ('user','admin','system')"`
	Body       string    `json:"message"     gorm:"column:message;type:text;not null"`
	Timestamp  time.Time `json:"timestamp"   gorm:"index:idx_request_msgs,priority:2"`

	// Request is the parent ticket. Messages are cascade-deleted if their
	// request is removed.
	Request Request `json:"-" gorm:"foreignKey:RequestID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Message.
func (Message) TableName() string { return "messages" }

// Log is an append-only application log entry mirrored into the database by
// the async log sink. It exists so operators can inspect recent activity via
// the HTTP API without shell access to the host.
type Log struct {
	ID        int64     `json:"id"        gorm:"primaryKey;autoIncrement"`
	Timestamp time.Time `json:"timestamp" gorm:"index"`
	Level     string    `json:"level"     gorm:"type:varchar(16);not null;index"`
	Message   string    `json:"message"   gorm:"type:text;not null"`
	Context   string    `json:"context"   gorm:"type:text"`
}

// TableName returns the database table name for Log.
func (Log) TableName() string { return "logs" }

// NormalizeStatus maps a client-supplied status value onto the canonical
// enum. Historical clients used a looser vocabulary (open, assigned, solved,
// mixed case); those spellings are accepted and folded. The second return
// value is false when the input maps to nothing.
func NormalizeStatus(s string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case StatusPending, "open", "new":
		return StatusPending, true
	case StatusInProgress, "in-progress", "assigned":
		return StatusInProgress, true
	case StatusResolved, "solved", "closed":
		return StatusResolved, true
	}
	return "", false
}

// ValidStatus reports whether s is one of the canonical request statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

// ValidSenderType reports whether s is an allowed message sender type.
func ValidSenderType(s string) bool {
	switch s {
	case SenderUser, SenderAdmin, SenderSystem:
		return true
	}
	return false
}

// OpenStatuses returns the set of statuses covered by the logical "open"
// filter: tickets that still need admin attention.
func OpenStatuses() []string {
	return []string{StatusPending, StatusInProgress}
}

// Package services – RequestService
//
// This file implements RequestService, the application-level component that
// owns the lifecycle of support requests. It validates inputs, enforces the
// assignment and resolution rules, and persists request/message pairs
// atomically so a ticket can never exist without its opening message.
//
// Observability: all public methods are OpenTelemetry-instrumented; spans
// include request/user identifiers where applicable.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"supportdesk/internal/domain"
	"supportdesk/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// StatusFilterOpen is the logical list filter covering every ticket that
// still needs admin attention (pending or in_progress).
const StatusFilterOpen = "open"

// RequestUpdate carries the optional fields of a partial ticket update.
// Nil fields are left untouched; provided fields overwrite unconditionally.
type RequestUpdate struct {
	Status        *string
	AssignedAdmin *int64
	Solution      *string
}

// RequestOverview pairs a request with the newest message of its thread,
// used by the conversation overview listing.
type RequestOverview struct {
	domain.Request
	LatestMessage *domain.Message `json:"latest_message"`
}

// RequestService coordinates ticket persistence and thread mutations.
type RequestService struct {
	DB *gorm.DB

	// Optional guards
	MaxIssueRunes   int
	MaxMessageRunes int
}

// NewRequestService constructs a RequestService with sane length limits.
func NewRequestService(db *gorm.DB) *RequestService {
	return &RequestService{
		DB:              db,
		MaxIssueRunes:   4000,
		MaxMessageRunes: 4000,
	}
}

// Create opens a new ticket for userID and seeds the conversation thread
// with the issue text as the first user message. Both rows are written in
// a single transaction so a ticket can never be observed without its
// opening message.
func (s *RequestService) Create(ctx context.Context, userID int64, issue string) (*domain.Request, error) {
	tr := otel.Tracer("services/RequestService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(attribute.Int64("user.id", userID)),
	)
	defer span.End()

	issue = strings.TrimSpace(issue)
	if issue == "" {
		return nil, ErrEmptyIssue
	}
	if s.MaxIssueRunes > 0 && utf8.RuneCountInString(issue) > s.MaxIssueRunes {
		return nil, ErrTooLong
	}

	var created *domain.Request
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := repo.CreateRequest(ctx, tx, userID, issue)
		if err != nil {
			return err
		}
		if _, err := repo.CreateMessage(tx, r.ID, userID, domain.SenderUser, issue); err != nil {
			return err
		}
		created = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// AppendMessage adds a message to an existing ticket's thread and refreshes
// the ticket's updated_at in the same transaction. Returns ErrRequestNotFound
// when the ticket does not exist.
func (s *RequestService) AppendMessage(ctx context.Context, requestID, senderID int64, senderType, body string) (*domain.Message, error) {
	tr := otel.Tracer("services/RequestService")
	ctx, span := tr.Start(ctx, "AppendMessage",
		trace.WithAttributes(
			attribute.Int64("request.id", requestID),
			attribute.Int64("sender.id", senderID),
			attribute.String("sender.type", senderType),
		),
	)
	defer span.End()

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyMessage
	}
	if s.MaxMessageRunes > 0 && utf8.RuneCountInString(body) > s.MaxMessageRunes {
		return nil, ErrTooLong
	}
	if !domain.ValidSenderType(senderType) {
		return nil, ErrInvalidSenderType
	}

	var msg *domain.Message
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.GetRequest(ctx, tx, requestID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}
		m, err := repo.CreateMessage(tx, requestID, senderID, senderType, body)
		if err != nil {
			return err
		}
		if err := repo.UpdateRequestFields(ctx, tx, requestID, map[string]any{}); err != nil {
			return err
		}
		msg = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// ListMessages returns a ticket's thread ordered oldest first. With a
// non-nil since, only messages strictly newer than since are returned.
// An unknown ticket yields ErrRequestNotFound.
func (s *RequestService) ListMessages(ctx context.Context, requestID int64, since *time.Time) ([]domain.Message, error) {
	tr := otel.Tracer("services/RequestService")
	ctx, span := tr.Start(ctx, "ListMessages",
		trace.WithAttributes(attribute.Int64("request.id", requestID)),
	)
	defer span.End()

	if _, err := repo.GetRequest(ctx, s.DB, requestID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	if since != nil {
		return repo.ListMessagesSince(s.DB.WithContext(ctx), requestID, since.UTC())
	}
	return repo.ListMessages(s.DB.WithContext(ctx), requestID)
}

// Thread returns a ticket together with its full ordered message history.
func (s *RequestService) Thread(ctx context.Context, requestID int64) (*domain.Request, []domain.Message, error) {
	tr := otel.Tracer("services/RequestService")
	ctx, span := tr.Start(ctx, "Thread",
		trace.WithAttributes(attribute.Int64("request.id", requestID)),
	)
	defer span.End()

	r, err := repo.GetRequest(ctx, s.DB, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrRequestNotFound
		}
		return nil, nil, err
	}
	msgs, err := repo.ListMessages(s.DB.WithContext(ctx), requestID)
	if err != nil {
		return nil, nil, err
	}
	return r, msgs, nil
}

// Get fetches a single ticket by id.
func (s *RequestService) Get(ctx context.Context, requestID int64) (*domain.Request, error) {
	r, err := repo.GetRequest(ctx, s.DB, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return r, nil
}

// Assign claims a ticket for adminID. The check and the write run inside one
// transaction: if the ticket already has an assigned admin (any admin,
// including adminID itself), ErrAlreadyAssigned is returned and nothing
// changes. On success the status moves to in_progress and a system audit
// message is appended to the thread.
func (s *RequestService) Assign(ctx context.Context, requestID, adminID int64) (*domain.Request, error) {
	tr := otel.Tracer("services/RequestService")
	ctx, span := tr.Start(ctx, "Assign",
		trace.WithAttributes(
			attribute.Int64("request.id", requestID),
			attribute.Int64("admin.id", adminID),
		),
	)
	defer span.End()

	var out *domain.Request
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := repo.GetRequest(ctx, tx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}
		if r.AssignedAdmin != nil {
			return ErrAlreadyAssigned
		}
		if err := repo.UpdateRequestFields(ctx, tx, requestID, map[string]any{
			"assigned_admin": adminID,
			"status":         domain.StatusInProgress,
		}); err != nil {
			return err
		}
		audit := fmt.Sprintf("Request assigned to admin %d", adminID)
		if _, err := repo.CreateMessage(tx, requestID, domain.SystemSenderID, domain.SenderSystem, audit); err != nil {
			return err
		}
		out, err = repo.GetRequest(ctx, tx, requestID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Resolve closes a ticket with the given solution text. Any admin may
// resolve, not only the assignee. Resolving an already-resolved ticket
// overwrites the solution and appends another audit message; the status
// stays resolved and the solution never reverts to nil.
func (s *RequestService) Resolve(ctx context.Context, requestID int64, solution string, resolvedBy int64) (*domain.Request, error) {
	tr := otel.Tracer("services/RequestService")
	ctx, span := tr.Start(ctx, "Resolve",
		trace.WithAttributes(
			attribute.Int64("request.id", requestID),
			attribute.Int64("admin.id", resolvedBy),
		),
	)
	defer span.End()

	solution = strings.TrimSpace(solution)
	if solution == "" {
		return nil, ErrEmptySolution
	}

	var out *domain.Request
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.GetRequest(ctx, tx, requestID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}
		if err := repo.UpdateRequestFields(ctx, tx, requestID, map[string]any{
			"status":   domain.StatusResolved,
			"solution": solution,
		}); err != nil {
			return err
		}
		audit := fmt.Sprintf("Request closed with solution: %s", solution)
		if _, err := repo.CreateMessage(tx, requestID, domain.SystemSenderID, domain.SenderSystem, audit); err != nil {
			return err
		}
		var err error
		out, err = repo.GetRequest(ctx, tx, requestID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies a partial field update coming from the HTTP API. Provided
// fields overwrite unconditionally; status values are normalized onto the
// canonical enum and unknown values yield ErrInvalidStatus. The refreshed
// snapshot is returned.
func (s *RequestService) Update(ctx context.Context, requestID int64, upd RequestUpdate) (*domain.Request, error) {
	tr := otel.Tracer("services/RequestService")
	ctx, span := tr.Start(ctx, "Update",
		trace.WithAttributes(attribute.Int64("request.id", requestID)),
	)
	defer span.End()

	fields := map[string]any{}
	if upd.Status != nil {
		st, ok := domain.NormalizeStatus(*upd.Status)
		if !ok {
			return nil, ErrInvalidStatus
		}
		fields["status"] = st
	}
	if upd.AssignedAdmin != nil {
		fields["assigned_admin"] = *upd.AssignedAdmin
	}
	if upd.Solution != nil {
		fields["solution"] = *upd.Solution
	}

	if err := repo.UpdateRequestFields(ctx, s.DB, requestID, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return s.Get(ctx, requestID)
}

// List returns tickets filtered by status, newest first. The filter value
// "open" expands to pending plus in_progress; an empty filter returns
// everything; other values are normalized onto the canonical enum.
func (s *RequestService) List(ctx context.Context, statusFilter string) ([]domain.Request, error) {
	tr := otel.Tracer("services/RequestService")
	ctx, span := tr.Start(ctx, "List",
		trace.WithAttributes(attribute.String("filter", statusFilter)),
	)
	defer span.End()

	statuses, err := expandStatusFilter(statusFilter)
	if err != nil {
		return nil, err
	}
	return repo.ListRequests(ctx, s.DB, statuses)
}

// ListByUser returns the tickets opened by userID, optionally filtered the
// same way as List.
func (s *RequestService) ListByUser(ctx context.Context, userID int64, statusFilter string) ([]domain.Request, error) {
	statuses, err := expandStatusFilter(statusFilter)
	if err != nil {
		return nil, err
	}
	return repo.ListRequestsByUser(ctx, s.DB, userID, statuses)
}

// OpenForUser returns the newest still-open ticket of userID, or
// ErrRequestNotFound when the user has none.
func (s *RequestService) OpenForUser(ctx context.Context, userID int64) (*domain.Request, error) {
	open, err := repo.ListRequestsByUser(ctx, s.DB, userID, domain.OpenStatuses())
	if err != nil {
		return nil, err
	}
	if len(open) == 0 {
		return nil, ErrRequestNotFound
	}
	return &open[0], nil
}

// Overview returns all tickets ordered by last activity (updated_at desc),
// each paired with the newest message of its thread. Tickets with an empty
// thread carry a nil latest message.
func (s *RequestService) Overview(ctx context.Context) ([]RequestOverview, error) {
	tr := otel.Tracer("services/RequestService")
	ctx, span := tr.Start(ctx, "Overview")
	defer span.End()

	reqs, err := repo.ListRequestsByUpdated(ctx, s.DB, nil)
	if err != nil {
		return nil, err
	}
	out := make([]RequestOverview, 0, len(reqs))
	for _, r := range reqs {
		ov := RequestOverview{Request: r}
		if m, err := repo.LatestMessage(s.DB.WithContext(ctx), r.ID); err == nil {
			ov.LatestMessage = m
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		out = append(out, ov)
	}
	return out, nil
}

// expandStatusFilter maps a filter string onto the status set to query.
func expandStatusFilter(filter string) ([]string, error) {
	filter = strings.ToLower(strings.TrimSpace(filter))
	switch filter {
	case "":
		return nil, nil
	case StatusFilterOpen:
		return domain.OpenStatuses(), nil
	}
	st, ok := domain.NormalizeStatus(filter)
	if !ok {
		return nil, ErrInvalidStatus
	}
	return []string{st}, nil
}

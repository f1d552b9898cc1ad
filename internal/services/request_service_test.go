package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"supportdesk/internal/domain"
)

func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("request_service_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := db.AutoMigrate(&domain.Request{}, &domain.Message{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newSvc(t *testing.T) *RequestService {
	t.Helper()
	return NewRequestService(newServiceDB(t))
}

// Ticket creation must atomically seed the thread with the issue text.
func TestCreate_SeedsThreadWithIssue(t *testing.T) {
	s := newSvc(t)
	ctx := context.Background()

	req, err := s.Create(ctx, 100, "cannot log in")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if req.Status != domain.StatusPending || req.UserID != 100 {
		t.Fatalf("unexpected request: %+v", req)
	}

	msgs, err := s.ListMessages(ctx, req.ID, nil)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected exactly the seed message, got %d", len(msgs))
	}
	seed := msgs[0]
	if seed.Body != "cannot log in" || seed.SenderType != domain.SenderUser || seed.SenderID != 100 {
		t.Fatalf("seed message mismatch: %+v", seed)
	}
}

func TestCreate_Validation(t *testing.T) {
	s := newSvc(t)
	if _, err := s.Create(context.Background(), 1, "   "); !errors.Is(err, ErrEmptyIssue) {
		t.Fatalf("blank issue: got %v", err)
	}
	s.MaxIssueRunes = 5
	if _, err := s.Create(context.Background(), 1, "toooooo long"); !errors.Is(err, ErrTooLong) {
		t.Fatalf("long issue: got %v", err)
	}
}

func TestAppendMessage_UnknownRequest(t *testing.T) {
	s := newSvc(t)
	if _, err := s.AppendMessage(context.Background(), 999, 1, domain.SenderUser, "hi"); !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
}

func TestAppendMessage_RefreshesUpdatedAt(t *testing.T) {
	s := newSvc(t)
	ctx := context.Background()

	req, err := s.Create(ctx, 1, "issue")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	// Push updated_at into the past so the refresh is observable.
	past := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := s.DB.Model(&domain.Request{}).Where("id = ?", req.ID).
		UpdateColumn("updated_at", past).Error; err != nil {
		t.Fatalf("backdate: %v", err)
	}

	if _, err := s.AppendMessage(ctx, req.ID, 55, domain.SenderAdmin, "on it"); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}

	got, err := s.Get(ctx, req.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.UpdatedAt.After(past) {
		t.Fatalf("updated_at not refreshed: %v", got.UpdatedAt)
	}
}

func TestAppendMessage_InvalidSenderType(t *testing.T) {
	s := newSvc(t)
	req, err := s.Create(context.Background(), 1, "issue")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.AppendMessage(context.Background(), req.ID, 1, "bot", "x"); !errors.Is(err, ErrInvalidSenderType) {
		t.Fatalf("expected ErrInvalidSenderType, got %v", err)
	}
}

// Incremental polling: messages stamped at or before the cutoff are skipped.
func TestListMessages_SinceIsStrict(t *testing.T) {
	s := newSvc(t)
	ctx := context.Background()

	req, err := s.Create(ctx, 1, "issue")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	base := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		m := domain.Message{RequestID: req.ID, SenderID: 1, SenderType: domain.SenderUser,
			Body: fmt.Sprintf("m%d", i), Timestamp: base.Add(time.Duration(i) * time.Minute)}
		if err := s.DB.Create(&m).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	cut := base.Add(time.Minute)
	got, err := s.ListMessages(ctx, req.ID, &cut)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(got) != 1 || got[0].Body != "m2" {
		t.Fatalf("since filter must be strict, got %#v", got)
	}
}

// Assignment race: the second claim loses regardless of which admin makes it.
func TestAssign_FirstWinsSecondRejected(t *testing.T) {
	s := newSvc(t)
	ctx := context.Background()

	req, err := s.Create(ctx, 1, "issue")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.Assign(ctx, req.ID, 500)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if got.AssignedAdmin == nil || *got.AssignedAdmin != 500 || got.Status != domain.StatusInProgress {
		t.Fatalf("assign result: %+v", got)
	}

	if _, err := s.Assign(ctx, req.ID, 501); !errors.Is(err, ErrAlreadyAssigned) {
		t.Fatalf("second admin: expected ErrAlreadyAssigned, got %v", err)
	}
	// Same admin retrying also loses.
	if _, err := s.Assign(ctx, req.ID, 500); !errors.Is(err, ErrAlreadyAssigned) {
		t.Fatalf("same admin retry: expected ErrAlreadyAssigned, got %v", err)
	}

	// Exactly one assignment audit message.
	msgs, err := s.ListMessages(ctx, req.ID, nil)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	audits := 0
	for _, m := range msgs {
		if m.SenderType == domain.SenderSystem {
			audits++
			if m.Body != "Request assigned to admin 500" {
				t.Fatalf("audit body: %q", m.Body)
			}
		}
	}
	if audits != 1 {
		t.Fatalf("expected 1 audit message, got %d", audits)
	}
}

func TestAssign_UnknownRequest(t *testing.T) {
	s := newSvc(t)
	if _, err := s.Assign(context.Background(), 999, 1); !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
}

func TestResolve_SetsSolutionAndAudits(t *testing.T) {
	s := newSvc(t)
	ctx := context.Background()

	req, err := s.Create(ctx, 1, "issue")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Assign(ctx, req.ID, 500); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	// A different admin may resolve.
	got, err := s.Resolve(ctx, req.ID, "rebooted the router", 501)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Status != domain.StatusResolved || got.Solution == nil || *got.Solution != "rebooted the router" {
		t.Fatalf("resolve result: %+v", got)
	}

	// Resolving again overwrites the solution, status stays resolved.
	got, err = s.Resolve(ctx, req.ID, "replaced the router", 500)
	if err != nil {
		t.Fatalf("second Resolve: %v", err)
	}
	if got.Status != domain.StatusResolved || *got.Solution != "replaced the router" {
		t.Fatalf("overwrite result: %+v", got)
	}

	if _, err := s.Resolve(ctx, req.ID, " ", 500); !errors.Is(err, ErrEmptySolution) {
		t.Fatalf("blank solution: got %v", err)
	}
}

func TestUpdate_PartialAndNormalized(t *testing.T) {
	s := newSvc(t)
	ctx := context.Background()

	req, err := s.Create(ctx, 1, "issue")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	legacy := "solved"
	got, err := s.Update(ctx, req.ID, RequestUpdate{Status: &legacy})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Status != domain.StatusResolved {
		t.Fatalf("legacy status must normalize, got %q", got.Status)
	}
	// Untouched fields survive.
	if got.Issue != "issue" || got.AssignedAdmin != nil {
		t.Fatalf("partial update clobbered fields: %+v", got)
	}

	bogus := "nonsense"
	if _, err := s.Update(ctx, req.ID, RequestUpdate{Status: &bogus}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if _, err := s.Update(ctx, 999, RequestUpdate{}); !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
}

// The "open" filter is the union of pending and in_progress.
func TestList_OpenFilter(t *testing.T) {
	s := newSvc(t)
	ctx := context.Background()

	r1, _ := s.Create(ctx, 1, "a")
	r2, _ := s.Create(ctx, 2, "b")
	r3, _ := s.Create(ctx, 3, "c")
	if _, err := s.Assign(ctx, r2.ID, 500); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if _, err := s.Resolve(ctx, r3.ID, "done", 500); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	open, err := s.List(ctx, StatusFilterOpen)
	if err != nil {
		t.Fatalf("List(open): %v", err)
	}
	ids := map[int64]bool{}
	for _, r := range open {
		ids[r.ID] = true
	}
	if len(open) != 2 || !ids[r1.ID] || !ids[r2.ID] {
		t.Fatalf("open filter: got %v", ids)
	}

	all, err := s.List(ctx, "")
	if err != nil || len(all) != 3 {
		t.Fatalf("List(all): %v %v", all, err)
	}

	if _, err := s.List(ctx, "weird"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("bad filter: got %v", err)
	}
}

func TestOpenForUser(t *testing.T) {
	s := newSvc(t)
	ctx := context.Background()

	if _, err := s.OpenForUser(ctx, 77); !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("no tickets: got %v", err)
	}

	r, _ := s.Create(ctx, 77, "a")
	got, err := s.OpenForUser(ctx, 77)
	if err != nil || got.ID != r.ID {
		t.Fatalf("OpenForUser: %v %v", got, err)
	}

	if _, err := s.Resolve(ctx, r.ID, "done", 500); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, err := s.OpenForUser(ctx, 77); !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("resolved ticket must not count as open, got %v", err)
	}
}

func TestOverview_LatestMessageAndOrder(t *testing.T) {
	s := newSvc(t)
	ctx := context.Background()

	r1, _ := s.Create(ctx, 1, "first")
	r2, _ := s.Create(ctx, 2, "second")
	// Touch r1 so it has the most recent activity.
	if _, err := s.AppendMessage(ctx, r1.ID, 500, domain.SenderAdmin, "looking"); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}

	ov, err := s.Overview(ctx)
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if len(ov) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(ov))
	}
	if ov[0].ID != r1.ID {
		t.Fatalf("most recently active first, got %d then %d", ov[0].ID, ov[1].ID)
	}
	if ov[0].LatestMessage == nil || ov[0].LatestMessage.Body != "looking" {
		t.Fatalf("latest message mismatch: %+v", ov[0].LatestMessage)
	}
	if ov[1].ID != r2.ID || ov[1].LatestMessage == nil || ov[1].LatestMessage.Body != "second" {
		t.Fatalf("seed message expected for r2: %+v", ov[1].LatestMessage)
	}
}

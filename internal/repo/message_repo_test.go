package repo

import (
	"errors"
	"testing"
	"time"

	"supportdesk/internal/domain"
)

func TestCreateMessage_SetsUTCTimestamp(t *testing.T) {
	db := newRepoDB(t, &domain.Request{}, &domain.Message{})
	req := domain.Request{UserID: 1, Issue: "x", Status: domain.StatusPending,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}
	if err := db.Create(&req).Error; err != nil {
		t.Fatalf("seed request: %v", err)
	}

	before := time.Now().UTC().Add(-time.Second)
	m, err := CreateMessage(db, req.ID, 1, domain.SenderUser, "hello")
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	if m.ID == 0 || m.RequestID != req.ID || m.Body != "hello" || m.SenderType != domain.SenderUser {
		t.Fatalf("unexpected message: %+v", m)
	}
	if m.Timestamp.Before(before) {
		t.Fatalf("Timestamp seems unset: %v", m.Timestamp)
	}
	if m.Timestamp.Location() != time.UTC {
		t.Fatalf("Timestamp must be UTC, got %v", m.Timestamp.Location())
	}
}

func TestListMessages_OrderAscending(t *testing.T) {
	db := newRepoDB(t, &domain.Request{}, &domain.Message{})
	req := domain.Request{UserID: 1, Issue: "x", Status: domain.StatusPending,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}
	if err := db.Create(&req).Error; err != nil {
		t.Fatalf("seed request: %v", err)
	}

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, body := range []string{"first", "second", "third"} {
		m := domain.Message{RequestID: req.ID, SenderID: 1, SenderType: domain.SenderUser,
			Body: body, Timestamp: base.Add(time.Duration(i) * time.Minute)}
		if err := db.Create(&m).Error; err != nil {
			t.Fatalf("seed msg: %v", err)
		}
	}

	got, err := ListMessages(db, req.ID)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(got) != 3 || got[0].Body != "first" || got[2].Body != "third" {
		t.Fatalf("unexpected order: %#v", got)
	}
}

func TestListMessagesSince_StrictlyNewer(t *testing.T) {
	db := newRepoDB(t, &domain.Request{}, &domain.Message{})
	req := domain.Request{UserID: 1, Issue: "x", Status: domain.StatusPending,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}
	if err := db.Create(&req).Error; err != nil {
		t.Fatalf("seed request: %v", err)
	}

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		m := domain.Message{RequestID: req.ID, SenderID: 1, SenderType: domain.SenderUser,
			Body: "m", Timestamp: base.Add(time.Duration(i) * time.Minute)}
		if err := db.Create(&m).Error; err != nil {
			t.Fatalf("seed msg: %v", err)
		}
	}

	// Cutoff equal to the second message: only the third qualifies.
	got, err := ListMessagesSince(db, req.ID, base.Add(1*time.Minute))
	if err != nil {
		t.Fatalf("ListMessagesSince: %v", err)
	}
	if len(got) != 1 || !got[0].Timestamp.Equal(base.Add(2*time.Minute)) {
		t.Fatalf("expected exactly the strictly-newer message, got %#v", got)
	}

	// Cutoff after everything: empty, not an error.
	got, err = ListMessagesSince(db, req.ID, base.Add(time.Hour))
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty result, got %v err=%v", got, err)
	}
}

func TestLatestMessage(t *testing.T) {
	db := newRepoDB(t, &domain.Request{}, &domain.Message{})
	req := domain.Request{UserID: 1, Issue: "x", Status: domain.StatusPending,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}
	if err := db.Create(&req).Error; err != nil {
		t.Fatalf("seed request: %v", err)
	}

	if _, err := LatestMessage(db, req.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty thread must yield ErrNotFound, got %v", err)
	}

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, body := range []string{"old", "new"} {
		m := domain.Message{RequestID: req.ID, SenderID: 1, SenderType: domain.SenderUser,
			Body: body, Timestamp: base.Add(time.Duration(i) * time.Minute)}
		if err := db.Create(&m).Error; err != nil {
			t.Fatalf("seed msg: %v", err)
		}
	}
	m, err := LatestMessage(db, req.ID)
	if err != nil {
		t.Fatalf("LatestMessage: %v", err)
	}
	if m.Body != "new" {
		t.Fatalf("expected newest message, got %+v", m)
	}
}

func TestCountMessages_Error_NoTable(t *testing.T) {
	db := newRepoDB(t /* no migrations */)
	if _, err := CountMessages(db, 1); err == nil {
		t.Fatalf("expected error when table missing")
	}
}

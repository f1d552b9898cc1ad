package repo

import (
	"context"
	"testing"
	"time"

	"supportdesk/internal/domain"
)

func TestRequestsStats_EmptyTable(t *testing.T) {
	db := newRepoDB(t, &domain.Request{})
	count, maxTS, err := RequestsStats(context.Background(), db)
	if err != nil {
		t.Fatalf("RequestsStats: %v", err)
	}
	if count != 0 || maxTS != nil {
		t.Fatalf("expected (0, nil), got (%d, %v)", count, maxTS)
	}
}

func TestRequestsStats_CountAndMax(t *testing.T) {
	db := newRepoDB(t, &domain.Request{})
	t1 := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(2 * time.Hour)
	rows := []domain.Request{
		{UserID: 1, Issue: "a", Status: domain.StatusPending, CreatedAt: t1, UpdatedAt: t1},
		{UserID: 2, Issue: "b", Status: domain.StatusPending, CreatedAt: t2, UpdatedAt: t2},
	}
	for i := range rows {
		if err := db.Create(&rows[i]).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	count, maxTS, err := RequestsStats(context.Background(), db)
	if err != nil {
		t.Fatalf("RequestsStats: %v", err)
	}
	if count != 2 || maxTS == nil || !maxTS.Equal(t2) {
		t.Fatalf("expected (2, %v), got (%d, %v)", t2, count, maxTS)
	}
}

func TestThreadStats(t *testing.T) {
	db := newRepoDB(t, &domain.Request{}, &domain.Message{})
	req := domain.Request{UserID: 1, Issue: "x", Status: domain.StatusPending,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}
	if err := db.Create(&req).Error; err != nil {
		t.Fatalf("seed request: %v", err)
	}

	count, maxTS, err := ThreadStats(context.Background(), db, req.ID)
	if err != nil || count != 0 || maxTS != nil {
		t.Fatalf("empty thread: got (%d, %v, %v)", count, maxTS, err)
	}

	ts := time.Date(2025, 2, 1, 9, 30, 0, 0, time.UTC)
	m := domain.Message{RequestID: req.ID, SenderID: 1, SenderType: domain.SenderUser, Body: "hi", Timestamp: ts}
	if err := db.Create(&m).Error; err != nil {
		t.Fatalf("seed msg: %v", err)
	}
	count, maxTS, err = ThreadStats(context.Background(), db, req.ID)
	if err != nil || count != 1 || maxTS == nil || !maxTS.Equal(ts) {
		t.Fatalf("thread stats: got (%d, %v, %v)", count, maxTS, err)
	}
}

package logsink

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"supportdesk/internal/domain"
	"supportdesk/internal/repo"
)

func newSinkDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logsink.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&domain.Log{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestSink_PersistsEntries(t *testing.T) {
	db := newSinkDB(t)
	sink := New(db, zerolog.WarnLevel)

	sink.Run(nil, zerolog.ErrorLevel, "database gone")
	sink.Run(nil, zerolog.WarnLevel, "retrying")
	sink.Close()

	logs, err := repo.ListLogs(context.Background(), db, "", 10)
	if err != nil {
		t.Fatalf("ListLogs: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("persisted %d entries; want 2", len(logs))
	}
	for _, l := range logs {
		if l.Context != "server" {
			t.Errorf("entry context = %q; want server", l.Context)
		}
		if l.Timestamp.IsZero() {
			t.Errorf("entry timestamp not set")
		}
	}
}

func TestSink_FiltersBelowMinLevel(t *testing.T) {
	db := newSinkDB(t)
	sink := New(db, zerolog.WarnLevel)

	sink.Run(nil, zerolog.DebugLevel, "noise")
	sink.Run(nil, zerolog.InfoLevel, "more noise")
	sink.Run(nil, zerolog.InfoLevel, "")
	sink.Close()

	logs, err := repo.ListLogs(context.Background(), db, "", 10)
	if err != nil {
		t.Fatalf("ListLogs: %v", err)
	}
	if len(logs) != 0 {
		t.Fatalf("persisted %d entries; want 0", len(logs))
	}
}

func TestSink_CloseIsIdempotent(t *testing.T) {
	db := newSinkDB(t)
	sink := New(db, zerolog.InfoLevel)
	sink.Run(nil, zerolog.InfoLevel, "once")
	sink.Close()
	sink.Close()
}

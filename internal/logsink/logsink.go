// Package logsink mirrors server log entries into the logs table so the
// WebApp's log viewer sees backend events alongside its own.
//
// The sink hangs off zerolog as a Hook. Entries go through a buffered channel
// drained by one background goroutine; when the buffer is full the entry is
// dropped rather than blocking the logging call site. Write failures are
// swallowed for the same reason, and to avoid recursing into the logger.
package logsink

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"supportdesk/internal/domain"
	"supportdesk/internal/repo"
)

const defaultBuffer = 256

// Sink persists zerolog entries at or above a minimum level.
type Sink struct {
	db       *gorm.DB
	minLevel zerolog.Level

	ch        chan domain.Log
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New starts a sink writing to db. Close must be called to flush it.
func New(db *gorm.DB, minLevel zerolog.Level) *Sink {
	s := &Sink{
		db:       db,
		minLevel: minLevel,
		ch:       make(chan domain.Log, defaultBuffer),
	}
	s.wg.Add(1)
	go s.drain()
	return s
}

// Run implements zerolog.Hook. It never blocks the caller.
func (s *Sink) Run(_ *zerolog.Event, level zerolog.Level, message string) {
	if level < s.minLevel || level == zerolog.NoLevel || message == "" {
		return
	}
	entry := domain.Log{
		Timestamp: time.Now().UTC(),
		Level:     level.String(),
		Message:   message,
		Context:   "server",
	}
	select {
	case s.ch <- entry:
	default:
		// buffer full, drop
	}
}

// Close stops the sink after draining buffered entries.
func (s *Sink) Close() {
	s.closeOnce.Do(func() {
		close(s.ch)
	})
	s.wg.Wait()
}

func (s *Sink) drain() {
	defer s.wg.Done()
	for entry := range s.ch {
		e := entry
		_ = repo.CreateLog(context.Background(), s.db, &e)
	}
}

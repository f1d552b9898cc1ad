// Telegram webhook intake.
//
// Telegram re-delivers an update whenever it does not get a timely 200, so
// the handler ACKs immediately and hands the update to the bot router on a
// separate goroutine. A TTL'd in-memory set of update ids absorbs the
// retries that still arrive while an earlier delivery is being processed.
package httpapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	telebot "gopkg.in/telebot.v3"

	"supportdesk/internal/http/handlers"
)

// updateDedup remembers recently seen Telegram update ids.
type updateDedup struct {
	mu   sync.Mutex
	seen map[int]time.Time
	ttl  time.Duration
}

func newUpdateDedup(ttl time.Duration) *updateDedup {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &updateDedup{
		seen: make(map[int]time.Time),
		ttl:  ttl,
	}
}

// Seen marks id as delivered and reports whether it was already known.
// Expired entries are collected on the way.
func (d *updateDedup) Seen(id int) bool {
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	for k, t := range d.seen {
		if now.Sub(t) >= d.ttl {
			delete(d.seen, k)
		}
	}

	if _, ok := d.seen[id]; ok {
		return true
	}
	d.seen[id] = now
	return false
}

// webhookHandler decodes a Telegram update, deduplicates it, ACKs, and
// dispatches to the bot router asynchronously. A nil bot still ACKs so
// Telegram stops retrying while the bot is down.
func webhookHandler(b *telebot.Bot, dedup *updateDedup) gin.HandlerFunc {
	return func(c *gin.Context) {
		var u telebot.Update
		if err := c.ShouldBindJSON(&u); err != nil {
			handlers.Fail(c, http.StatusBadRequest, handlers.ErrCodeBadRequest, "invalid update payload")
			return
		}

		if u.ID != 0 && dedup.Seen(u.ID) {
			c.Status(http.StatusOK)
			return
		}

		c.Status(http.StatusOK)

		if b != nil {
			go b.ProcessUpdate(u)
		}
	}
}

// Package notify – outbound send protection.
//
// This file wraps sony/gobreaker so a flapping Telegram API cannot pile up
// blocked goroutines behind every ticket mutation. Notifications are
// best-effort, so a tripped breaker simply turns sends into fast failures
// until the cooldown elapses.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"supportdesk/internal/config"
)

// Breaker guards outbound Telegram calls with a circuit breaker.
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

// NewBreaker constructs a Breaker from configuration.
func NewBreaker(cfg config.BreakerConfig) *Breaker {
	settings := gobreaker.Settings{
		Name:        "telegram-send",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.ConsecutiveFails && failureRatio >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
		IsSuccessful: func(err error) bool {
			return err == nil
		},
	}
	return &Breaker{cb: gobreaker.NewCircuitBreaker(settings)}
}

// Execute runs fn through the breaker, bounded by ctx. When ctx expires
// before fn returns, Execute gives up immediately and the breaker records a
// failure; the abandoned call drains on its own goroutine.
func (b *Breaker) Execute(ctx context.Context, fn func() error) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		done := make(chan error, 1)
		go func() { done <- fn() }()
		select {
		case err := <-done:
			return nil, err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			return fmt.Errorf("telegram unavailable: circuit breaker is open")
		}
		if errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("telegram unavailable: too many requests")
		}
		return err
	}
	return nil
}

// State returns the current breaker state string, exposed on /health.
func (b *Breaker) State() string {
	switch b.cb.State() {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "closed"
	}
}

// defaultBreaker builds a breaker with conservative defaults, used when the
// Notifier is constructed without one (tests mostly).
func defaultBreaker() *Breaker {
	return NewBreaker(config.BreakerConfig{
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureRatio:     0.6,
		ConsecutiveFails: 5,
	})
}

// Package persistence holds decorators shared by the session repositories.
package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"example.com/mentalreset/internal/domain"
)

// BreakerConfig tunes the storage circuit breaker.
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns the settings used when none are configured.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// BreakerRepository guards a SessionRepository with a circuit breaker so an
// unreachable backend fails fast instead of stalling every save.
type BreakerRepository struct {
	next domain.SessionRepository
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerRepository wraps next.
func NewBreakerRepository(next domain.SessionRepository, cfg BreakerConfig, logger *zap.Logger) *BreakerRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("storage circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			// caller cancellation says nothing about backend health
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return &BreakerRepository{next: next, cb: cb}
}

func (b *BreakerRepository) Insert(ctx context.Context, record domain.SessionRecord) (domain.SessionRecord, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Insert(ctx, record)
	})
	if err != nil {
		return domain.SessionRecord{}, err
	}
	return out.(domain.SessionRecord), nil
}

func (b *BreakerRepository) ListByUser(ctx context.Context, userID string) ([]domain.SessionRecord, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.ListByUser(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return out.([]domain.SessionRecord), nil
}

// State reports the breaker state.
func (b *BreakerRepository) State() gobreaker.State {
	return b.cb.State()
}

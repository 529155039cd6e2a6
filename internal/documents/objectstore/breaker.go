package objectstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"depositguard/pkg/platform/sentinel"
)

type circuitState int

const (
	circuitClosed circuitState = iota
	circuitOpen
)

// Breaker wraps a Store and stops calling it after consecutive failures.
// While open every call fails fast with sentinel.ErrUnavailable; after the
// cooldown one call is let through and its outcome decides the state.
type Breaker struct {
	next Store

	mu               sync.Mutex
	state            circuitState
	failureCount     int
	failureThreshold int
	cooldown         time.Duration
	openedAt         time.Time
	probing          bool

	now    func() time.Time
	logger *slog.Logger
}

type BreakerOption func(*Breaker)

func WithFailureThreshold(n int) BreakerOption {
	return func(b *Breaker) {
		if n > 0 {
			b.failureThreshold = n
		}
	}
}

func WithCooldown(d time.Duration) BreakerOption {
	return func(b *Breaker) { b.cooldown = d }
}

func WithBreakerClock(now func() time.Time) BreakerOption {
	return func(b *Breaker) { b.now = now }
}

func WithBreakerLogger(logger *slog.Logger) BreakerOption {
	return func(b *Breaker) { b.logger = logger }
}

func NewBreaker(next Store, opts ...BreakerOption) *Breaker {
	b := &Breaker{
		next:             next,
		failureThreshold: 5,
		cooldown:         30 * time.Second,
		now:              time.Now,
		logger:           slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Breaker) Put(ctx context.Context, path string, body []byte, contentType string) (string, error) {
	if err := b.allow(); err != nil {
		return "", err
	}
	ref, err := b.next.Put(ctx, path, body, contentType)
	return ref, b.record(ctx, "put", err)
}

func (b *Breaker) SignedURL(ctx context.Context, ref string, ttl time.Duration) (string, error) {
	if err := b.allow(); err != nil {
		return "", err
	}
	u, err := b.next.SignedURL(ctx, ref, ttl)
	return u, b.record(ctx, "signed_url", err)
}

func (b *Breaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state == circuitOpen
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == circuitClosed {
		return nil
	}
	if b.probing || b.now().Sub(b.openedAt) < b.cooldown {
		return fmt.Errorf("%w: object storage circuit open", sentinel.ErrUnavailable)
	}
	b.probing = true
	return nil
}

// record updates the circuit and maps storage failures to ErrUnavailable.
// A missing object is the caller's problem and does not count.
func (b *Breaker) record(ctx context.Context, op string, err error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	wasProbe := b.probing
	b.probing = false

	if err == nil || errors.Is(err, sentinel.ErrNotFound) {
		if b.state == circuitOpen {
			b.logger.InfoContext(ctx, "object storage circuit closed", "op", op)
		}
		b.state = circuitClosed
		b.failureCount = 0
		return err
	}

	b.failureCount++
	if wasProbe || (b.state == circuitClosed && b.failureCount >= b.failureThreshold) {
		if b.state == circuitClosed {
			b.logger.WarnContext(ctx, "object storage circuit opened", "op", op, "failures", b.failureCount, "error", err)
		}
		b.state = circuitOpen
		b.openedAt = b.now()
	}
	return fmt.Errorf("%w: object storage %s: %v", sentinel.ErrUnavailable, op, err)
}

// Package poller repeats a readiness fetch with exponential backoff until it reports
// ready, the attempt ceiling is reached, or the handle is cancelled.
package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"
)

var ErrStillPreparing = errors.New("still preparing")

type Config struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	MaxAttempts     int
	// MinInterval is the minimum spacing between two fetches, including notified ones.
	MinInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		InitialInterval: time.Second,
		MaxInterval:     8 * time.Second,
		Multiplier:      2,
		MaxAttempts:     8,
		MinInterval:     time.Second,
	}
}

// FetchFunc reports whether the target is ready. Errors count as not ready.
type FetchFunc[T any] func(ctx context.Context) (T, bool, error)

type Handle[T any] struct {
	cancel context.CancelFunc
	notify chan struct{}
	done   chan struct{}

	mu       sync.Mutex
	val      T
	err      error
	attempts int
}

// Start launches the poll loop. The loop runs until ready, exhaustion, ctx cancellation
// or Cancel.
func Start[T any](ctx context.Context, cfg Config, fetch FetchFunc[T]) *Handle[T] {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle[T]{
		cancel: cancel,
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go h.run(ctx, cfg, fetch)
	return h
}

func newBackOff(cfg Config) *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.InitialInterval
	bo.MaxInterval = cfg.MaxInterval
	bo.Multiplier = cfg.Multiplier
	bo.RandomizationFactor = 0
	bo.Reset()
	return bo
}

func newLimiter(minInterval time.Duration) *rate.Limiter {
	if minInterval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(minInterval), 1)
}

func (h *Handle[T]) run(ctx context.Context, cfg Config, fetch FetchFunc[T]) {
	defer close(h.done)
	defer h.cancel()

	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultConfig().MaxAttempts
	}
	bo := newBackOff(cfg)
	limiter := newLimiter(cfg.MinInterval)

	var lastErr error
	for attempt := 1; ; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				err = ctx.Err()
			}
			h.finish(err, attempt-1)
			return
		}
		if ctx.Err() != nil {
			h.finish(ctx.Err(), attempt-1)
			return
		}

		v, ready, err := fetch(ctx)
		if ctx.Err() != nil {
			h.finish(ctx.Err(), attempt)
			return
		}
		if err == nil && ready {
			h.mu.Lock()
			h.val = v
			h.mu.Unlock()
			h.finish(nil, attempt)
			return
		}
		if err != nil {
			lastErr = err
		}

		if attempt >= cfg.MaxAttempts {
			if lastErr != nil {
				h.finish(fmt.Errorf("%w after %d attempts: %v", ErrStillPreparing, attempt, lastErr), attempt)
			} else {
				h.finish(fmt.Errorf("%w after %d attempts", ErrStillPreparing, attempt), attempt)
			}
			return
		}

		timer := time.NewTimer(bo.NextBackOff())
		select {
		case <-ctx.Done():
			timer.Stop()
			h.finish(ctx.Err(), attempt)
			return
		case <-h.notify:
			timer.Stop()
		case <-timer.C:
		}
	}
}

func (h *Handle[T]) finish(err error, attempts int) {
	h.mu.Lock()
	h.err = err
	h.attempts = attempts
	h.mu.Unlock()
}

// Notify asks for an immediate fetch. Notifications arriving before the loop picks up
// the previous one are collapsed.
func (h *Handle[T]) Notify() {
	select {
	case h.notify <- struct{}{}:
	default:
	}
}

// Cancel stops the loop. A fetch in flight sees its context cancelled.
func (h *Handle[T]) Cancel() {
	h.cancel()
}

func (h *Handle[T]) Done() <-chan struct{} { return h.done }

// Wait blocks until the loop has stopped or ctx is done.
func (h *Handle[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-h.done:
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.val, h.err
}

func (h *Handle[T]) Attempts() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.attempts
}

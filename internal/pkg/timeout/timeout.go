package timeout

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrTimeout = errors.New("deadline exceeded")

type result[T any] struct {
	val T
	err error
}

// Run races work against d. On expiry it returns ErrTimeout without waiting for work;
// work's context is cancelled so it can stop early. Work is never retried.
func Run[T any](ctx context.Context, d time.Duration, work func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if d <= 0 {
		return zero, fmt.Errorf("run with %s deadline: %w", d, ErrTimeout)
	}

	wctx, cancel := context.WithCancel(ctx)
	timer := time.NewTimer(d)
	defer timer.Stop()

	done := make(chan result[T], 1)
	go func() {
		defer cancel()
		v, err := work(wctx)
		done <- result[T]{val: v, err: err}
	}()

	select {
	case r := <-done:
		return r.val, r.err
	case <-timer.C:
		cancel()
		return zero, fmt.Errorf("after %s: %w", d, ErrTimeout)
	case <-ctx.Done():
		cancel()
		return zero, ctx.Err()
	}
}

func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

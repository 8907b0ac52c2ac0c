// Package limiter bounds how many invocations of a call run at the same time.
//
// A Limiter is shared by every call made through the same wrapped function.
// Callers over the bound wait on a counting semaphore; acquisition order is
// not FIFO. A slot is always released when the wrapped call returns, whether
// it succeeded, failed or panicked.
package limiter

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/atomic"
	"golang.org/x/sync/semaphore"

	"github.com/ZanzyTHEbar/vragkit/vrag/ports"
)

// ErrInvalidSize is returned when a limiter is created with fewer than one slot.
var ErrInvalidSize = errors.New("limiter: max size must be at least 1")

// Func is the shape of every call the limiter can wrap.
type Func[Req, Resp any] func(ctx context.Context, req Req) (Resp, error)

// Limiter enforces a maximum number of concurrent executions.
type Limiter struct {
	maxSize  int
	sem      *semaphore.Weighted
	inFlight *atomic.Int64
}

// New creates a limiter allowing at most maxSize concurrent calls.
func New(maxSize int) (*Limiter, error) {
	if maxSize < 1 {
		return nil, ErrInvalidSize
	}
	return &Limiter{
		maxSize:  maxSize,
		sem:      semaphore.NewWeighted(int64(maxSize)),
		inFlight: atomic.NewInt64(0),
	}, nil
}

// MaxSize reports the configured slot count.
func (l *Limiter) MaxSize() int { return l.maxSize }

// InFlight reports how many calls currently hold a slot.
func (l *Limiter) InFlight() int { return int(l.inFlight.Load()) }

// Acquire blocks until a slot is free or ctx is done. The key is accepted for
// ports.RateLimiter compatibility; all keys share the same slots.
//
// If ctx ends first the counter is never touched and ctx.Err() is returned.
// The returned release func is safe to call more than once.
func (l *Limiter) Acquire(ctx context.Context, key string) (release func(), err error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	l.inFlight.Inc()

	var once sync.Once
	release = func() {
		once.Do(func() {
			l.inFlight.Dec()
			l.sem.Release(1)
		})
	}
	return release, nil
}

// Wrap returns a call with the same signature and result as fn whose
// executions are bounded by l. Errors from fn propagate unchanged.
func Wrap[Req, Resp any](l *Limiter, fn Func[Req, Resp]) Func[Req, Resp] {
	return func(ctx context.Context, req Req) (Resp, error) {
		release, err := l.Acquire(ctx, "")
		if err != nil {
			var zero Resp
			return zero, err
		}
		defer release()

		return fn(ctx, req)
	}
}

// LimitAsyncFuncCall creates a dedicated limiter of maxSize slots and wraps fn with it.
func LimitAsyncFuncCall[Req, Resp any](maxSize int, fn Func[Req, Resp]) (Func[Req, Resp], *Limiter, error) {
	l, err := New(maxSize)
	if err != nil {
		return nil, nil, err
	}
	return Wrap(l, fn), l, nil
}

// Ensure Limiter implements the RateLimiter interface.
var _ ports.RateLimiter = (*Limiter)(nil)

package crawler

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/nao1215/a11yscan/internal/config"
)

// DefaultConcurrency is the limiter capacity used when none is given.
const DefaultConcurrency = config.DefaultConcurrency

// ErrTaskPanicked is returned by Run when the task panicked.
var ErrTaskPanicked = errors.New("task panicked")

// Limiter caps the number of tasks executing at once. Waiting callers are
// admitted in FIFO order. It carries no business data.
type Limiter struct {
	sem      *semaphore.Weighted
	capacity int
	inFlight atomic.Int64
	peak     atomic.Int64
}

// NewLimiter creates a Limiter admitting k concurrent tasks.
// A non-positive k falls back to DefaultConcurrency.
func NewLimiter(k int) *Limiter {
	if k <= 0 {
		k = DefaultConcurrency
	}
	return &Limiter{
		sem:      semaphore.NewWeighted(int64(k)),
		capacity: k,
	}
}

// Capacity returns K.
func (l *Limiter) Capacity() int { return l.capacity }

// InFlight returns the number of tasks currently executing.
func (l *Limiter) InFlight() int { return int(l.inFlight.Load()) }

// Peak returns the highest InFlight value observed so far.
func (l *Limiter) Peak() int { return int(l.peak.Load()) }

// Run waits for a slot, executes task and releases the slot. The slot is
// released whether task succeeds, fails or panics; a panic is returned as
// ErrTaskPanicked. If ctx ends while waiting, ctx.Err() is returned and
// task never runs.
func Run[T any](ctx context.Context, l *Limiter, task func(context.Context) (T, error)) (result T, err error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return result, err
	}
	defer l.sem.Release(1)

	n := l.inFlight.Add(1)
	defer l.inFlight.Add(-1)
	for {
		p := l.peak.Load()
		if n <= p || l.peak.CompareAndSwap(p, n) {
			break
		}
	}

	defer func() {
		if r := recover(); r != nil {
			var zero T
			result = zero
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
	}()
	return task(ctx)
}

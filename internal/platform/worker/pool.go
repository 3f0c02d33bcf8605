package worker

import (
	"context"
	"errors"
	"log"
	"runtime/debug"
	"sync"

	"golang.org/x/sync/semaphore"
)

var (
	ErrPoolClosed = errors.New("worker pool: closed")
	ErrPoolFull   = errors.New("worker pool: too many pending jobs")
)

// DefaultMaxPendingPerWorker sizes the default pending limit as a multiple of
// the worker count.
const DefaultMaxPendingPerWorker = 64

// Pool runs fire-and-forget jobs on background goroutines, at most size at a
// time. Submit never blocks the caller; excess jobs wait for a free slot.
// Every accepted job holds a goroutine until it finishes, so the number of
// accepted but unfinished jobs is capped by maxPending.
type Pool struct {
	sem        *semaphore.Weighted
	wg         sync.WaitGroup
	maxPending int

	mu      sync.Mutex
	closed  bool
	pending int
}

type Option func(*Pool)

// WithMaxPending caps queued plus running jobs. Submit returns ErrPoolFull
// beyond it. n < 1 is ignored.
func WithMaxPending(n int) Option {
	return func(p *Pool) {
		if n >= 1 {
			p.maxPending = n
		}
	}
}

func NewPool(size int, opts ...Option) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{
		sem:        semaphore.NewWeighted(int64(size)),
		maxPending: size * DefaultMaxPendingPerWorker,
	}
	for _, o := range opts {
		o(p)
	}
	if p.maxPending < size {
		p.maxPending = size
	}
	return p
}

// Submit schedules job. It fails once Close has been called, or when the
// pending limit is reached.
func (p *Pool) Submit(job func()) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	if p.pending >= p.maxPending {
		p.mu.Unlock()
		return ErrPoolFull
	}
	p.pending++
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		defer p.done()

		// Acquire with a background context cannot fail.
		_ = p.sem.Acquire(context.Background(), 1)
		defer p.sem.Release(1)

		defer func() {
			if r := recover(); r != nil {
				log.Printf("worker: job panicked: %v\n%s", r, debug.Stack())
			}
		}()

		job()
	}()

	return nil
}

// Pending reports the number of accepted jobs that have not finished.
func (p *Pool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending
}

func (p *Pool) done() {
	p.mu.Lock()
	p.pending--
	p.mu.Unlock()
}

// Close stops accepting jobs and waits for queued and running ones to finish,
// or for ctx to end.
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

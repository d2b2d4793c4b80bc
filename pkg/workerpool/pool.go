package workerpool

import (
	"context"
	"sync"
)

// Pool runs a fixed number of workers over a buffered job queue.
type Pool[T any] struct {
	ctx     context.Context
	cancel  context.CancelFunc
	jobs    chan T
	wg      sync.WaitGroup
	closed  bool
	closeMu sync.RWMutex
}

type Handler[T any] func(ctx context.Context, job T)

// New starts workers goroutines calling h for each submitted job. Workers
// stop early when ctx is cancelled.
func New[T any](ctx context.Context, workers int, h Handler[T]) *Pool[T] {
	if workers <= 0 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	p := &Pool[T]{
		ctx:    ctx,
		cancel: cancel,
		jobs:   make(chan T, workers*2+8),
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-p.ctx.Done():
					return
				case job, ok := <-p.jobs:
					if !ok {
						return
					}
					h(p.ctx, job)
				}
			}
		}()
	}
	return p
}

// Submit queues job, blocking while the queue is full. It returns false
// once the pool is closed or cancelled. Close waits for blocked submitters.
func (p *Pool[T]) Submit(job T) bool {
	p.closeMu.RLock()
	defer p.closeMu.RUnlock()
	if p.closed {
		return false
	}
	select {
	case <-p.ctx.Done():
		return false
	case p.jobs <- job:
		return true
	}
}

// Close stops accepting jobs, lets the workers drain the queue and waits for
// them. It is safe to call more than once.
func (p *Pool[T]) Close() {
	p.closeMu.Lock()
	if p.closed {
		p.closeMu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.closeMu.Unlock()
	p.wg.Wait()
	p.cancel()
}

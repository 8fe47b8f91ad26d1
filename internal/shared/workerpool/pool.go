package workerpool

import (
	"context"
	"errors"
	"sync"
)

// Pool is a bounded worker pool for I/O-bound fire-and-forget tasks. Submit
// blocks once the queue is full, which backpressures producers instead of
// growing memory without bound.
type Pool struct {
	tasks   chan func()
	wg      sync.WaitGroup
	closing chan struct{}

	mu         sync.RWMutex
	closed     bool
	closeOnce  sync.Once
	submitters sync.WaitGroup
}

var ErrClosed = errors.New("worker pool closed")

// New starts workers goroutines consuming a queue of queueSize tasks.
func New(workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	p := &Pool{
		tasks:   make(chan func(), queueSize),
		closing: make(chan struct{}),
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		task()
	}
}

// Submit enqueues a task, blocking while the queue is full. It returns
// ErrClosed after Close and the context error if ctx ends first.
func (p *Pool) Submit(ctx context.Context, task func()) error {
	if task == nil {
		return nil
	}

	// Registering under the lock keeps the task channel open until every
	// in-flight Submit has returned.
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return ErrClosed
	}
	p.submitters.Add(1)
	p.mu.RUnlock()
	defer p.submitters.Done()

	select {
	case <-p.closing:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	case p.tasks <- task:
		return nil
	}
}

// Close stops intake and waits for queued tasks to drain.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()
		close(p.closing)
		p.submitters.Wait()
		close(p.tasks)
	})
	p.wg.Wait()
}

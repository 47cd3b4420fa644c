// Package batch runs background work on a fixed set of workers.
package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	// ErrPoolClosed is returned by Submit after Shutdown was called
	ErrPoolClosed = errors.New("worker pool is shut down")
	// ErrQueueFull is returned by Submit when no queue slot is free
	ErrQueueFull = errors.New("worker pool queue is full")
)

// Task is one unit of background work
type Task struct {
	ID  string
	Run func(ctx context.Context) error
	// OnDone is called with the result of Run, including recovered panics
	OnDone func(err error)
}

// Pool executes tasks on a fixed number of workers fed by a bounded queue
type Pool struct {
	tasks   chan Task
	timeout time.Duration
	logger  *logrus.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewPool starts workers goroutines. Each task runs with its own timeout when
// timeout is positive.
func NewPool(workers, queueSize int, timeout time.Duration, logger *logrus.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		tasks:   make(chan Task, queueSize),
		timeout: timeout,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker(i)
	}
	return p
}

// Submit queues a task without blocking
func (p *Pool) Submit(task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Shutdown stops accepting tasks and waits for queued and running tasks to
// finish. When ctx expires first, running tasks are cancelled and ctx's error
// is returned.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.tasks)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		<-done
		return ctx.Err()
	}
}

func (p *Pool) worker(n int) {
	defer p.wg.Done()
	for task := range p.tasks {
		err := p.run(task)
		if err != nil {
			p.logger.WithError(err).WithFields(logrus.Fields{
				"worker":  n,
				"task_id": task.ID,
			}).Warn("Background task failed")
		}
		if task.OnDone != nil {
			task.OnDone(err)
		}
	}
}

func (p *Pool) run(task Task) (err error) {
	ctx := p.ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", task.ID, r)
		}
	}()
	return task.Run(ctx)
}

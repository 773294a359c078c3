package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const taskTimeout = 30 * time.Second

// Task is a named unit of best-effort background work. Failures are logged,
// never returned to the request that queued it.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

type Pool interface {
	// Submit queues t and reports whether it was accepted.
	Submit(t Task) bool
	Stop()
}

// NewPool starts n workers (n<=0 defaults to 1) reading from a queue of the
// given size.
func NewPool(n, queue int, log *zap.Logger) Pool {
	if n <= 0 {
		n = 1
	}
	if queue < 0 {
		queue = 0
	}
	if log == nil {
		log = zap.NewNop()
	}
	p := &pool{jobs: make(chan Task, queue), log: log}
	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.run(job)
			}
		}()
	}
	return p
}

type pool struct {
	mu      sync.RWMutex
	stopped bool
	jobs    chan Task
	wg      sync.WaitGroup
	log     *zap.Logger
}

func (p *pool) Submit(t Task) bool {
	if t.Run == nil {
		return false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		p.log.Warn("worker pool stopped, task dropped", zap.String("task", t.Name))
		return false
	}
	p.jobs <- t
	return true
}

// Stop drains queued tasks and waits for the workers to exit.
func (p *pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *pool) run(t Task) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("task panicked", zap.String("task", t.Name), zap.Any("panic", r))
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
	defer cancel()
	if err := t.Run(ctx); err != nil {
		p.log.Warn("task failed", zap.String("task", t.Name), zap.Error(err))
	}
}

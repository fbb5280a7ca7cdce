package dispatch

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// Task is a detached unit of work. Its error is logged and goes nowhere else.
type Task func(ctx context.Context) error

type job struct {
	name string
	fn   Task
}

// Submitter is what handlers depend on.
type Submitter interface {
	Submit(name string, fn Task) bool
}

// Dispatcher runs detached tasks on a fixed set of workers fed by a bounded
// queue. Submit never blocks the caller.
type Dispatcher struct {
	timeout time.Duration
	tasks   chan job
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func New(workers, queue int, timeout time.Duration) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queue < 0 {
		queue = 0
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	d := &Dispatcher{
		timeout: timeout,
		tasks:   make(chan job, queue),
	}
	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.worker()
	}
	return d
}

// Submit queues fn. It reports false when the task was dropped because the
// queue is full or the dispatcher is shutting down.
func (d *Dispatcher) Submit(name string, fn Task) bool {
	if d == nil || fn == nil {
		return false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		log.Printf("[DISPATCH] %s dropped: dispatcher closed", name)
		return false
	}
	select {
	case d.tasks <- job{name: name, fn: fn}:
		return true
	default:
		log.Printf("[DISPATCH] %s dropped: queue full", name)
		return false
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for j := range d.tasks {
		d.run(j)
	}
}

func (d *Dispatcher) run(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	start := time.Now()
	err := safeCall(ctx, j.fn)
	if err != nil {
		log.Printf("[DISPATCH] %s failed after %s: %v", j.name, time.Since(start).Round(time.Millisecond), err)
		return
	}
	log.Printf("[DISPATCH] %s done in %s", j.name, time.Since(start).Round(time.Millisecond))
}

func safeCall(ctx context.Context, fn Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx)
}

// Shutdown stops accepting tasks and waits for queued ones to finish or for
// ctx to expire.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.tasks)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

package oss

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

const defaultMaxAttempts = 5

// Janitor removes files that were replaced on a record. Removal is best
// effort: a failure is logged and the URL is retried on the cron schedule
// until it succeeds or runs out of attempts.
type Janitor struct {
	storage     Storage
	maxAttempts int
	timeout     time.Duration

	mu      sync.Mutex
	pending map[string]int

	cron *cron.Cron
}

func NewJanitor(storage Storage) *Janitor {
	return &Janitor{
		storage:     storage,
		maxAttempts: defaultMaxAttempts,
		timeout:     10 * time.Second,
		pending:     make(map[string]int),
	}
}

// Remove deletes url now. It never returns an error to the caller.
func (j *Janitor) Remove(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := j.delete(ctx, url); err != nil {
		log.Printf("[UPLOAD] remove %s failed, queued for retry: %v", url, err)
		j.mu.Lock()
		j.pending[url] = 1
		j.mu.Unlock()
	}
}

func (j *Janitor) delete(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), j.timeout)
	defer cancel()
	err := j.storage.Delete(ctx, url)
	if errors.Is(err, ErrForeignURL) {
		return nil
	}
	return err
}

// Sweep retries every pending removal once.
func (j *Janitor) Sweep() {
	j.mu.Lock()
	urls := make([]string, 0, len(j.pending))
	for u := range j.pending {
		urls = append(urls, u)
	}
	j.mu.Unlock()

	for _, u := range urls {
		err := j.delete(context.Background(), u)
		j.mu.Lock()
		switch {
		case err == nil:
			delete(j.pending, u)
			log.Printf("[UPLOAD] removed %s on retry", u)
		case j.pending[u]+1 >= j.maxAttempts:
			delete(j.pending, u)
			log.Printf("[UPLOAD] giving up on %s after %d attempts: %v", u, j.maxAttempts, err)
		default:
			j.pending[u]++
		}
		j.mu.Unlock()
	}
}

// Pending is the number of URLs waiting for a retry.
func (j *Janitor) Pending() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.pending)
}

// Start schedules Sweep with a cron spec such as "@every 10m".
func (j *Janitor) Start(schedule string) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, j.Sweep); err != nil {
		return err
	}
	j.cron = c
	c.Start()
	log.Printf("[UPLOAD] janitor scheduled (%s)", schedule)
	return nil
}

// Stop halts the schedule and waits for a running sweep.
func (j *Janitor) Stop() {
	if j.cron == nil {
		return
	}
	<-j.cron.Stop().Done()
}

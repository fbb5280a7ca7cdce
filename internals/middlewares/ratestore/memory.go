// Package ratestore provides fiber.Storage backends for the rate limiters.
// Counters live wherever the store lives: Memory is per process, Redis is
// shared by every instance pointing at the same server.
package ratestore

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

var _ fiber.Storage = (*Memory)(nil)

type entry struct {
	val []byte
	exp time.Time
}

// Memory is an in-process store with explicit lifecycle: NewMemory starts
// the expiry sweeper and Close stops it.
type Memory struct {
	mu   sync.RWMutex
	data map[string]entry

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func NewMemory(gcInterval time.Duration) *Memory {
	if gcInterval <= 0 {
		gcInterval = 10 * time.Second
	}
	m := &Memory{
		data: make(map[string]entry),
		done: make(chan struct{}),
	}
	m.wg.Add(1)
	go m.gc(gcInterval)
	return m
}

func (m *Memory) gc(interval time.Duration) {
	defer m.wg.Done()
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-m.done:
			return
		case now := <-t.C:
			m.mu.Lock()
			for k, e := range m.data {
				if !e.exp.IsZero() && now.After(e.exp) {
					delete(m.data, k)
				}
			}
			m.mu.Unlock()
		}
	}
}

func (m *Memory) Get(key string) ([]byte, error) {
	m.mu.RLock()
	e, ok := m.data[key]
	m.mu.RUnlock()
	if !ok || (!e.exp.IsZero() && time.Now().After(e.exp)) {
		return nil, nil
	}
	return e.val, nil
}

func (m *Memory) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	cp := make([]byte, len(val))
	copy(cp, val)
	e := entry{val: cp}
	if exp > 0 {
		e.exp = time.Now().Add(exp)
	}
	m.mu.Lock()
	m.data[key] = e
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Reset() error {
	m.mu.Lock()
	m.data = make(map[string]entry)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error {
	m.closeOnce.Do(func() {
		close(m.done)
		m.wg.Wait()
	})
	return nil
}

// Len is the number of live keys.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

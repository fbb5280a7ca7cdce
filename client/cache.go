package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/zeebo/xxh3"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultStaleTime is how long a result is served without refetching.
	DefaultStaleTime = 5 * time.Minute

	// entries outlive their freshness so stale data can still be served
	// while a refresh runs
	retentionFactor = 6

	defaultRefreshTimeout = 30 * time.Second
)

// entry keeps the encoded result so every hit decodes its own copy and
// callers can mutate what they get back.
type entry struct {
	data      []byte
	fetchedAt time.Time
}

type loader func(ctx context.Context) ([]byte, error)

// QueryCache holds the last successful result of every read, keyed by
// namespace, operation and parameters. Fresh results are served as is;
// stale ones are served while a single background refresh runs. Results
// are stored JSON encoded and decoded into a new value on every read.
type QueryCache struct {
	store          *cache.Cache
	flights        singleflight.Group
	staleTime      time.Duration
	refreshTimeout time.Duration
	now            func() time.Time

	mu         sync.Mutex
	gens       map[string]uint64
	refreshing map[string]struct{}
	closed     bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewQueryCache(staleTime time.Duration) *QueryCache {
	if staleTime <= 0 {
		staleTime = DefaultStaleTime
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &QueryCache{
		// no cleanup interval: go-cache would start a janitor goroutine that
		// is never stopped; expired entries are dropped on Invalidate instead
		store:          cache.New(staleTime*retentionFactor, 0),
		staleTime:      staleTime,
		refreshTimeout: defaultRefreshTimeout,
		now:            time.Now,
		gens:           make(map[string]uint64),
		refreshing:     make(map[string]struct{}),
		ctx:            ctx,
		cancel:         cancel,
	}
}

// Key is "<namespace>:<op>:<hash of params>".
func Key(namespace, op string, params url.Values) string {
	return fmt.Sprintf("%s:%s:%016x", namespace, op, xxh3.HashString(params.Encode()))
}

// Query returns the cached result for (namespace, op, params) or calls fetch.
// Identical concurrent misses share one fetch. A nil cache always fetches.
func Query[T any](ctx context.Context, qc *QueryCache, namespace, op string, params url.Values, fetch func(context.Context) (T, error)) (T, error) {
	var out T
	if qc == nil {
		return fetch(ctx)
	}
	key := Key(namespace, op, params)
	load := func(ctx context.Context) ([]byte, error) {
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	}

	var data []byte
	if v, ok := qc.store.Get(key); ok {
		e := v.(entry)
		if qc.now().Sub(e.fetchedAt) >= qc.staleTime {
			qc.refresh(namespace, key, load)
		}
		data = e.data
	} else {
		var err error
		if data, err = qc.load(ctx, namespace, key, load); err != nil {
			return out, err
		}
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return out, nil
}

func (qc *QueryCache) generation(namespace string) uint64 {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	return qc.gens[namespace]
}

// load runs fetch once per key and generation. A result that lands after
// its namespace was invalidated is returned to the waiting callers but not
// cached. The shared fetch keeps ctx's values but not its cancellation, so
// one caller giving up does not fail the others; it stops on Close or
// after the refresh timeout.
func (qc *QueryCache) load(ctx context.Context, namespace, key string, fetch loader) ([]byte, error) {
	gen := qc.generation(namespace)
	ch := qc.flights.DoChan(fmt.Sprintf("%s#%d", key, gen), func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), qc.refreshTimeout)
		defer cancel()
		stop := context.AfterFunc(qc.ctx, cancel)
		defer stop()

		data, err := fetch(fctx)
		if err != nil {
			return nil, err
		}
		qc.mu.Lock()
		if qc.gens[namespace] == gen && !qc.closed {
			qc.store.SetDefault(key, entry{data: data, fetchedAt: qc.now()})
		}
		qc.mu.Unlock()
		return data, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (qc *QueryCache) refresh(namespace, key string, fetch loader) {
	qc.mu.Lock()
	if _, busy := qc.refreshing[key]; busy || qc.closed {
		qc.mu.Unlock()
		return
	}
	qc.refreshing[key] = struct{}{}
	qc.wg.Add(1)
	qc.mu.Unlock()

	go func() {
		defer qc.wg.Done()
		defer func() {
			qc.mu.Lock()
			delete(qc.refreshing, key)
			qc.mu.Unlock()
		}()

		ctx, cancel := context.WithTimeout(qc.ctx, qc.refreshTimeout)
		defer cancel()
		if _, err := qc.load(ctx, namespace, key, fetch); err != nil {
			log.Printf("[CACHE] refresh %s failed: %v", key, err)
		}
	}()
}

// Invalidate drops every entry of the given namespaces. In-flight fetches
// started before the call will not repopulate them.
func (qc *QueryCache) Invalidate(namespaces ...string) {
	if qc == nil {
		return
	}
	qc.mu.Lock()
	defer qc.mu.Unlock()
	for _, ns := range namespaces {
		qc.gens[ns]++
		prefix := ns + ":"
		for k := range qc.store.Items() {
			if strings.HasPrefix(k, prefix) {
				qc.store.Delete(k)
			}
		}
	}
	qc.store.DeleteExpired()
}

// Len counts live entries.
func (qc *QueryCache) Len() int { return qc.store.ItemCount() }

// Close cancels background refreshes, waits for them and empties the cache.
func (qc *QueryCache) Close() {
	qc.mu.Lock()
	if qc.closed {
		qc.mu.Unlock()
		return
	}
	qc.closed = true
	qc.mu.Unlock()

	qc.cancel()
	qc.wg.Wait()
	qc.store.Flush()
}

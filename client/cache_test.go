package client

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	a := Key("projects", "list", url.Values{"page": {"1"}, "sort": {"-startDate"}})
	b := Key("projects", "list", url.Values{"sort": {"-startDate"}, "page": {"1"}})
	if a != b {
		t.Fatalf("param order changed key: %s vs %s", a, b)
	}
	if !strings.HasPrefix(a, "projects:list:") || len(a) != len("projects:list:")+16 {
		t.Fatalf("key = %q", a)
	}
	if Key("projects", "list", url.Values{"page": {"2"}}) == a {
		t.Fatalf("different params share a key")
	}
}

func TestQuery_FreshIsServedFromCache(t *testing.T) {
	qc := NewQueryCache(time.Minute)
	defer qc.Close()

	var calls int32
	fetch := func(context.Context) (int, error) { return int(atomic.AddInt32(&calls, 1)), nil }
	for i := 0; i < 3; i++ {
		v, err := Query(context.Background(), qc, "skills", "list", nil, fetch)
		if err != nil || v != 1 {
			t.Fatalf("Query = %d, %v", v, err)
		}
	}
	if calls != 1 {
		t.Fatalf("fetch calls = %d, want 1", calls)
	}
}

func TestQuery_ErrorsAreNotCached(t *testing.T) {
	qc := NewQueryCache(time.Minute)
	defer qc.Close()

	boom := errors.New("boom")
	if _, err := Query(context.Background(), qc, "skills", "list", nil, func(context.Context) (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	v, err := Query(context.Background(), qc, "skills", "list", nil, func(context.Context) (int, error) { return 7, nil })
	if err != nil || v != 7 {
		t.Fatalf("after error: %d, %v", v, err)
	}
}

func TestQuery_DedupesConcurrentMisses(t *testing.T) {
	qc := NewQueryCache(time.Minute)
	defer qc.Close()

	var calls int32
	release := make(chan struct{})
	fetch := func(context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "done", nil
	}

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = Query(context.Background(), qc, "projects", "list", nil, fetch)
		}(i)
	}
	// let every goroutine join the flight before it completes
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls != 1 {
		t.Fatalf("fetch calls = %d, want 1", calls)
	}
	for i, r := range results {
		if r != "done" {
			t.Fatalf("result %d = %q", i, r)
		}
	}
}

func TestQuery_StaleServedThenRefreshed(t *testing.T) {
	qc := NewQueryCache(time.Minute)
	now := time.Now()
	var mu sync.Mutex
	qc.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	var calls int32
	fetch := func(context.Context) (int32, error) { return atomic.AddInt32(&calls, 1), nil }

	if v, _ := Query(context.Background(), qc, "skills", "stats", nil, fetch); v != 1 {
		t.Fatalf("first = %d", v)
	}
	mu.Lock()
	now = now.Add(2 * time.Minute)
	mu.Unlock()

	if v, _ := Query(context.Background(), qc, "skills", "stats", nil, fetch); v != 1 {
		t.Fatalf("stale read = %d, want the cached 1", v)
	}
	qc.wg.Wait()
	if v, _ := Query(context.Background(), qc, "skills", "stats", nil, fetch); v != 2 {
		t.Fatalf("after refresh = %d, want 2", v)
	}
	qc.Close()
	if calls != 2 {
		t.Fatalf("fetch calls = %d, want 2", calls)
	}
}

func TestInvalidate_OnlyTouchesNamespace(t *testing.T) {
	qc := NewQueryCache(time.Minute)
	defer qc.Close()

	ctx := context.Background()
	one := func(context.Context) (int, error) { return 1, nil }
	Query(ctx, qc, "projects", "list", nil, one)
	Query(ctx, qc, "projects", "get:1", nil, one)
	Query(ctx, qc, "skills", "list", nil, one)
	if qc.Len() != 3 {
		t.Fatalf("Len = %d", qc.Len())
	}

	qc.Invalidate("projects")
	if qc.Len() != 1 {
		t.Fatalf("Len after invalidate = %d, want 1", qc.Len())
	}
	if v, _ := Query(ctx, qc, "skills", "list", nil, func(context.Context) (int, error) { return 2, nil }); v != 1 {
		t.Fatalf("skills entry was dropped")
	}
}

func TestInvalidate_DiscardsInFlightResult(t *testing.T) {
	qc := NewQueryCache(time.Minute)
	defer qc.Close()

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		Query(context.Background(), qc, "contact", "list", nil, func(context.Context) (string, error) {
			close(started)
			<-release
			return "old", nil
		})
	}()
	<-started
	qc.Invalidate("contact")
	close(release)
	<-done

	v, _ := Query(context.Background(), qc, "contact", "list", nil, func(context.Context) (string, error) { return "new", nil })
	if v != "new" {
		t.Fatalf("got %q, a pre-invalidation result was cached", v)
	}
}

func TestNilCacheAlwaysFetches(t *testing.T) {
	var qc *QueryCache
	var calls int
	for i := 0; i < 2; i++ {
		Query(context.Background(), qc, "skills", "list", nil, func(context.Context) (int, error) { calls++; return calls, nil })
	}
	qc.Invalidate("skills")
	if calls != 2 {
		t.Fatalf("calls = %d", calls)
	}
}

func TestQuery_CancelledCallerLeavesSharedFetch(t *testing.T) {
	qc := NewQueryCache(time.Minute)
	defer qc.Close()

	var calls int32
	var once sync.Once
	started := make(chan struct{})
	release := make(chan struct{})
	fetch := func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		once.Do(func() { close(started) })
		<-release
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "done", nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := Query(ctx, qc, "projects", "list", nil, fetch)
		first <- err
	}()
	<-started

	second := make(chan string, 1)
	go func() {
		v, err := Query(context.Background(), qc, "projects", "list", nil, fetch)
		if err != nil {
			v = err.Error()
		}
		second <- v
	}()
	// let the second caller join the flight
	time.Sleep(50 * time.Millisecond)

	cancel()
	if err := <-first; !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled caller err = %v", err)
	}
	close(release)
	if v := <-second; v != "done" {
		t.Fatalf("second caller = %q, want done", v)
	}
	if calls != 1 {
		t.Fatalf("fetch calls = %d, want 1", calls)
	}
}

func TestQuery_ResultsAreCopies(t *testing.T) {
	qc := NewQueryCache(time.Minute)
	defer qc.Close()
	ctx := context.Background()

	list := func(context.Context) (*Page[string], error) { return &Page[string]{Items: []string{"a", "b"}}, nil }
	stats := func(context.Context) (map[string]any, error) { return map[string]any{"totalSkills": 3}, nil }

	p, err := Query(ctx, qc, "skills", "list", nil, list)
	if err != nil || len(p.Items) != 2 {
		t.Fatalf("list = %+v, %v", p, err)
	}
	p.Items[0] = "mutated"
	m, _ := Query(ctx, qc, "skills", "stats", nil, stats)
	m["totalSkills"] = 99

	p, _ = Query(ctx, qc, "skills", "list", nil, list)
	if p.Items[0] != "a" {
		t.Fatalf("cached page changed through a returned value: %+v", p.Items)
	}
	m, _ = Query(ctx, qc, "skills", "stats", nil, stats)
	if m["totalSkills"] != float64(3) {
		t.Fatalf("cached stats changed through a returned value: %+v", m)
	}
}

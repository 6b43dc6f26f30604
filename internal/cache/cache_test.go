package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLoad_CachesByKey(t *testing.T) {
	c := New(true)
	calls := 0
	compute := func(context.Context) ([]string, error) {
		calls++
		return []string{"a"}, nil
	}

	key := Key{Collection: "events", Variant: "allVersions-hydrated"}
	for i := 0; i < 3; i++ {
		if _, err := Load(context.Background(), c, key, compute); err != nil {
			t.Fatalf("Load error: %v", err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected 1 computation, got %d", calls)
	}

	other := Key{Collection: "events", Variant: "currentVersions-minimal"}
	if _, err := Load(context.Background(), c, other, compute); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected distinct flags to recompute, got %d calls", calls)
	}
}

func TestLoad_DisabledAlwaysComputes(t *testing.T) {
	c := New(false)
	calls := 0
	compute := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}
	key := Key{Collection: "services"}
	first, _ := Load(context.Background(), c, key, compute)
	second, _ := Load(context.Background(), c, key, compute)
	if first == second || calls != 2 {
		t.Fatalf("expected two computations, got first=%d second=%d calls=%d", first, second, calls)
	}
	if c.Len() != 0 {
		t.Fatalf("disabled cache must stay empty")
	}
}

func TestLoad_ErrorsAreNotCached(t *testing.T) {
	c := New(true)
	boom := errors.New("boom")
	key := Key{Collection: "domains"}

	if _, err := Load(context.Background(), c, key, func(context.Context) (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	got, err := Load(context.Background(), c, key, func(context.Context) (int, error) { return 7, nil })
	if err != nil || got != 7 {
		t.Fatalf("expected recomputation after error, got %d err=%v", got, err)
	}
}

func TestReset_ForcesRecompute(t *testing.T) {
	c := New(true)
	calls := 0
	compute := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}
	key := Key{Collection: "flows"}
	_, _ = Load(context.Background(), c, key, compute)
	c.Reset()
	got, _ := Load(context.Background(), c, key, compute)
	if got != 2 {
		t.Fatalf("expected recompute after Reset, got %d", got)
	}
}

func TestInvalidate_OnlyTouchesCollection(t *testing.T) {
	c := New(true)
	c.Set(Key{Collection: "events", Variant: "a"}, 1)
	c.Set(Key{Collection: "events", Variant: "b"}, 2)
	c.Set(Key{Collection: "services", Variant: "a"}, 3)

	c.Invalidate("events")
	if c.Len() != 1 {
		t.Fatalf("expected 1 entry left, got %d", c.Len())
	}
	if _, ok := c.Get(Key{Collection: "services", Variant: "a"}); !ok {
		t.Fatalf("services entry must survive")
	}
}

func TestLoad_ConcurrentMissesShareComputation(t *testing.T) {
	c := New(true)
	var calls int32
	release := make(chan struct{})
	compute := func(context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return 42, nil
	}

	key := Key{Collection: "commands"}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v, err := Load(context.Background(), c, key, compute); err != nil || v != 42 {
				t.Errorf("Load = %d, %v", v, err)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected a single shared computation, got %d", n)
	}
}

func TestLoad_AfterResetDoesNotJoinStaleComputation(t *testing.T) {
	c := New(true)
	key := Key{Collection: "events"}
	started := make(chan struct{})
	release := make(chan struct{})

	staleDone := make(chan int)
	go func() {
		v, _ := Load(context.Background(), c, key, func(context.Context) (int, error) {
			close(started)
			<-release
			return 1, nil
		})
		staleDone <- v
	}()
	<-started

	c.Reset()
	fresh, err := Load(context.Background(), c, key, func(context.Context) (int, error) { return 2, nil })
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if fresh != 2 {
		t.Fatalf("expected a fresh computation after Reset, got %d", fresh)
	}

	close(release)
	if stale := <-staleDone; stale != 1 {
		t.Fatalf("expected the earlier caller to keep its own result, got %d", stale)
	}
	if v, ok := c.Get(key); !ok || v != 2 {
		t.Fatalf("expected the post-Reset value to be stored, got %v %v", v, ok)
	}
}

func TestNilCache_ComputesDirectly(t *testing.T) {
	var c *Cache
	got, err := Load(context.Background(), c, Key{Collection: "x"}, func(context.Context) (string, error) { return "ok", nil })
	if err != nil || got != "ok" {
		t.Fatalf("expected direct computation, got %q err=%v", got, err)
	}
	c.Reset()
}

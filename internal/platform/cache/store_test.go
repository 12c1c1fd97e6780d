package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_SharesConcurrentLoads(t *testing.T) {
	t.Parallel()

	store := NewStore[[]int64](time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) ([]int64, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return []int64{39, 140}, nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "leagues:active", loader)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if len(v) != 2 {
				t.Errorf("unexpected value: %v", v)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_ExpiresAfterTTL(t *testing.T) {
	t.Parallel()

	store := NewStore[string](time.Minute)
	now := time.Date(2024, 8, 16, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.Set(context.Background(), "jornada", "week-1")
	if v, ok := store.Get(context.Background(), "jornada"); !ok || v != "week-1" {
		t.Fatalf("expected cached value, got %q %t", v, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := store.Get(context.Background(), "jornada"); ok {
		t.Fatal("expected entry to expire")
	}
	if store.Len() != 0 {
		t.Fatalf("expected expired entry to be evicted, len=%d", store.Len())
	}
}

func TestStore_ErrorsAreNotCached(t *testing.T) {
	t.Parallel()

	store := NewStore[int](time.Minute)
	var calls atomic.Int32
	errBoom := errors.New("mongo down")

	loader := func(context.Context) (int, error) {
		if calls.Add(1) == 1 {
			return 0, errBoom
		}
		return 7, nil
	}

	if _, err := store.GetOrLoad(context.Background(), "k", loader); !errors.Is(err, errBoom) {
		t.Fatalf("expected loader error, got %v", err)
	}
	v, err := store.GetOrLoad(context.Background(), "k", loader)
	if err != nil || v != 7 {
		t.Fatalf("expected retry to load 7, got %d (%v)", v, err)
	}

	store.Purge(context.Background())
	if store.Len() != 0 {
		t.Fatalf("expected purge to empty the store, len=%d", store.Len())
	}
}

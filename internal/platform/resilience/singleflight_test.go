package resilience

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_Do(t *testing.T) {
	var g SingleFlight[string]
	var counter int32

	const workers = 20
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			value, _, err := g.Do(context.Background(), "fixtures?league=39", func(context.Context) (string, error) {
				atomic.AddInt32(&counter, 1)
				time.Sleep(20 * time.Millisecond)
				return "ok", nil
			})
			if err != nil {
				t.Errorf("singleflight call failed: %v", err)
			}
			if value != "ok" {
				t.Errorf("unexpected value %q", value)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := atomic.LoadInt32(&counter); got != 1 {
		t.Fatalf("expected function to run once, got %d", got)
	}
}

func TestSingleFlight_CallerCancellationDoesNotCancelLoad(t *testing.T) {
	var g SingleFlight[int]
	release := make(chan struct{})
	loadErr := make(chan error, 1)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		_, _, err := g.Do(ctx, "odds", func(loadCtx context.Context) (int, error) {
			<-release
			loadErr <- loadCtx.Err()
			return 7, nil
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected canceled caller, got %v", err)
		}
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	done := make(chan int, 1)
	go func() {
		value, _, err := g.Do(context.Background(), "odds", func(context.Context) (int, error) { return -1, nil })
		if err != nil {
			t.Errorf("second caller: %v", err)
		}
		done <- value
	}()

	time.Sleep(10 * time.Millisecond)
	close(release)

	if err := <-loadErr; err != nil {
		t.Fatalf("shared load saw cancellation: %v", err)
	}
	if got := <-done; got != 7 {
		t.Fatalf("expected shared result 7, got %d", got)
	}
}

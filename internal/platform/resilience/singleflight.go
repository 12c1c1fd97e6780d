package resilience

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// SingleFlight deduplicates concurrent loads of the same key. The zero
// value is ready to use.
type SingleFlight[T any] struct {
	group singleflight.Group
}

// Do runs fn once per key among concurrent callers. fn gets a context that
// is detached from the first caller's cancellation so one impatient caller
// cannot fail the shared load; each caller still stops waiting when its own
// ctx is done.
func (g *SingleFlight[T]) Do(ctx context.Context, key string, fn func(context.Context) (T, error)) (T, bool, error) {
	loadCtx := context.WithoutCancel(ctx)
	ch := g.group.DoChan(key, func() (any, error) {
		return fn(loadCtx)
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Shared, res.Err
		}
		value, _ := res.Val.(T)
		return value, res.Shared, nil
	}
}

// Forget drops an in-flight key so the next caller starts a fresh load.
func (g *SingleFlight[T]) Forget(key string) {
	g.group.Forget(key)
}

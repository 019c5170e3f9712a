package poll

import (
	"context"
	"time"

	"github.com/five82/oneearth/internal/state"
)

// SubscribeTyped is Subscribe for a fetch returning T.
func SubscribeTyped[T any](c *Cache, key string, fetch func(ctx context.Context) (T, error), interval time.Duration, fn func(state.Query[T])) (state.Query[T], *Subscription) {
	var listener Listener
	if fn != nil {
		listener = func(q state.Query[any]) {
			fn(Cast[T](q))
		}
	}
	q, sub := c.Subscribe(key, func(ctx context.Context) (any, error) {
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		return v, nil
	}, interval, listener)
	return Cast[T](q), sub
}

// Cast converts an untyped query state. Data of another type is treated as
// absent.
func Cast[T any](q state.Query[any]) state.Query[T] {
	out := state.Query[T]{
		Status:    q.Status,
		FetchedAt: q.FetchedAt,
		Err:       q.Err,
		Failures:  q.Failures,
	}
	if v, ok := q.Data.(T); ok && q.HasData {
		out.Data = v
		out.HasData = true
	}
	return out
}

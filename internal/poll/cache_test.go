package poll

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/oneearth/internal/state"
)

const (
	waitFor = 2 * time.Second
	tick    = 2 * time.Millisecond
)

func fastPolicy(retries int) RetryPolicy {
	return RetryPolicy{Retries: retries, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}
}

func newTestCache(t *testing.T, retries int) *Cache {
	t.Helper()
	c := New(WithRetryPolicy(fastPolicy(retries)))
	t.Cleanup(c.Close)
	return c
}

// recorder collects listener calls.
type recorder struct {
	mu     sync.Mutex
	states []state.Query[any]
}

func (r *recorder) listen(q state.Query[any]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, q)
}

func (r *recorder) last() (state.Query[any], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.states) == 0 {
		return state.Query[any]{}, false
	}
	return r.states[len(r.states)-1], true
}

func (r *recorder) statuses() []state.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]state.Status, len(r.states))
	for i, q := range r.states {
		out[i] = q.Status
	}
	return out
}

func (r *recorder) waitStatus(t *testing.T, want state.Status) state.Query[any] {
	t.Helper()
	var got state.Query[any]
	require.Eventually(t, func() bool {
		q, ok := r.last()
		got = q
		return ok && q.Status == want
	}, waitFor, tick, "never reached %v", want)
	return got
}

func TestSeriesKey(t *testing.T) {
	assert.Equal(t, "series:30", SeriesKey(30))
	assert.Equal(t, "latest", LatestKey)
}

func TestSubscribe_FirstSubscriptionLoadsThenSucceeds(t *testing.T) {
	c := newTestCache(t, 3)
	var calls atomic.Int32
	rec := &recorder{}

	initial, sub := c.Subscribe(LatestKey, func(context.Context) (any, error) {
		calls.Add(1)
		return 421.3, nil
	}, time.Hour, rec.listen)
	defer sub.Unsubscribe()

	assert.Equal(t, state.StatusLoading, initial.Status)
	assert.False(t, initial.HasData)

	got := rec.waitStatus(t, state.StatusSuccess)
	assert.Equal(t, 421.3, got.Data)
	assert.True(t, got.HasData)
	assert.False(t, got.FetchedAt.IsZero())
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, []state.Status{state.StatusLoading, state.StatusSuccess}, rec.statuses())
}

func TestSubscribe_ExhaustedRetriesReachError(t *testing.T) {
	for _, retries := range []int{0, 2, DefaultRetries} {
		c := newTestCache(t, retries)
		var calls atomic.Int32
		rec := &recorder{}
		boom := errors.New("boom")

		_, sub := c.Subscribe(LatestKey, func(context.Context) (any, error) {
			calls.Add(1)
			return nil, boom
		}, time.Hour, rec.listen)

		got := rec.waitStatus(t, state.StatusError)
		assert.ErrorIs(t, got.Err, boom)
		assert.Equal(t, 1, got.Failures)
		assert.Equal(t, int32(retries+1), calls.Load(), "retries=%d", retries)

		// No further attempts until the next interval.
		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, int32(retries+1), calls.Load(), "retries=%d exceeded budget", retries)
		assert.NotContains(t, rec.statuses()[1:len(rec.statuses())-1], state.StatusError, "error surfaced before retries were exhausted")
		sub.Unsubscribe()
	}
}

func TestSubscribe_ThreeConsecutiveFailuresReachError(t *testing.T) {
	c := newTestCache(t, 2)
	var calls atomic.Int32
	rec := &recorder{}

	_, sub := c.Subscribe(LatestKey, func(context.Context) (any, error) {
		calls.Add(1)
		return nil, errors.New("down")
	}, time.Hour, rec.listen)
	defer sub.Unsubscribe()

	rec.waitStatus(t, state.StatusError)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSubscribe_FailureThenSuccessEndsInSuccess(t *testing.T) {
	c := newTestCache(t, 3)
	var calls atomic.Int32
	rec := &recorder{}

	_, sub := c.Subscribe(LatestKey, func(context.Context) (any, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("transient")
		}
		return "fresh", nil
	}, time.Hour, rec.listen)
	defer sub.Unsubscribe()

	got := rec.waitStatus(t, state.StatusSuccess)
	assert.Equal(t, "fresh", got.Data)
	assert.NoError(t, got.Err)
	assert.NotContains(t, rec.statuses(), state.StatusError)
}

func TestSubscribe_SuccessAfterErrorClearsError(t *testing.T) {
	c := newTestCache(t, 0)
	var fail atomic.Bool
	fail.Store(true)
	rec := &recorder{}

	_, sub := c.Subscribe(LatestKey, func(context.Context) (any, error) {
		if fail.Load() {
			return nil, errors.New("down")
		}
		return 1, nil
	}, time.Hour, rec.listen)
	defer sub.Unsubscribe()

	rec.waitStatus(t, state.StatusError)
	fail.Store(false)
	require.True(t, c.Refetch(LatestKey))

	got := rec.waitStatus(t, state.StatusSuccess)
	assert.NoError(t, got.Err)
	assert.Equal(t, 0, got.Failures)
}

func TestSubscribe_IntervalRefreshesWithFreshRetryBudget(t *testing.T) {
	c := newTestCache(t, 1)
	var calls atomic.Int32

	_, sub := c.Subscribe(LatestKey, func(context.Context) (any, error) {
		calls.Add(1)
		return nil, errors.New("down")
	}, 15*time.Millisecond, nil)
	defer sub.Unsubscribe()

	require.Eventually(t, func() bool {
		q, _ := c.State(LatestKey)
		return q.Failures >= 2
	}, waitFor, tick)
	q, _ := c.State(LatestKey)
	assert.True(t, q.IsOffline())
	// Every cycle gets the full budget of two attempts.
	assert.GreaterOrEqual(t, calls.Load(), int32(4))
}

func TestSubscribe_SecondSubscriberSharesEntry(t *testing.T) {
	c := newTestCache(t, 0)
	var calls atomic.Int32
	rec1, rec2 := &recorder{}, &recorder{}
	fetch := func(context.Context) (any, error) {
		calls.Add(1)
		return "v", nil
	}

	_, sub1 := c.Subscribe(LatestKey, fetch, time.Hour, rec1.listen)
	defer sub1.Unsubscribe()
	rec1.waitStatus(t, state.StatusSuccess)

	current, sub2 := c.Subscribe(LatestKey, fetch, time.Hour, rec2.listen)
	defer sub2.Unsubscribe()

	assert.Equal(t, state.StatusSuccess, current.Status)
	assert.Equal(t, "v", current.Data)
	assert.Equal(t, int32(1), calls.Load(), "second subscriber must not trigger a fetch")

	require.True(t, c.Refetch(LatestKey))
	rec2.waitStatus(t, state.StatusSuccess)
	rec1.waitStatus(t, state.StatusSuccess)
}

func TestRefetch_DeduplicatesInFlightFetches(t *testing.T) {
	c := newTestCache(t, 0)
	var inFlight, maxInFlight, calls atomic.Int32
	release := make(chan struct{})

	_, sub := c.Subscribe(LatestKey, func(ctx context.Context) (any, error) {
		calls.Add(1)
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			cur := maxInFlight.Load()
			if n <= cur || maxInFlight.CompareAndSwap(cur, n) {
				break
			}
		}
		select {
		case <-release:
		case <-ctx.Done():
		}
		return "done", nil
	}, time.Hour, nil)
	defer sub.Unsubscribe()

	require.Eventually(t, func() bool { return calls.Load() == 1 }, waitFor, tick)
	for i := 0; i < 5; i++ {
		c.Refetch(LatestKey)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)

	require.Eventually(t, func() bool {
		q, _ := c.State(LatestKey)
		return q.Status == state.StatusSuccess
	}, waitFor, tick)
	assert.Equal(t, int32(1), maxInFlight.Load())
	assert.Equal(t, int32(1), calls.Load())
}

func TestUnsubscribe_LastConsumerStopsTimer(t *testing.T) {
	c := newTestCache(t, 0)
	var calls atomic.Int32

	_, sub := c.Subscribe(LatestKey, func(context.Context) (any, error) {
		calls.Add(1)
		return 1, nil
	}, 5*time.Millisecond, nil)

	require.Eventually(t, func() bool { return calls.Load() >= 2 }, waitFor, tick)
	sub.Unsubscribe()
	sub.Unsubscribe() // idempotent

	time.Sleep(10 * time.Millisecond)
	stopped := calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, calls.Load(), "fetches continued after last unsubscribe")

	_, ok := c.State(LatestKey)
	assert.False(t, ok)
	assert.False(t, c.Refetch(LatestKey))
}

func TestUnsubscribe_KeepsEntryWhileOthersListen(t *testing.T) {
	c := newTestCache(t, 0)
	fetch := func(context.Context) (any, error) { return 1, nil }

	_, a := c.Subscribe(LatestKey, fetch, time.Hour, nil)
	_, b := c.Subscribe(LatestKey, fetch, time.Hour, nil)
	a.Unsubscribe()

	_, ok := c.State(LatestKey)
	assert.True(t, ok)
	b.Unsubscribe()
	_, ok = c.State(LatestKey)
	assert.False(t, ok)
}

func TestUnsubscribe_CancelsBackoffWait(t *testing.T) {
	c := New(WithRetryPolicy(RetryPolicy{Retries: 3, InitialInterval: time.Hour, MaxInterval: time.Hour}))
	var calls atomic.Int32

	_, sub := c.Subscribe(LatestKey, func(context.Context) (any, error) {
		calls.Add(1)
		return nil, errors.New("down")
	}, time.Hour, nil)

	require.Eventually(t, func() bool { return calls.Load() == 1 }, waitFor, tick)
	sub.Unsubscribe()

	done := make(chan struct{})
	go func() {
		c.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(waitFor):
		t.Fatal("Close blocked on a pending backoff wait")
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestResubscribe_StartsFreshAndIgnoresOldInFlightResult(t *testing.T) {
	c := newTestCache(t, 0)
	release := make(chan struct{})
	oldRec, newRec := &recorder{}, &recorder{}

	_, old := c.Subscribe(LatestKey, func(context.Context) (any, error) {
		<-release // ignores ctx on purpose: the result must still be dropped
		return "stale", nil
	}, time.Hour, oldRec.listen)

	require.Eventually(t, func() bool { _, ok := oldRec.last(); return ok }, waitFor, tick)
	old.Unsubscribe()

	initial, fresh := c.Subscribe(LatestKey, func(context.Context) (any, error) {
		return "fresh", nil
	}, time.Hour, newRec.listen)
	defer fresh.Unsubscribe()
	assert.Equal(t, state.StatusLoading, initial.Status)
	assert.False(t, initial.HasData)

	newRec.waitStatus(t, state.StatusSuccess)
	close(release)
	time.Sleep(20 * time.Millisecond)

	q, ok := c.State(LatestKey)
	require.True(t, ok)
	assert.Equal(t, "fresh", q.Data)
	assert.Equal(t, []state.Status{state.StatusLoading}, oldRec.statuses())
}

func TestApply_DiscardsOlderSequence(t *testing.T) {
	c := New()
	e := &entry{key: LatestKey}

	require.True(t, c.apply(e, 2, "newer", nil))
	assert.False(t, c.apply(e, 1, "older", nil), "older completion must not overwrite newer state")
	assert.Equal(t, "newer", e.state.Data)

	require.True(t, c.apply(e, 3, nil, errors.New("down")))
	assert.Equal(t, state.StatusError, e.state.Status)
	assert.Equal(t, "newer", e.state.Data, "error keeps last good data")

	e.closed = true
	assert.False(t, c.apply(e, 4, "late", nil))
}

func TestSubscribeTyped_CastsData(t *testing.T) {
	c := newTestCache(t, 0)
	var (
		mu  sync.Mutex
		got []state.Query[float64]
	)

	_, sub := SubscribeTyped(c, LatestKey, func(context.Context) (float64, error) {
		return 421.3, nil
	}, time.Hour, func(q state.Query[float64]) {
		mu.Lock()
		got = append(got, q)
		mu.Unlock()
	})
	defer sub.Unsubscribe()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) > 0 && got[len(got)-1].Status == state.StatusSuccess
	}, waitFor, tick)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 421.3, got[len(got)-1].Data)
	assert.Equal(t, LatestKey, sub.Key())
}

func TestCast_MismatchedDataIsAbsent(t *testing.T) {
	q := state.Query[any]{}.Succeed("text", time.Now())
	out := Cast[int](q)
	assert.False(t, out.HasData)
	assert.Equal(t, state.StatusSuccess, out.Status)
}

func TestClose_StopsAllKeysAndRejectsNewSubscriptions(t *testing.T) {
	c := New(WithRetryPolicy(fastPolicy(0)))
	var calls atomic.Int32
	fetch := func(context.Context) (any, error) {
		calls.Add(1)
		return 1, nil
	}
	c.Subscribe(LatestKey, fetch, 5*time.Millisecond, nil)
	c.Subscribe(SeriesKey(30), fetch, 5*time.Millisecond, nil)

	require.Eventually(t, func() bool { return calls.Load() >= 2 }, waitFor, tick)
	c.Close()
	stopped := calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, calls.Load())

	q, sub := c.Subscribe(LatestKey, fetch, time.Millisecond, nil)
	assert.Equal(t, state.StatusLoading, q.Status)
	sub.Unsubscribe()
	assert.Equal(t, stopped, calls.Load())
}

package poll

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/five82/oneearth/internal/state"
)

// LatestKey identifies the latest-reading query.
const LatestKey = "latest"

// DefaultInterval is the refresh cadence used when a subscriber passes none.
const DefaultInterval = 60 * time.Second

// SeriesKey identifies the series query for the given day window.
func SeriesKey(days int) string {
	return fmt.Sprintf("series:%d", days)
}

// FetchFunc performs one fetch attempt.
type FetchFunc func(ctx context.Context) (any, error)

// Listener receives every state change of a key.
type Listener func(state.Query[any])

// Cache keeps one polled query per key.
//
// The first Subscribe for a key fetches immediately and then every
// interval; failed fetches are retried according to the cache's
// RetryPolicy before the key moves to the error state. At most one fetch
// per key is in flight at a time. The last Unsubscribe stops the key.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	nextGen uint64
	closed  bool

	group  singleflight.Group
	policy RetryPolicy
	logger *zap.Logger
	now    func() time.Time
}

type entry struct {
	key       string
	flightKey string
	fetch     FetchFunc
	interval  time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Guarded by Cache.mu.
	subs    []*Subscription
	state   state.Query[any]
	issued  uint64 // newest cycle sequence handed out
	applied uint64 // newest cycle sequence whose result was stored
	closed  bool

	notifyMu sync.Mutex
}

// Option customizes a Cache.
type Option func(*Cache)

// WithRetryPolicy overrides DefaultRetryPolicy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Cache) {
		c.policy = p.normalized()
	}
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock overrides the clock used for FetchedAt.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates an empty Cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]*entry),
		policy:  DefaultRetryPolicy(),
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Subscribe registers fn for key and returns the key's current state.
//
// When key has no subscribers yet, a new entry is created in the loading
// state and fetch runs immediately and then every interval. Otherwise the
// existing entry, with its original fetch and interval, is shared. fn may
// be nil. Listeners run on the cache's goroutines and must not block.
func (c *Cache) Subscribe(key string, fetch FetchFunc, interval time.Duration, fn Listener) (state.Query[any], *Subscription) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	sub := &Subscription{cache: c, key: key, fn: fn}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return state.Query[any]{}, sub
	}
	e, ok := c.entries[key]
	if ok {
		sub.entry = e
		e.subs = append(e.subs, sub)
		current := e.state
		c.mu.Unlock()
		return current, sub
	}

	c.nextGen++
	ctx, cancel := context.WithCancel(context.Background())
	e = &entry{
		key:       key,
		flightKey: fmt.Sprintf("%s#%d", key, c.nextGen),
		fetch:     fetch,
		interval:  interval,
		ctx:       ctx,
		cancel:    cancel,
	}
	sub.entry = e
	e.subs = append(e.subs, sub)
	c.entries[key] = e
	e.wg.Add(1)
	c.mu.Unlock()

	c.logger.Debug("poll started", zap.String("key", key), zap.Duration("interval", interval))
	go c.run(e)
	return state.Query[any]{}, sub
}

// State returns a copy of key's current state.
func (c *Cache) State(key string) (state.Query[any], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return state.Query[any]{}, false
	}
	return e.state, true
}

// Refetch starts a cycle for key now. It reports false when key has no
// subscribers.
func (c *Cache) Refetch(key string) bool {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok || e.closed {
		c.mu.Unlock()
		return false
	}
	e.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer e.wg.Done()
		c.cycle(e)
	}()
	return true
}

// Close stops every key and waits for their goroutines. It must not be
// called from a Listener.
func (c *Cache) Close() {
	c.mu.Lock()
	c.closed = true
	entries := make([]*entry, 0, len(c.entries))
	for key, e := range c.entries {
		e.closed = true
		e.cancel()
		entries = append(entries, e)
		delete(c.entries, key)
	}
	c.mu.Unlock()

	for _, e := range entries {
		e.wg.Wait()
	}
}

func (c *Cache) run(e *entry) {
	defer e.wg.Done()

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	c.startCycle(e)
	for {
		select {
		case <-e.ctx.Done():
			return
		case <-ticker.C:
			c.startCycle(e)
		}
	}
}

// startCycle runs a cycle without blocking the ticker, so a slow retry loop
// never delays the next refresh.
func (c *Cache) startCycle(e *entry) {
	c.mu.Lock()
	if e.closed {
		c.mu.Unlock()
		return
	}
	e.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer e.wg.Done()
		c.cycle(e)
	}()
}

func (c *Cache) cycle(e *entry) {
	c.mu.Lock()
	if e.closed {
		c.mu.Unlock()
		return
	}
	e.issued++
	seq := e.issued
	e.state = e.state.Loading()
	c.mu.Unlock()
	c.publish(e)

	v, err, shared := c.group.Do(e.flightKey, func() (any, error) {
		return c.fetchWithRetry(e)
	})
	if shared {
		c.logger.Debug("joined in-flight fetch", zap.String("key", e.key), zap.Uint64("seq", seq))
	}

	if !c.apply(e, seq, v, err) {
		return
	}
	c.publish(e)
}

// apply stores the outcome of cycle seq. It reports false when the outcome
// is stale: the entry was closed, or a newer cycle already stored its result.
func (c *Cache) apply(e *entry, seq uint64, v any, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e.closed || seq < e.applied {
		c.logger.Debug("discarding stale result",
			zap.String("key", e.key),
			zap.Uint64("seq", seq),
			zap.Uint64("applied", e.applied))
		return false
	}
	e.applied = seq
	if err != nil {
		e.state = e.state.Fail(err)
		c.logger.Warn("fetch failed after retries",
			zap.String("key", e.key),
			zap.Int("failures", e.state.Failures),
			zap.Error(err))
		return true
	}
	e.state = e.state.Succeed(v, c.now())
	return true
}

func (c *Cache) fetchWithRetry(e *entry) (any, error) {
	var (
		result  any
		attempt int
	)
	op := func() error {
		attempt++
		v, err := e.fetch(e.ctx)
		if err != nil {
			if ctxErr := e.ctx.Err(); ctxErr != nil {
				return backoff.Permanent(ctxErr)
			}
			return err
		}
		result = v
		return nil
	}
	notify := func(err error, wait time.Duration) {
		c.logger.Debug("fetch failed, retrying",
			zap.String("key", e.key),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", wait),
			zap.Error(err))
	}
	if err := backoff.RetryNotify(op, c.policy.backOff(e.ctx), notify); err != nil {
		return nil, err
	}
	return result, nil
}

// publish hands the entry's newest state to every listener, in
// subscription order. Calls for one entry never interleave.
func (c *Cache) publish(e *entry) {
	e.notifyMu.Lock()
	defer e.notifyMu.Unlock()

	c.mu.Lock()
	if e.closed {
		c.mu.Unlock()
		return
	}
	current := e.state
	subs := make([]*Subscription, len(e.subs))
	copy(subs, e.subs)
	c.mu.Unlock()

	for _, s := range subs {
		if s.fn != nil {
			s.fn(current)
		}
	}
}

func (c *Cache) unsubscribe(s *Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := s.entry
	if e == nil {
		return
	}
	for i, other := range e.subs {
		if other == s {
			e.subs = append(e.subs[:i], e.subs[i+1:]...)
			break
		}
	}
	if len(e.subs) > 0 || e.closed {
		return
	}
	e.closed = true
	e.cancel()
	if c.entries[e.key] == e {
		delete(c.entries, e.key)
	}
	c.logger.Debug("poll stopped", zap.String("key", e.key))
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	cache *Cache
	entry *entry
	key   string
	fn    Listener
	once  sync.Once
}

// Key returns the subscribed query key.
func (s *Subscription) Key() string {
	return s.key
}

// Unsubscribe removes the listener. The last Unsubscribe for a key stops its
// timer and discards any result still in flight. Safe to call repeatedly.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		s.cache.unsubscribe(s)
	})
}

package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/five82/oneearth/internal/metrics"
	"github.com/five82/oneearth/internal/poll"
	"github.com/five82/oneearth/internal/schema"
	"github.com/five82/oneearth/internal/state"
)

const helloTimeout = 5 * time.Second

// Poller keeps a state.Store in sync with the poll cache. It subscribes
// the latest-reading and series queries and fetches the hello banner.
type Poller struct {
	ctx    context.Context
	cache  *poll.Cache
	client metrics.Fetcher
	store  *state.Store
	logger *zap.Logger

	latestKey string
	seriesKey string

	mu   sync.Mutex
	subs []*poll.Subscription
	wg   sync.WaitGroup
}

// PollerConfig configures StartPoller.
type PollerConfig struct {
	Interval time.Duration
	Days     int
	Logger   *zap.Logger
}

// StartPoller subscribes both CO2 queries and returns immediately. Cached
// states are copied into store on every change until Stop.
func StartPoller(ctx context.Context, store *state.Store, client metrics.Fetcher, cache *poll.Cache, cfg PollerConfig) *Poller {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	days := cfg.Days
	p := &Poller{
		ctx:       ctx,
		cache:     cache,
		client:    client,
		store:     store,
		logger:    logger,
		latestKey: poll.LatestKey,
		seriesKey: poll.SeriesKey(days),
	}

	// The store starts in the loading state, matching a fresh subscription.
	_, latestSub := poll.SubscribeTyped(cache, p.latestKey, client.FetchLatest, cfg.Interval, store.UpdateLatest)
	_, seriesSub := poll.SubscribeTyped(cache, p.seriesKey, func(ctx context.Context) (schema.Series, error) {
		return client.FetchSeries(ctx, days)
	}, cfg.Interval, store.UpdateSeries)

	p.mu.Lock()
	p.subs = append(p.subs, latestSub, seriesSub)
	p.mu.Unlock()

	p.refreshHello()
	return p
}

// Refetch starts a refresh of every query now.
func (p *Poller) Refetch() {
	p.logger.Debug("manual refresh")
	p.cache.Refetch(p.latestKey)
	p.cache.Refetch(p.seriesKey)
	p.refreshHello()
}

// Stop unsubscribes both queries and waits for banner fetches.
func (p *Poller) Stop() {
	p.mu.Lock()
	subs := p.subs
	p.subs = nil
	p.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
	p.wg.Wait()
}

func (p *Poller) refreshHello() {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ctx, cancel := context.WithTimeout(p.ctx, helloTimeout)
		defer cancel()

		msg, err := p.client.FetchHello(ctx)
		if err != nil {
			p.logger.Info("hello banner unavailable", zap.Error(err))
		}
		p.store.UpdateHello(msg, err)
	}()
}

package poll

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultRetries         = 3
	defaultInitialInterval = time.Second
	defaultMaxInterval     = 30 * time.Second
)

// RetryPolicy bounds the retries of a single fetch cycle.
//
// Retries is the number of extra attempts after the first failure. Delays
// double from InitialInterval up to MaxInterval with no jitter, so the
// default schedule is 1s, 2s, 4s.
type RetryPolicy struct {
	Retries         int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy returns the policy used when none is configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Retries:         DefaultRetries,
		InitialInterval: defaultInitialInterval,
		MaxInterval:     defaultMaxInterval,
	}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.Retries < 0 {
		p.Retries = 0
	}
	if p.InitialInterval <= 0 {
		p.InitialInterval = defaultInitialInterval
	}
	if p.MaxInterval < p.InitialInterval {
		p.MaxInterval = p.InitialInterval
	}
	return p
}

// backOff builds the schedule for one cycle. It stops after p.Retries
// delays or when ctx is done.
func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOffContext {
	p = p.normalized()

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.InitialInterval
	eb.MaxInterval = p.MaxInterval
	eb.Multiplier = 2
	eb.RandomizationFactor = 0
	eb.MaxElapsedTime = 0
	eb.Reset()

	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(p.Retries)), ctx)
}

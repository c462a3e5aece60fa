package collector

import (
	"context"
	"time"

	"VolScope/internal/errors"
	"VolScope/internal/model"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// GuardedFetcher rate-limits calls to a provider and stops calling it while it keeps failing.
// It does not retry.
type GuardedFetcher struct {
	inner   Fetcher
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
}

// NewGuardedFetcher wraps inner. rps <= 0 disables rate limiting.
func NewGuardedFetcher(inner Fetcher, rps float64, burst int) *GuardedFetcher {
	st := gobreaker.Settings{
		Name:     inner.Name(),
		Interval: 60 * time.Second,
		Timeout:  60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		// An unknown ticker is the caller's problem, not the provider's.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.HasCode(err, errors.ErrCodeNoDataFound) ||
				errors.Is(err, context.Canceled)
		},
	}

	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &GuardedFetcher{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker(st),
		limiter: rate.NewLimiter(limit, burst),
	}
}

func (g *GuardedFetcher) Name() string { return g.inner.Name() }

// State reports the breaker state, e.g. for health checks.
func (g *GuardedFetcher) State() gobreaker.State { return g.breaker.State() }

func (g *GuardedFetcher) FetchDailyCloses(ctx context.Context, symbol string, lookback Lookback) (*model.PriceSeries, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, g.Name()+": rate limit wait aborted", err)
	}
	out, err := g.breaker.Execute(func() (interface{}, error) {
		return g.inner.FetchDailyCloses(ctx, symbol, lookback)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, g.Name()+": circuit open", err)
	}
	if err != nil {
		return nil, err
	}
	return out.(*model.PriceSeries), nil
}

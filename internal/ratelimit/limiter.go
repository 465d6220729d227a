package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// API represents the different external APIs we interact with
type API string

const (
	// APIPlaid represents the Plaid balance API
	APIPlaid API = "plaid"
	// APITimeAPI represents the timeapi.io date API
	APITimeAPI API = "timeapi"
)

// Limiter manages rate limits for different APIs
type Limiter struct {
	limiters map[API]*rate.Limiter
	mu       sync.RWMutex
}

// New creates a limiter with the given requests-per-second limit per API.
// APIs without an entry are not limited.
func New(limits map[API]float64) *Limiter {
	l := &Limiter{
		limiters: make(map[API]*rate.Limiter, len(limits)),
	}
	for api, perSecond := range limits {
		l.Set(api, perSecond)
	}
	return l
}

// Set replaces the limit for an API. A non-positive rate removes the limit.
func (l *Limiter) Set(api API, perSecond float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if perSecond <= 0 {
		l.limiters[api] = rate.NewLimiter(rate.Inf, 1)
		return
	}
	l.limiters[api] = rate.NewLimiter(rate.Limit(perSecond), 1)
}

// Wait blocks until the rate limiter permits an event for the given API
// It returns an error if the context is canceled before the event can proceed
func (l *Limiter) Wait(ctx context.Context, api API) error {
	l.mu.RLock()
	limiter, exists := l.limiters[api]
	l.mu.RUnlock()

	if !exists {
		// If no limiter exists for this API, allow the request without limiting
		return nil
	}

	return limiter.Wait(ctx)
}

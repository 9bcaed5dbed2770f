// internal/ratelimit/limiter.go
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	urlutil "github.com/law-makers/artcrawl/internal/utils/url"
)

// Limiter throttles requests per host. Detail page navigations and image
// downloads share one limiter so a museum sees a single request budget.
type Limiter interface {
	// Wait blocks until a request to rawURL may proceed or ctx is done
	Wait(ctx context.Context, rawURL string) error
}

// DomainLimiter keeps one token bucket per host
type DomainLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	perHost  rate.Limit
	burst    int
}

// NewDomainLimiter creates a limiter allowing requestsPerSecond per host.
// A non-positive rate disables limiting.
func NewDomainLimiter(requestsPerSecond float64, burst int) *DomainLimiter {
	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		perHost:  limit,
		burst:    burst,
	}
}

// Wait implements Limiter. URLs without a host are not limited.
func (dl *DomainLimiter) Wait(ctx context.Context, rawURL string) error {
	host := urlutil.Host(rawURL)
	if host == "" {
		return nil
	}
	return dl.limiter(host).Wait(ctx)
}

// SetLimit overrides the rate of one host
func (dl *DomainLimiter) SetLimit(host string, requestsPerSecond float64, burst int) {
	dl.mu.Lock()
	defer dl.mu.Unlock()

	if l, ok := dl.limiters[host]; ok {
		l.SetLimit(rate.Limit(requestsPerSecond))
		l.SetBurst(burst)
		return
	}
	dl.limiters[host] = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

func (dl *DomainLimiter) limiter(host string) *rate.Limiter {
	dl.mu.RLock()
	l, ok := dl.limiters[host]
	dl.mu.RUnlock()
	if ok {
		return l
	}

	dl.mu.Lock()
	defer dl.mu.Unlock()
	if l, ok := dl.limiters[host]; ok {
		return l
	}
	l = rate.NewLimiter(dl.perHost, dl.burst)
	dl.limiters[host] = l
	return l
}

// Unlimited never blocks
type Unlimited struct{}

// Wait implements Limiter
func (Unlimited) Wait(ctx context.Context, rawURL string) error {
	return ctx.Err()
}

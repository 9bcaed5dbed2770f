// Package proxy rotates outbound proxies across browser sessions.
package proxy

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"
)

// DefaultCooldown is how long a failed proxy is skipped
const DefaultCooldown = 5 * time.Minute

// Pool hands proxies out round-robin and skips the ones that failed
// recently. The zero-length pool always returns "".
type Pool struct {
	proxies  []string
	cooldown time.Duration
	now      func() time.Time

	mu     sync.Mutex
	index  int
	failed map[string]time.Time
}

// NewPool creates a pool over proxies
func NewPool(proxies []string, cooldown time.Duration) *Pool {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Pool{
		proxies:  proxies,
		cooldown: cooldown,
		now:      time.Now,
		failed:   make(map[string]time.Time),
	}
}

// Parse splits a comma-separated proxy list and checks every entry is a
// URL with a scheme and host.
func Parse(list []string) ([]string, error) {
	var out []string
	for _, item := range list {
		for _, p := range strings.Split(item, ",") {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			u, err := url.Parse(p)
			if err != nil || u.Scheme == "" || u.Host == "" {
				return nil, fmt.Errorf("invalid proxy %q: want scheme://host:port", p)
			}
			out = append(out, p)
		}
	}
	return out, nil
}

// Len returns the number of proxies
func (p *Pool) Len() int {
	return len(p.proxies)
}

// Next returns the next healthy proxy. When every proxy is cooling down,
// the one that failed longest ago is returned.
func (p *Pool) Next() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.proxies) == 0 {
		return ""
	}

	now := p.now()
	oldest := ""
	var oldestAt time.Time
	for range p.proxies {
		proxy := p.proxies[p.index]
		p.index = (p.index + 1) % len(p.proxies)

		at, failed := p.failed[proxy]
		if !failed {
			return proxy
		}
		if now.Sub(at) >= p.cooldown {
			delete(p.failed, proxy)
			return proxy
		}
		if oldest == "" || at.Before(oldestAt) {
			oldest, oldestAt = proxy, at
		}
	}
	return oldest
}

// MarkFailed skips proxy for the cooldown period
func (p *Pool) MarkFailed(proxy string) {
	if proxy == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed[proxy] = p.now()
}

// MarkHealthy clears the failure of proxy
func (p *Pool) MarkHealthy(proxy string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.failed, proxy)
}

// internal/browser/pool.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// Factory creates a new, independent session
type Factory func(ctx context.Context) (Session, error)

// ErrPoolClosed is returned by Acquire once the pool has been closed
var ErrPoolClosed = errors.New("session pool is closed")

// Pool bounds the number of live worker sessions. Sessions are created on
// demand, handed to one worker at a time and reused after release.
type Pool struct {
	factory Factory
	size    int
	slots   chan struct{}
	idle    chan Session

	mu     sync.Mutex
	live   map[Session]struct{}
	closed bool
}

// NewPool creates a pool of at most size sessions
func NewPool(size int, factory Factory) *Pool {
	if size <= 0 {
		size = 1
	}
	return &Pool{
		factory: factory,
		size:    size,
		slots:   make(chan struct{}, size),
		idle:    make(chan Session, size),
		live:    make(map[Session]struct{}),
	}
}

// Acquire blocks until a session is available or ctx is done
func (p *Pool) Acquire(ctx context.Context) (Session, error) {
	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		<-p.slots
		return nil, ErrPoolClosed
	}
	p.mu.Unlock()

	select {
	case s := <-p.idle:
		return s, nil
	default:
	}

	s, err := p.factory(ctx)
	if err != nil {
		<-p.slots
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	p.mu.Lock()
	p.live[s] = struct{}{}
	p.mu.Unlock()
	log.Debug().Int("live", p.Live()).Int("size", p.size).Msg("Session created")
	return s, nil
}

// Release hands s back to the pool. A session that failed with
// ErrSessionClosed is discarded and replaced on a later Acquire.
func (p *Pool) Release(s Session, lastErr error) {
	defer func() { <-p.slots }()

	p.mu.Lock()
	discard := p.closed || errors.Is(lastErr, ErrSessionClosed)
	if discard {
		delete(p.live, s)
	}
	p.mu.Unlock()

	if discard {
		if err := s.Quit(); err != nil {
			log.Debug().Err(err).Msg("Failed to quit session")
		}
		return
	}
	p.idle <- s
}

// Live returns the number of sessions currently owned by the pool
func (p *Pool) Live() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.live)
}

// Size returns the maximum number of concurrent sessions
func (p *Pool) Size() int {
	return p.size
}

// Close quits every session the pool created
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	live := p.live
	p.live = make(map[Session]struct{})
	p.mu.Unlock()

	var errs []error
	for s := range live {
		if err := s.Quit(); err != nil {
			errs = append(errs, err)
		}
	}
	log.Debug().Int("sessions", len(live)).Msg("Session pool closed")
	return errors.Join(errs...)
}

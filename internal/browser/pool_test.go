package browser_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/law-makers/artcrawl/internal/browser"
	"github.com/law-makers/artcrawl/internal/browser/browsertest"
)

func TestPoolReusesReleasedSessions(t *testing.T) {
	var created atomic.Int32
	pool := browser.NewPool(2, func(ctx context.Context) (browser.Session, error) {
		created.Add(1)
		return browsertest.New(nil), nil
	})
	defer pool.Close()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		s, err := pool.Acquire(ctx)
		if err != nil {
			t.Fatalf("Acquire() error = %v", err)
		}
		pool.Release(s, nil)
	}

	if got := created.Load(); got != 1 {
		t.Errorf("created = %d, want 1", got)
	}
}

func TestPoolBoundsConcurrency(t *testing.T) {
	const size = 3
	pool := browser.NewPool(size, func(ctx context.Context) (browser.Session, error) {
		return browsertest.New(nil), nil
	})
	defer pool.Close()

	var (
		inUse, peak atomic.Int32
		wg          sync.WaitGroup
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := pool.Acquire(context.Background())
			if err != nil {
				t.Errorf("Acquire() error = %v", err)
				return
			}
			n := inUse.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inUse.Add(-1)
			pool.Release(s, nil)
		}()
	}
	wg.Wait()

	if got := peak.Load(); got > size {
		t.Errorf("peak concurrency = %d, want <= %d", got, size)
	}
	if got := pool.Live(); got > size {
		t.Errorf("Live() = %d, want <= %d", got, size)
	}
}

func TestPoolDiscardsClosedSessions(t *testing.T) {
	var sessions []*browsertest.Fake
	pool := browser.NewPool(1, func(ctx context.Context) (browser.Session, error) {
		f := browsertest.New(nil)
		sessions = append(sessions, f)
		return f, nil
	})
	defer pool.Close()

	s, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	pool.Release(s, browser.ErrSessionClosed)

	if !sessions[0].Closed() {
		t.Error("dead session was not quit")
	}

	s2, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if s2 == s {
		t.Error("dead session was handed out again")
	}
	pool.Release(s2, nil)
}

func TestPoolAcquireAfterClose(t *testing.T) {
	pool := browser.NewPool(1, func(ctx context.Context) (browser.Session, error) {
		return browsertest.New(nil), nil
	})
	s, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	pool.Release(s, nil)

	if err := pool.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !s.(*browsertest.Fake).Closed() {
		t.Error("Close() did not quit idle session")
	}
	if _, err := pool.Acquire(context.Background()); !errors.Is(err, browser.ErrPoolClosed) {
		t.Errorf("Acquire() after Close error = %v, want ErrPoolClosed", err)
	}
}

func TestPoolFactoryError(t *testing.T) {
	boom := errors.New("no chrome")
	pool := browser.NewPool(1, func(ctx context.Context) (browser.Session, error) {
		return nil, boom
	})
	defer pool.Close()

	for i := 0; i < 2; i++ {
		if _, err := pool.Acquire(context.Background()); !errors.Is(err, boom) {
			t.Fatalf("Acquire() error = %v, want %v", err, boom)
		}
	}
}

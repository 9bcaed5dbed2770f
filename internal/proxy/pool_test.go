package proxy

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func take(p *Pool, n int) []string {
	var out []string
	for i := 0; i < n; i++ {
		out = append(out, p.Next())
	}
	return out
}

func TestPoolRotation(t *testing.T) {
	pool := NewPool([]string{"p1", "p2", "p3"}, time.Minute)
	now := time.Unix(1000, 0)
	pool.now = func() time.Time { return now }

	if diff := cmp.Diff([]string{"p1", "p2", "p3", "p1"}, take(pool, 4)); diff != "" {
		t.Errorf("rotation (-want +got):\n%s", diff)
	}

	pool.MarkFailed("p2")
	if diff := cmp.Diff([]string{"p3", "p1", "p3"}, take(pool, 3)); diff != "" {
		t.Errorf("after failure (-want +got):\n%s", diff)
	}

	pool.MarkHealthy("p2")
	if diff := cmp.Diff([]string{"p1", "p2"}, take(pool, 2)); diff != "" {
		t.Errorf("after recovery (-want +got):\n%s", diff)
	}
}

func TestPoolCooldownExpires(t *testing.T) {
	pool := NewPool([]string{"p1", "p2"}, time.Minute)
	now := time.Unix(1000, 0)
	pool.now = func() time.Time { return now }

	pool.MarkFailed("p1")
	if got := pool.Next(); got != "p2" {
		t.Errorf("Next() = %q, want p2", got)
	}
	now = now.Add(2 * time.Minute)
	if got := pool.Next(); got != "p1" {
		t.Errorf("Next() after cooldown = %q, want p1", got)
	}
}

func TestPoolAllFailed(t *testing.T) {
	pool := NewPool([]string{"p1", "p2"}, time.Minute)
	now := time.Unix(1000, 0)
	pool.now = func() time.Time { return now }

	pool.MarkFailed("p2")
	now = now.Add(time.Second)
	pool.MarkFailed("p1")

	if got := pool.Next(); got != "p2" {
		t.Errorf("Next() = %q, want the proxy that failed first", got)
	}
}

func TestPoolEmpty(t *testing.T) {
	if got := NewPool(nil, 0).Next(); got != "" {
		t.Errorf("Next() = %q, want empty", got)
	}
}

func TestParse(t *testing.T) {
	got, err := Parse([]string{"http://10.0.0.1:8080, socks5://10.0.0.2:1080", "", "http://10.0.0.3:3128"})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"http://10.0.0.1:8080", "socks5://10.0.0.2:1080", "http://10.0.0.3:3128"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse() (-want +got):\n%s", diff)
	}

	if _, err := Parse([]string{"10.0.0.1:8080"}); err == nil {
		t.Error("Parse() accepted a proxy without scheme")
	}
}

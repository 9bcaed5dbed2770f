package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/law-makers/artcrawl/internal/browser"
	"github.com/law-makers/artcrawl/internal/browser/browsertest"
	"github.com/law-makers/artcrawl/internal/retry"
)

const page = `<html><body>
<div id="listing"><button class="more">More</button></div>
</body></html>`

func testPolicy() *retry.Policy {
	return retry.NewPolicy(retry.Timeouts{
		Listing:            20 * time.Millisecond,
		Pagination:         20 * time.Millisecond,
		Detail:             20 * time.Millisecond,
		Section:            20 * time.Millisecond,
		Click:              20 * time.Millisecond,
		ClickFallbackDelay: time.Millisecond,
	}, time.Millisecond)
}

func loaded(t *testing.T) *browsertest.Fake {
	t.Helper()
	f := browsertest.New(map[string]string{"https://museum.test/": page})
	if err := f.Navigate(context.Background(), "https://museum.test/"); err != nil {
		t.Fatal(err)
	}
	return f
}

func TestPolicyClick(t *testing.T) {
	tests := []struct {
		name       string
		intercept  bool
		hidden     bool
		wantClicks []string
	}{
		{
			name:       "direct click",
			wantClicks: []string{"direct:.more"},
		},
		{
			name:       "intercepted falls back to script",
			intercept:  true,
			wantClicks: []string{"direct:.more", "script:.more"},
		},
		{
			name:       "never interactable falls back to script",
			hidden:     true,
			wantClicks: []string{"script:.more"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := loaded(t)
			f.Intercept[".more"] = tt.intercept
			f.Hidden[".more"] = tt.hidden
			fired := 0
			f.OnClick[".more"] = func(*browsertest.Fake) { fired++ }

			if err := testPolicy().ClickSelector(context.Background(), f, ".more", 20*time.Millisecond); err != nil {
				t.Fatalf("ClickSelector() error = %v", err)
			}
			if diff := cmp.Diff(tt.wantClicks, f.Clicks()); diff != "" {
				t.Errorf("clicks mismatch (-want +got):\n%s", diff)
			}
			if fired != 1 {
				t.Errorf("handler fired %d times, want 1", fired)
			}
		})
	}
}

func TestPolicyClickSelectorMissing(t *testing.T) {
	f := loaded(t)
	err := testPolicy().ClickSelector(context.Background(), f, ".next", 10*time.Millisecond)
	if !errors.Is(err, retry.ErrRequiredMissing) {
		t.Fatalf("ClickSelector() error = %v, want ErrRequiredMissing", err)
	}
}

func TestPolicyClickSelectorStaleHandle(t *testing.T) {
	f := loaded(t)
	f.StaleFinds[".more"] = 1

	if err := testPolicy().ClickSelector(context.Background(), f, ".more", 20*time.Millisecond); err != nil {
		t.Fatalf("ClickSelector() error = %v", err)
	}
	if got := len(f.Clicks()); got != 1 {
		t.Errorf("clicks = %d, want 1", got)
	}
}

func TestPolicyWaitOptional(t *testing.T) {
	f := loaded(t)
	p := testPolicy()

	found, err := p.WaitOptional(context.Background(), f, "#listing", 10*time.Millisecond)
	if err != nil || !found {
		t.Errorf("WaitOptional(present) = %v, %v; want true, nil", found, err)
	}

	found, err = p.WaitOptional(context.Background(), f, "#provenance", 10*time.Millisecond)
	if err != nil || found {
		t.Errorf("WaitOptional(absent) = %v, %v; want false, nil", found, err)
	}

	f.Kill()
	if _, err := p.WaitOptional(context.Background(), f, "#listing", 10*time.Millisecond); !errors.Is(err, browser.ErrSessionClosed) {
		t.Errorf("WaitOptional(dead session) error = %v, want ErrSessionClosed", err)
	}
}

func TestPolicyNavigate(t *testing.T) {
	const url = "https://museum.test/"

	t.Run("ready", func(t *testing.T) {
		f := browsertest.New(map[string]string{url: page})
		if err := testPolicy().Navigate(context.Background(), f, url, "#listing", 10*time.Millisecond); err != nil {
			t.Fatalf("Navigate() error = %v", err)
		}
		if got := len(f.Navigations()); got != 1 {
			t.Errorf("navigations = %d, want 1", got)
		}
	})

	t.Run("one transient failure", func(t *testing.T) {
		f := browsertest.New(map[string]string{url: page})
		f.NavigateErrs[url] = 1
		if err := testPolicy().Navigate(context.Background(), f, url, "#listing", 10*time.Millisecond); err != nil {
			t.Fatalf("Navigate() error = %v", err)
		}
		if got := len(f.Navigations()); got != 2 {
			t.Errorf("navigations = %d, want 2", got)
		}
	})

	t.Run("ready selector never appears", func(t *testing.T) {
		f := browsertest.New(map[string]string{url: page})
		err := testPolicy().Navigate(context.Background(), f, url, ".art-object", 10*time.Millisecond)
		if !errors.Is(err, retry.ErrRequiredMissing) {
			t.Fatalf("Navigate() error = %v, want ErrRequiredMissing", err)
		}
		if got := len(f.Navigations()); got != 2 {
			t.Errorf("navigations = %d, want navigate plus reload", got)
		}
	})
}

func TestPolicyGoToPage(t *testing.T) {
	p := testPolicy()

	var seen []int
	err := p.GoToPage(context.Background(), 4, func(attempt int) error {
		seen = append(seen, attempt)
		if attempt < 3 {
			return errors.New("next control did not respond")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("GoToPage() error = %v", err)
	}
	if diff := cmp.Diff([]int{1, 2, 3}, seen); diff != "" {
		t.Errorf("attempts mismatch (-want +got):\n%s", diff)
	}

	calls := 0
	err = p.GoToPage(context.Background(), 4, func(int) error {
		calls++
		return errors.New("still broken")
	})
	if err == nil || calls != 3 {
		t.Errorf("GoToPage() = %v after %d calls, want error after 3", err, calls)
	}
}

// internal/retry/policy.go
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/artcrawl/internal/browser"
)

// ErrRequiredMissing is returned when a required element does not appear
// within its wait budget. Callers decide whether to skip, reload or abort.
var ErrRequiredMissing = errors.New("required element missing")

// Timeouts holds the wait budget of every interactive operation
type Timeouts struct {
	Listing            time.Duration
	Pagination         time.Duration
	Detail             time.Duration
	Section            time.Duration
	Click              time.Duration
	ClickFallbackDelay time.Duration
}

// DefaultTimeouts returns the budgets used against live museum sites
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Listing:            30 * time.Second,
		Pagination:         40 * time.Second,
		Detail:             30 * time.Second,
		Section:            20 * time.Second,
		Click:              20 * time.Second,
		ClickFallbackDelay: 2 * time.Second,
	}
}

// Policy wraps interactive browser operations with bounded waits,
// fallbacks and retries.
type Policy struct {
	Timeouts     Timeouts
	PageAttempts int
	PageBackoff  time.Duration
}

// NewPolicy creates a policy with three page-navigation attempts
func NewPolicy(t Timeouts, pageBackoff time.Duration) *Policy {
	return &Policy{
		Timeouts:     t,
		PageAttempts: 3,
		PageBackoff:  pageBackoff,
	}
}

// Click scrolls el into view, waits for it to become interactable and
// clicks it. An intercepted or non-interactable target is clicked once more
// through a script after a short delay.
func (p *Policy) Click(ctx context.Context, s browser.Session, el browser.Element) error {
	err := s.ScrollIntoView(ctx, el)
	if err == nil {
		err = s.WaitUntil(ctx, browser.Interactable(el), p.Timeouts.Click)
		if errors.Is(err, browser.ErrWaitTimeout) {
			err = fmt.Errorf("%w: %v", browser.ErrNotInteractable, err)
		}
	}
	if err == nil {
		err = s.Click(ctx, el)
	}
	if err == nil {
		return nil
	}

	if !errors.Is(err, browser.ErrClickIntercepted) && !errors.Is(err, browser.ErrNotInteractable) {
		return err
	}

	log.Debug().Err(err).Dur("delay", p.Timeouts.ClickFallbackDelay).Msg("Click failed, falling back to script click")
	if err := Sleep(ctx, p.Timeouts.ClickFallbackDelay); err != nil {
		return err
	}

	var ok bool
	if err := s.ExecuteScript(ctx, browser.ScriptClick, el, &ok); err != nil {
		return fmt.Errorf("script click: %w", err)
	}
	return nil
}

// ClickSelector waits up to timeout for selector and clicks the first match.
// A handle that goes stale between lookup and click is looked up again.
func (p *Policy) ClickSelector(ctx context.Context, s browser.Session, selector string, timeout time.Duration) error {
	if err := p.WaitRequired(ctx, s, selector, timeout); err != nil {
		return err
	}

	cfg := Config{MaxAttempts: 3, InitialBackoff: 100 * time.Millisecond, Multiplier: 2}
	return WithRetry(ctx, cfg, func() error {
		el, err := s.Find(ctx, selector)
		if err != nil {
			return err
		}
		if err := p.Click(ctx, s, el); err != nil {
			if errors.Is(err, browser.ErrStaleElement) {
				return err
			}
			return Permanent(err)
		}
		return nil
	})
}

// WaitRequired waits for selector and fails with ErrRequiredMissing on timeout
func (p *Policy) WaitRequired(ctx context.Context, s browser.Session, selector string, timeout time.Duration) error {
	err := s.WaitUntil(ctx, browser.Present(selector), timeout)
	if errors.Is(err, browser.ErrWaitTimeout) {
		return fmt.Errorf("%w: %s: %v", ErrRequiredMissing, selector, err)
	}
	return err
}

// WaitOptional waits for selector and reports whether it appeared. Only
// session-level failures are returned as errors.
func (p *Policy) WaitOptional(ctx context.Context, s browser.Session, selector string, timeout time.Duration) (bool, error) {
	err := s.WaitUntil(ctx, browser.Present(selector), timeout)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, browser.ErrWaitTimeout):
		log.Debug().Str("selector", selector).Dur("timeout", timeout).Msg("Optional element absent")
		return false, nil
	}
	return false, err
}

// Navigate loads url and waits for ready. On failure the page is loaded a
// second time before the error is returned.
func (p *Policy) Navigate(ctx context.Context, s browser.Session, url, ready string, timeout time.Duration) error {
	err := p.load(ctx, s, url, ready, timeout, false)
	if err == nil || errors.Is(err, browser.ErrSessionClosed) || ctx.Err() != nil {
		return err
	}

	log.Debug().Err(err).Str("url", url).Msg("Page not ready, reloading once")
	return p.load(ctx, s, url, ready, timeout, errors.Is(err, ErrRequiredMissing))
}

func (p *Policy) load(ctx context.Context, s browser.Session, url, ready string, timeout time.Duration, reload bool) error {
	var err error
	if reload {
		err = s.Reload(ctx)
	} else {
		err = s.Navigate(ctx, url)
	}
	if err != nil {
		return err
	}
	if ready == "" {
		return nil
	}
	return p.WaitRequired(ctx, s, ready, timeout)
}

// GoToPage runs fn up to PageAttempts times, doubling PageBackoff after each
// failed attempt. fn receives the one-based attempt number.
func (p *Policy) GoToPage(ctx context.Context, page int, fn func(attempt int) error) error {
	cfg := Config{
		MaxAttempts:    p.PageAttempts,
		InitialBackoff: p.PageBackoff,
		Multiplier:     2,
	}

	attempt := 0
	err := WithRetry(ctx, cfg, func() error {
		attempt++
		if err := fn(attempt); err != nil {
			log.Warn().Err(err).Int("page", page).Int("attempt", attempt).Msg("Failed to reach page")
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("go to page %d: %w", page, err)
	}
	return nil
}

// Sleep pauses for d unless ctx is done first
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

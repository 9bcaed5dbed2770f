// internal/pagination/scroll.go
package pagination

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/artcrawl/internal/adapter"
	"github.com/law-makers/artcrawl/internal/browser"
	"github.com/law-makers/artcrawl/internal/retry"
)

// Scroller walks an infinite-scroll listing. New items are loaded by
// scrolling to the bottom; the listing is exhausted once the document
// height stops growing or several scrolls in a row reveal nothing unseen.
//
// After a rewind the scrolls that already grew the page are replayed
// without the settle delay, so returning from a detail page does not pay
// for the whole listing depth again.
type Scroller struct {
	adapter *adapter.Adapter
	session browser.Session
	policy  *retry.Policy
	seen    *SeenSet

	loaded bool
	batch  int
	// depth counts the growing scrolls known for this listing, pos those
	// made since it was last loaded
	depth int
	pos   int
}

// NewScroller creates a scroll driver on s
func NewScroller(a *adapter.Adapter, s browser.Session, p *retry.Policy, seen *SeenSet) *Scroller {
	return &Scroller{adapter: a, session: s, policy: p, seen: seen}
}

// Next implements Driver
func (d *Scroller) Next(ctx context.Context) (Batch, error) {
	l := d.adapter.Listing

	if !d.loaded {
		ok, err := openListing(ctx, d.session, d.policy, d.adapter.StartURL, l.Ready)
		if err != nil {
			return Batch{}, err
		}
		if !ok {
			return Batch{Page: d.batch + 1, Status: StatusUnavailable}, nil
		}
		d.loaded = true
		d.pos = 0
	} else if ok, err := d.ready(ctx); err != nil {
		return Batch{}, err
	} else if !ok {
		return Batch{Page: d.batch + 1, Status: StatusUnavailable}, nil
	}

	empty := 0
	for {
		refs, _, err := snapshot(ctx, d.session, l)
		if err != nil {
			return Batch{}, err
		}
		if items := unseen(refs, d.seen, d.batch+1); len(items) > 0 {
			d.batch++
			log.Debug().Int("batch", d.batch).Int("items", len(items)).Int("visible", len(refs)).Msg("Collected unseen items")
			return Batch{Items: items, Page: d.batch, Status: StatusItems}, nil
		}

		if d.pos < d.depth {
			grew, err := d.replay(ctx)
			if err != nil {
				return Batch{}, err
			}
			if grew {
				d.pos++
				continue
			}
			d.depth = d.pos
		}

		if empty >= l.EmptyScrollLimit() {
			log.Debug().Int("scrolls", empty).Int("seen", d.seen.Len()).Msg("No unseen items after scrolling, listing exhausted")
			return Batch{Page: d.batch + 1, Status: StatusFinished}, nil
		}
		grew, err := d.scroll(ctx)
		if err != nil {
			return Batch{}, err
		}
		if !grew {
			log.Debug().Int("seen", d.seen.Len()).Msg("Page height stable, listing exhausted")
			return Batch{Page: d.batch + 1, Status: StatusFinished}, nil
		}
		empty++
		d.pos++
		d.depth = max(d.depth, d.pos)
	}
}

func (d *Scroller) height(ctx context.Context) (int, error) {
	var h int
	if err := d.session.ExecuteScript(ctx, browser.ScriptScrollHeight, nil, &h); err != nil {
		return 0, fmt.Errorf("measure height: %w", err)
	}
	return h, nil
}

// replay scrolls to the bottom and returns as soon as the page grows,
// giving up after the settle delay.
func (d *Scroller) replay(ctx context.Context) (bool, error) {
	before, err := d.height(ctx)
	if err != nil {
		return false, err
	}
	if err := d.session.ExecuteScript(ctx, browser.ScriptScrollToBottom, nil, nil); err != nil {
		return false, fmt.Errorf("scroll: %w", err)
	}
	settle := d.adapter.Listing.SettleDelay
	err = browser.Poll(ctx, settle, max(settle/20, time.Millisecond), func() (bool, error) {
		h, err := d.height(ctx)
		return h != before, err
	})
	if errors.Is(err, browser.ErrWaitTimeout) {
		return false, nil
	}
	return err == nil, err
}

// ready waits for the listing already on screen and reloads it once
func (d *Scroller) ready(ctx context.Context) (bool, error) {
	l := d.adapter.Listing
	err := d.policy.WaitRequired(ctx, d.session, l.Ready, d.policy.Timeouts.Listing)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, retry.ErrRequiredMissing) {
		return false, err
	}

	log.Warn().Err(err).Msg("Listing not ready, reloading")
	if err := d.session.Reload(ctx); err != nil {
		return false, fmt.Errorf("reload listing: %w", err)
	}
	d.pos = 0
	err = d.policy.WaitRequired(ctx, d.session, l.Ready, d.policy.Timeouts.Listing)
	if errors.Is(err, retry.ErrRequiredMissing) {
		return false, nil
	}
	return err == nil, err
}

// scroll moves to the bottom, waits for the page to settle and reports
// whether the document grew.
func (d *Scroller) scroll(ctx context.Context) (bool, error) {
	before, err := d.height(ctx)
	if err != nil {
		return false, err
	}
	if err := d.session.ExecuteScript(ctx, browser.ScriptScrollToBottom, nil, nil); err != nil {
		return false, fmt.Errorf("scroll: %w", err)
	}
	if err := retry.Sleep(ctx, d.adapter.Listing.SettleDelay); err != nil {
		return false, err
	}
	after, err := d.height(ctx)
	if err != nil {
		return false, err
	}
	log.Debug().Int("before", before).Int("after", after).Msg("Scrolled listing")
	return after != before, nil
}

// Rewind reloads the listing from its start. The known depth is scrolled
// again by the next call to Next.
func (d *Scroller) Rewind(ctx context.Context) error {
	d.loaded = false
	d.pos = 0
	ok, err := openListing(ctx, d.session, d.policy, d.adapter.StartURL, d.adapter.Listing.Ready)
	if err != nil {
		return err
	}
	d.loaded = ok
	return nil
}

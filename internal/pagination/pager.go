// internal/pagination/pager.go
package pagination

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/artcrawl/internal/adapter"
	"github.com/law-makers/artcrawl/internal/browser"
	"github.com/law-makers/artcrawl/internal/retry"
	"github.com/law-makers/artcrawl/pkg/models"
)

var errNoNextPage = errors.New("next page control absent")

// Pager walks a listing split into pages behind a "next" control. Pages
// have no address of their own, so reaching page N means clicking next
// N-1 times from the start URL.
type Pager struct {
	adapter *adapter.Adapter
	session browser.Session
	policy  *retry.Policy
	seen    *SeenSet

	current  int // page on screen, 0 when unknown
	produced int
	finished bool
}

// NewPager creates a pagination driver on s
func NewPager(a *adapter.Adapter, s browser.Session, p *retry.Policy, seen *SeenSet) *Pager {
	return &Pager{adapter: a, session: s, policy: p, seen: seen}
}

// Next implements Driver
func (d *Pager) Next(ctx context.Context) (Batch, error) {
	target := d.produced + 1
	if d.finished {
		return Batch{Page: target, Status: StatusFinished}, nil
	}
	if limit := d.adapter.MaxPages; limit > 0 && target > limit {
		log.Info().Int("max_pages", limit).Msg("Page limit reached")
		d.finished = true
		return Batch{Page: target, Status: StatusFinished}, nil
	}

	unavailable := false
	err := d.policy.GoToPage(ctx, target, func(attempt int) error {
		ok, err := d.reach(ctx, target, attempt)
		if !ok && err == nil {
			unavailable = true
		}
		return err
	})
	switch {
	case errors.Is(err, errNoNextPage):
		log.Info().Int("page", target).Msg("No next page, listing exhausted")
		d.finished = true
		return Batch{Page: target, Status: StatusFinished}, nil
	case err != nil:
		return Batch{}, err
	case unavailable:
		return Batch{Page: target, Status: StatusUnavailable}, nil
	}

	refs, _, err := snapshot(ctx, d.session, d.adapter.Listing)
	if err != nil {
		return Batch{}, err
	}
	d.produced = target

	items := unseen(refs, d.seen, target)
	if len(items) == 0 {
		log.Info().Int("page", target).Msg("No unseen items on page, listing exhausted")
		d.finished = true
		return Batch{Page: target, Status: StatusFinished}, nil
	}
	log.Debug().Int("page", target).Int("items", len(items)).Msg("Collected page")
	return Batch{Items: items, Page: target, Status: StatusItems}, nil
}

// reach displays page target. Retries and revisits start over from the
// start URL. It reports false when the first page never loaded.
func (d *Pager) reach(ctx context.Context, target, attempt int) (bool, error) {
	if d.current == 0 || attempt > 1 || d.current > target {
		d.current = 0
		ok, err := openListing(ctx, d.session, d.policy, d.adapter.StartURL, d.adapter.Listing.Ready)
		if err != nil || !ok {
			return ok, err
		}
		d.current = 1
	}

	for d.current < target {
		if err := d.advance(ctx); err != nil {
			return false, err
		}
		d.current++
		log.Debug().Int("page", d.current).Int("target", target).Msg("Reached page")
	}
	return true, nil
}

// advance clicks next and waits for the listing to change
func (d *Pager) advance(ctx context.Context) error {
	l := d.adapter.Listing
	t := d.policy.Timeouts

	present, err := d.policy.WaitOptional(ctx, d.session, l.Next, t.Pagination)
	if err != nil {
		return err
	}
	if !present {
		return retry.Permanent(errNoNextPage)
	}

	before, beforeURL, err := snapshot(ctx, d.session, l)
	if err != nil {
		return err
	}

	el, err := d.session.Find(ctx, l.Next)
	if err != nil {
		return err
	}
	if l.NextClick == adapter.ClickScript {
		err = d.session.ExecuteScript(ctx, browser.ScriptClick, el, nil)
	} else {
		err = d.policy.Click(ctx, d.session, el)
	}
	if err != nil {
		return fmt.Errorf("click next: %w", err)
	}

	changed := func(ctx context.Context, s browser.Session) (bool, error) {
		after, afterURL, err := snapshot(ctx, s, l)
		if err != nil {
			return false, err
		}
		if len(after) == 0 {
			return false, nil
		}
		return len(after) != len(before) || afterURL != beforeURL || after[0].Key != firstKey(before), nil
	}
	if err := d.session.WaitUntil(ctx, changed, t.Pagination); err != nil {
		return fmt.Errorf("wait for page %d: %w", d.current+1, err)
	}
	return nil
}

// Rewind marks the page on screen as unknown; the next batch walks again
// from the start URL.
func (d *Pager) Rewind(ctx context.Context) error {
	d.current = 0
	return nil
}

func firstKey(refs []models.ItemRef) string {
	if len(refs) == 0 {
		return ""
	}
	return refs[0].Key
}

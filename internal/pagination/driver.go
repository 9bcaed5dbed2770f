// Package pagination walks a collection listing and yields the items that
// have not been seen yet.
package pagination

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/artcrawl/internal/adapter"
	"github.com/law-makers/artcrawl/internal/browser"
	"github.com/law-makers/artcrawl/internal/extract"
	"github.com/law-makers/artcrawl/internal/retry"
	"github.com/law-makers/artcrawl/pkg/models"
)

// Status describes what a batch means for the traversal
type Status int

const (
	// StatusItems carries unseen items; more may follow
	StatusItems Status = iota
	// StatusFinished means the listing is exhausted
	StatusFinished
	// StatusUnavailable means the listing did not load, even after a reload
	StatusUnavailable
)

func (s Status) String() string {
	switch s {
	case StatusItems:
		return "items"
	case StatusFinished:
		return "finished"
	case StatusUnavailable:
		return "unavailable"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Batch is one step of the traversal
type Batch struct {
	Items  []models.ItemRef
	Page   int
	Status Status
}

// Driver yields batches of unseen items. Next returns an error only when the
// traversal cannot continue at all.
type Driver interface {
	Next(ctx context.Context) (Batch, error)
	// Rewind restores the listing after the session visited another page
	Rewind(ctx context.Context) error
}

// New returns the driver matching the adapter's traversal mode
func New(a *adapter.Adapter, s browser.Session, p *retry.Policy, seen *SeenSet) Driver {
	if a.Mode == adapter.ModePaginate {
		return NewPager(a, s, p, seen)
	}
	return NewScroller(a, s, p, seen)
}

// snapshot parses the live listing and returns its candidate items
func snapshot(ctx context.Context, s browser.Session, l adapter.Listing) ([]models.ItemRef, string, error) {
	url, err := s.CurrentURL(ctx)
	if err != nil {
		return nil, "", err
	}
	src, err := s.PageSource(ctx)
	if err != nil {
		return nil, "", err
	}
	doc, err := extract.Parse(src, url)
	if err != nil {
		return nil, "", fmt.Errorf("parse listing: %w", err)
	}
	return Collect(doc, l), url, nil
}

// unseen drops the refs already in seen and numbers the rest
func unseen(refs []models.ItemRef, seen *SeenSet, page int) []models.ItemRef {
	var out []models.ItemRef
	for _, r := range refs {
		if seen.Has(r.Key) {
			continue
		}
		r.Page = page
		r.Index = len(out)
		out = append(out, r)
	}
	return out
}

// openListing loads url and waits for the listing, reloading once. A
// listing that never appears is reported as unavailable rather than failed.
func openListing(ctx context.Context, s browser.Session, p *retry.Policy, url, ready string) (bool, error) {
	err := p.Navigate(ctx, s, url, ready, p.Timeouts.Listing)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, retry.ErrRequiredMissing):
		log.Warn().Err(err).Str("url", url).Msg("Listing unavailable after reload")
		return false, nil
	}
	return false, fmt.Errorf("open listing %s: %w", url, err)
}

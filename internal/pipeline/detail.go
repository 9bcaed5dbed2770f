// internal/pipeline/detail.go
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/law-makers/artcrawl/internal/adapter"
	"github.com/law-makers/artcrawl/internal/browser"
	"github.com/law-makers/artcrawl/internal/extract"
	"github.com/law-makers/artcrawl/pkg/models"
)

// visit loads the detail page of item on s and extracts its record. loaded
// runs once the page is ready.
func (p *Pipeline) visit(ctx context.Context, s browser.Session, item models.ItemRef, loaded func()) (models.ArtworkRecord, error) {
	d := p.adapter.Detail
	t := p.opts.Policy.Timeouts

	if err := p.opts.Limiter.Wait(ctx, item.DetailURL); err != nil {
		return models.ArtworkRecord{}, err
	}
	if err := p.opts.Policy.Navigate(ctx, s, item.DetailURL, d.Ready, t.Detail); err != nil {
		if errors.Is(err, browser.ErrSessionClosed) {
			return models.ArtworkRecord{}, err
		}
		return models.ArtworkRecord{}, newRunError(CodeNavigation, "detail page did not load", err).
			WithDetail("url", item.DetailURL)
	}
	if loaded != nil {
		loaded()
	}

	rec := models.NewArtworkRecord(item.DetailURL)
	for _, sec := range d.Sections {
		opened, err := p.openSection(ctx, s, sec)
		if err != nil {
			return models.ArtworkRecord{}, err
		}
		if !opened || isEmpty(sec.Fields) {
			continue
		}
		doc, err := p.document(ctx, s, item.DetailURL)
		if err != nil {
			return models.ArtworkRecord{}, err
		}
		p.extractor.Apply(&rec, doc, sec.Fields)
	}

	doc, err := p.document(ctx, s, item.DetailURL)
	if err != nil {
		return models.ArtworkRecord{}, err
	}
	p.extractor.Apply(&rec, doc, d.Fields)

	if rec.ImageURL == nil {
		rec.ImageURL = models.String(item.ImageURL)
	}
	return rec, nil
}

// openSection toggles sec and waits for its marker. A section that is
// missing or does not expand is reported as closed; only session loss is
// an error.
func (p *Pipeline) openSection(ctx context.Context, s browser.Session, sec adapter.Section) (bool, error) {
	log := p.log.With().Str("section", sec.Name).Logger()
	policy := p.opts.Policy

	present, err := policy.WaitOptional(ctx, s, sec.Toggle, sec.ToggleWait)
	if err != nil || !present {
		if !present && err == nil {
			log.Debug().Msg("Section toggle absent")
		}
		return false, sessionErr(err)
	}

	el, err := s.Find(ctx, sec.Toggle)
	if err == nil {
		if sec.Click == adapter.ClickScript {
			err = s.ExecuteScript(ctx, browser.ScriptClick, el, nil)
		} else {
			err = policy.Click(ctx, s, el)
		}
	}
	if err != nil {
		if errors.Is(err, browser.ErrSessionClosed) {
			return false, err
		}
		log.Warn().Err(err).Msg("Could not open section")
		return false, nil
	}

	if sec.Marker == "" {
		return true, nil
	}
	ok, err := policy.WaitOptional(ctx, s, sec.Marker, policy.Timeouts.Section)
	if err != nil {
		return false, sessionErr(err)
	}
	if !ok {
		log.Warn().Str("marker", sec.Marker).Msg("Section content did not appear")
	}
	return ok, nil
}

// document snapshots the page on s
func (p *Pipeline) document(ctx context.Context, s browser.Session, pageURL string) (*extract.Document, error) {
	src, err := s.PageSource(ctx)
	if err != nil {
		if errors.Is(err, browser.ErrSessionClosed) {
			return nil, err
		}
		return nil, newRunError(CodeExtraction, "read page source", err)
	}
	doc, err := extract.Parse(src, pageURL)
	if err != nil {
		return nil, newRunError(CodeExtraction, "parse page", fmt.Errorf("%s: %w", pageURL, err))
	}
	return doc, nil
}

// sessionErr keeps session loss and drops every other wait failure
func sessionErr(err error) error {
	if errors.Is(err, browser.ErrSessionClosed) {
		return err
	}
	return nil
}

func isEmpty(fm adapter.FieldMap) bool {
	return fm.ImageURL == nil && fm.Title == nil && fm.ArtistName == nil && fm.Date == nil &&
		fm.Technique == nil && fm.Dimensions == nil && fm.Signature == nil && fm.Location == nil &&
		fm.Exhibitions == nil && fm.Provenance == nil && fm.Literature == nil &&
		len(fm.Attributes) == 0 && len(fm.Sections) == 0 && len(fm.Links) == 0
}

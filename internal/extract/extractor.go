// internal/extract/extractor.go
package extract

import (
	"github.com/rs/zerolog/log"

	"github.com/law-makers/artcrawl/internal/adapter"
	"github.com/law-makers/artcrawl/pkg/models"
)

// Extractor applies adapter field maps to page snapshots
type Extractor struct{}

// New creates an extractor
func New() *Extractor {
	return &Extractor{}
}

// Extract builds a record for sourceURL from one snapshot
func (e *Extractor) Extract(doc *Document, fm adapter.FieldMap) models.ArtworkRecord {
	rec := models.NewArtworkRecord(doc.URL())
	e.Apply(&rec, doc, fm)
	return rec
}

// Apply fills every field fm has a rule for. A rule that finds nothing
// leaves its field absent; the other fields are unaffected.
func (e *Extractor) Apply(rec *models.ArtworkRecord, doc *Document, fm adapter.FieldMap) {
	scalars := []struct {
		name string
		dst  **string
		rule *adapter.FieldRule
	}{
		{"imageUrl", &rec.ImageURL, fm.ImageURL},
		{"title", &rec.Title, fm.Title},
		{"artistName", &rec.ArtistName, fm.ArtistName},
		{"date", &rec.Date, fm.Date},
		{"technique", &rec.Technique, fm.Technique},
		{"dimensions", &rec.Dimensions, fm.Dimensions},
		{"signature", &rec.Signature, fm.Signature},
		{"location", &rec.Location, fm.Location},
	}
	for _, s := range scalars {
		if s.rule == nil {
			continue
		}
		v, ok := e.Value(doc, *s.rule)
		if !ok {
			log.Debug().Str("field", s.name).Str("url", doc.URL()).Msg("Field absent")
			*s.dst = nil
			continue
		}
		*s.dst = models.String(v)
	}

	lists := []struct {
		dst  *[]string
		rule *adapter.ListRule
	}{
		{&rec.Exhibitions, fm.Exhibitions},
		{&rec.Provenance, fm.Provenance},
		{&rec.Literature, fm.Literature},
	}
	for _, l := range lists {
		if l.rule != nil {
			*l.dst = e.List(doc, *l.rule)
		}
	}

	for name, rule := range fm.Attributes {
		v, ok := e.Value(doc, rule)
		if !ok {
			delete(rec.Attributes, name)
			continue
		}
		if rec.Attributes == nil {
			rec.Attributes = make(map[string]string)
		}
		rec.Attributes[name] = v
	}

	for name, rule := range fm.Sections {
		entries := e.List(doc, rule)
		if rec.Sections == nil {
			rec.Sections = make(map[string][]string)
		}
		rec.Sections[name] = entries
	}

	for name, rule := range fm.Links {
		links := e.Links(doc, rule)
		if len(links) == 0 {
			delete(rec.Links, name)
			continue
		}
		if rec.Links == nil {
			rec.Links = make(map[string][]models.Link)
		}
		rec.Links[name] = links
	}

	rec.Normalize()
}

// Value evaluates a scalar rule. The fallback rule is used when the primary
// selector matches nothing.
func (e *Extractor) Value(doc *Document, rule adapter.FieldRule) (string, bool) {
	if rule.Value != "" {
		return rule.Value, true
	}

	n := doc.First(rule.Selector)
	if n == nil {
		if rule.Fallback != nil {
			return e.Value(doc, *rule.Fallback)
		}
		return "", false
	}

	var raw string
	if rule.Attr != "" {
		v, ok := Attr(n, rule.Attr)
		if !ok {
			return "", false
		}
		raw = CollapseSpace(v)
	} else {
		raw = NodeText(n)
	}

	if rule.Transform == adapter.TransformGalleryLocation {
		return GalleryLocation(raw, rule.Prefix)
	}

	v, ok := applyTransform(rule.Transform, raw)
	if !ok || v == "" {
		return "", false
	}
	if rule.Resolve {
		v = doc.Resolve(v)
	}
	return rule.Prefix + v, true
}

// List evaluates a list rule. A failed guard yields an empty list.
func (e *Extractor) List(doc *Document, rule adapter.ListRule) []string {
	out := []string{}
	if !guardHolds(doc, rule.Guard) {
		return out
	}
	for _, n := range doc.Select(rule.Selector) {
		v, ok := applyTransform(rule.Transform, NodeText(n))
		if ok && v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Links evaluates a link rule, resolving every target against the page
func (e *Extractor) Links(doc *Document, rule adapter.LinkRule) []models.Link {
	if !guardHolds(doc, rule.Guard) {
		return nil
	}
	attr := rule.Attr
	if attr == "" {
		attr = "href"
	}

	var out []models.Link
	for _, n := range doc.Select(rule.Selector) {
		name := NodeText(n)
		href, _ := Attr(n, attr)
		if name == "" || href == "" {
			continue
		}
		out = append(out, models.Link{Name: name, URL: doc.Resolve(href)})
	}
	return out
}

func guardHolds(doc *Document, g *adapter.Guard) bool {
	if g == nil {
		return true
	}
	heading := doc.First(g.Selector)
	return heading != nil && NodeText(heading) == g.Text
}

func applyTransform(name, raw string) (string, bool) {
	switch name {
	case "", adapter.TransformTrim:
		return raw, raw != ""
	case adapter.TransformStripDateSuffix:
		return StripDateSuffix(raw), true
	case adapter.TransformCreatorArtist:
		artist, _, _ := SplitCreator(raw)
		return artist, true
	case adapter.TransformCreatorDate:
		_, date, ok := SplitCreator(raw)
		return date, ok
	case adapter.TransformDimensionsCM:
		return NormalizeDimensions(raw)
	case adapter.TransformYearList:
		return YearListEntry(raw), true
	}
	log.Warn().Str("transform", name).Msg("Unknown transform, keeping raw value")
	return raw, true
}

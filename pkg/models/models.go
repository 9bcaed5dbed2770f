package models

// ArtworkRecord represents the metadata scraped for a single artwork
type ArtworkRecord struct {
	ID          int                 `json:"id" yaml:"id"`
	SourceURL   string              `json:"sourceUrl" yaml:"sourceUrl"`
	ImageURL    *string             `json:"imageUrl" yaml:"imageUrl"`
	Title       *string             `json:"title" yaml:"title"`
	ArtistName  *string             `json:"artistName" yaml:"artistName"`
	Date        *string             `json:"date" yaml:"date"`
	Technique   *string             `json:"technique" yaml:"technique"`
	Dimensions  *string             `json:"dimensions" yaml:"dimensions"`
	Signature   *string             `json:"signature" yaml:"signature"`
	Location    *string             `json:"location" yaml:"location"`
	Exhibitions []string            `json:"exhibitions" yaml:"exhibitions"`
	Provenance  []string            `json:"provenance" yaml:"provenance"`
	Literature  []string            `json:"literature" yaml:"literature"`
	Attributes  map[string]string   `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Sections    map[string][]string `json:"sections,omitempty" yaml:"sections,omitempty"`
	Links       map[string][]Link   `json:"links,omitempty" yaml:"links,omitempty"`
	LocalImage  string              `json:"localImage,omitempty" yaml:"localImage,omitempty"`
}

// NewArtworkRecord returns a record with every list section initialized,
// so that an empty section serializes as [] rather than null.
func NewArtworkRecord(sourceURL string) ArtworkRecord {
	return ArtworkRecord{
		SourceURL:   sourceURL,
		Exhibitions: []string{},
		Provenance:  []string{},
		Literature:  []string{},
	}
}

// Normalize restores the non-nil list invariant on records that were
// decoded from foreign input or assembled field by field.
func (r *ArtworkRecord) Normalize() {
	if r.Exhibitions == nil {
		r.Exhibitions = []string{}
	}
	if r.Provenance == nil {
		r.Provenance = []string{}
	}
	if r.Literature == nil {
		r.Literature = []string{}
	}
}

// Link is a named anchor found on a detail page
type Link struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// ItemRef points at one listing entry that has not been visited yet
type ItemRef struct {
	Key       string `json:"key"`
	DetailURL string `json:"detailUrl,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty"`
	Page      int    `json:"page"`
	Index     int    `json:"index"`
}

// String returns s as an optional value; blank text is treated as absent.
func String(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the value behind p or the empty string.
func Deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

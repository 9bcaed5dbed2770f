// internal/adapter/adapter.go
package adapter

import "time"

// Mode selects how the listing is traversed
type Mode string

const (
	ModeScroll   Mode = "scroll"
	ModePaginate Mode = "paginate"
)

// Dedup selects which listing value identifies an item
type Dedup string

const (
	DedupImage Dedup = "image"
	DedupLink  Dedup = "link"
)

// ClickMode selects how a control is triggered
type ClickMode string

const (
	// ClickDirect clicks like a user and falls back to a script click
	ClickDirect ClickMode = "direct"
	// ClickScript dispatches the click from a script straight away
	ClickScript ClickMode = "script"
)

// Transform names understood by the field extractor
const (
	TransformTrim            = "trim"
	TransformStripDateSuffix = "strip-date-suffix"
	TransformCreatorArtist   = "creator-artist"
	TransformCreatorDate     = "creator-date"
	TransformDimensionsCM    = "dimensions-cm"
	TransformGalleryLocation = "gallery-location"
	TransformYearList        = "year-list"
)

// Adapter describes one museum collection site
type Adapter struct {
	Name        string  `yaml:"name" validate:"required,slug"`
	Description string  `yaml:"description"`
	StartURL    string  `yaml:"start_url" validate:"required,url"`
	Mode        Mode    `yaml:"mode" validate:"required,oneof=scroll paginate"`
	Workers     int     `yaml:"workers" validate:"gte=0,lte=10"`
	MaxPages    int     `yaml:"max_pages" validate:"gte=0"`
	MaxItems    int     `yaml:"max_items" validate:"gte=0"`
	Listing     Listing `yaml:"listing"`
	Detail      Detail  `yaml:"detail"`
}

// Listing describes the result list and how to move through it
type Listing struct {
	Ready        string        `yaml:"ready" validate:"required,selector"`
	Item         string        `yaml:"item" validate:"required,selector"`
	Image        string        `yaml:"image" validate:"selector"`
	ImageAttrs   []string      `yaml:"image_attrs"`
	Link         string        `yaml:"link" validate:"selector"`
	RequireImage bool          `yaml:"require_image"`
	Dedup        Dedup         `yaml:"dedup" validate:"omitempty,oneof=image link"`
	Placeholders []string      `yaml:"placeholders"`
	Next         string        `yaml:"next" validate:"selector"`
	NextClick    ClickMode     `yaml:"next_click" validate:"omitempty,oneof=direct script"`
	SettleDelay  time.Duration `yaml:"settle_delay" validate:"gte=0"`
	// MaxEmptyScrolls ends an infinite-scroll listing after that many
	// consecutive scrolls grew the page without revealing unseen items
	MaxEmptyScrolls int `yaml:"max_empty_scrolls" validate:"gte=0"`
}

// Detail describes an artwork page
type Detail struct {
	Ready    string    `yaml:"ready" validate:"required,selector"`
	Fields   FieldMap  `yaml:"fields"`
	Sections []Section `yaml:"sections" validate:"dive"`
}

// Section is an expandable part of the detail page. Its fields are read
// right after it has been opened.
type Section struct {
	Name       string        `yaml:"name" validate:"required"`
	Toggle     string        `yaml:"toggle" validate:"required,selector"`
	ToggleWait time.Duration `yaml:"toggle_wait" validate:"gte=0"`
	Click      ClickMode     `yaml:"click" validate:"omitempty,oneof=direct script"`
	Marker     string        `yaml:"marker" validate:"selector"`
	Fields     FieldMap      `yaml:"fields"`
}

// FieldMap maps record fields to extraction rules. Nil rules leave the
// field untouched.
type FieldMap struct {
	ImageURL    *FieldRule `yaml:"imageUrl"`
	Title       *FieldRule `yaml:"title"`
	ArtistName  *FieldRule `yaml:"artistName"`
	Date        *FieldRule `yaml:"date"`
	Technique   *FieldRule `yaml:"technique"`
	Dimensions  *FieldRule `yaml:"dimensions"`
	Signature   *FieldRule `yaml:"signature"`
	Location    *FieldRule `yaml:"location"`
	Exhibitions *ListRule  `yaml:"exhibitions"`
	Provenance  *ListRule  `yaml:"provenance"`
	Literature  *ListRule  `yaml:"literature"`

	Attributes map[string]FieldRule `yaml:"attributes" validate:"dive"`
	Sections   map[string]ListRule  `yaml:"sections" validate:"dive"`
	Links      map[string]LinkRule  `yaml:"links" validate:"dive"`
}

// FieldRule extracts one scalar value
type FieldRule struct {
	Selector  string     `yaml:"selector" validate:"selector"`
	Attr      string     `yaml:"attr"`
	Value     string     `yaml:"value"`
	Transform string     `yaml:"transform" validate:"transform"`
	Prefix    string     `yaml:"prefix"`
	Resolve   bool       `yaml:"resolve"`
	Fallback  *FieldRule `yaml:"fallback"`
}

// Guard makes a list conditional on a heading carrying the expected text
type Guard struct {
	Selector string `yaml:"selector" validate:"required,selector"`
	Text     string `yaml:"text" validate:"required"`
}

// ListRule extracts an ordered list of text entries
type ListRule struct {
	Selector  string `yaml:"selector" validate:"required,selector"`
	Transform string `yaml:"transform" validate:"transform"`
	Guard     *Guard `yaml:"guard"`
}

// LinkRule extracts named anchors
type LinkRule struct {
	Selector string `yaml:"selector" validate:"required,selector"`
	Attr     string `yaml:"attr"`
	Guard    *Guard `yaml:"guard"`
}

// ImageAttributes returns the attributes probed for the image URL, in order
func (l Listing) ImageAttributes() []string {
	if len(l.ImageAttrs) == 0 {
		return []string{"src"}
	}
	return l.ImageAttrs
}

// DedupKey returns the configured dedup key, defaulting to the detail link
func (l Listing) DedupKey() Dedup {
	if l.Dedup == "" {
		return DedupLink
	}
	return l.Dedup
}

// DefaultMaxEmptyScrolls applies when Listing.MaxEmptyScrolls is zero
const DefaultMaxEmptyScrolls = 3

// EmptyScrollLimit returns MaxEmptyScrolls or its default
func (l Listing) EmptyScrollLimit() int {
	if l.MaxEmptyScrolls <= 0 {
		return DefaultMaxEmptyScrolls
	}
	return l.MaxEmptyScrolls
}

// IsPlaceholder reports whether url is a known "no image" sentinel
func (l Listing) IsPlaceholder(url string) bool {
	for _, p := range l.Placeholders {
		if url == p {
			return true
		}
	}
	return false
}

// Sequential reports whether detail pages are visited on the listing session
func (a *Adapter) Sequential() bool {
	return a.Workers <= 1
}

package adapter

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestBuiltinAdaptersValidate(t *testing.T) {
	r := NewRegistry()
	for _, a := range r.All() {
		t.Run(a.Name, func(t *testing.T) {
			if err := a.Validate(); err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	if diff := cmp.Diff([]string{"nga", "nga-highlights", "vangogh"}, r.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}

	a, err := r.Get("vangogh")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	a.MaxItems = 1

	b, _ := r.Get("vangogh")
	if b.MaxItems == 1 {
		t.Error("Get() returned a shared adapter")
	}

	if _, err := r.Get("louvre"); !errors.Is(err, ErrUnknownAdapter) {
		t.Errorf("Get(unknown) error = %v, want ErrUnknownAdapter", err)
	}
}

const sampleYAML = `
name: rijks
description: Rijksmuseum search results
start_url: https://www.rijksmuseum.nl/en/search
mode: paginate
workers: 3
max_pages: 2
listing:
  ready: ".search-results"
  item: ".search-results article"
  image: img
  image_attrs: [data-src, src]
  link: a
  dedup: link
  next: "//a[@rel='next']"
  next_click: direct
  settle_delay: 2s
detail:
  ready: h1
  fields:
    title:
      selector: h1
      transform: strip-date-suffix
    location:
      value: Rijksmuseum, Amsterdam
    provenance:
      selector: "#provenance li"
    attributes:
      objectNumber:
        selector: "dd.object-number"
  sections:
    - name: details
      toggle: "button.details"
      toggle_wait: 5s
      click: script
      marker: ".details-expanded"
      fields:
        dimensions:
          selector: ".details-expanded .dimensions"
          transform: dimensions-cm
`

func TestParse(t *testing.T) {
	a, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if a.Mode != ModePaginate || a.Workers != 3 || a.MaxPages != 2 {
		t.Errorf("unexpected adapter header: %+v", a)
	}
	if a.Listing.SettleDelay != 2*time.Second {
		t.Errorf("SettleDelay = %v, want 2s", a.Listing.SettleDelay)
	}
	if diff := cmp.Diff([]string{"data-src", "src"}, a.Listing.ImageAttributes()); diff != "" {
		t.Errorf("ImageAttributes() mismatch (-want +got):\n%s", diff)
	}
	if a.Detail.Fields.Location == nil || a.Detail.Fields.Location.Value != "Rijksmuseum, Amsterdam" {
		t.Errorf("Location rule = %+v", a.Detail.Fields.Location)
	}
	if len(a.Detail.Sections) != 1 || a.Detail.Sections[0].ToggleWait != 5*time.Second {
		t.Fatalf("Sections = %+v", a.Detail.Sections)
	}
	if got := a.Detail.Sections[0].Fields.Dimensions.Transform; got != TransformDimensionsCM {
		t.Errorf("section dimensions transform = %q", got)
	}
	if a.Sequential() {
		t.Error("Sequential() = true for three workers")
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(a *Adapter)
		want   string
	}{
		{"bad mode", func(a *Adapter) { a.Mode = "crawl" }, "Mode"},
		{"bad name", func(a *Adapter) { a.Name = "Van Gogh" }, "Name"},
		{"missing start url", func(a *Adapter) { a.StartURL = "" }, "StartURL"},
		{"too many workers", func(a *Adapter) { a.Workers = 50 }, "Workers"},
		{"paginate without next", func(a *Adapter) { a.Mode = ModePaginate }, "Listing.Next"},
		{"broken xpath", func(a *Adapter) { a.Listing.Item = "//div[" }, "Item"},
		{"broken css", func(a *Adapter) { a.Detail.Ready = "h1[" }, "Ready"},
		{"unknown transform", func(a *Adapter) { a.Detail.Fields.Title.Transform = "uppercase" }, "Transform"},
		{"rule without selector", func(a *Adapter) { a.Detail.Fields.Title = &FieldRule{} }, "Title"},
		{"bad section toggle", func(a *Adapter) { a.Detail.Sections[0].Toggle = "" }, "Toggle"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := VanGogh()
			tt.mutate(a)
			err := a.Validate()
			if err == nil {
				t.Fatal("Validate() error = nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rijks.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0644); err != nil {
		t.Fatal(err)
	}

	a, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if a.Name != "rijks" {
		t.Errorf("Name = %q, want rijks", a.Name)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadFile(missing) error = nil")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(bad, []byte("name: x\nmode: [\n"), 0644)
	if _, err := LoadFile(bad); err == nil {
		t.Error("LoadFile(malformed) error = nil")
	}
}

func TestRegisterFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rijks.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0644); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry()
	name, err := r.RegisterFile(path)
	if err != nil {
		t.Fatalf("RegisterFile() error = %v", err)
	}
	if name != "rijks" {
		t.Errorf("name = %q", name)
	}

	a, err := r.Get("rijks")
	if err != nil {
		t.Fatal(err)
	}
	a.Workers = 9
	if b, _ := r.Get("rijks"); b.Workers != 3 {
		t.Errorf("Get() shares state between lookups: workers = %d", b.Workers)
	}

	if _, err := r.RegisterFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("RegisterFile(missing) error = nil")
	}
}

func TestListingHelpers(t *testing.T) {
	l := VanGogh().Listing
	if !l.IsPlaceholder(vanGoghPlaceholder) {
		t.Error("IsPlaceholder(default.jpg) = false")
	}
	if l.IsPlaceholder("https://www.vangoghmuseum.nl/images/s0031V1962.jpg") {
		t.Error("IsPlaceholder(real image) = true")
	}
	if l.DedupKey() != DedupImage {
		t.Errorf("DedupKey() = %q, want image", l.DedupKey())
	}
	if (Listing{}).DedupKey() != DedupLink {
		t.Error("default DedupKey() is not link")
	}
	if got := (Listing{}).EmptyScrollLimit(); got != DefaultMaxEmptyScrolls {
		t.Errorf("default EmptyScrollLimit() = %d, want %d", got, DefaultMaxEmptyScrolls)
	}
	if got := (Listing{MaxEmptyScrolls: 7}).EmptyScrollLimit(); got != 7 {
		t.Errorf("EmptyScrollLimit() = %d, want 7", got)
	}
}

package extract

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/law-makers/artcrawl/internal/adapter"
	"github.com/law-makers/artcrawl/pkg/models"
)

const ngaDetail = `<html><body>
<h1 class="object-title">The Japanese Footbridge, <span class="date">1899</span></h1>
<p class="attribution">Claude Monet</p>
<p class="onview">On View West Building, Main Floor, Gallery 85</p>
<div class="object-attr medium"><span class="object-attr-value">oil on canvas</span></div>
<div class="object-attr dimensions"><span class="object-attr-value">overall: 81.3 x 101.6 cm (32 x 40 in.)</span></div>
<div class="object-attr credit"><span class="object-attr-value">Gift of Victoria Nebeker Coberly</span></div>
<div class="object-attr accession"><span class="object-attr-value">1992.9.1</span></div>
<div class="object-attr prints"><div class="object-attr-value"><a href="https://shop.nga.gov/prints/1992.9.1">Order</a></div></div>
<div id="provenance">
  <h3 class="heading-mimic-h6">Provenance</h3>
  <p>Sold 1900 by the artist to <a href="/collection/provenance/durand.html">Durand-Ruel</a>, Paris.</p>
  <p>Victoria Nebeker Coberly, Los Angeles.</p>
</div>
<div id="history">
  <h3 class="heading-mimic-h6">Exhibition History</h3>
  <dl class="year-list"><dt>1900</dt><dd>Monet, Galerie Durand-Ruel, Paris</dd></dl>
  <dl class="year-list"><dt>1995</dt><dd>Claude Monet: 1840-1926, Art Institute of Chicago</dd></dl>
</div>
<div id="bibliography">
  <h3 class="heading-mimic-h6">Something Else</h3>
  <dl class="year-list"><dt>1996</dt><dd>Should be ignored</dd></dl>
</div>
</body></html>`

func parse(t *testing.T, src, url string) *Document {
	t.Helper()
	doc, err := Parse(src, url)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return doc
}

func TestExtractNGA(t *testing.T) {
	doc := parse(t, ngaDetail, "https://www.nga.gov/collection/art-object-page.74796.html")
	fm := adapter.NGAHighlights().Detail.Fields

	got := New().Extract(doc, fm)

	want := models.NewArtworkRecord("https://www.nga.gov/collection/art-object-page.74796.html")
	want.Title = models.String("The Japanese Footbridge")
	want.ArtistName = models.String("Claude Monet")
	want.Date = models.String("1899")
	want.Technique = models.String("oil on canvas")
	want.Dimensions = models.String("overall: 81.3 x 101.6 cm (32 x 40 in.)")
	want.Location = models.String("National Gallery of Art, Gallery 85")
	want.Provenance = []string{
		"Sold 1900 by the artist to Durand-Ruel, Paris.",
		"Victoria Nebeker Coberly, Los Angeles.",
	}
	want.Exhibitions = []string{
		"1900 Monet, Galerie Durand-Ruel, Paris",
		"1995 Claude Monet: 1840 - 1926 , Art Institute of Chicago",
	}
	want.Literature = []string{}
	want.Attributes = map[string]string{
		"onView":           "On View West Building, Main Floor, Gallery 85",
		"creditLine":       "Gift of Victoria Nebeker Coberly",
		"accessionNumber":  "1992.9.1",
		"customPrintsLink": "https://shop.nga.gov/prints/1992.9.1",
	}
	want.Sections = map[string][]string{
		"inscription":      {},
		"marksAndLabels":   {},
		"technicalSummary": {},
	}
	want.Links = map[string][]models.Link{
		"associatedNames": {{Name: "Durand-Ruel", URL: "https://www.nga.gov/collection/provenance/durand.html"}},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
	}
}

const vanGoghDetail = `<html><body>
<h1 class="art-object-page-content-title">Zonnebloemen</h1>
<p class="art-object-page-content-creator-info">Vincent van Gogh, Arles, januari 1889</p>
<div class="accordion-item">
  <h4 class="accordion-item-button">Objectgegevens<button>open</button></h4>
  <div class="accordion-item-content-expanded">
    <dl>
      <dt>Technique</dt><dd>olieverf op doek</dd>
      <dt>Dimensions</dt><dd>Oil on canvas, 95 cm × 73 cm, framed</dd>
    </dl>
    <h5>Herkomst</h5><p>1889-1891 Theo van Gogh</p>
  </div>
</div>
</body></html>`

func TestExtractVanGoghPartialPage(t *testing.T) {
	a := adapter.VanGogh()
	doc := parse(t, vanGoghDetail, "https://www.vangoghmuseum.nl/nl/collectie/s0031V1962")

	ex := New()
	rec := ex.Extract(doc, a.Detail.Fields)
	for _, s := range a.Detail.Sections {
		ex.Apply(&rec, doc, s.Fields)
	}

	want := models.NewArtworkRecord("https://www.vangoghmuseum.nl/nl/collectie/s0031V1962")
	want.Title = models.String("Zonnebloemen")
	want.ArtistName = models.String("Vincent van Gogh")
	want.Date = models.String("januari 1889")
	want.Technique = models.String("olieverf op doek")
	want.Dimensions = models.String("95 cm × 73 cm")
	want.Location = models.String("Van Gogh Museum, Amsterdam")
	want.Provenance = []string{"1889-1891 Theo van Gogh"}

	if diff := cmp.Diff(want, rec); diff != "" {
		t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractCreatorFallback(t *testing.T) {
	src := `<html><body>
	<h1 class="art-object-page-content-title">Het gele huis</h1>
	<ul><li class="inline-list__item">Schilderij</li><li class="inline-list__item">Vincent van Gogh</li></ul>
	</body></html>`
	doc := parse(t, src, "https://www.vangoghmuseum.nl/nl/collectie/s0032V1962")

	rec := New().Extract(doc, adapter.VanGogh().Detail.Fields)
	if got := models.Deref(rec.ArtistName); got != "Vincent van Gogh" {
		t.Errorf("ArtistName = %q, want fallback creator", got)
	}
	if rec.Date != nil {
		t.Errorf("Date = %q, want absent", *rec.Date)
	}
}

func TestExtractMissingProvenance(t *testing.T) {
	src := `<html><body>
	<h1 class="object-title">Ginevra de' Benci</h1>
	<p class="attribution">Leonardo da Vinci</p>
	</body></html>`
	doc := parse(t, src, "https://www.nga.gov/collection/art-object-page.50724.html")

	rec := New().Extract(doc, adapter.NGA().Detail.Fields)

	if rec.Provenance == nil || len(rec.Provenance) != 0 {
		t.Errorf("Provenance = %#v, want empty non-nil list", rec.Provenance)
	}
	if got := models.Deref(rec.Title); got != "Ginevra de' Benci" {
		t.Errorf("Title = %q", got)
	}
	if got := models.Deref(rec.ArtistName); got != "Leonardo da Vinci" {
		t.Errorf("ArtistName = %q", got)
	}
	if rec.Technique != nil || rec.Dimensions != nil || rec.Location != nil || rec.Signature != nil {
		t.Errorf("absent fields were populated: %+v", rec)
	}
}

func TestNodeText(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`<h1>Sun<b>flowers</b><span>, 1889</span></h1>`, "Sunflowers, 1889"},
		{`<dl><dt>1900</dt><dd>Paris</dd></dl>`, "1900 Paris"},
		{`<p>  multiple
		   lines  </p>`, "multiple lines"},
		{`<div>keep<script>var x = 1;</script> text</div>`, "keep text"},
	}
	for _, tt := range tests {
		doc := parse(t, "<html><body>"+tt.src+"</body></html>", "")
		if got := NodeText(doc.First("body")); got != tt.want {
			t.Errorf("NodeText(%s) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestSelectInvalidXPath(t *testing.T) {
	doc := parse(t, "<html><body><p>x</p></body></html>", "")
	if nodes := doc.Select("//p["); nodes != nil {
		t.Errorf("Select(invalid) = %v, want nil", nodes)
	}
}

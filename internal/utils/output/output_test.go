package output

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/law-makers/artcrawl/pkg/models"
)

func sample() []models.ArtworkRecord {
	a := models.NewArtworkRecord("https://www.nga.gov/collection/art-object-page.46471.html")
	a.ID = 1
	a.Title = models.String("Watson & the Shark")
	a.Provenance = []string{"Sold <1778>", "Gift 1963"}
	a.Attributes = map[string]string{"creditLine": "Ferdinand Lammot Belin Fund"}

	b := models.NewArtworkRecord("https://www.nga.gov/collection/art-object-page.46472.html")
	b.ID = 2
	b.ArtistName = models.String("John Singleton Copley")
	return []models.ArtworkRecord{a, b}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sample()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		`"title": "Watson & the Shark"`,
		`"Sold <1778>"`,
		`"imageUrl": null`,
		`"literature": []`,
		"\n  {\n    \"id\": 1,",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("WriteJSON() output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, `"links"`) {
		t.Errorf("empty links were not omitted:\n%s", out)
	}

	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(sample(), got); diff != "" {
		t.Errorf("ReadJSON() mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("WriteJSON(nil) = %q, want []", got)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sample()); err != nil {
		t.Fatal(err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	header := rows[0]
	if last := header[len(header)-1]; last != "attributes.creditLine" {
		t.Errorf("last header = %q", last)
	}
	if rows[1][11] != "Sold <1778> | Gift 1963" {
		t.Errorf("provenance cell = %q", rows[1][11])
	}
	if rows[2][4] != "John Singleton Copley" || rows[2][len(header)-1] != "" {
		t.Errorf("second row = %v", rows[2])
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteYAML(&buf, sample()); err != nil {
		t.Fatal(err)
	}
	var got []map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0]["title"] != "Watson & the Shark" || got[1]["title"] != nil {
		t.Errorf("WriteYAML() decoded = %v", got)
	}
}

func TestParseFormat(t *testing.T) {
	for _, in := range []string{"json", "CSV", " yaml "} {
		if _, err := ParseFormat(in); err != nil {
			t.Errorf("ParseFormat(%q) error = %v", in, err)
		}
	}
	if _, err := ParseFormat("html"); err == nil {
		t.Error("ParseFormat(html) succeeded")
	}
}

package checkpoint

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/law-makers/artcrawl/pkg/models"
)

func records(n int) []models.ArtworkRecord {
	var out []models.ArtworkRecord
	for i := 1; i <= n; i++ {
		r := models.NewArtworkRecord("https://museum.test/art/" + string(rune('a'+i-1)))
		r.ID = i
		r.Title = models.String("Work & Study")
		out = append(out, r)
	}
	return out
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "artworks.json")
	w, err := NewWriter(path)
	if err != nil {
		t.Fatal(err)
	}

	for n := 1; n <= 3; n++ {
		if err := w.Save(records(n)); err != nil {
			t.Fatalf("Save(%d) error = %v", n, err)
		}
		got, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if diff := cmp.Diff(records(n), got); diff != "" {
			t.Errorf("after save %d (-want +got):\n%s", n, diff)
		}
	}
	if w.Writes() != 3 {
		t.Errorf("Writes() = %d, want 3", w.Writes())
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory holds %d entries, want only the checkpoint", len(entries))
	}
}

func TestSaveFormatting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artworks.json")
	w, err := NewWriter(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Save(records(1)); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.HasPrefix(out, "[\n  {\n    \"id\": 1,") {
		t.Errorf("unexpected layout:\n%s", out)
	}
	if !strings.Contains(out, `"Work & Study"`) {
		t.Errorf("HTML characters were escaped:\n%s", out)
	}
}

func TestSaveEmptyBuffer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artworks.json")
	w, err := NewWriter(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Save(nil); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("Load() = %v, want empty", got)
	}
}

func TestSaveFailsOnUnwritableDirectory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}
	w, err := NewWriter(filepath.Join(blocker, "artworks.json"))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Save(records(1)); err == nil {
		t.Error("Save() under a regular file succeeded")
	}
}

func TestNewWriterRejectsEmptyPath(t *testing.T) {
	if _, err := NewWriter(""); err == nil {
		t.Error("NewWriter(\"\") succeeded")
	}
}

package headers

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	got, err := Parse([]string{"user-agent: Bot", "Accept-Language:  nl-NL ", "Referer: https://www.vangoghmuseum.nl/"})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{
		"User-Agent":      "Bot",
		"Accept-Language": "nl-NL",
		"Referer":         "https://www.vangoghmuseum.nl/",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse() (-want +got):\n%s", diff)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, in := range []string{"BadHeader", ": value"} {
		if _, err := Parse([]string{in}); err == nil {
			t.Errorf("Parse(%q) succeeded", in)
		}
	}
}

func TestMerge(t *testing.T) {
	got := Merge(map[string]string{"A": "1", "B": "2"}, map[string]string{"B": "3"})
	if diff := cmp.Diff(map[string]string{"A": "1", "B": "3"}, got); diff != "" {
		t.Errorf("Merge() (-want +got):\n%s", diff)
	}
}

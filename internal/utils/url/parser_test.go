package urlutil

import "testing"

func TestValidate(t *testing.T) {
	valid := []string{
		"http://example.com",
		"https://www.nga.gov/collection/highlights.html",
	}
	for _, u := range valid {
		if err := ValidateURL(u); err != nil {
			t.Fatalf("expected valid, got error: %v", err)
		}
	}

	invalid := []string{"ftp://example.com", "//example.com", "http:///"}
	for _, u := range invalid {
		if err := ValidateURL(u); err == nil {
			t.Fatalf("expected invalid for %s", u)
		}
	}
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		base, href, want string
	}{
		{"https://www.nga.gov/collection/highlights.html", "/collection/art-object-page.46471.html", "https://www.nga.gov/collection/art-object-page.46471.html"},
		{"https://www.nga.gov/collection/highlights.html", "art-object-page.1.html", "https://www.nga.gov/collection/art-object-page.1.html"},
		{"https://www.nga.gov/", "https://images.nga.gov/a.jpg", "https://images.nga.gov/a.jpg"},
		{"https://www.vangoghmuseum.nl/nl/collectie", " /nl/collectie/s0031V1962 ", "https://www.vangoghmuseum.nl/nl/collectie/s0031V1962"},
	}
	for _, tt := range tests {
		if got := ResolveURL(tt.base, tt.href); got != tt.want {
			t.Errorf("ResolveURL(%q, %q) = %q, want %q", tt.base, tt.href, got, tt.want)
		}
	}
}

func TestPathExtension(t *testing.T) {
	tests := map[string]string{
		"https://api.nga.gov/iiif/abc/full/!384,384/0/default.jpg": ".jpg",
		"https://example.com/a/b.PNG?w=200#top":                   ".PNG",
		"https://example.com/image":                               "",
		"%zz":                                                     "",
	}
	for in, want := range tests {
		if got := PathExtension(in); got != want {
			t.Errorf("PathExtension(%q) = %q, want %q", in, got, want)
		}
	}
}

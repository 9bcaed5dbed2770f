package extract

import "testing"

func TestStripDateSuffix(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Sunflowers, 1889", "Sunflowers"},
		{"Sunflowers", "Sunflowers"},
		{"The Japanese Footbridge, 1899-1900", "The Japanese Footbridge"},
		{"Ginevra de' Benci [obverse], c. 1474/1478", "Ginevra de' Benci [obverse], c. 1474/1478"},
		{"1889, Sunflowers", "1889, Sunflowers"},
		{"Wheatfield,1888", "Wheatfield"},
	}
	for _, tt := range tests {
		if got := StripDateSuffix(tt.in); got != tt.want {
			t.Errorf("StripDateSuffix(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitCreator(t *testing.T) {
	tests := []struct {
		in         string
		wantArtist string
		wantDate   string
		wantOK     bool
	}{
		{"Vincent van Gogh, 1889", "Vincent van Gogh", "1889", true},
		{"Vincent van Gogh", "Vincent van Gogh", "", false},
		{"Vincent van Gogh, Arles, september 1888", "Vincent van Gogh", "september 1888", true},
		{" Vincent van Gogh ,  1887 ", "Vincent van Gogh", "1887", true},
	}
	for _, tt := range tests {
		artist, date, ok := SplitCreator(tt.in)
		if artist != tt.wantArtist || date != tt.wantDate || ok != tt.wantOK {
			t.Errorf("SplitCreator(%q) = %q, %q, %v; want %q, %q, %v",
				tt.in, artist, date, ok, tt.wantArtist, tt.wantDate, tt.wantOK)
		}
	}
}

func TestNormalizeDimensions(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"Oil on canvas, 73.5 cm × 92 cm, framed", "73.5 cm × 92 cm", true},
		{"92.1 cm × 73 cm", "92.1 cm × 73 cm", true},
		{"73cm×92cm", "73cm×92cm", true},
		{"overall: 73.5 x 92 cm (28 15/16 x 36 1/4 in.)", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeDimensions(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("NormalizeDimensions(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestYearListEntry(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"1889Exposition des Indépendants, Paris", "1889 Exposition des Indépendants, Paris"},
		{"Retrospective1905Amsterdam", "Retrospective 1905 Amsterdam"},
		{"  1950\n  Catalogue  ", "1950 Catalogue"},
		{"no years here", "no years here"},
	}
	for _, tt := range tests {
		if got := YearListEntry(tt.in); got != tt.want {
			t.Errorf("YearListEntry(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGalleryLocation(t *testing.T) {
	const prefix = "National Gallery of Art, "
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"On View West Building, Main Floor, Gallery 6", "National Gallery of Art, Gallery 6", true},
		{"On view in Gallery", "On view in Gallery", true},
		{"Not on view", "", false},
	}
	for _, tt := range tests {
		got, ok := GalleryLocation(tt.in, prefix)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("GalleryLocation(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

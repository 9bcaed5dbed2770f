// internal/extract/parsers.go
package extract

import (
	"regexp"
	"strings"
)

var (
	dateSuffixPattern = regexp.MustCompile(`,\s*\d{4}(-\d{4})?$`)
	dimensionsPattern = regexp.MustCompile(`(\d+(?:\.\d+)?\s*cm\s*×\s*\d+(?:\.\d+)?\s*cm)`)
	galleryPattern    = regexp.MustCompile(`Gallery (\w+)`)
	yearPattern       = regexp.MustCompile(`(\d{4})`)
)

// StripDateSuffix removes a trailing ", YYYY" or ", YYYY-YYYY" from a title
func StripDateSuffix(title string) string {
	return strings.TrimSpace(dateSuffixPattern.ReplaceAllString(title, ""))
}

// SplitCreator splits an "artist, ..., date" line. The date is only present
// when the line has more than one comma-separated segment.
func SplitCreator(line string) (artist string, date string, hasDate bool) {
	parts := strings.Split(line, ",")
	artist = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		return artist, strings.TrimSpace(parts[len(parts)-1]), true
	}
	return artist, "", false
}

// NormalizeDimensions returns the first "<n> cm × <n> cm" substring of raw
func NormalizeDimensions(raw string) (string, bool) {
	m := dimensionsPattern.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// YearListEntry separates embedded four-digit years from adjacent text and
// folds the entry onto one line.
func YearListEntry(text string) string {
	return CollapseSpace(yearPattern.ReplaceAllString(text, " $1 "))
}

// GalleryLocation turns an on-view line into "<prefix>Gallery N". A line
// mentioning a gallery without a number is returned as is; a line without
// any gallery yields no location.
func GalleryLocation(onView, prefix string) (string, bool) {
	if !strings.Contains(onView, "Gallery") {
		return "", false
	}
	if m := galleryPattern.FindString(onView); m != "" {
		return prefix + m, true
	}
	return onView, true
}

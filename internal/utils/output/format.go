// Package output serializes artwork records.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/law-makers/artcrawl/pkg/models"
)

// Format is an export format
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts a format name in any case
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unsupported output format: %s", s)
}

// Write serializes records in format f
func Write(w io.Writer, f Format, records []models.ArtworkRecord) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, records)
	case FormatCSV:
		return WriteCSV(w, records)
	case FormatYAML:
		return WriteYAML(w, records)
	}
	return fmt.Errorf("unsupported output format: %s", f)
}

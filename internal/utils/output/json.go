package output

import (
	"encoding/json"
	"io"

	"github.com/law-makers/artcrawl/pkg/models"
)

// WriteJSON writes records as one pretty-printed JSON array. HTML
// characters in titles and provenance entries are kept as is.
func WriteJSON(w io.Writer, records []models.ArtworkRecord) error {
	if records == nil {
		records = []models.ArtworkRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// ReadJSON decodes a record array written by WriteJSON
func ReadJSON(r io.Reader) ([]models.ArtworkRecord, error) {
	var records []models.ArtworkRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, err
	}
	for i := range records {
		records[i].Normalize()
	}
	return records, nil
}

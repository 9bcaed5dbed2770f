package output

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/law-makers/artcrawl/pkg/models"
)

// WriteYAML writes records as a YAML sequence
func WriteYAML(w io.Writer, records []models.ArtworkRecord) error {
	if records == nil {
		records = []models.ArtworkRecord{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return err
	}
	return enc.Close()
}

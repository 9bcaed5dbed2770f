package output

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/law-makers/artcrawl/pkg/models"
)

// ListSeparator joins list sections inside one CSV cell
const ListSeparator = " | "

var csvColumns = []string{
	"id", "sourceUrl", "imageUrl", "title", "artistName", "date",
	"technique", "dimensions", "signature", "location",
	"exhibitions", "provenance", "literature", "localImage",
}

// WriteCSV writes one row per record. Attributes become extra
// "attributes.<name>" columns, sorted by name.
func WriteCSV(w io.Writer, records []models.ArtworkRecord) error {
	writer := csv.NewWriter(w)

	attrs := map[string]bool{}
	for _, r := range records {
		for k := range r.Attributes {
			attrs[k] = true
		}
	}
	var attrNames []string
	for k := range attrs {
		attrNames = append(attrNames, k)
	}
	sort.Strings(attrNames)

	headers := append([]string{}, csvColumns...)
	for _, k := range attrNames {
		headers = append(headers, "attributes."+k)
	}
	if err := writer.Write(headers); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{
			strconv.Itoa(r.ID),
			r.SourceURL,
			models.Deref(r.ImageURL),
			models.Deref(r.Title),
			models.Deref(r.ArtistName),
			models.Deref(r.Date),
			models.Deref(r.Technique),
			models.Deref(r.Dimensions),
			models.Deref(r.Signature),
			models.Deref(r.Location),
			strings.Join(r.Exhibitions, ListSeparator),
			strings.Join(r.Provenance, ListSeparator),
			strings.Join(r.Literature, ListSeparator),
			r.LocalImage,
		}
		for _, k := range attrNames {
			row = append(row, r.Attributes[k])
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

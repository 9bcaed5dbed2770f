// internal/pagination/listing.go
package pagination

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/law-makers/artcrawl/internal/adapter"
	"github.com/law-makers/artcrawl/internal/extract"
	"github.com/law-makers/artcrawl/pkg/models"
)

// Collect reads every candidate item of a listing snapshot in document
// order. Placeholder images are dropped and duplicates inside the snapshot
// are collapsed; the seen set is not consulted.
func Collect(doc *extract.Document, l adapter.Listing) []models.ItemRef {
	var refs []models.ItemRef
	dup := make(map[string]bool)

	for _, n := range doc.Select(l.Item) {
		ref := models.ItemRef{
			ImageURL:  itemImage(doc, n, l),
			DetailURL: itemLink(doc, n, l),
		}
		if ref.ImageURL != "" && l.IsPlaceholder(ref.ImageURL) {
			continue
		}
		if l.RequireImage && ref.ImageURL == "" {
			continue
		}

		switch l.DedupKey() {
		case adapter.DedupImage:
			ref.Key = ref.ImageURL
		default:
			ref.Key = ref.DetailURL
		}
		if ref.Key == "" || dup[ref.Key] {
			continue
		}
		dup[ref.Key] = true
		refs = append(refs, ref)
	}
	return refs
}

func itemImage(doc *extract.Document, item *html.Node, l adapter.Listing) string {
	img := item
	if l.Image != "" {
		nodes := extract.SelectIn(item, l.Image)
		if len(nodes) == 0 {
			return ""
		}
		img = nodes[0]
	}
	for _, attr := range l.ImageAttributes() {
		if v, ok := extract.Attr(img, attr); ok && strings.TrimSpace(v) != "" {
			return doc.Resolve(strings.TrimSpace(v))
		}
	}
	return ""
}

// itemLink looks for the detail link below the item, then in the anchor
// wrapping it.
func itemLink(doc *extract.Document, item *html.Node, l adapter.Listing) string {
	var a *html.Node
	if l.Link != "" {
		if nodes := extract.SelectIn(item, l.Link); len(nodes) > 0 {
			a = nodes[0]
		}
	}
	if a == nil {
		a = extract.Closest(item, "a")
	}
	if a == nil {
		if nodes := extract.SelectIn(item, "a"); len(nodes) > 0 {
			a = nodes[0]
		}
	}

	href, _ := extract.Attr(a, "href")
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "javascript:") {
		return ""
	}
	return doc.Resolve(href)
}

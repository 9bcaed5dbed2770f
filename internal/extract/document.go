// internal/extract/document.go
package extract

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"

	urlutil "github.com/law-makers/artcrawl/internal/utils/url"
)

// Document is a parsed page snapshot
type Document struct {
	root *html.Node
	url  string
}

// Parse parses page markup. pageURL is used to resolve relative links.
func Parse(source, pageURL string) (*Document, error) {
	root, err := htmlquery.Parse(strings.NewReader(source))
	if err != nil {
		return nil, err
	}
	return &Document{root: root, url: pageURL}, nil
}

// URL returns the address the snapshot was taken from
func (d *Document) URL() string {
	return d.url
}

// Select returns every node matching a CSS selector or XPath expression
func (d *Document) Select(selector string) []*html.Node {
	return SelectIn(d.root, selector)
}

// First returns the first node matching selector, or nil
func (d *Document) First(selector string) *html.Node {
	nodes := d.Select(selector)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

// Resolve turns href into an absolute URL relative to the document
func (d *Document) Resolve(href string) string {
	if href == "" || d.url == "" {
		return href
	}
	return urlutil.ResolveURL(d.url, href)
}

// SelectIn evaluates selector below n. XPath expressions are detected by a
// leading "/" or "(".
func SelectIn(n *html.Node, selector string) []*html.Node {
	s := strings.TrimSpace(selector)
	if s == "" || n == nil {
		return nil
	}
	if strings.HasPrefix(s, "/") || strings.HasPrefix(s, "(") {
		nodes, err := htmlquery.QueryAll(n, s)
		if err != nil {
			log.Debug().Err(err).Str("xpath", s).Msg("Invalid xpath")
			return nil
		}
		return nodes
	}
	return goquery.NewDocumentFromNode(n).Find(s).Nodes
}

// Attr returns the named attribute of n
func Attr(n *html.Node, name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// Closest returns n or its nearest ancestor with the given tag name
func Closest(n *html.Node, tag string) *html.Node {
	for ; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && n.Data == tag {
			return n
		}
	}
	return nil
}

var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"br": true, "dd": true, "div": true, "dl": true, "dt": true,
	"figcaption": true, "figure": true, "footer": true, "h1": true,
	"h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "li": true, "ol": true, "p": true,
	"section": true, "table": true, "td": true, "th": true, "tr": true,
	"ul": true,
}

// NodeText returns the visible text of n with whitespace collapsed. Block
// boundaries become word boundaries; inline elements join without a break.
func NodeText(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript", "template":
				return
			}
		}
		block := n.Type == html.ElementNode && blockElements[n.Data]
		if block {
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			b.WriteByte(' ')
		}
	}
	walk(n)
	return CollapseSpace(b.String())
}

// CollapseSpace trims s and replaces every whitespace run with one space
func CollapseSpace(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

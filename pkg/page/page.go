// Package page holds the read-only document snapshot the resolver works on.
package page

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Anchor describes one <a> element in document order.
type Anchor struct {
	// Href is the raw href attribute value, exactly as written in the markup.
	Href string

	// Attrs holds every attribute of the element, href included.
	Attrs map[string]string
}

// Attr returns the value of the named attribute and whether it is present.
func (a Anchor) Attr(name string) (string, bool) {
	v, ok := a.Attrs[name]
	return v, ok
}

// Context is a snapshot of the current document taken at resolution time.
type Context struct {
	URL      string
	Hostname string
	Anchors  []Anchor
}

// New builds a Context for docURL, deriving the hostname the way a browser
// reports location.hostname (lower case, no port).
func New(docURL string, anchors []Anchor) Context {
	return Context{
		URL:      docURL,
		Hostname: hostname(docURL),
		Anchors:  anchors,
	}
}

func hostname(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// ParseHTML parses a serialized document and collects its anchors in
// document order.
func ParseHTML(r io.Reader, docURL string) (Context, error) {
	root, err := html.Parse(r)
	if err != nil {
		return Context{}, fmt.Errorf("failed to parse document: %w", err)
	}

	var anchors []Anchor
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			anchors = append(anchors, anchorFromNode(n))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return New(docURL, anchors), nil
}

func anchorFromNode(n *html.Node) Anchor {
	a := Anchor{Attrs: make(map[string]string, len(n.Attr))}
	for _, attr := range n.Attr {
		if attr.Namespace != "" {
			continue
		}
		// First occurrence wins, matching getAttribute.
		if _, seen := a.Attrs[attr.Key]; seen {
			continue
		}
		a.Attrs[attr.Key] = attr.Val
	}
	a.Href = a.Attrs["href"]
	return a
}

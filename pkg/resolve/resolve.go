// Package resolve decides which URL to submit for the current document.
//
// On ordinary pages the answer is the document's own URL. On a feed reader's
// listing page the user is looking at many articles at once, so the resolver
// scans the page's anchors for the article link instead and asks for it to be
// opened in a background tab, leaving the listing in place.
package resolve

import (
	"errors"
	"fmt"
	"strings"

	"github.com/entrhq/aread/pkg/page"
	"github.com/gobwas/glob"
)

// ErrPageLinkNotFound is returned when a feed-reader listing has no anchor
// carrying either marker.
var ErrPageLinkNotFound = errors.New("page link not found")

// Target is the resolver's answer. It is consumed exactly once by the
// dispatcher.
type Target struct {
	URL          string
	OpenInNewTab bool
}

// Resolver matches documents against a fixed set of feed readers.
type Resolver struct {
	readers []compiledReader
}

type compiledReader struct {
	FeedReader
	hosts []glob.Glob
}

// New compiles the host patterns of each reader.
func New(readers ...FeedReader) (*Resolver, error) {
	r := &Resolver{readers: make([]compiledReader, 0, len(readers))}
	for _, fr := range readers {
		if err := fr.Validate(); err != nil {
			return nil, err
		}
		cr := compiledReader{FeedReader: fr}
		for _, pattern := range fr.Hosts {
			g, err := glob.Compile(strings.ToLower(pattern), '.')
			if err != nil {
				return nil, fmt.Errorf("feed reader %q: invalid host pattern %q: %w", fr.Name, pattern, err)
			}
			cr.hosts = append(cr.hosts, g)
		}
		r.readers = append(r.readers, cr)
	}
	return r, nil
}

// Default returns a resolver that knows only the built-in feed readers.
func Default() *Resolver {
	r, err := New(BuiltinFeedReaders()...)
	if err != nil {
		panic(fmt.Sprintf("built-in feed readers: %v", err))
	}
	return r
}

// Resolve returns the URL to submit for doc.
//
// A non-empty override wins outright and the document is not inspected.
func (r *Resolver) Resolve(doc page.Context, override string) (Target, error) {
	if override != "" {
		return Target{URL: override, OpenInNewTab: true}, nil
	}

	reader, ok := r.match(doc.Hostname)
	if !ok {
		return Target{URL: doc.URL, OpenInNewTab: false}, nil
	}

	link, found := scan(doc.Anchors, reader.Title, reader.Secondary)
	if !found {
		return Target{}, ErrPageLinkNotFound
	}
	return Target{URL: link, OpenInNewTab: true}, nil
}

func (r *Resolver) match(hostname string) (FeedReader, bool) {
	host := strings.ToLower(hostname)
	if host == "" {
		return FeedReader{}, false
	}
	for _, cr := range r.readers {
		for _, g := range cr.hosts {
			if g.Match(host) {
				return cr.FeedReader, true
			}
		}
	}
	return FeedReader{}, false
}

// scan walks anchors once, left to right. A secondary-marked anchor sets the
// candidate and ends the scan; a title-marked anchor sets it only while no
// candidate exists.
func scan(anchors []page.Anchor, title, secondary Marker) (string, bool) {
	candidate := ""
	for _, a := range anchors {
		// A marked anchor without an href neither ends the scan nor claims the
		// candidate, so a later marked anchor can still supply the link.
		if a.Href == "" {
			continue
		}
		if secondary.Matches(a) {
			return a.Href, true
		}
		if candidate == "" && title.Matches(a) {
			candidate = a.Href
		}
	}
	return candidate, candidate != ""
}

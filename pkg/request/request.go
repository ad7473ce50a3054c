// Package request builds the URLs sent to the aread service.
package request

import (
	"net/url"
	"strings"
)

const addPath = "/add"

// Options are the per-invocation flags chosen by the surface.
type Options struct {
	// Archive marks the page saved rather than left unread.
	Archive bool

	// Kindle routes the page to the Kindle e-mail gateway.
	Kindle bool

	// OverrideURL, when set, is submitted instead of resolving the document.
	OverrideURL string
}

// Build returns the add-request URL for targetURL. Flags follow in a fixed
// order: archive before kindle. serviceURL and token are inserted verbatim.
func Build(serviceURL, token, targetURL string, opts Options) string {
	var b strings.Builder
	b.WriteString(serviceURL)
	b.WriteString(addPath)
	b.WriteString("?u=")
	b.WriteString(EncodeURIComponent(targetURL))
	b.WriteString("&t=")
	b.WriteString(token)
	writeFlags(&b, opts)
	return b.String()
}

// ReadingListURL returns the URL of the reading list, which is the service
// base URL itself.
func ReadingListURL(serviceURL string) string {
	return serviceURL
}

// Bookmarklet returns a javascript: URL that submits whatever page it is
// clicked on, for browsers where aread is not installed.
func Bookmarklet(serviceURL, token string, opts Options) string {
	var b strings.Builder
	b.WriteString(`javascript:{window.location.href="`)
	b.WriteString(serviceURL)
	b.WriteString(addPath)
	b.WriteString(`?u="+encodeURIComponent(window.location.href)+"&t=`)
	b.WriteString(token)
	writeFlags(&b, opts)
	b.WriteString(`";};void(0);`)
	return b.String()
}

func writeFlags(b *strings.Builder, opts Options) {
	if opts.Archive {
		b.WriteString("&a=1")
	}
	if opts.Kindle {
		b.WriteString("&k=1")
	}
}

// QueryEscape leaves these reserved; encodeURIComponent does not.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeURIComponent percent-encodes s the way browsers do, leaving only
// A-Z a-z 0-9 - _ . ! ~ * ' ( ) unescaped. Input is encoded as UTF-8.
func EncodeURIComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}

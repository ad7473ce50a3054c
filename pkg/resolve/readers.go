package resolve

import (
	"fmt"
	"os"

	"github.com/entrhq/aread/pkg/page"
	"gopkg.in/yaml.v3"
)

// Marker identifies anchors by one attribute. An empty Value matches any
// anchor carrying the attribute; a zero Marker matches nothing.
type Marker struct {
	Attr  string `yaml:"attr"`
	Value string `yaml:"value,omitempty"`
}

// Matches reports whether a carries the marker.
func (m Marker) Matches(a page.Anchor) bool {
	if m.Attr == "" {
		return false
	}
	v, ok := a.Attr(m.Attr)
	if !ok {
		return false
	}
	return m.Value == "" || v == m.Value
}

// FeedReader describes a feed-reader service whose listing pages show one row
// per article. Title marks the link every row has; Secondary marks the more
// specific link an enrichment step adds once the canonical URL is known.
type FeedReader struct {
	Name      string   `yaml:"name"`
	Hosts     []string `yaml:"hosts"`
	Title     Marker   `yaml:"title"`
	Secondary Marker   `yaml:"secondary"`
}

// Validate checks that the reader can match anything at all.
func (f FeedReader) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("feed reader name is required")
	}
	if len(f.Hosts) == 0 {
		return fmt.Errorf("feed reader %q: at least one host is required", f.Name)
	}
	if f.Title.Attr == "" && f.Secondary.Attr == "" {
		return fmt.Errorf("feed reader %q: a title or secondary marker is required", f.Name)
	}
	return nil
}

// GoRead is the feed reader the extension was written against.
var GoRead = FeedReader{
	Name:      "goread",
	Hosts:     []string{"go-read.appspot.com", "www.goread.io"},
	Title:     Marker{Attr: "ng-bind", Value: "s.Title"},
	Secondary: Marker{Attr: "data-aread", Value: "link"},
}

// BuiltinFeedReaders returns the readers known without any configuration.
func BuiltinFeedReaders() []FeedReader {
	return []FeedReader{GoRead}
}

type feedReaderFile struct {
	FeedReaders []FeedReader `yaml:"feed_readers"`
}

// LoadFeedReaders reads additional reader definitions from a YAML file:
//
//	feed_readers:
//	  - name: miniflux
//	    hosts: ["reader.example.com", "*.miniflux.example"]
//	    title: {attr: class, value: item-title}
//	    secondary: {attr: data-aread, value: link}
func LoadFeedReaders(path string) ([]FeedReader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed readers: %w", err)
	}

	var f feedReaderFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse feed readers %s: %w", path, err)
	}
	for _, fr := range f.FeedReaders {
		if err := fr.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return f.FeedReaders, nil
}

// NewWithFile returns a resolver for the built-in readers plus those defined
// in path. An empty path yields the built-ins only.
func NewWithFile(path string) (*Resolver, error) {
	readers := BuiltinFeedReaders()
	if path != "" {
		extra, err := LoadFeedReaders(path)
		if err != nil {
			return nil, err
		}
		readers = append(readers, extra...)
	}
	return New(readers...)
}

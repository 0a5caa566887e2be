// Package feed renders RSS 2.0 and Atom 1.0 documents. Renderers take the
// feed metadata and entries plus extra root links contributed by hooks, such
// as WebSub hub discovery.
package feed

import (
	"bytes"
	"io"
	"time"

	"github.com/gorilla/feeds"
)

// Type selects the syndication format.
type Type string

const (
	RSS  Type = "rss"
	Atom Type = "atom"
)

// ParseType maps a feed type indicator to a Type. Only "rss" selects RSS;
// anything else falls back to Atom.
func ParseType(s string) Type {
	if s == string(RSS) {
		return RSS
	}
	return Atom
}

// Metadata describes the feed root.
type Metadata struct {
	Title       string
	Link        string // Site home page, with trailing slash
	FeedURL     string // Where the feed itself is published
	Description string
}

// Entry is one item of the feed.
type Entry struct {
	Title       string
	Link        string
	UniqueID    string
	Description string // HTML
	Categories  []string
	AuthorName  string
	PubDate     time.Time
}

// Link is an extra <link> placed in the feed root.
type Link struct {
	Rel  string
	Href string
}

// Renderer serializes a feed in one format.
type Renderer interface {
	Type() Type
	Render(w io.Writer, meta Metadata, entries []Entry, extra []Link, updated time.Time) error
}

// NewRenderer returns the renderer for t.
func NewRenderer(t Type) Renderer {
	if t == RSS {
		return RSSRenderer{}
	}
	return AtomRenderer{}
}

// Feed accumulates entries during one write and renders them at the end.
type Feed struct {
	Metadata
	Entries []Entry

	renderer Renderer
	hooks    []RootHook
	now      func() time.Time
}

// New creates an empty feed rendered by r. Hooks are consulted in order when
// the feed is written.
func New(r Renderer, meta Metadata, hooks ...RootHook) *Feed {
	return &Feed{
		Metadata: meta,
		renderer: r,
		hooks:    hooks,
		now:      time.Now,
	}
}

// Type reports the format the feed renders to.
func (f *Feed) Type() Type {
	return f.renderer.Type()
}

// AddItem appends an entry.
func (f *Feed) AddItem(e Entry) {
	f.Entries = append(f.Entries, e)
}

// RootLinks collects the extra root links of every hook.
func (f *Feed) RootLinks() []Link {
	var links []Link
	for _, h := range f.hooks {
		links = append(links, h.RootLinks(f.Type(), f.Metadata)...)
	}
	return links
}

// LatestDate returns the newest entry date, or the current time for an empty
// feed.
func (f *Feed) LatestDate() time.Time {
	var latest time.Time
	for _, e := range f.Entries {
		if e.PubDate.After(latest) {
			latest = e.PubDate
		}
	}
	if latest.IsZero() {
		return f.now()
	}
	return latest
}

// Write renders the feed into w.
func (f *Feed) Write(w io.Writer) error {
	return f.renderer.Render(w, f.Metadata, f.Entries, f.RootLinks(), f.LatestDate())
}

// Bytes renders the feed into memory.
func (f *Feed) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toGorilla(meta Metadata, entries []Entry, updated time.Time) *feeds.Feed {
	gf := &feeds.Feed{
		Title:       meta.Title,
		Link:        &feeds.Link{Href: meta.Link},
		Description: meta.Description,
		Updated:     updated,
		Items:       make([]*feeds.Item, 0, len(entries)),
	}
	for _, e := range entries {
		item := &feeds.Item{
			Title:       e.Title,
			Link:        &feeds.Link{Href: e.Link},
			Description: e.Description,
			Id:          e.UniqueID,
			Created:     e.PubDate,
		}
		if e.AuthorName != "" {
			item.Author = &feeds.Author{Name: e.AuthorName}
		}
		gf.Items = append(gf.Items, item)
	}
	return gf
}

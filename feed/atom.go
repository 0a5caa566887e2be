package feed

import (
	"io"
	"time"

	"github.com/gorilla/feeds"
)

// atomDocument replaces the single gorilla root link with a list and gives
// entries proper category elements.
type atomDocument struct {
	*feeds.AtomFeed
	Links   []atomLink   `xml:"link"`
	Entries []*atomEntry `xml:"entry"`
}

type atomLink struct {
	Rel  string `xml:"rel,attr,omitempty"`
	Href string `xml:"href,attr"`
}

type atomEntry struct {
	*feeds.AtomEntry
	Published  string         `xml:"published,omitempty"`
	Categories []atomCategory `xml:"category"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}

// AtomRenderer writes Atom 1.0. The root always links to the site; extra
// links follow it.
type AtomRenderer struct{}

func (AtomRenderer) Type() Type {
	return Atom
}

func (AtomRenderer) Render(w io.Writer, meta Metadata, entries []Entry, extra []Link, updated time.Time) error {
	gf := toGorilla(meta, entries, updated)
	af := (&feeds.Atom{Feed: gf}).AtomFeed()

	doc := atomDocument{
		AtomFeed: af,
		Links:    []atomLink{{Rel: "alternate", Href: meta.Link}},
		Entries:  make([]*atomEntry, 0, len(af.Entries)),
	}
	for _, l := range extra {
		doc.Links = append(doc.Links, atomLink{Rel: l.Rel, Href: l.Href})
	}
	for i, entry := range af.Entries {
		ae := &atomEntry{AtomEntry: entry}
		if pub := entries[i].PubDate; !pub.IsZero() {
			ae.Published = pub.Format(time.RFC3339)
		}
		for _, c := range entries[i].Categories {
			ae.Categories = append(ae.Categories, atomCategory{Term: c})
		}
		doc.Entries = append(doc.Entries, ae)
	}

	return encodeXML(w, doc)
}

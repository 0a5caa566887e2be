package feed

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/gorilla/feeds"
)

const (
	atomNS    = "http://www.w3.org/2005/Atom"
	contentNS = "http://purl.org/rss/1.0/modules/content/"
	dcNS      = "http://purl.org/dc/elements/1.1/"
)

type rssDocument struct {
	XMLName          xml.Name    `xml:"rss"`
	Version          string      `xml:"version,attr"`
	ContentNamespace string      `xml:"xmlns:content,attr"`
	AtomNamespace    string      `xml:"xmlns:atom,attr,omitempty"`
	DCNamespace      string      `xml:"xmlns:dc,attr,omitempty"`
	Channel          *rssChannel `xml:"channel"`
}

// rssChannel extends the gorilla channel with Atom links and multi-category
// items. The fields declared here shadow the embedded ones of the same name.
type rssChannel struct {
	*feeds.RssFeed
	AtomLinks []rssAtomLink `xml:"atom:link"`
	Items     []*rssItem    `xml:"item"`
}

type rssAtomLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

// rssItem moves the author name to dc:creator; RSS author holds an email.
type rssItem struct {
	*feeds.RssItem
	Author     string   `xml:"author,omitempty"`
	Categories []string `xml:"category"`
	Creator    string   `xml:"dc:creator,omitempty"`
}

// RSSRenderer writes RSS 2.0. Extra root links become atom:link elements of
// the channel.
type RSSRenderer struct{}

func (RSSRenderer) Type() Type {
	return RSS
}

func (RSSRenderer) Render(w io.Writer, meta Metadata, entries []Entry, extra []Link, updated time.Time) error {
	gf := toGorilla(meta, entries, updated)
	rf := (&feeds.Rss{Feed: gf}).RssFeed()

	channel := &rssChannel{
		RssFeed: rf,
		Items:   make([]*rssItem, 0, len(rf.Items)),
	}
	hasCreator := false
	for i, item := range rf.Items {
		channel.Items = append(channel.Items, &rssItem{
			RssItem:    item,
			Categories: entries[i].Categories,
			Creator:    entries[i].AuthorName,
		})
		hasCreator = hasCreator || entries[i].AuthorName != ""
	}

	doc := rssDocument{
		Version:          "2.0",
		ContentNamespace: contentNS,
		Channel:          channel,
	}
	if hasCreator {
		doc.DCNamespace = dcNS
	}
	if len(extra) > 0 {
		doc.AtomNamespace = atomNS
		for _, l := range extra {
			channel.AtomLinks = append(channel.AtomLinks, rssAtomLink{Rel: l.Rel, Href: l.Href})
		}
	}

	return encodeXML(w, doc)
}

func encodeXML(w io.Writer, v any) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode feed with %w", err)
	}
	return nil
}

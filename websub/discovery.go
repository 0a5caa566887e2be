// Package websub implements the publisher side of WebSub: finding the hub a
// feed advertises and notifying that hub when the feed changes.
package websub

import (
	"encoding/xml"
	"fmt"
	"io"
)

// discoveryDoc decodes RSS channels and Atom roots alike.
type discoveryDoc struct {
	Link    []discoveryLink `xml:"http://www.w3.org/2005/Atom link"`
	Channel struct {
		Link []discoveryLink `xml:"http://www.w3.org/2005/Atom link"`
	} `xml:"channel"`
}

type discoveryLink struct {
	Rel  string `xml:"rel,attr,omitempty"`
	Href string `xml:"href,attr"`
}

// Discovery lists the Atom-namespaced root links found in a feed.
type Discovery struct {
	Hubs []string
	Self string
}

// Hub returns the first advertised hub, or "" if there is none.
func (d Discovery) Hub() string {
	if len(d.Hubs) == 0 {
		return ""
	}
	return d.Hubs[0]
}

// Discover reads an RSS or Atom document and collects its hub and self links.
func Discover(r io.Reader) (Discovery, error) {
	var doc discoveryDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return Discovery{}, fmt.Errorf("failed to decode feed with %w", err)
	}

	var d Discovery
	for _, l := range append(doc.Link, doc.Channel.Link...) {
		switch l.Rel {
		case "hub":
			d.Hubs = append(d.Hubs, l.Href)
		case "self":
			if d.Self == "" {
				d.Self = l.Href
			}
		}
	}
	return d, nil
}

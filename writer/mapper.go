package writer

import (
	"fmt"
	"html"
	"time"

	"github.com/scipunch/linkfeed/config"
	"github.com/scipunch/linkfeed/content"
	"github.com/scipunch/linkfeed/feed"
)

// ItemMapper turns an article into a feed entry. siteURL has no trailing
// slash.
type ItemMapper interface {
	MapItem(siteURL string, a *content.Article) feed.Entry
}

// LinkBlogMapper points entries of articles with an external link at that
// link and demotes the site's own permalink to a glyph appended to the
// description.
type LinkBlogMapper struct {
	PermalinkGlyph string
	AppendTitle    string         // Added to titles of link entries only
	Location       *time.Location // nil leaves dates untouched
}

// NewLinkBlogMapper reads the link blog settings from conf.
func NewLinkBlogMapper(conf config.Config, loc *time.Location) LinkBlogMapper {
	glyph := conf.PermalinkGlyph
	if glyph == "" {
		glyph = config.DefaultPermalinkGlyph
	}
	return LinkBlogMapper{
		PermalinkGlyph: glyph,
		AppendTitle:    conf.AppendTitle,
		Location:       loc,
	}
}

func (m LinkBlogMapper) MapItem(siteURL string, a *content.Article) feed.Entry {
	title := content.StripTags(a.Title)
	link := siteURL + "/" + a.URL
	appendContent := ""

	if a.HasExternalLink() {
		appendContent = fmt.Sprintf(`<p><a href="%s">%s</a></p>`, html.EscapeString(link), m.PermalinkGlyph)
		title += m.AppendTitle
		link = a.Link
	}

	pubDate := a.LastUpdated()
	if m.Location != nil {
		pubDate = pubDate.In(m.Location)
	}

	var categories []string
	if len(a.Tags) > 0 {
		categories = a.Tags
	}

	return feed.Entry{
		Title:       title,
		Link:        link,
		UniqueID:    feed.TagURI(link, a.Date),
		Description: a.GetContent(siteURL) + appendContent,
		Categories:  categories,
		AuthorName:  a.Author,
		PubDate:     pubDate,
	}
}

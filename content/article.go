// Package content holds the article model the link feed reads and the
// helpers that load articles from disk.
package content

import (
	"strings"
	"time"
)

// StatusPublished is the only status that makes an article eligible for feeds.
const StatusPublished = "published"

// Article is a single post of the site. The feed pipeline reads it and never
// changes it.
type Article struct {
	Status   string
	Title    string
	Slug     string
	URL      string // Relative to the site URL, e.g. "posts/hello.html"
	Date     time.Time
	Modified *time.Time
	Tags     []string
	Author   string
	Link     string // External URL the entry points at, empty for regular posts
	Content  string // Rendered HTML

	SourcePath string
}

// IsPublished compares the status against "published" after lowercasing it.
// No Unicode case folding is applied, so "PUBLIſHED" stays excluded.
func (a *Article) IsPublished() bool {
	return strings.ToLower(a.Status) == StatusPublished
}

// HasExternalLink reports whether the article is a link blog entry.
func (a *Article) HasExternalLink() bool {
	return a.Link != ""
}

// LastUpdated returns Modified when set, Date otherwise.
func (a *Article) LastUpdated() time.Time {
	if a.Modified != nil {
		return *a.Modified
	}
	return a.Date
}

// GetContent returns the rendered content with relative links and image
// sources resolved against siteURL.
func (a *Article) GetContent(siteURL string) string {
	return ResolveURLs(a.Content, siteURL)
}

// Context is the build-wide state shared by generators and writers.
type Context struct {
	Articles     []*Article
	SiteName     string
	SiteSubtitle string
	SiteURL      string
	FeedDomain   string
}

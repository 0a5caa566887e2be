package fetcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/scipunch/linkfeed/content"
)

// FeedSource turns the items of an RSS or Atom feed into articles
type FeedSource struct {
	parser  *gofeed.Parser
	siteURL string
}

// NewFeedSource creates a source for feeds of the site at siteURL. Item links
// under siteURL become the article URL; links elsewhere become external links.
func NewFeedSource(siteURL string) *FeedSource {
	return &FeedSource{
		parser:  gofeed.NewParser(),
		siteURL: strings.TrimSuffix(siteURL, "/") + "/",
	}
}

// Fetch retrieves and parses a feed from the given URL
func (f *FeedSource) Fetch(ctx context.Context, url string) ([]*content.Article, error) {
	feed, err := f.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}
	return f.Articles(feed), nil
}

// Articles converts already parsed feed items
func (f *FeedSource) Articles(feed *gofeed.Feed) []*content.Article {
	articles := make([]*content.Article, 0, len(feed.Items))

	for _, item := range feed.Items {
		article := &content.Article{
			Status:  content.StatusPublished,
			Title:   item.Title,
			Tags:    item.Categories,
			Content: item.Content,
		}
		if article.Content == "" {
			article.Content = item.Description
		}
		if item.Author != nil {
			article.Author = item.Author.Name
		}

		// Parse published date if available
		if item.PublishedParsed != nil {
			article.Date = *item.PublishedParsed
			if item.UpdatedParsed != nil && item.UpdatedParsed.After(article.Date) {
				updated := *item.UpdatedParsed
				article.Modified = &updated
			}
		} else if item.UpdatedParsed != nil {
			article.Date = *item.UpdatedParsed
		}

		f.assignLinks(article, item)
		articles = append(articles, article)
	}

	return articles
}

// assignLinks sets URL to the item's place on the site and Link to the first
// link that points away from it.
func (f *FeedSource) assignLinks(article *content.Article, item *gofeed.Item) {
	links := item.Links
	if len(links) == 0 && item.Link != "" {
		links = []string{item.Link}
	}

	for _, l := range links {
		if rel, ok := strings.CutPrefix(l, f.siteURL); ok {
			if article.URL == "" {
				article.URL = rel
			}
			continue
		}
		if article.Link == "" {
			article.Link = l
		}
	}
}

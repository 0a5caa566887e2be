// Package fetcher reads articles published elsewhere, such as the full feed
// of a site built by another tool.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/scipunch/linkfeed/content"
)

// ArticleFetcher is an interface for fetching articles from different sources
type ArticleFetcher interface {
	Fetch(ctx context.Context, url string) ([]*content.Article, error)
}

// FetchAll fetches every url in order. Sources that fail are reported
// together while the articles of the others are still returned.
func FetchAll(ctx context.Context, f ArticleFetcher, urls []string) ([]*content.Article, error) {
	var articles []*content.Article
	var errs []error

	for _, url := range urls {
		if err := ctx.Err(); err != nil {
			return articles, err
		}
		fetched, err := f.Fetch(ctx, url)
		if err != nil {
			errs = append(errs, fmt.Errorf("'%s' fetch failed with %w", url, err))
			continue
		}
		slog.Info("source fetched", "url", url, "articles", len(fetched))
		articles = append(articles, fetched...)
	}

	return articles, errors.Join(errs...)
}

// Package generator collects published articles and writes the link feeds.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/samber/lo"

	"github.com/scipunch/linkfeed/content"
	"github.com/scipunch/linkfeed/feed"
	"github.com/scipunch/linkfeed/filter"
	"github.com/scipunch/linkfeed/signals"
	"github.com/scipunch/linkfeed/writer"
)

// LinkFeedGenerator keeps the published articles of a build and writes them
// as RSS and/or Atom link feeds.
type LinkFeedGenerator struct {
	env     signals.Env
	filters *filter.FilterPipeline

	Posts []*content.Article
}

// New creates a generator for one build.
func New(env signals.Env) (*LinkFeedGenerator, error) {
	if env.Context == nil {
		return nil, errors.New("link feed generator requires a build context")
	}
	pipeline, err := filter.NewFilterPipeline(env.Config.Filters)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize filters with %w", err)
	}
	return &LinkFeedGenerator{env: env, filters: pipeline}, nil
}

// Factory adapts New to signals.GeneratorFactory.
func Factory(env signals.Env) (signals.Generator, error) {
	return New(env)
}

// GenerateContext keeps the articles whose status is "published", in their
// original order, then applies the configured article filters.
func (g *LinkFeedGenerator) GenerateContext(ctx context.Context) error {
	published := lo.Filter(g.env.Context.Articles, func(a *content.Article, _ int) bool {
		return a.IsPublished()
	})
	g.Posts = append(g.Posts, g.filters.Apply(published, g.env.Config.ArticleFilters)...)
	slog.Debug("link feed context generated",
		"articles", len(g.env.Context.Articles),
		"published", len(published),
		"kept", len(g.Posts))
	return nil
}

// GenerateOutput writes the RSS feed when link_feed_rss is set and the Atom
// feed when link_feed_atom is set.
func (g *LinkFeedGenerator) GenerateOutput(ctx context.Context) error {
	w, err := writer.New(g.env.OutputPath, g.env.Config, writer.WithSignals(g.env.Signals))
	if err != nil {
		return fmt.Errorf("failed to create link feed writer with %w", err)
	}

	targets := []struct {
		path     string
		feedType feed.Type
	}{
		{g.env.Config.LinkFeedRSS, feed.RSS},
		{g.env.Config.LinkFeedAtom, feed.Atom},
	}
	for _, target := range targets {
		if target.path == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := w.WriteFeed(g.Posts, g.env.Context, target.path, target.feedType); err != nil {
			return err
		}
	}
	return nil
}

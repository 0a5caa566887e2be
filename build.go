package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/scipunch/linkfeed/cache"
	"github.com/scipunch/linkfeed/config"
	"github.com/scipunch/linkfeed/content"
	"github.com/scipunch/linkfeed/feed"
	"github.com/scipunch/linkfeed/fetcher"
	"github.com/scipunch/linkfeed/plugin"
	"github.com/scipunch/linkfeed/signals"
	"github.com/scipunch/linkfeed/websub"
)

func buildCmd() *cli.Command {
	return &cli.Command{
		Name:  "build",
		Usage: "Load articles and write the link feeds",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "output directory, overrides output_path",
				EnvVars: []string{"LINKFEED_OUTPUT"},
			},
		},
		Action: func(ctx *cli.Context) error {
			conf, err := readConfig(ctx.String("config"))
			if err != nil {
				return err
			}
			if out := ctx.String("output"); out != "" {
				conf.OutputPath = out
			}

			sigCtx, stop := signal.NotifyContext(ctx.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return build(sigCtx, conf)
		},
	}
}

// changedFeed is a written feed whose bytes differ from the last recorded
// build.
type changedFeed struct {
	path    string
	feedURL string
	data    []byte
}

func build(ctx context.Context, conf config.Config) error {
	loc, err := conf.Location()
	if err != nil {
		return err
	}

	articles, err := loadArticles(ctx, conf, loc)
	if err != nil {
		return err
	}
	slog.Info("articles loaded", "count", len(articles))

	digests, err := openCache(conf)
	if err != nil {
		return err
	}
	defer digests.Close()

	stats, err := digests.Stats()
	if err != nil {
		slog.Warn("failed to get cache stats", "error", err)
	} else {
		slog.Info("cache initialized", "entries", stats.Entries)
	}

	var changed []changedFeed
	var errs []error
	s := signals.New()
	plugin.Register(s)
	s.ConnectFeedWritten(func(path, feedURL string, data []byte, _ *feed.Feed) {
		ok, err := digests.Changed(path, data)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to compare digest of '%s' with %w", path, err))
			return
		}
		if !ok {
			slog.Debug("feed unchanged", "path", path)
			return
		}
		changed = append(changed, changedFeed{path: path, feedURL: feedURL, data: data})
	})

	env := signals.Env{
		Context: &content.Context{
			Articles:     articles,
			SiteName:     conf.SiteName,
			SiteSubtitle: conf.SiteSubtitle,
			SiteURL:      conf.SiteURL,
			FeedDomain:   conf.FeedDomain,
		},
		Config:     conf,
		OutputPath: conf.OutputPath,
		Signals:    s,
	}
	if err := plugin.Run(ctx, env); err != nil {
		return err
	}
	if len(errs) > 0 {
		slog.Warn("feed digests were not compared", "errors", errors.Join(errs...).Error())
	}

	slog.Info("feeds changed", "count", len(changed))
	return publishChanges(ctx, conf, digests, changed)
}

// loadArticles reads the content directory and every configured source.
// Articles that fail to load are logged and skipped.
func loadArticles(ctx context.Context, conf config.Config, loc *time.Location) ([]*content.Article, error) {
	articles, err := content.NewLoader(loc).LoadDir(conf.ContentPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		slog.Warn("content directory not found", "path", conf.ContentPath)
	case err != nil && articles == nil:
		return nil, err
	case err != nil:
		slog.Error("some articles were not loaded", "errors", err.Error())
	}

	if len(conf.Sources) == 0 {
		return articles, nil
	}
	fetched, err := fetcher.FetchAll(ctx, fetcher.NewFeedSource(conf.SiteURL), conf.Sources)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		slog.Error("several sources were not fetched", "errors", err.Error())
	}
	return append(articles, fetched...), nil
}

// publishChanges records the digest of every changed feed. With hub pings
// enabled a digest is recorded only once the hub accepted the notification,
// so a failed ping is retried by the next build.
func publishChanges(ctx context.Context, conf config.Config, digests *cache.Cache, changed []changedFeed) error {
	ping := conf.PingHub && conf.HubEnabled()

	var publisher *websub.Publisher
	if ping {
		publisher = websub.NewPublisher(conf.WebSubHub)
	}

	var errs []error
	for _, c := range changed {
		if ping {
			if err := pingHub(ctx, publisher, conf.WebSubHub, c); err != nil {
				errs = append(errs, err)
				continue
			}
		}
		if err := digests.Record(c.path, c.data); err != nil {
			errs = append(errs, fmt.Errorf("failed to record digest of '%s' with %w", c.path, err))
		}
	}
	return errors.Join(errs...)
}

// pingHub notifies hub about c after checking that the written feed
// advertises that hub.
func pingHub(ctx context.Context, publisher *websub.Publisher, hub string, c changedFeed) error {
	d, err := websub.Discover(bytes.NewReader(c.data))
	if err != nil {
		return fmt.Errorf("failed to read hub links of '%s' with %w", c.path, err)
	}
	if !slices.Contains(d.Hubs, hub) {
		return fmt.Errorf("feed '%s' does not advertise hub '%s'", c.path, hub)
	}

	if err := publisher.Publish(ctx, c.feedURL); err != nil {
		return fmt.Errorf("'%s' hub ping failed with %w", c.feedURL, err)
	}
	slog.Info("hub notified", "hub", hub, "feed", c.feedURL, "path", c.path)
	return nil
}

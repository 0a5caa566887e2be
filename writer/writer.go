// Package writer builds link feeds from articles and writes them below the
// output directory.
package writer

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/scipunch/linkfeed/config"
	"github.com/scipunch/linkfeed/content"
	"github.com/scipunch/linkfeed/feed"
	"github.com/scipunch/linkfeed/signals"
)

// ErrUnsafePath is returned for feed paths that leave the output directory.
var ErrUnsafePath = errors.New("path escapes the output directory")

var errNoContext = errors.New("feed construction requires a context")

// Writer creates RSS or Atom feeds and writes them to disk.
type Writer struct {
	outputPath string
	maxItems   int
	mapper     ItemMapper
	hooks      []feed.RootHook
	signals    *signals.Signals
}

type Option func(*Writer)

// WithSignals sends feed_generated and feed_written to s.
func WithSignals(s *signals.Signals) Option {
	return func(w *Writer) {
		w.signals = s
	}
}

// New creates a writer for outputPath configured from conf.
func New(outputPath string, conf config.Config, opts ...Option) (*Writer, error) {
	loc, err := conf.Location()
	if err != nil {
		return nil, err
	}
	w := &Writer{
		outputPath: outputPath,
		maxItems:   conf.FeedMaxItems,
		mapper:     NewLinkBlogMapper(conf, loc),
		hooks:      []feed.RootHook{feed.HubLinks{Hub: conf.WebSubHub}},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Output describes a written feed.
type Output struct {
	Path    string // File on disk
	FeedURL string
	Data    []byte
	Feed    *feed.Feed
}

// CreateFeed initializes an empty feed for the site in req.Context.
func (w *Writer) CreateFeed(req FeedConstructionRequest) (*feed.Feed, error) {
	if req.Context == nil {
		return nil, errNoContext
	}
	meta := feed.Metadata{
		Title:       content.StripTags(req.Context.SiteName),
		Link:        siteURL(req.Context) + "/",
		FeedURL:     req.FeedURL,
		Description: req.Context.SiteSubtitle,
	}
	return feed.New(feed.NewRenderer(req.FeedType), meta, w.hooks...), nil
}

// AddItem appends the entry for article a to f.
func (w *Writer) AddItem(f *feed.Feed, siteURL string, a *content.Article) {
	f.AddItem(w.mapper.MapItem(siteURL, a))
}

// WriteFeed renders articles as a feedType feed and writes it to path,
// relative to the output directory.
func (w *Writer) WriteFeed(articles []*content.Article, c *content.Context, path string, feedType feed.Type) (*Output, error) {
	if c == nil {
		return nil, errNoContext
	}
	fullPath, err := safeJoin(w.outputPath, path)
	if err != nil {
		return nil, err
	}

	site := siteURL(c)
	feedURL := joinURL(c.FeedDomain, site, path)
	f, err := w.CreateFeed(FeedConstructionRequest{
		FeedType: feedType,
		FeedURL:  feedURL,
		Context:  c,
	})
	if err != nil {
		return nil, err
	}

	maxItems := len(articles)
	if w.maxItems > 0 && w.maxItems < maxItems {
		maxItems = w.maxItems
	}
	for _, a := range articles[:maxItems] {
		w.AddItem(f, site, a)
	}
	w.signals.SendFeedGenerated(c, f)

	data, err := f.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render %s feed '%s' with %w", feedType, path, err)
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create feed directory for '%s' with %w", fullPath, err)
	}
	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write feed '%s' with %w", fullPath, err)
	}
	slog.Info("feed written", "path", fullPath, "type", feedType, "items", len(f.Entries))

	w.signals.SendFeedWritten(fullPath, feedURL, data, f)
	return &Output{Path: fullPath, FeedURL: feedURL, Data: data, Feed: f}, nil
}

func siteURL(c *content.Context) string {
	return strings.TrimSuffix(c.SiteURL, "/")
}

// joinURL prefixes path with the feed domain, or the site URL when no feed
// domain is configured.
func joinURL(feedDomain, site, path string) string {
	base := feedDomain
	if base == "" {
		base = site
	}
	path = filepath.ToSlash(path)
	if base == "" {
		return path
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
}

func safeJoin(base, rel string) (string, error) {
	if rel == "" || filepath.IsAbs(rel) {
		return "", fmt.Errorf("%w: '%s'", ErrUnsafePath, rel)
	}
	full := filepath.Join(base, rel)
	r, err := filepath.Rel(base, full)
	if err != nil || r == "." || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: '%s'", ErrUnsafePath, rel)
	}
	return full, nil
}

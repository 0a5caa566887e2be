package config

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"time"

	"github.com/BurntSushi/toml"
)

const baseCfgPath = "linkfeed/config.toml"

// DefaultPermalinkGlyph labels the anchor back to the site's own article
// when an entry links elsewhere.
const DefaultPermalinkGlyph = "∞"

// Config holds the site settings the link feed reads. It is decoded once and
// then treated as read-only.
type Config struct {
	SiteName     string `toml:"site_name"`
	SiteSubtitle string `toml:"site_subtitle"`
	SiteURL      string `toml:"site_url"`
	FeedDomain   string `toml:"feed_domain"`    // Prefix for feed URLs, empty keeps them relative
	FeedMaxItems int    `toml:"feed_max_items"` // 0 = no limit
	Timezone     string `toml:"timezone"`       // IANA name, e.g. "Europe/Oslo"

	OutputPath  string   `toml:"output_path"`
	ContentPath string   `toml:"content_path"`
	Sources     []string `toml:"sources"` // Upstream RSS/Atom feeds to read articles from

	WebSubHub      string `toml:"websub_hub"`
	PingHub        bool   `toml:"ping_hub"` // Notify the hub after a feed changed
	LinkFeedRSS    string `toml:"link_feed_rss"`
	LinkFeedAtom   string `toml:"link_feed_atom"`
	PermalinkGlyph string `toml:"link_blog_permalink_glyph"`
	AppendTitle    string `toml:"link_blog_append_title"`

	DatabasePath   string            `toml:"database_path"`
	Filters        map[string]Filter `toml:"filters"`         // Named filters that can be referenced below
	ArticleFilters []string          `toml:"article_filters"` // Names of filters applied to published articles
}

// Filter defines rules for dropping articles from the feed
type Filter struct {
	MinLength       int      `toml:"min_length"`       // Minimum character count (0 = no limit)
	MinWords        int      `toml:"min_words"`        // Minimum word count (0 = no limit)
	ExcludePatterns []string `toml:"exclude_patterns"` // Regex patterns to exclude
	ExcludeTags     []string `toml:"exclude_tags"`     // Articles carrying any of these tags are dropped
}

// HubEnabled reports whether WebSub discovery links should be emitted.
func (c Config) HubEnabled() bool {
	return c.WebSubHub != ""
}

// Location resolves Timezone. A nil location means dates are left untouched.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return nil, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone '%s' with %w", c.Timezone, err)
	}
	return loc, nil
}

func Read(path string) (Config, error) {
	conf := Default()
	dat, err := os.ReadFile(path)
	if err != nil {
		return conf, err
	}
	_, err = toml.Decode(string(dat), &conf)
	if err != nil {
		return conf, fmt.Errorf("failed to decode config at %s with %w", path, err)
	}
	return conf, nil
}

func Write(cfgPath string, cfg Config) error {
	blob, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config with %w", err)
	}
	basePath := path.Dir(cfgPath)
	err = os.MkdirAll(basePath, os.ModePerm)
	if err != nil {
		return fmt.Errorf("failed to create base config directory at '%s' with %w", basePath, err)
	}
	err = os.WriteFile(cfgPath, blob, 0644)
	if err != nil {
		return fmt.Errorf("failed to write into config file at '%s' with %w", cfgPath, err)
	}
	slog.Info("config written", "at", cfgPath)
	return nil
}

func Default() Config {
	var dbBase = path.Join(os.Getenv("HOME"), ".local/share/linkfeed")
	return Config{
		SiteName:       "My link blog",
		SiteURL:        "http://localhost:8000",
		OutputPath:     "output",
		ContentPath:    "content",
		PermalinkGlyph: DefaultPermalinkGlyph,
		DatabasePath:   path.Join(dbBase, "data.db"),
	}
}

// Starter is Default with both link feeds enabled. It is the config written
// for new installs; Read never applies its feed paths.
func Starter() Config {
	conf := Default()
	conf.LinkFeedRSS = "feeds/links.rss.xml"
	conf.LinkFeedAtom = "feeds/links.atom.xml"
	return conf
}

func DefaultPath() string {
	var xdgHome = os.Getenv("XDG_CONFIG_HOME")
	if xdgHome != "" {
		return path.Join(xdgHome, baseCfgPath)
	}

	var home = os.Getenv("HOME")
	if home != "" {
		return path.Join(home, ".config", baseCfgPath)
	}

	panic("unclear where to search for the config fie")
}

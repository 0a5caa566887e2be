package content

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

const frontMatterDelim = "+++"

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

type frontMatter struct {
	Title    string   `toml:"title"`
	Slug     string   `toml:"slug"`
	Date     string   `toml:"date"`
	Modified string   `toml:"modified"`
	Status   string   `toml:"status"`
	Tags     []string `toml:"tags"`
	Author   string   `toml:"author"`
	Link     string   `toml:"link"`
}

// Loader reads markdown articles with a TOML front matter block:
//
//	+++
//	title = "Go 1.24 is out"
//	date = "2025-02-11 18:00"
//	link = "https://go.dev/blog/go1.24"
//	tags = ["go"]
//	+++
//	Body in markdown.
type Loader struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	loc    *time.Location
}

// NewLoader creates a loader. Dates without an offset are read in loc, or in
// UTC when loc is nil.
func NewLoader(loc *time.Location) *Loader {
	if loc == nil {
		loc = time.UTC
	}
	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(false)
	policy.AllowAttrs("class").OnElements("code", "span", "pre")
	return &Loader{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Footnote, extension.Typographer),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		policy: policy,
		loc:    loc,
	}
}

// LoadDir parses every *.md file below root. Articles come back newest first.
// Files that fail to parse are reported together after the walk.
func (l *Loader) LoadDir(root string) ([]*Article, error) {
	var articles []*Article
	var errs []error

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".md" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to read '%s' with %w", path, err))
			return nil
		}
		article, err := l.Parse(path, data)
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		articles = append(articles, article)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk content directory '%s' with %w", root, err)
	}

	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].Date.After(articles[j].Date)
	})
	slog.Debug("articles loaded", "root", root, "count", len(articles))

	return articles, errors.Join(errs...)
}

// Parse builds an article from the raw file contents found at path.
func (l *Loader) Parse(path string, data []byte) (*Article, error) {
	meta, body, err := splitFrontMatter(data)
	if err != nil {
		return nil, fmt.Errorf("'%s': %w", path, err)
	}

	var fm frontMatter
	if _, err := toml.Decode(string(meta), &fm); err != nil {
		return nil, fmt.Errorf("failed to decode front matter of '%s' with %w", path, err)
	}
	if fm.Title == "" {
		return nil, fmt.Errorf("'%s': front matter has no title", path)
	}

	date, err := l.parseDate(fm.Date)
	if err != nil {
		return nil, fmt.Errorf("'%s': invalid date with %w", path, err)
	}
	var modified *time.Time
	if fm.Modified != "" {
		m, err := l.parseDate(fm.Modified)
		if err != nil {
			return nil, fmt.Errorf("'%s': invalid modified date with %w", path, err)
		}
		modified = &m
	}

	var buf bytes.Buffer
	if err := l.md.Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("failed to render markdown of '%s' with %w", path, err)
	}

	slug := fm.Slug
	if slug == "" {
		slug = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	status := fm.Status
	if status == "" {
		status = StatusPublished
	}

	return &Article{
		Status:     status,
		Title:      fm.Title,
		Slug:       slug,
		URL:        slug + ".html",
		Date:       date,
		Modified:   modified,
		Tags:       fm.Tags,
		Author:     fm.Author,
		Link:       fm.Link,
		Content:    l.policy.Sanitize(buf.String()),
		SourcePath: path,
	}, nil
}

func (l *Loader) parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("date is required")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, l.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date format '%s'", s)
}

func splitFrontMatter(data []byte) (meta, body []byte, err error) {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	text := string(bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n")))
	if !strings.HasPrefix(text, frontMatterDelim+"\n") {
		return nil, nil, errors.New("missing front matter")
	}
	// rest keeps the newline after the opening delimiter, so an empty block
	// still has "\n+++" to find.
	rest := text[len(frontMatterDelim):]
	end := strings.Index(rest, "\n"+frontMatterDelim)
	if end < 0 {
		return nil, nil, errors.New("unterminated front matter")
	}
	meta = []byte(strings.TrimPrefix(rest[:end], "\n"))
	body = []byte(strings.TrimPrefix(rest[end+len(frontMatterDelim)+1:], "\n"))
	return meta, body, nil
}

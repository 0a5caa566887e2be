package generator

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scipunch/linkfeed/config"
	"github.com/scipunch/linkfeed/content"
	"github.com/scipunch/linkfeed/signals"
)

func article(title, status string) *content.Article {
	return &content.Article{
		Status: status,
		Title:  title,
		URL:    title + ".html",
		Date:   time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC),
	}
}

func testEnv(t *testing.T, conf config.Config, articles ...*content.Article) signals.Env {
	t.Helper()
	return signals.Env{
		Context: &content.Context{
			Articles: articles,
			SiteName: "Example",
			SiteURL:  "https://example.org",
		},
		Config:     conf,
		OutputPath: t.TempDir(),
	}
}

func TestGenerateContext_PublishedOnly(t *testing.T) {
	articles := []*content.Article{
		article("a", "published"),
		article("b", "draft"),
		article("c", "Published"),
		article("d", "hidden"),
		article("e", "PUBLISHED"),
		article("f", ""),
	}
	g, err := New(testEnv(t, config.Default(), articles...))
	require.NoError(t, err)

	require.NoError(t, g.GenerateContext(context.Background()))

	require.Len(t, g.Posts, 3)
	assert.Same(t, articles[0], g.Posts[0])
	assert.Same(t, articles[2], g.Posts[1])
	assert.Same(t, articles[4], g.Posts[2])
}

func TestGenerateContext_ArticleFilters(t *testing.T) {
	conf := config.Default()
	conf.Filters = map[string]config.Filter{"no-drafts-tag": {ExcludeTags: []string{"wip"}}}
	conf.ArticleFilters = []string{"no-drafts-tag"}

	wip := article("wip", "published")
	wip.Tags = []string{"wip"}
	g, err := New(testEnv(t, conf, article("a", "published"), wip))
	require.NoError(t, err)

	require.NoError(t, g.GenerateContext(context.Background()))
	require.Len(t, g.Posts, 1)
	assert.Equal(t, "a", g.Posts[0].Title)
}

func TestGenerateOutput(t *testing.T) {
	tests := []struct {
		name      string
		rss       string
		atom      string
		wantFiles []string
	}{
		{"both", "links.rss", "links.atom", []string{"links.atom", "links.rss"}},
		{"rss only", "feeds/links.rss", "", []string{"feeds/links.rss"}},
		{"atom only", "", "links.atom", []string{"links.atom"}},
		{"neither", "", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := config.Default()
			conf.LinkFeedRSS = tt.rss
			conf.LinkFeedAtom = tt.atom
			env := testEnv(t, conf, article("a", "published"))

			g, err := New(env)
			require.NoError(t, err)
			require.NoError(t, g.GenerateContext(context.Background()))
			require.NoError(t, g.GenerateOutput(context.Background()))

			assert.Equal(t, tt.wantFiles, listFiles(t, env.OutputPath))
		})
	}
}

func TestNew_RequiresContext(t *testing.T) {
	_, err := New(signals.Env{Config: config.Default()})
	assert.Error(t, err)
}

func listFiles(t *testing.T, root string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	require.NoError(t, err)
	return files
}

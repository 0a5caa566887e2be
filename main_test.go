package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scipunch/linkfeed/config"
)

const linkPost = `+++
title = "A good read"
date = "2024-03-01T09:00:00Z"
link = "https://example.com/read"
+++
Worth your time.
`

const draftPost = `+++
title = "Not yet"
date = "2024-03-02T09:00:00Z"
status = "draft"
+++
Later.
`

func writeSite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	contentDir := filepath.Join(dir, "content")
	require.NoError(t, os.MkdirAll(contentDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(contentDir, "good-read.md"), []byte(linkPost), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(contentDir, "not-yet.md"), []byte(draftPost), 0644))

	conf := config.Starter()
	conf.SiteURL = "https://blog.example.org"
	conf.ContentPath = contentDir
	conf.OutputPath = filepath.Join(dir, "output")
	conf.DatabasePath = filepath.Join(dir, "cache.db")
	conf.WebSubHub = "https://hub.example.org/"

	cfgPath := filepath.Join(dir, "config.toml")
	require.NoError(t, config.Write(cfgPath, conf))
	return cfgPath
}

func TestBuildCommand(t *testing.T) {
	cfgPath := writeSite(t)
	outDir := filepath.Join(filepath.Dir(cfgPath), "public")

	err := app().Run([]string{"linkfeed", "build", "--config", cfgPath, "--output", outDir})
	require.NoError(t, err)

	rss, err := os.ReadFile(filepath.Join(outDir, "feeds", "links.rss.xml"))
	require.NoError(t, err)
	parsed, err := gofeed.NewParser().ParseString(string(rss))
	require.NoError(t, err)
	require.Len(t, parsed.Items, 1)
	assert.Equal(t, "https://example.com/read", parsed.Items[0].Link)
	assert.True(t, strings.Contains(parsed.Items[0].Description, "https://blog.example.org/good-read.html"))
	assert.Contains(t, string(rss), `rel="hub"`)

	_, err = os.Stat(filepath.Join(outDir, "feeds", "links.atom.xml"))
	assert.NoError(t, err)
}

func TestBuildCommandMissingConfig(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")
	err := app().Run([]string{"linkfeed", "build", "--config", missing})
	assert.Error(t, err)
}

func TestInitCommand(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "linkfeed", "config.toml")

	require.NoError(t, app().Run([]string{"linkfeed", "init", "--config", cfgPath}))
	conf, err := config.Read(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, config.Starter().LinkFeedRSS, conf.LinkFeedRSS)

	assert.Error(t, app().Run([]string{"linkfeed", "init", "--config", cfgPath}))
	assert.NoError(t, app().Run([]string{"linkfeed", "init", "--config", cfgPath, "--force"}))
}

func TestCleanCommand(t *testing.T) {
	cfgPath := writeSite(t)
	require.NoError(t, app().Run([]string{"linkfeed", "build", "--config", cfgPath}))
	require.NoError(t, app().Run([]string{"linkfeed", "clean", "--config", cfgPath}))
}

func TestBuildCommand_NoFeedPaths(t *testing.T) {
	cfgPath := writeSite(t)
	dir := filepath.Dir(cfgPath)
	outDir := filepath.Join(dir, "public")

	raw := fmt.Sprintf(`
site_name = "Links"
site_url = "https://blog.example.org"
content_path = %q
output_path = %q
database_path = %q
`, filepath.Join(dir, "content"), outDir, filepath.Join(dir, "cache.db"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(raw), 0644))

	require.NoError(t, app().Run([]string{"linkfeed", "build", "--config", cfgPath}))

	_, err := os.Stat(outDir)
	assert.True(t, errors.Is(err, os.ErrNotExist), "no feed should be written without link_feed_rss or link_feed_atom")
}

func TestBuild_RetriesHubPingAfterFailure(t *testing.T) {
	var status atomic.Int32
	var hits atomic.Int32
	status.Store(http.StatusBadRequest)
	hub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(int(status.Load()))
	}))
	defer hub.Close()

	conf, err := config.Read(writeSite(t))
	require.NoError(t, err)
	conf.LinkFeedAtom = ""
	conf.WebSubHub = hub.URL
	conf.PingHub = true
	ctx := context.Background()

	assert.Error(t, build(ctx, conf))
	assert.Equal(t, int32(1), hits.Load())

	status.Store(http.StatusNoContent)
	require.NoError(t, build(ctx, conf))
	assert.Equal(t, int32(2), hits.Load(), "the unchanged feed is published again after the failed ping")

	require.NoError(t, build(ctx, conf))
	assert.Equal(t, int32(2), hits.Load(), "a recorded feed is not published twice")
}

func TestBuild_RecordsDigestWithoutPing(t *testing.T) {
	var hits atomic.Int32
	hub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer hub.Close()

	conf, err := config.Read(writeSite(t))
	require.NoError(t, err)
	conf.WebSubHub = hub.URL
	ctx := context.Background()

	require.NoError(t, build(ctx, conf))
	conf.PingHub = true
	require.NoError(t, build(ctx, conf))
	assert.Equal(t, int32(0), hits.Load())
}

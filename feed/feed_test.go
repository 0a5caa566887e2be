package feed

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scipunch/linkfeed/websub"
)

const (
	testHub     = "https://hub.example.org/"
	testFeedURL = "https://example.org/feeds/links.xml"
)

var testMeta = Metadata{
	Title:       "Example links",
	Link:        "https://example.org/",
	FeedURL:     testFeedURL,
	Description: "Things worth reading",
}

func testEntries() []Entry {
	return []Entry{
		{
			Title:       "First",
			Link:        "https://go.dev/blog",
			UniqueID:    "tag:go.dev,2024-01-02:/blog/",
			Description: `<p>Hello</p><p><a href="https://example.org/first.html">∞</a></p>`,
			Categories:  []string{"go", "links"},
			AuthorName:  "Ada",
			PubDate:     time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC),
		},
		{
			Title:       "Second",
			Link:        "https://example.org/second.html",
			UniqueID:    "tag:example.org,2024-01-01:/second.html/",
			Description: "<p>Own post</p>",
			PubDate:     time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		},
	}
}

func render(t *testing.T, typ Type, hooks ...RootHook) string {
	t.Helper()
	f := New(NewRenderer(typ), testMeta, hooks...)
	for _, e := range testEntries() {
		f.AddItem(e)
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.String()
}

func TestParseType(t *testing.T) {
	assert.Equal(t, RSS, ParseType("rss"))
	assert.Equal(t, Atom, ParseType("atom"))
	assert.Equal(t, Atom, ParseType(""))
	assert.Equal(t, Atom, ParseType("RSS"))
}

func TestHubLinks(t *testing.T) {
	tests := []struct {
		name string
		hub  string
		typ  Type
		want []Link
	}{
		{"rss without hub", "", RSS, nil},
		{"atom without hub", "", Atom, nil},
		{"rss with hub", testHub, RSS, []Link{{Rel: "self", Href: testFeedURL}, {Rel: "hub", Href: testHub}}},
		{"atom with hub", testHub, Atom, []Link{{Rel: "hub", Href: testHub}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HubLinks{Hub: tt.hub}.RootLinks(tt.typ, testMeta))
		})
	}
}

func TestRender_WebSubLinks(t *testing.T) {
	tests := []struct {
		name     string
		typ      Type
		hub      string
		wantHubs []string
		wantSelf string
	}{
		{"rss without hub", RSS, "", nil, ""},
		{"atom without hub", Atom, "", nil, ""},
		{"rss with hub", RSS, testHub, []string{testHub}, testFeedURL},
		{"atom with hub", Atom, testHub, []string{testHub}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := render(t, tt.typ, HubLinks{Hub: tt.hub})

			d, err := websub.Discover(strings.NewReader(out))
			require.NoError(t, err)
			assert.Equal(t, tt.wantHubs, d.Hubs)
			assert.Equal(t, tt.wantSelf, d.Self)
		})
	}
}

func TestRender_RSS(t *testing.T) {
	out := render(t, RSS)
	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.NotContains(t, out, "xmlns:atom")

	parsed, err := gofeed.NewParser().ParseString(out)
	require.NoError(t, err)

	assert.Equal(t, "rss", parsed.FeedType)
	assert.Equal(t, "Example links", parsed.Title)
	assert.Equal(t, "https://example.org/", parsed.Link)
	assert.Equal(t, "Things worth reading", parsed.Description)
	require.Len(t, parsed.Items, 2)

	first := parsed.Items[0]
	assert.Equal(t, "First", first.Title)
	assert.Equal(t, "https://go.dev/blog", first.Link)
	assert.Equal(t, "tag:go.dev,2024-01-02:/blog/", first.GUID)
	assert.Equal(t, []string{"go", "links"}, first.Categories)
	assert.Contains(t, first.Description, `<a href="https://example.org/first.html">∞</a>`)
	require.NotNil(t, first.PublishedParsed)
	assert.True(t, first.PublishedParsed.Equal(time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)))

	assert.Empty(t, parsed.Items[1].Categories)
}

func TestRender_RSSAuthorAsCreator(t *testing.T) {
	out := render(t, RSS)
	assert.Contains(t, out, `xmlns:dc="http://purl.org/dc/elements/1.1/"`)
	assert.Contains(t, out, "<dc:creator>Ada</dc:creator>")
	assert.NotContains(t, out, "<author>")

	parsed, err := gofeed.NewParser().ParseString(out)
	require.NoError(t, err)
	require.NotEmpty(t, parsed.Items[0].Authors)
	assert.Equal(t, "Ada", parsed.Items[0].Authors[0].Name)
	assert.Empty(t, parsed.Items[1].Authors)
}

func TestRender_RSSWithoutAuthors(t *testing.T) {
	f := New(RSSRenderer{}, testMeta)
	f.AddItem(testEntries()[1])
	data, err := f.Bytes()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "xmlns:dc")
	assert.NotContains(t, string(data), "dc:creator")
}

func TestRender_Atom(t *testing.T) {
	out := render(t, Atom)

	parsed, err := gofeed.NewParser().ParseString(out)
	require.NoError(t, err)

	assert.Equal(t, "atom", parsed.FeedType)
	assert.Equal(t, "Example links", parsed.Title)
	assert.Equal(t, "https://example.org/", parsed.Link)
	require.Len(t, parsed.Items, 2)

	first := parsed.Items[0]
	assert.Equal(t, "https://go.dev/blog", first.Link)
	assert.Equal(t, "tag:go.dev,2024-01-02:/blog/", first.GUID)
	assert.Equal(t, []string{"go", "links"}, first.Categories)
	require.NotEmpty(t, first.Authors)
	assert.Equal(t, "Ada", first.Authors[0].Name)
	assert.Empty(t, parsed.Items[1].Authors)

	assert.Contains(t, out, "<published>2024-01-02T10:00:00Z</published>")
	require.NotNil(t, first.PublishedParsed)
	assert.True(t, first.PublishedParsed.Equal(time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)))
}

func TestFeed_LatestDate(t *testing.T) {
	f := New(RSSRenderer{}, testMeta)
	fixed := time.Date(2020, 5, 5, 0, 0, 0, 0, time.UTC)
	f.now = func() time.Time { return fixed }
	assert.Equal(t, fixed, f.LatestDate())

	for _, e := range testEntries() {
		f.AddItem(e)
	}
	assert.Equal(t, time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), f.LatestDate())
}

func TestFeed_HooksRunInOrder(t *testing.T) {
	extra := RootHookFunc(func(t Type, meta Metadata) []Link {
		return []Link{{Rel: "related", Href: meta.Link + "about"}}
	})
	f := New(AtomRenderer{}, testMeta, HubLinks{Hub: testHub}, extra)

	assert.Equal(t, []Link{
		{Rel: "hub", Href: testHub},
		{Rel: "related", Href: "https://example.org/about"},
	}, f.RootLinks())
}

func TestTagURI(t *testing.T) {
	date := time.Date(2024, 1, 2, 23, 59, 0, 0, time.UTC)

	assert.Equal(t, "tag:example.com,2024-01-02:/x/", TagURI("https://example.com/x", date))
	assert.Equal(t, "tag:example.com,2024-01-02:/a/b.html/frag", TagURI("https://example.com:8080/a/b.html#frag", date))
	assert.Equal(t, "tag:example.com:/x/", TagURI("https://example.com/x", time.Time{}))
}

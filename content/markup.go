package content

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StripTags removes markup from s, unescapes entities and collapses runs of
// whitespace into single spaces.
func StripTags(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

var linkAttrs = []string{"href", "src"}

// ResolveURLs rewrites relative href and src attributes of an HTML fragment
// into absolute URLs under siteURL. The fragment is returned as is when
// nothing needed rewriting.
func ResolveURLs(fragment, siteURL string) string {
	if fragment == "" || siteURL == "" {
		return fragment
	}
	base, err := url.Parse(strings.TrimSuffix(siteURL, "/") + "/")
	if err != nil {
		return fragment
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}

	changed := false
	doc.Find("[href], [src]").Each(func(_ int, s *goquery.Selection) {
		for _, attr := range linkAttrs {
			v, ok := s.Attr(attr)
			if !ok || v == "" || strings.HasPrefix(v, "#") {
				continue
			}
			ref, err := url.Parse(v)
			if err != nil || ref.IsAbs() || ref.Host != "" {
				continue
			}
			s.SetAttr(attr, base.ResolveReference(ref).String())
			changed = true
		}
	})
	if !changed {
		return fragment
	}

	out, err := doc.Find("body").Html()
	if err != nil {
		return fragment
	}
	return out
}

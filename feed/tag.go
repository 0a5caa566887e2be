package feed

import (
	"fmt"
	"net/url"
	"time"
)

// TagURI builds a tag URI (RFC 4151) for an entry published at link on date,
// e.g. "tag:example.com,2024-01-02:/posts/hello.html/".
func TagURI(link string, date time.Time) string {
	var host, path, fragment string
	if u, err := url.Parse(link); err == nil {
		host, path, fragment = u.Hostname(), u.Path, u.Fragment
	}
	d := ""
	if !date.IsZero() {
		d = "," + date.Format("2006-01-02")
	}
	return fmt.Sprintf("tag:%s%s:%s/%s", host, d, path, fragment)
}

package writer

import (
	"errors"
	"fmt"

	"github.com/scipunch/linkfeed/content"
	"github.com/scipunch/linkfeed/feed"
)

// ErrSignatureChanged is returned when feed construction is requested with a
// calling convention this writer does not know.
var ErrSignatureChanged = errors.New("the feed construction signature has changed, check the current host source for the updated signature")

// FeedConstructionRequest carries everything CreateFeed needs.
type FeedConstructionRequest struct {
	FeedType feed.Type
	// FeedTitle is accepted for compatibility with hosts that pass one. The
	// link feed is always titled after the site.
	FeedTitle string
	FeedURL   string
	Context   *content.Context
}

// NewFeedConstructionRequest builds a request from the legacy positional
// conventions: (feedType, context) or (feedType, feedTitle, context). The
// feed type may be a string or a feed.Type. Any other argument count returns
// ErrSignatureChanged.
func NewFeedConstructionRequest(args ...any) (FeedConstructionRequest, error) {
	var req FeedConstructionRequest
	var rawType, rawCtx any

	switch len(args) {
	case 2:
		rawType, rawCtx = args[0], args[1]
	case 3:
		rawType, rawCtx = args[0], args[2]
		title, ok := args[1].(string)
		if !ok {
			return req, fmt.Errorf("feed title must be a string, got %T", args[1])
		}
		req.FeedTitle = title
	default:
		return req, fmt.Errorf("%w: got %d arguments", ErrSignatureChanged, len(args))
	}

	switch t := rawType.(type) {
	case feed.Type:
		req.FeedType = t
	case string:
		req.FeedType = feed.ParseType(t)
	default:
		return req, fmt.Errorf("feed type must be a string, got %T", rawType)
	}

	ctx, ok := rawCtx.(*content.Context)
	if !ok {
		return req, fmt.Errorf("context must be *content.Context, got %T", rawCtx)
	}
	req.Context = ctx

	return req, nil
}

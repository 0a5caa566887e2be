// Package signals carries the extension points of a build: generator
// discovery and notifications around feed output.
package signals

import (
	"context"

	"github.com/scipunch/linkfeed/config"
	"github.com/scipunch/linkfeed/content"
	"github.com/scipunch/linkfeed/feed"
)

// Env is handed to every generator the build creates.
type Env struct {
	Context    *content.Context
	Config     config.Config
	OutputPath string
	Signals    *Signals
}

// Generator runs in two phases: collect from the build context, then write.
type Generator interface {
	GenerateContext(ctx context.Context) error
	GenerateOutput(ctx context.Context) error
}

// GeneratorFactory creates a generator for one build.
type GeneratorFactory func(env Env) (Generator, error)

// GetGeneratorsFunc answers the get_generators signal.
type GetGeneratorsFunc func() GeneratorFactory

// FeedGeneratedFunc observes a feed after its items were added.
type FeedGeneratedFunc func(c *content.Context, f *feed.Feed)

// FeedWrittenFunc observes a feed after it was written to path.
type FeedWrittenFunc func(path, feedURL string, data []byte, f *feed.Feed)

// Signals holds the receivers connected for one build. A nil *Signals is
// valid and drops every notification.
type Signals struct {
	getGenerators []GetGeneratorsFunc
	feedGenerated []FeedGeneratedFunc
	feedWritten   []FeedWrittenFunc
}

func New() *Signals {
	return &Signals{}
}

func (s *Signals) ConnectGetGenerators(fn GetGeneratorsFunc) {
	s.getGenerators = append(s.getGenerators, fn)
}

func (s *Signals) ConnectFeedGenerated(fn FeedGeneratedFunc) {
	s.feedGenerated = append(s.feedGenerated, fn)
}

func (s *Signals) ConnectFeedWritten(fn FeedWrittenFunc) {
	s.feedWritten = append(s.feedWritten, fn)
}

// Generators sends get_generators and collects the non-nil answers in
// connection order.
func (s *Signals) Generators() []GeneratorFactory {
	if s == nil {
		return nil
	}
	var factories []GeneratorFactory
	for _, fn := range s.getGenerators {
		if f := fn(); f != nil {
			factories = append(factories, f)
		}
	}
	return factories
}

func (s *Signals) SendFeedGenerated(c *content.Context, f *feed.Feed) {
	if s == nil {
		return
	}
	for _, fn := range s.feedGenerated {
		fn(c, f)
	}
}

func (s *Signals) SendFeedWritten(path, feedURL string, data []byte, f *feed.Feed) {
	if s == nil {
		return
	}
	for _, fn := range s.feedWritten {
		fn(path, feedURL, data, f)
	}
}

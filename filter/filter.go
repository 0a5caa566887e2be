package filter

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"github.com/samber/lo"

	"github.com/scipunch/linkfeed/config"
	"github.com/scipunch/linkfeed/content"
)

// FilterPipeline applies a series of named filters to articles
type FilterPipeline struct {
	filters map[string]*CompiledFilter
}

// CompiledFilter contains compiled regex patterns for efficient matching
type CompiledFilter struct {
	config          config.Filter
	excludePatterns []*regexp.Regexp
	excludeTags     map[string]struct{}
}

// NewFilterPipeline creates a new filter pipeline from config
func NewFilterPipeline(filtersConfig map[string]config.Filter) (*FilterPipeline, error) {
	compiled := make(map[string]*CompiledFilter)

	for name, filterCfg := range filtersConfig {
		cf := &CompiledFilter{
			config:          filterCfg,
			excludePatterns: make([]*regexp.Regexp, 0, len(filterCfg.ExcludePatterns)),
			excludeTags: lo.SliceToMap(filterCfg.ExcludeTags, func(tag string) (string, struct{}) {
				return strings.ToLower(tag), struct{}{}
			}),
		}

		for _, pattern := range filterCfg.ExcludePatterns {
			re, err := regexp.Compile(pattern)
			if err != nil {
				slog.Warn("invalid regex pattern in filter", "filter", name, "pattern", pattern, "error", err)
				continue
			}
			cf.excludePatterns = append(cf.excludePatterns, re)
		}

		compiled[name] = cf
	}

	return &FilterPipeline{filters: compiled}, nil
}

// ShouldInclude returns true if the article passes all filters in the pipeline
// filterNames is a list of filter names to apply in order
func (fp *FilterPipeline) ShouldInclude(article *content.Article, filterNames []string) (bool, string) {
	if len(filterNames) == 0 {
		return true, ""
	}

	for _, filterName := range filterNames {
		filter, exists := fp.filters[filterName]
		if !exists {
			slog.Warn("filter not found, skipping", "filter_name", filterName)
			continue
		}

		if shouldInclude, reason := fp.applyFilter(article, filter, filterName); !shouldInclude {
			return false, reason
		}
	}

	return true, ""
}

// Apply keeps the articles that pass filterNames, preserving order.
func (fp *FilterPipeline) Apply(articles []*content.Article, filterNames []string) []*content.Article {
	if len(filterNames) == 0 {
		return articles
	}
	return lo.Filter(articles, func(a *content.Article, _ int) bool {
		include, reason := fp.ShouldInclude(a, filterNames)
		if !include {
			slog.Debug("article filtered out", "title", a.Title, "reason", reason, "url", a.URL)
		}
		return include
	})
}

// applyFilter applies a single filter to an article
func (fp *FilterPipeline) applyFilter(article *content.Article, filter *CompiledFilter, filterName string) (bool, string) {
	text := content.StripTags(article.Title) + " " + content.StripTags(article.Content)

	// 1. Check minimum length
	if filter.config.MinLength > 0 && len([]rune(text)) < filter.config.MinLength {
		return false, filterName + ":min_length"
	}

	// 2. Check minimum word count
	if filter.config.MinWords > 0 {
		wordCount := countWords(text)
		if wordCount < filter.config.MinWords {
			return false, filterName + ":min_words"
		}
	}

	// 3. Check exclude patterns
	for _, pattern := range filter.excludePatterns {
		if pattern.MatchString(text) {
			return false, filterName + ":exclude_pattern[" + pattern.String() + "]"
		}
	}

	// 4. Check tags
	for _, tag := range article.Tags {
		if _, excluded := filter.excludeTags[strings.ToLower(tag)]; excluded {
			return false, filterName + ":exclude_tag[" + tag + "]"
		}
	}

	return true, ""
}

// countWords counts the number of words in text
func countWords(text string) int {
	words := 0
	inWord := false

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			if !inWord {
				words++
				inWord = true
			}
		} else {
			inWord = false
		}
	}

	return words
}

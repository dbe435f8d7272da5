package topics

import (
	"context"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/soumilsri/LinkedInAutoPoster/internal/config"
)

// RSSFetcher parses a fixed list of feeds, taking the freshest couple of
// entries from each.
type RSSFetcher struct {
	parser *gofeed.Parser
	feeds  []config.Feed
}

func NewRSSFetcher(feeds []config.Feed) *RSSFetcher {
	return &RSSFetcher{parser: gofeed.NewParser(), feeds: feeds}
}

func (f *RSSFetcher) Fetch(ctx context.Context, limit int) ([]Topic, error) {
	var (
		topics  []Topic
		lastErr error
	)
	now := time.Now()

	feeds := f.feeds
	if len(feeds) > limit {
		feeds = feeds[:limit]
	}

	for _, src := range feeds {
		feed, err := f.parser.ParseURLWithContext(src.URL, ctx)
		if err != nil {
			lastErr = fmt.Errorf("fetching %s: %w", src.Name, err)
			continue
		}

		for i, item := range feed.Items {
			if i >= 2 {
				break
			}
			discovered := now
			if item.PublishedParsed != nil {
				discovered = *item.PublishedParsed
			}
			topics = append(topics, Topic{
				Title:        item.Title,
				Description:  truncate(stripHTML(item.Description), 300),
				URL:          item.Link,
				Source:       SourceRSS,
				DiscoveredAt: discovered,
			})
		}
	}

	if len(topics) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return topics, nil
}

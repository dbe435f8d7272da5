package topics

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/soumilsri/LinkedInAutoPoster/internal/config"
)

// Source tags a topic with its provenance.
type Source string

const (
	SourceReddit Source = "reddit"
	SourceNews   Source = "news"
	SourceRSS    Source = "rss"
	SourceManual Source = "manual"
)

// Topic is a single trending item. Immutable once produced.
type Topic struct {
	Title        string
	Description  string
	URL          string
	Source       Source
	Engagement   int // upvotes or similar, 0 when the source has none
	DiscoveredAt time.Time
}

// Manual wraps an operator-supplied subject as a Topic.
func Manual(title string) Topic {
	return Topic{Title: title, Source: SourceManual, DiscoveredAt: time.Now()}
}

// Fetcher pulls topics from one source. Best effort: it may return fewer
// than asked for, or none.
type Fetcher interface {
	Fetch(ctx context.Context, limit int) ([]Topic, error)
}

// Finder fans out to the configured sources and merges the results.
type Finder struct {
	fetchers []Fetcher
	limit    int
}

func NewFinder(cfg *config.TrendingConfig) *Finder {
	var fetchers []Fetcher
	if cfg.SourceEnabled("reddit") {
		fetchers = append(fetchers, NewRedditFetcher(cfg.Subreddits, cfg.Agent()))
	}
	if cfg.SourceEnabled("news") && cfg.NewsKey() != "" {
		fetchers = append(fetchers, NewNewsFetcher(cfg.NewsKey()))
	}
	// RSS doubles as the fallback when news has no API key, exactly like
	// the "rss" source itself.
	if cfg.SourceEnabled("rss") || (cfg.SourceEnabled("news") && cfg.NewsKey() == "") {
		fetchers = append(fetchers, NewRSSFetcher(cfg.Feeds))
	}
	return &Finder{fetchers: fetchers, limit: cfg.Limit()}
}

// FetchResult carries merged topics plus per-source errors; a source failing
// never fails the whole fetch.
type FetchResult struct {
	Topics []Topic
	Errors []error
}

// Fetch queries every source concurrently, dedupes, ranks, and caps at the
// configured limit.
func (f *Finder) Fetch(ctx context.Context) FetchResult {
	var (
		mu     sync.Mutex
		result FetchResult
		wg     sync.WaitGroup
	)

	for _, fetcher := range f.fetchers {
		wg.Add(1)
		go func(src Fetcher) {
			defer wg.Done()
			topics, err := src.Fetch(ctx, f.limit)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors = append(result.Errors, err)
				return
			}
			result.Topics = append(result.Topics, topics...)
		}(fetcher)
	}

	wg.Wait()
	result.Topics = rankTopics(dedupe(result.Topics), f.limit)
	return result
}

// dedupe drops topics with duplicate or too-short titles, keeping first wins.
func dedupe(in []Topic) []Topic {
	seen := make(map[string]bool, len(in))
	var out []Topic
	for _, t := range in {
		key := strings.ToLower(strings.TrimSpace(t.Title))
		if len(key) <= 10 || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

func rankTopics(in []Topic, limit int) []Topic {
	sort.SliceStable(in, func(i, j int) bool {
		return Score(in[i]) > Score(in[j])
	})
	if limit > 0 && len(in) > limit {
		in = in[:limit]
	}
	return in
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func stripHTML(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			// Tags like <br/> and </p><p> are word boundaries; Fields
			// collapses the extra spaces below.
			b.WriteRune(' ')
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

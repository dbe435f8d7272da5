package topics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/soumilsri/LinkedInAutoPoster/internal/config"
)

func TestDedupe(t *testing.T) {
	in := []Topic{
		{Title: "Kubernetes 1.31 released with new features", Engagement: 50},
		{Title: "kubernetes 1.31 RELEASED with new features  ", Engagement: 900},
		{Title: "short", Engagement: 10},
		{Title: "A completely different story about chips"},
	}

	out := dedupe(in)
	if len(out) != 2 {
		t.Fatalf("expected 2 unique topics, got %d", len(out))
	}
	// First occurrence wins regardless of engagement.
	if out[0].Engagement != 50 {
		t.Errorf("dedupe should keep the first occurrence, got engagement %d", out[0].Engagement)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input string
		n     int
		want  string
	}{
		{"short", 10, "short"},
		{"this is a long string", 10, "this is..."},
		{"abc", 3, "abc"},
		{"abcd", 3, "abc"},
		{"", 5, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.input, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.n, got, tt.want)
		}
	}
}

func TestTruncateUTF8(t *testing.T) {
	input := "日本語のテキストです"
	got := truncate(input, 5)
	want := "日本..."
	if got != want {
		t.Errorf("truncate(%q, 5) = %q, want %q", input, got, want)
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain text", "plain text"},
		{"<p>hello <b>world</b></p>", "hello world"},
		{"a<br/>b", "a b"},
		{"<p>one</p><p>two</p>", "one two"},
		{"  spaced   out  ", "spaced out"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := stripHTML(tt.input); got != tt.want {
			t.Errorf("stripHTML(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestRankTopicsCapsAtLimit(t *testing.T) {
	now := time.Now()
	in := []Topic{
		{Title: "old and quiet", Source: SourceRSS, DiscoveredAt: now.Add(-72 * time.Hour)},
		{Title: "fresh and loud", Source: SourceReddit, Engagement: 5000, DiscoveredAt: now},
		{Title: "fresh and quiet", Source: SourceRSS, DiscoveredAt: now},
	}

	out := rankTopics(in, 2)
	if len(out) != 2 {
		t.Fatalf("expected 2 topics after capping, got %d", len(out))
	}
	if out[0].Title != "fresh and loud" {
		t.Errorf("highest scorer should rank first, got %q", out[0].Title)
	}
}

type stubFetcher struct {
	topics []Topic
	err    error
}

func (s stubFetcher) Fetch(ctx context.Context, limit int) ([]Topic, error) {
	return s.topics, s.err
}

func TestFinderMergesAndReportsErrors(t *testing.T) {
	now := time.Now()
	f := &Finder{
		limit: 5,
		fetchers: []Fetcher{
			stubFetcher{topics: []Topic{{Title: "a story from the first source", DiscoveredAt: now}}},
			stubFetcher{err: errors.New("network down")},
			stubFetcher{topics: []Topic{{Title: "a story from the third source", DiscoveredAt: now}}},
		},
	}

	result := f.Fetch(context.Background())
	if len(result.Topics) != 2 {
		t.Errorf("expected 2 topics from the healthy sources, got %d", len(result.Topics))
	}
	if len(result.Errors) != 1 {
		t.Errorf("expected the failing source to surface 1 error, got %d", len(result.Errors))
	}
}

func TestNewFinderSourceSelection(t *testing.T) {
	t.Setenv("NEWSAPI_KEY", "")

	cfg := &config.TrendingConfig{Sources: []string{"reddit", "rss"}}
	f := NewFinder(cfg)
	if len(f.fetchers) != 2 {
		t.Errorf("expected reddit and rss fetchers, got %d", len(f.fetchers))
	}

	// News without an API key falls back to RSS.
	cfg = &config.TrendingConfig{Sources: []string{"news"}}
	f = NewFinder(cfg)
	if len(f.fetchers) != 1 {
		t.Fatalf("expected the rss fallback fetcher, got %d", len(f.fetchers))
	}
	if _, ok := f.fetchers[0].(*RSSFetcher); !ok {
		t.Errorf("keyless news source should fall back to rss, got %T", f.fetchers[0])
	}
}

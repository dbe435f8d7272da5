package topics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// RedditFetcher reads hot listings through Reddit's public JSON endpoints.
// No auth needed for read-only access, but the rate limit is strict:
// 1 request every 2 seconds.
type RedditFetcher struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	subreddits []string
	baseURL    string
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title      string  `json:"title"`
				URL        string  `json:"url"`
				Selftext   string  `json:"selftext"`
				Score      int     `json:"score"`
				CreatedUTC float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func NewRedditFetcher(subreddits []string, userAgent string) *RedditFetcher {
	if len(subreddits) == 0 {
		subreddits = []string{"technology", "programming", "business"}
	}
	return &RedditFetcher{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(2*time.Second), 1),
		userAgent:  userAgent,
		subreddits: subreddits,
		baseURL:    "https://www.reddit.com",
	}
}

func (f *RedditFetcher) Fetch(ctx context.Context, limit int) ([]Topic, error) {
	var topics []Topic
	subs := f.subreddits
	if len(subs) > limit {
		subs = subs[:limit]
	}

	for _, sub := range subs {
		hot, err := f.fetchSubreddit(ctx, sub)
		if err != nil {
			// One subreddit failing shouldn't sink the rest.
			continue
		}
		topics = append(topics, hot...)
		if len(topics) >= limit*2 {
			break
		}
	}

	if len(topics) == 0 {
		return nil, fmt.Errorf("reddit: no topics from %d subreddit(s)", len(subs))
	}
	return topics, nil
}

func (f *RedditFetcher) fetchSubreddit(ctx context.Context, sub string) ([]Topic, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/r/%s/hot.json?limit=3", f.baseURL, sub)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit r/%s status: %d", sub, resp.StatusCode)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, err
	}

	now := time.Now()
	var topics []Topic
	for _, child := range listing.Data.Children {
		d := child.Data
		if len(topics) >= 2 {
			break
		}
		topics = append(topics, Topic{
			Title:        d.Title,
			Description:  truncate(stripHTML(d.Selftext), 300),
			URL:          d.URL,
			Source:       SourceReddit,
			Engagement:   d.Score,
			DiscoveredAt: now,
		})
	}
	return topics, nil
}

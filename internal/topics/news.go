package topics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// NewsFetcher pulls technology headlines from NewsAPI (free tier).
type NewsFetcher struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

type newsResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
	} `json:"articles"`
}

func NewNewsFetcher(apiKey string) *NewsFetcher {
	return &NewsFetcher{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiKey:     apiKey,
		baseURL:    "https://newsapi.org/v2/top-headlines",
	}
}

func (f *NewsFetcher) Fetch(ctx context.Context, limit int) ([]Topic, error) {
	params := url.Values{}
	params.Set("category", "technology")
	params.Set("language", "en")
	params.Set("pageSize", fmt.Sprint(limit))
	params.Set("apiKey", f.apiKey)

	req, err := http.NewRequestWithContext(ctx, "GET", f.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("newsapi: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("newsapi status: %d", resp.StatusCode)
	}

	var nr newsResponse
	if err := json.NewDecoder(resp.Body).Decode(&nr); err != nil {
		return nil, err
	}

	now := time.Now()
	topics := make([]Topic, 0, len(nr.Articles))
	for _, a := range nr.Articles {
		topics = append(topics, Topic{
			Title:        a.Title,
			Description:  truncate(stripHTML(a.Description), 300),
			URL:          a.URL,
			Source:       SourceNews,
			DiscoveredAt: now,
		})
	}
	return topics, nil
}

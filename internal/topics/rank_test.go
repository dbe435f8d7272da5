package topics

import (
	"testing"
	"time"
)

func TestScoreFreshBeatsStale(t *testing.T) {
	now := time.Now()
	fresh := Topic{Title: "fresh", Source: SourceRSS, DiscoveredAt: now}
	stale := Topic{Title: "stale", Source: SourceRSS, DiscoveredAt: now.Add(-72 * time.Hour)}

	if Score(fresh) <= Score(stale) {
		t.Errorf("fresh (%.2f) should outrank stale (%.2f)", Score(fresh), Score(stale))
	}
}

func TestScoreEngagementMatters(t *testing.T) {
	now := time.Now()
	loud := Topic{Title: "loud", Source: SourceReddit, Engagement: 5000, DiscoveredAt: now}
	quiet := Topic{Title: "quiet", Source: SourceReddit, Engagement: 2, DiscoveredAt: now}

	if Score(loud) <= Score(quiet) {
		t.Errorf("high engagement (%.2f) should outrank low (%.2f)", Score(loud), Score(quiet))
	}
}

func TestScoreRange(t *testing.T) {
	topics := []Topic{
		{Title: "max everything", Source: SourceNews, Engagement: 100000, DiscoveredAt: time.Now()},
		{Title: "min everything", Source: SourceReddit, Engagement: 1, DiscoveredAt: time.Now().Add(-200 * time.Hour)},
		{Title: "zero value"},
	}
	for _, topic := range topics {
		s := Score(topic)
		if s < 0 || s > 10 {
			t.Errorf("Score(%q) = %.2f, want within 0..10", topic.Title, s)
		}
	}
}

func TestEngagementScoreNeutralForZero(t *testing.T) {
	if got := engagementScore(0); got != 0.5 {
		t.Errorf("zero votes should score neutral 0.5, got %.2f", got)
	}
	if got := engagementScore(10000); got < 0.99 {
		t.Errorf("10k votes should approach 1.0, got %.2f", got)
	}
}

func TestRecencyScoreFutureClamps(t *testing.T) {
	future := time.Now().Add(2 * time.Hour)
	if got := recencyScore(future); got != 1.0 {
		t.Errorf("future timestamps clamp to now, got %.2f", got)
	}
}

func TestBreakdownComponentsSumToFinal(t *testing.T) {
	topic := Topic{Title: "x", Source: SourceReddit, Engagement: 500, DiscoveredAt: time.Now().Add(-6 * time.Hour)}
	b := ScoreWithBreakdown(topic)

	raw := b.Recency*weightRecency + b.Source*weightSource + b.Engagement*weightEngagement
	want := raw * 10
	if diff := b.Final - want; diff > 0.051 || diff < -0.051 {
		t.Errorf("Final = %.3f, want ~%.3f from components", b.Final, want)
	}
}

package topics

import (
	"math"
	"time"
)

// Component weights for topic ranking. Engagement matters most for reddit
// topics; recency dominates for feeds, which carry no vote counts.
const (
	weightRecency    = 0.40
	weightSource     = 0.25
	weightEngagement = 0.35
)

var sourceWeights = map[Source]float64{
	SourceNews:   1.0,
	SourceRSS:    0.8,
	SourceReddit: 0.7,
	SourceManual: 1.0,
}

// Breakdown shows how each component contributed to the final score.
type Breakdown struct {
	Recency    float64
	Source     float64
	Engagement float64
	Final      float64
}

// Score computes a ranking score (0.0–10.0) for a topic.
func Score(t Topic) float64 {
	return ScoreWithBreakdown(t).Final
}

// ScoreWithBreakdown computes a ranking score with component details.
func ScoreWithBreakdown(t Topic) Breakdown {
	b := Breakdown{
		Recency:    recencyScore(t.DiscoveredAt),
		Source:     sourceScore(t.Source),
		Engagement: engagementScore(t.Engagement),
	}
	raw := b.Recency*weightRecency +
		b.Source*weightSource +
		b.Engagement*weightEngagement
	b.Final = math.Round(raw*100) / 10 // scale to 0.0–10.0
	return b
}

// recencyScore returns exponential decay: 1.0 now, ~0.5 at 24h, ~0.1 at 72h.
func recencyScore(discovered time.Time) float64 {
	if discovered.IsZero() {
		return 0.5
	}
	age := time.Since(discovered).Hours()
	if age < 0 {
		age = 0
	}
	return math.Exp(-age / 34.6)
}

func sourceScore(s Source) float64 {
	if w, ok := sourceWeights[s]; ok {
		return w
	}
	return 0.5
}

// engagementScore maps a vote count onto 0..1 with log scaling so a
// 10k-upvote thread doesn't drown everything else.
func engagementScore(votes int) float64 {
	if votes <= 0 {
		return 0.5 // neutral for sources without vote counts
	}
	score := math.Log10(float64(votes)+1) / 4 // 10k votes ≈ 1.0
	if score > 1 {
		score = 1
	}
	return score
}

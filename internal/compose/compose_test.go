package compose

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/soumilsri/LinkedInAutoPoster/internal/config"
	"github.com/soumilsri/LinkedInAutoPoster/internal/topics"
)

func testComposer() *Composer {
	return New(&config.GenerationConfig{}, false)
}

func sampleTopic() topics.Topic {
	return topics.Topic{
		Title:        "AI startups raise record funding",
		Description:  "Venture investment in AI companies hit a new quarterly high.",
		URL:          "https://example.com/ai-funding",
		Source:       topics.SourceNews,
		DiscoveredAt: time.Now(),
	}
}

func TestGenerateTemplateFallback(t *testing.T) {
	c := testComposer()
	post := c.Generate(context.Background(), sampleTopic())

	if !strings.Contains(post, "AI startups raise record funding") {
		t.Error("post should contain the topic title")
	}
	if !strings.Contains(post, "#") {
		t.Error("post should contain hashtags")
	}
	if !strings.Contains(post, "https://example.com/ai-funding") {
		t.Error("post should link the source")
	}
	if n := len([]rune(post)); n > 3000 {
		t.Errorf("post length %d exceeds the platform limit", n)
	}
}

func TestGenerateWithoutProvidersNeverEmpty(t *testing.T) {
	c := New(&config.GenerationConfig{}, true) // LLM requested but no keys
	post := c.Generate(context.Background(), sampleTopic())
	if strings.TrimSpace(post) == "" {
		t.Fatal("generation must always produce content")
	}
}

func TestGenerateManualTopicNoURL(t *testing.T) {
	c := testComposer()
	post := c.Generate(context.Background(), topics.Manual("Remote work culture"))

	if !strings.Contains(post, "Remote work culture") {
		t.Error("post should contain the manual topic")
	}
	if strings.Contains(post, "Read more") {
		t.Error("post without a source URL should not have a read-more line")
	}
}

func TestDraftsAssignSequentialIDs(t *testing.T) {
	c := testComposer()
	ts := []topics.Topic{
		topics.Manual("first"),
		topics.Manual("second"),
		topics.Manual("third"),
	}

	drafts := c.Drafts(context.Background(), ts)
	if len(drafts) != 3 {
		t.Fatalf("expected 3 drafts, got %d", len(drafts))
	}
	for i, d := range drafts {
		if d.ID != i+1 {
			t.Errorf("draft %d id = %d, want %d", i, d.ID, i+1)
		}
		if d.Content == "" {
			t.Errorf("draft %d has no content", i)
		}
		if d.Length != len([]rune(d.Content)) {
			t.Errorf("draft %d length %d does not match content (%d runes)", i, d.Length, len([]rune(d.Content)))
		}
	}
}

func TestSetContentRecomputesLength(t *testing.T) {
	d := Draft{}
	d.SetContent("héllo wörld")
	if d.Length != 11 {
		t.Errorf("length = %d, want 11 runes", d.Length)
	}
}

func TestClampLength(t *testing.T) {
	c := New(&config.GenerationConfig{MaxPostLength: 100}, false)

	short := "fits fine."
	if got := c.clampLength(short); got != short {
		t.Errorf("short post must pass through unchanged, got %q", got)
	}

	long := strings.Repeat("word ", 40) // 200 chars
	got := c.clampLength(long)
	if n := len([]rune(got)); n > 100 {
		t.Errorf("clamped length = %d, want <= 100", n)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("clamped post should end with an ellipsis, got %q", got[len(got)-10:])
	}
}

func TestClampLengthTinyBudget(t *testing.T) {
	// Budgets below the ellipsis headroom must hard-truncate, not panic.
	for _, budget := range []int{1, 5, 10, 20} {
		c := New(&config.GenerationConfig{MaxPostLength: budget}, false)
		got := c.Generate(context.Background(), sampleTopic())
		if n := len([]rune(got)); n > budget {
			t.Errorf("budget %d: generated %d runes", budget, n)
		}
	}
}

func TestClampLengthPrefersSentenceBoundary(t *testing.T) {
	c := New(&config.GenerationConfig{MaxPostLength: 100}, false)

	// A period lands in the last 30% of the budget.
	post := strings.Repeat("a", 75) + ". " + strings.Repeat("b", 60)
	got := c.clampLength(post)
	if !strings.HasSuffix(got, "....") { // sentence period plus ellipsis
		t.Errorf("expected truncation at the sentence boundary, got %q", got)
	}
}

func TestRefineWithoutProviders(t *testing.T) {
	c := testComposer()
	if _, err := c.Refine(context.Background(), "existing text", "make it shorter"); err == nil {
		t.Error("refine without any provider must return an error so the caller keeps the prior text")
	}
}

func TestHashtags(t *testing.T) {
	tests := []struct {
		title string
		want  []string
	}{
		{"AI and cloud computing", []string{"#Ai", "#Cloud", "#Technology"}},
		{"Nothing matching here", []string{"#Technology", "#Innovation"}},
		{"business strategy growth leadership", []string{"#Business", "#Strategy", "#Growth"}},
	}
	for _, tt := range tests {
		got := hashtags(tt.title)
		for _, tag := range tt.want {
			if !strings.Contains(got, tag) {
				t.Errorf("hashtags(%q) = %q, missing %s", tt.title, got, tag)
			}
		}
		if n := len(strings.Fields(got)); n > 5 {
			t.Errorf("hashtags(%q) produced %d tags, max is 5", tt.title, n)
		}
	}
}

func TestFormatGeneratedAddsMissingPieces(t *testing.T) {
	c := testComposer()
	topic := sampleTopic()

	raw := "Some model output about venture funding trends and what they mean."
	post := c.formatGenerated(raw, topic)

	if !strings.Contains(post, topic.Title) {
		t.Error("title should be prepended when the model omitted it")
	}
	if !strings.Contains(post, "#") {
		t.Error("hashtags should be appended when missing")
	}
	if !strings.Contains(post, topic.URL) {
		t.Error("source link should be appended when missing")
	}
}

func TestFormatGeneratedStripsEchoedLabel(t *testing.T) {
	c := testComposer()
	topic := sampleTopic()

	raw := "LinkedIn Post: AI startups raise record funding is the story of the quarter and here is why it matters to builders."
	post := c.formatGenerated(raw, topic)

	if strings.HasPrefix(post, "LinkedIn Post:") {
		t.Errorf("echoed label should be stripped, got %q", post)
	}
}

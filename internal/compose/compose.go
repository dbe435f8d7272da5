// Package compose turns trending topics into LinkedIn post drafts, using
// free-tier LLM APIs when configured and a template otherwise.
package compose

import (
	"context"
	"strings"

	"github.com/soumilsri/LinkedInAutoPoster/internal/config"
	"github.com/soumilsri/LinkedInAutoPoster/internal/topics"
)

// Draft is an editable post candidate. Content and Length move together;
// ID is stable for the lifetime of the session.
type Draft struct {
	ID      int
	Topic   string
	Content string
	Source  topics.Source
	URL     string
	Length  int
}

// SetContent replaces the draft body and recomputes its length.
func (d *Draft) SetContent(content string) {
	d.Content = content
	d.Length = len([]rune(content))
}

// Composer generates and refines post drafts.
type Composer struct {
	cfg       *config.GenerationConfig
	providers []provider
	useLLM    bool
}

// New builds a Composer. With useLLM set and keys configured, generation
// tries Groq first (fastest free tier), then Together AI, then falls back
// to the template.
func New(cfg *config.GenerationConfig, useLLM bool) *Composer {
	c := &Composer{cfg: cfg, useLLM: useLLM}
	if key := cfg.GroqKey(); key != "" {
		c.providers = append(c.providers, newGroqProvider(key, cfg.GroqModel))
	}
	if key := cfg.TogetherKey(); key != "" {
		c.providers = append(c.providers, newTogetherProvider(key, cfg.TogetherModel))
	}
	return c
}

// Generate produces post text for a topic. It never fails: when every LLM
// provider errors out (or none is configured) the template path answers.
func (c *Composer) Generate(ctx context.Context, topic topics.Topic) string {
	if c.useLLM {
		for _, p := range c.providers {
			text, err := p.complete(ctx, systemPrompt, generatePrompt(topic, c.cfg.MaxLength()))
			if err != nil || strings.TrimSpace(text) == "" {
				continue
			}
			return c.formatGenerated(text, topic)
		}
	}
	return c.template(topic)
}

// Refine rewrites existing text per the operator's instruction. A nil error
// with new text means the caller should adopt it; any error means keep the
// prior text unchanged.
func (c *Composer) Refine(ctx context.Context, existing, instruction string) (string, error) {
	for _, p := range c.providers {
		text, err := p.complete(ctx, systemPrompt, refinePrompt(existing, instruction))
		if err != nil || strings.TrimSpace(text) == "" {
			continue
		}
		return c.clampLength(strings.TrimSpace(text)), nil
	}
	return "", ErrNoProvider
}

// Drafts generates one draft per topic with sequence-assigned ids.
func (c *Composer) Drafts(ctx context.Context, ts []topics.Topic) []Draft {
	drafts := make([]Draft, 0, len(ts))
	for i, t := range ts {
		d := Draft{
			ID:     i + 1,
			Topic:  t.Title,
			Source: t.Source,
			URL:    t.URL,
		}
		d.SetContent(c.Generate(ctx, t))
		drafts = append(drafts, d)
	}
	return drafts
}

// clampLength truncates to the configured max, preferring a sentence
// boundary when one falls in the last 30% of the budget.
func (c *Composer) clampLength(post string) string {
	max := c.cfg.MaxLength()
	runes := []rune(post)
	if len(runes) <= max {
		return post
	}
	// A budget too small for the ellipsis headroom gets a hard cut.
	if max <= 20 {
		return string(runes[:max])
	}
	truncated := string(runes[:max-20])
	if idx := strings.LastIndex(truncated, "."); idx > (max*7)/10 {
		return truncated[:idx+1] + "..."
	}
	return truncated + "..."
}

package compose

import (
	"math/rand"
	"strings"

	"github.com/soumilsri/LinkedInAutoPoster/internal/topics"
)

var (
	openings = []string{"🔥", "💡", "📰", "🚀", "⚡"}

	hooks = []string{
		"This got me thinking about the future of our industry...",
		"Here's my perspective on this development:",
		"Interesting implications for the tech landscape:",
		"This is worth discussing because:",
		"What stands out to me:",
		"My take on this trend:",
	}

	insights = []string{
		"The implications for businesses are significant.",
		"This could reshape how we think about technology.",
		"It's developments like this that drive innovation forward.",
		"The timing of this is particularly interesting.",
		"This aligns with broader trends we're seeing.",
	}

	ctas = []string{
		"💭 What's your perspective on this?",
		"🤔 What do you think?",
		"💬 I'd love to hear your thoughts.",
		"🎯 How does this impact your work?",
	}
)

// template builds a post without any LLM: emoji header, description excerpt,
// hook, insight, call to action, hashtags, source link.
func (c *Composer) template(topic topics.Topic) string {
	var b strings.Builder

	b.WriteString(pick(openings) + " " + topic.Title + "\n\n")

	if topic.Description != "" {
		desc := topic.Description
		if len([]rune(desc)) > 180 {
			desc = string([]rune(desc)[:180]) + "..."
		}
		b.WriteString(desc + "\n\n")
	}

	b.WriteString(pick(hooks) + "\n\n")
	b.WriteString(pick(insights) + "\n\n")
	b.WriteString(pick(ctas) + "\n\n")
	b.WriteString(hashtags(topic.Title))

	if topic.URL != "" {
		b.WriteString("\n\n🔗 Read more: " + topic.URL)
	}

	return c.clampLength(b.String())
}

// formatGenerated cleans LLM output into a publishable post: strips echoed
// prompt text, ensures the topic title leads, appends hashtags and link.
func (c *Composer) formatGenerated(text string, topic topics.Topic) string {
	post := strings.TrimSpace(text)

	// Models sometimes echo the "LinkedIn Post:" label back.
	if idx := strings.LastIndex(post, "Post:"); idx >= 0 && idx < len(post)/2 {
		post = strings.TrimSpace(post[idx+len("Post:"):])
	}
	post = strings.ReplaceAll(post, "\n\n\n", "\n\n")

	// Drop a trailing sentence fragment.
	if idx := strings.LastIndex(post, "."); idx > 0 && len(strings.TrimSpace(post[idx+1:])) < 10 {
		post = post[:idx+1]
	}

	if topic.Title != "" && !strings.Contains(post[:min(len(post), 100)], topic.Title) {
		post = "🔥 " + topic.Title + "\n\n" + post
	}

	if !strings.Contains(post, "#") {
		post += "\n\n" + hashtags(topic.Title)
	}

	if topic.URL != "" && !strings.Contains(post, topic.URL) {
		post += "\n\n🔗 Read more: " + topic.URL
	}

	return c.clampLength(post)
}

var (
	techKeywords     = map[string]bool{"ai": true, "tech": true, "software": true, "startup": true, "digital": true, "cloud": true, "data": true}
	businessKeywords = map[string]bool{"business": true, "leadership": true, "strategy": true, "growth": true, "entrepreneur": true}
	commonHashtags   = []string{"#Technology", "#Innovation"}
)

// hashtags derives up to five tags: keyword matches from the title first,
// padded with evergreen defaults.
func hashtags(title string) string {
	var tags []string
	for _, word := range strings.Fields(strings.ToLower(title)) {
		word = strings.Trim(word, ".,!?:;\"'")
		if techKeywords[word] || businessKeywords[word] {
			tags = append(tags, "#"+capitalize(word))
		}
		if len(tags) == 3 {
			break
		}
	}
	tags = append(tags, commonHashtags...)
	if len(tags) > 5 {
		tags = tags[:5]
	}
	return strings.Join(tags, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func pick(options []string) string {
	return options[rand.Intn(len(options))]
}

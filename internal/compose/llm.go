package compose

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/soumilsri/LinkedInAutoPoster/internal/topics"
)

// ErrNoProvider is returned when no LLM provider is configured or every
// configured provider failed.
var ErrNoProvider = errors.New("no usable generation provider")

const systemPrompt = "You are a professional LinkedIn content creator. Write engaging, professional posts that add value."

func generatePrompt(topic topics.Topic, maxLength int) string {
	desc := topic.Description
	if len(desc) > 200 {
		desc = desc[:200]
	}
	return fmt.Sprintf(`Write a professional LinkedIn post about: %s

%s

Requirements:
- Professional and engaging tone
- Include a hook to grab attention
- Add personal insights or perspective
- Include relevant hashtags
- Keep it under %d characters
- End with a call to action

LinkedIn Post:`, topic.Title, desc, maxLength)
}

func refinePrompt(existing, instruction string) string {
	return fmt.Sprintf(`Rewrite this LinkedIn post following the instruction. Keep it professional and return ONLY the rewritten post, nothing else.

Instruction: %s

Post:
%s`, instruction, existing)
}

// provider is one chat-completion backend in the fallback chain.
type provider interface {
	name() string
	complete(ctx context.Context, system, user string) (string, error)
}

// chatProvider speaks the OpenAI-compatible chat completions dialect that
// both Groq and Together AI expose.
type chatProvider struct {
	label    string
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
}

func newGroqProvider(apiKey, model string) *chatProvider {
	if model == "" {
		model = "llama-3.1-8b-instant"
	}
	return &chatProvider{
		label:    "groq",
		endpoint: "https://api.groq.com/openai/v1/chat/completions",
		apiKey:   apiKey,
		model:    model,
		client:   &http.Client{Timeout: 20 * time.Second},
	}
}

func newTogetherProvider(apiKey, model string) *chatProvider {
	if model == "" {
		model = "meta-llama/Llama-3-8b-chat-hf"
	}
	return &chatProvider{
		label:    "together",
		endpoint: "https://api.together.xyz/v1/chat/completions",
		apiKey:   apiKey,
		model:    model,
		client:   &http.Client{Timeout: 20 * time.Second},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *chatProvider) name() string { return p.label }

func (p *chatProvider) complete(ctx context.Context, system, user string) (string, error) {
	body, _ := json.Marshal(chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.7,
		MaxTokens:   400,
	})

	req, err := http.NewRequestWithContext(ctx, "POST", p.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s API error: %w", p.label, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("%s API %d: %s", p.label, resp.StatusCode, string(b))
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", err
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("empty %s response", p.label)
	}
	return cr.Choices[0].Message.Content, nil
}

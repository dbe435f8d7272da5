package compose

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/soumilsri/LinkedInAutoPoster/internal/config"
	"github.com/soumilsri/LinkedInAutoPoster/internal/topics"
)

func chatServer(t *testing.T, reply string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); !strings.HasPrefix(got, "Bearer ") {
			t.Errorf("missing bearer token, got %q", got)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("expected system+user messages, got %+v", req.Messages)
		}

		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": reply}},
			},
		})
	}))
}

func serverProvider(url string) *chatProvider {
	p := newGroqProvider("test-key", "")
	p.endpoint = url
	return p
}

func TestChatProviderComplete(t *testing.T) {
	srv := chatServer(t, "Generated post body", http.StatusOK)
	defer srv.Close()

	got, err := serverProvider(srv.URL).complete(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got != "Generated post body" {
		t.Errorf("content = %q", got)
	}
}

func TestChatProviderErrorStatus(t *testing.T) {
	srv := chatServer(t, "", http.StatusTooManyRequests)
	defer srv.Close()

	if _, err := serverProvider(srv.URL).complete(context.Background(), "s", "u"); err == nil {
		t.Error("expected an error on a 429 response")
	}
}

func TestChatProviderEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	if _, err := serverProvider(srv.URL).complete(context.Background(), "s", "u"); err == nil {
		t.Error("expected an error on empty choices")
	}
}

func TestGenerateFallsThroughFailingProvider(t *testing.T) {
	srv := chatServer(t, "", http.StatusInternalServerError)
	defer srv.Close()

	c := New(&config.GenerationConfig{GroqAPIKey: "k"}, true)
	c.providers = []provider{serverProvider(srv.URL)}

	topic := topics.Manual("Platform engineering")
	post := c.Generate(context.Background(), topic)
	if !strings.Contains(post, "Platform engineering") {
		t.Errorf("template fallback should still produce a post, got %q", post)
	}
}

func TestGenerateUsesProviderOutput(t *testing.T) {
	srv := chatServer(t, "Platform engineering is eating the infra world. Teams everywhere are noticing the shift.", http.StatusOK)
	defer srv.Close()

	c := New(&config.GenerationConfig{GroqAPIKey: "k"}, true)
	c.providers = []provider{serverProvider(srv.URL)}

	post := c.Generate(context.Background(), topics.Manual("Platform engineering"))
	if !strings.Contains(post, "eating the infra world") {
		t.Errorf("expected provider output in the post, got %q", post)
	}
}

func TestGeneratePromptMentionsLimit(t *testing.T) {
	p := generatePrompt(topics.Manual("Observability"), 3000)
	if !strings.Contains(p, "3000") {
		t.Error("prompt should state the length budget")
	}
	if !strings.Contains(p, "Observability") {
		t.Error("prompt should include the topic")
	}
}

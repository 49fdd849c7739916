package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"recipe-importer/internal/core/ai/provider"
	"recipe-importer/internal/infrastructure/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.Default().AI
	cfg.APIKey = "sk-ant-test"
	cfg.AnthropicBaseURL = srv.URL
	cfg.Timeout = 5 * time.Second
	return NewClient(cfg)
}

func TestGenerateMessagesEnvelope(t *testing.T) {
	var got messagesRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "sk-ant-test" {
			t.Errorf("missing api key header")
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Errorf("missing anthropic-version header")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"model": "claude-test",
			"content": [
				{"type": "text", "text": "{\"title\": "},
				{"type": "text", "text": "\"Soup\"}"}
			],
			"usage": {"input_tokens": 10, "output_tokens": 5}
		}`))
	})

	resp, err := c.Generate(context.Background(), &provider.Request{
		System:    "extract",
		Messages:  []provider.Message{{Role: provider.RoleUser, Content: "page text"}},
		MaxTokens: 100,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Content != `{"title": "Soup"}` {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.Usage.PromptTokens != 10 || resp.Usage.CompletionTokens != 5 {
		t.Errorf("usage = %+v", resp.Usage)
	}
	if got.System != "extract" || got.MaxTokens != 100 || len(got.Messages) != 1 {
		t.Errorf("unexpected request body: %+v", got)
	}
}

func TestGenerateErrorStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
	})

	_, err := c.Generate(context.Background(), &provider.Request{
		Messages: []provider.Message{{Role: provider.RoleUser, Content: "x"}},
	})
	var perr *provider.Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected provider.Error, got %v", err)
	}
	if perr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d", perr.StatusCode)
	}
	if perr.Provider != ProviderName {
		t.Errorf("provider = %q", perr.Provider)
	}
}

func TestGenerateEmptyContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content": [{"type": "tool_use"}]}`))
	})

	_, err := c.Generate(context.Background(), &provider.Request{})
	if !errors.Is(err, provider.ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestErrorMessage(t *testing.T) {
	if got := errorMessage([]byte(`{"error":{"type":"invalid_request_error","message":"bad"}}`)); got != "invalid_request_error: bad" {
		t.Errorf("errorMessage = %q", got)
	}
	if got := errorMessage(nil); got != "empty error body" {
		t.Errorf("errorMessage(nil) = %q", got)
	}
}

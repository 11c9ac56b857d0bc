package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestInvokeWithoutAPIKeyFails(t *testing.T) {
	client := NewOpenAIClient(Config{Model: "gpt-4o-mini"})
	_, errInvoke := client.Invoke(context.Background(), "", []Turn{{Role: "user", Content: "hi"}}, 64)
	if !errors.Is(errInvoke, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", errInvoke)
	}
}

func TestInvokeDefaultsMaxTokensFromConfig(t *testing.T) {
	var budgets []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			MaxTokens int `json:"max_tokens"`
		}
		if errDecode := json.NewDecoder(r.Body).Decode(&req); errDecode != nil {
			t.Errorf("decode request: %v", errDecode)
		}
		budgets = append(budgets, req.MaxTokens)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient(Config{
		APIKey:    "test-key",
		BaseURL:   srv.URL + "/v1",
		Model:     "gpt-4o-mini",
		MaxTokens: 512,
	})

	if _, errInvoke := client.Invoke(context.Background(), "", []Turn{{Role: "user", Content: "hi"}}, 0); errInvoke != nil {
		t.Fatalf("invoke with zero budget: %v", errInvoke)
	}
	if _, errInvoke := client.Invoke(context.Background(), "", []Turn{{Role: "user", Content: "hi"}}, 64); errInvoke != nil {
		t.Fatalf("invoke with explicit budget: %v", errInvoke)
	}

	if len(budgets) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(budgets))
	}
	if budgets[0] != 512 {
		t.Fatalf("zero budget should use the configured default, got %d", budgets[0])
	}
	if budgets[1] != 64 {
		t.Fatalf("explicit budget must win, got %d", budgets[1])
	}
}

func TestUpstreamErrorFormatting(t *testing.T) {
	withStatus := &UpstreamError{StatusCode: 429, Body: "rate limited"}
	if got := withStatus.Error(); got != "llm: upstream status 429: rate limited" {
		t.Fatalf("unexpected message %q", got)
	}
	transport := &UpstreamError{Body: "connection refused"}
	if got := transport.Error(); got != "llm: upstream request failed: connection refused" {
		t.Fatalf("unexpected message %q", got)
	}
}

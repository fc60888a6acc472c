package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCompact_Stub(t *testing.T) {
	s := NewStubProvider()
	got, err := Compact(context.Background(), s, CompactRequest{
		Headword: "gather",
		Sentence: "A very long sentence about how crowds of people gather in public squares every single evening.",
	})
	if err != nil {
		t.Fatalf("Compact failed: %v", err)
	}
	if !ContainsHeadword(got, "gather") {
		t.Errorf("expected headword in reply, got %q", got)
	}
}

func TestCompact_StrictPromptMentionsHeadword(t *testing.T) {
	var captured string
	s := &StubProvider{Replies: []string{"Anyone can gather flowers in the garden on a sunny day."}}
	// Capture the prompt by wrapping the stub.
	c := completerFunc(func(ctx context.Context, prompt string) (string, error) {
		captured = prompt
		return s.Complete(ctx, prompt)
	})

	if _, err := Compact(context.Background(), c, CompactRequest{Headword: "gather", Sentence: "x", Strict: true}); err != nil {
		t.Fatalf("Compact failed: %v", err)
	}
	if !strings.Contains(captured, "must appear") {
		t.Errorf("strict prompt should be more directive, got %q", captured)
	}
}

func TestCompact_Error(t *testing.T) {
	s := &StubProvider{Err: errors.New("backend down")}
	if _, err := Compact(context.Background(), s, CompactRequest{Headword: "w", Sentence: "s"}); err == nil {
		t.Fatal("expected error")
	}
}

type completerFunc func(ctx context.Context, prompt string) (string, error)

func (f completerFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func (f completerFunc) Name() string { return "func" }

func TestContainsHeadword(t *testing.T) {
	cases := []struct {
		sentence, headword string
		want               bool
	}{
		{"People Gather in the square.", "gather", true},
		{"The meeting starts soon.", "gather", false},
		{"Das Treffen beginnt.", "Treffen", true},
		{"", "word", false},
	}
	for _, tc := range cases {
		if got := ContainsHeadword(tc.sentence, tc.headword); got != tc.want {
			t.Errorf("ContainsHeadword(%q, %q) = %v, want %v", tc.sentence, tc.headword, got, tc.want)
		}
	}
}

func TestAnthropicProvider_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "msg_1",
			"content": []map[string]any{
				{"type": "text", "text": "People gather in the square every evening to talk and relax."},
			},
		})
	}))
	defer srv.Close()

	p, err := NewAnthropicProvider("test-key", "")
	if err != nil {
		t.Fatalf("NewAnthropicProvider failed: %v", err)
	}
	p.SetBaseURL(srv.URL)

	got, err := p.Complete(context.Background(), "compact this")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if !strings.Contains(got, "gather") {
		t.Errorf("unexpected reply: %q", got)
	}
}

func TestAnthropicProvider_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer srv.Close()

	p, _ := NewAnthropicProvider("test-key", "")
	p.SetBaseURL(srv.URL)

	if _, err := p.Complete(context.Background(), "x"); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestNewProviders_RequireKey(t *testing.T) {
	if _, err := NewOpenAIProvider("", "", ""); err == nil {
		t.Error("expected error for missing openai key")
	}
	if _, err := NewAnthropicProvider("", ""); err == nil {
		t.Error("expected error for missing anthropic key")
	}
	if _, err := NewGeminiProvider("", ""); err == nil {
		t.Error("expected error for missing gemini key")
	}
}

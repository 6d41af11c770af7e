package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/katelouie/arcanite/internal/domain"
	"github.com/katelouie/arcanite/internal/ports"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// chatServer returns a server that replies to each call with the next
// content string from responses, recording request bodies.
func chatServer(t *testing.T, responses []string, status int) (*httptest.Server, *[]chatRequest) {
	t.Helper()
	var requests []chatRequest
	call := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req chatRequest
		_ = json.Unmarshal(body, &req)
		requests = append(requests, req)

		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}

		content := responses[call%len(responses)]
		call++
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func newTestClient(t *testing.T, baseURL, model string, fallbacks []string) *Client {
	t.Helper()
	c, err := NewClient(http.DefaultClient, "test-key", baseURL, model, fallbacks, testLogger())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestSynthesize_Success(t *testing.T) {
	srv, requests := chatServer(t, []string{
		`{"text": "A cohesive reading.", "tone": "neutral", "disclaimer": "For reflection."}`,
	}, http.StatusOK)

	c := newTestClient(t, srv.URL, "test-model", nil)

	out, err := c.Synthesize(context.Background(), ports.SynthesisInput{
		SpreadName: "Three Card",
		Question:   "Will it rain?",
		Tradition:  "intuitive",
		Context:    "# Tarot Reading: Three Card\n",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Text != "A cohesive reading." {
		t.Errorf("unexpected text: %q", out.Text)
	}
	if out.Model != "test-model" {
		t.Errorf("unexpected model: %q", out.Model)
	}

	if len(*requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(*requests))
	}
	req := (*requests)[0]
	if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
		t.Errorf("expected system+user messages, got %+v", req.Messages)
	}
}

func TestSynthesize_InvalidJSONRetry(t *testing.T) {
	srv, requests := chatServer(t, []string{
		"Here is your reading: not JSON at all",
		`{"text": "Corrected.", "tone": "neutral", "disclaimer": "d"}`,
	}, http.StatusOK)

	c := newTestClient(t, srv.URL, "test-model", nil)

	out, err := c.Synthesize(context.Background(), ports.SynthesisInput{Context: "ctx"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Text != "Corrected." {
		t.Errorf("unexpected text: %q", out.Text)
	}
	if len(*requests) != 2 {
		t.Errorf("expected 2 requests (original + retry), got %d", len(*requests))
	}
}

func TestSynthesize_InvalidJSONTwiceFails(t *testing.T) {
	srv, _ := chatServer(t, []string{"still not json"}, http.StatusOK)
	c := newTestClient(t, srv.URL, "test-model", nil)

	_, err := c.Synthesize(context.Background(), ports.SynthesisInput{Context: "ctx"})
	if !errors.Is(err, domain.ErrInvalidLLMJSON) {
		t.Errorf("expected ErrInvalidLLMJSON, got %v", err)
	}
}

func TestSynthesize_FallbackModels(t *testing.T) {
	// Primary server always fails; the fallback loop retries the same
	// endpoint with the next model.
	srv, requests := chatServer(t, nil, http.StatusBadGateway)
	c := newTestClient(t, srv.URL, "primary", []string{"fallback-a", "fallback-b"})

	_, err := c.Synthesize(context.Background(), ports.SynthesisInput{Context: "ctx"})
	if !errors.Is(err, domain.ErrUpstreamLLM) {
		t.Errorf("expected ErrUpstreamLLM, got %v", err)
	}

	models := make([]string, 0, len(*requests))
	for _, req := range *requests {
		models = append(models, req.Model)
	}
	want := []string{"primary", "fallback-a", "fallback-b"}
	if len(models) != len(want) {
		t.Fatalf("expected models %v, got %v", want, models)
	}
	for i := range want {
		if models[i] != want[i] {
			t.Errorf("request %d: expected model %s, got %s", i, want[i], models[i])
		}
	}
}

func TestSynthesize_DefaultsApplied(t *testing.T) {
	srv, _ := chatServer(t, []string{`{"text": "Reading."}`}, http.StatusOK)
	c := newTestClient(t, srv.URL, "test-model", nil)

	out, err := c.Synthesize(context.Background(), ports.SynthesisInput{Context: "ctx"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Tone != "neutral" {
		t.Errorf("expected default tone, got %q", out.Tone)
	}
	if out.Disclaimer == "" {
		t.Error("expected default disclaimer")
	}
}

func TestSynthesize_UnknownTraditionFallsBackToDefault(t *testing.T) {
	srv, requests := chatServer(t, []string{`{"text": "Reading."}`}, http.StatusOK)
	c := newTestClient(t, srv.URL, "test-model", nil)

	_, err := c.Synthesize(context.Background(), ports.SynthesisInput{Context: "ctx", Tradition: "no_such_school"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	system := (*requests)[0].Messages[0].Content
	if system == "" {
		t.Fatal("expected a system prompt")
	}
}

func TestClassify(t *testing.T) {
	cases := map[string]domain.QuestionType{
		"career":        domain.CareerQuestion,
		"LOVE":          domain.LoveQuestion,
		" spiritual \n": domain.SpiritualQuestion,
		"romance-ish":   domain.GeneralQuestion, // unrecognized answer
	}
	for answer, want := range cases {
		srv, _ := chatServer(t, []string{answer}, http.StatusOK)
		c := newTestClient(t, srv.URL, "test-model", nil)

		got, err := c.Classify(context.Background(), "Should I change jobs?")
		if err != nil {
			t.Fatalf("answer %q: unexpected error: %v", answer, err)
		}
		if got != want {
			t.Errorf("answer %q: expected %s, got %s", answer, want, got)
		}
	}
}

func TestClassify_EmptyQuestion(t *testing.T) {
	// No HTTP call should be needed for an empty question.
	c := newTestClient(t, "http://127.0.0.1:1", "test-model", nil)

	got, err := c.Classify(context.Background(), "   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != domain.GeneralQuestion {
		t.Errorf("expected general, got %s", got)
	}
}

func TestClassify_UpstreamFailure(t *testing.T) {
	srv, _ := chatServer(t, nil, http.StatusServiceUnavailable)
	c := newTestClient(t, srv.URL, "test-model", nil)

	_, err := c.Classify(context.Background(), "Should I change jobs?")
	if !errors.Is(err, domain.ErrUpstreamLLM) {
		t.Errorf("expected ErrUpstreamLLM, got %v", err)
	}
}

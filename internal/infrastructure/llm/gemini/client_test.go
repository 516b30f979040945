package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/clearclause/clearclause/internal/core/domain"
	"github.com/clearclause/clearclause/internal/infrastructure/resilience"
)

func candidateResponse(text string) string {
	payload := map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"parts": []any{map[string]any{"text": text}},
				},
			},
		},
	}
	raw, _ := json.Marshal(payload)
	return string(raw)
}

func TestStructuredRequestSetsJSONMode(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":generateContent") {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("X-Goog-Api-Key"); got != "test-key" {
			t.Errorf("expected api key header, got %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(candidateResponse(`{"doc_type":"NDA"}`)))
	}))
	defer server.Close()

	client := New(server.URL, "test-key", "test-model")

	var out struct {
		DocType string `json:"doc_type"`
	}
	schema := json.RawMessage(`{"type":"object"}`)
	if err := client.StructuredRequest(context.Background(), "classify this", schema, &out); err != nil {
		t.Fatalf("StructuredRequest() error = %v", err)
	}
	if out.DocType != "NDA" {
		t.Fatalf("unexpected decoded value: %+v", out)
	}

	cfg, ok := captured["generationConfig"].(map[string]any)
	if !ok {
		t.Fatalf("expected generationConfig in request, got %v", captured)
	}
	if cfg["responseMimeType"] != "application/json" {
		t.Fatalf("expected JSON mime type, got %v", cfg["responseMimeType"])
	}
	if _, ok := cfg["responseSchema"]; !ok {
		t.Fatalf("expected responseSchema in request")
	}
}

func TestStructuredRequestTrimsWrappingProse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(candidateResponse("Here is the result:\n```json\n{\"value\": 7}\n```")))
	}))
	defer server.Close()

	client := New(server.URL, "", "test-model")

	var out struct {
		Value int `json:"value"`
	}
	if err := client.StructuredRequest(context.Background(), "p", json.RawMessage(`{}`), &out); err != nil {
		t.Fatalf("StructuredRequest() error = %v", err)
	}
	if out.Value != 7 {
		t.Fatalf("unexpected value: %d", out.Value)
	}
}

func TestStructuredRequestDecodeFailureIsSchemaError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(candidateResponse("not json at all")))
	}))
	defer server.Close()

	client := New(server.URL, "", "test-model")

	var out map[string]any
	err := client.StructuredRequest(context.Background(), "p", json.RawMessage(`{}`), &out)
	if !domain.IsKind(err, domain.ErrSchema) {
		t.Fatalf("expected schema error, got %v", err)
	}
}

func TestSimpleTextRequestJoinsParts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Hello "},{"text":"world."}]}}]}`))
	}))
	defer server.Close()

	client := New(server.URL, "", "test-model")

	got, err := client.SimpleTextRequest(context.Background(), "greet")
	if err != nil {
		t.Fatalf("SimpleTextRequest() error = %v", err)
	}
	if got != "Hello world." {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestTooManyRequestsIsQuotaMarked(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded for model", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := New(server.URL, "", "test-model")

	_, err := client.SimpleTextRequest(context.Background(), "p")
	if err == nil {
		t.Fatalf("expected error")
	}
	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected HTTPStatusError, got %T", err)
	}
	if !resilience.IsQuota(err) {
		t.Fatalf("expected 429 to be quota-marked: %v", err)
	}
	if !strings.Contains(err.Error(), "quota exceeded for model") {
		t.Fatalf("expected response body in error, got %v", err)
	}
}

func TestEmptyCandidateListIsSchemaError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	client := New(server.URL, "", "test-model")

	_, err := client.SimpleTextRequest(context.Background(), "p")
	if !domain.IsKind(err, domain.ErrSchema) {
		t.Fatalf("expected schema error for empty candidates, got %v", err)
	}
}

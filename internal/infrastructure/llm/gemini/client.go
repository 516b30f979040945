// Package gemini implements the LanguageModel port against a Gemini-style
// generateContent HTTP API. Responses to structured requests are decoded at
// this boundary so downstream code never inspects untyped payloads.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/clearclause/clearclause/internal/core/domain"
)

type Client struct {
	baseURL    string
	apiKey     string
	textModel  string
	httpClient *http.Client
}

func New(baseURL, apiKey, textModel string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		textModel:  textModel,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string          `json:"responseMimeType,omitempty"`
	ResponseSchema   json.RawMessage `json:"responseSchema,omitempty"`
}

// StructuredRequest asks the model for a response constrained to schema and
// decodes it into out. Decode failures are schema errors, never retried.
func (c *Client) StructuredRequest(ctx context.Context, prompt string, schema json.RawMessage, out any) error {
	req := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   schema,
		},
	}
	text, err := c.generate(ctx, "structured", req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(extractJSON(text)), out); err != nil {
		return domain.WrapError(domain.ErrSchema, "decode structured response", err)
	}
	return nil
}

// SimpleTextRequest returns free-form model text for prompt.
func (c *Client) SimpleTextRequest(ctx context.Context, prompt string) (string, error) {
	req := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	}
	return c.generate(ctx, "text", req)
}

func (c *Client) generate(ctx context.Context, operation string, req generateRequest) (string, error) {
	var response struct {
		Candidates []struct {
			Content struct {
				Parts []part `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	path := fmt.Sprintf("/v1beta/models/%s:generateContent", c.textModel)
	if err := c.postJSON(ctx, path, req, &response, operation); err != nil {
		return "", err
	}
	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return "", domain.WrapError(domain.ErrSchema, operation, fmt.Errorf("empty candidate list"))
	}

	var sb strings.Builder
	for _, p := range response.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return strings.TrimSpace(sb.String()), nil
}

// extractJSON trims any wrapping prose around the first JSON value.
func extractJSON(raw string) string {
	for _, pair := range [][2]string{{"{", "}"}, {"[", "]"}} {
		start := strings.Index(raw, pair[0])
		end := strings.LastIndex(raw, pair[1])
		if start >= 0 && end > start {
			return raw[start : end+1]
		}
	}
	return raw
}

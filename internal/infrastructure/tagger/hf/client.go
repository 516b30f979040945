// Package hf implements the EntityTagger and FastLabeler ports against a
// HuggingFace-style inference API: token classification for entity spans and
// a small instruct model for cheap document-type labels.
package hf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/clearclause/clearclause/internal/core/domain"
)

const labelInputLimit = 6000

type Client struct {
	baseURL    string
	token      string
	nerModel   string
	labelModel string
	httpClient *http.Client
}

func New(baseURL, token, nerModel, labelModel string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		nerModel:   nerModel,
		labelModel: labelModel,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type tagResponse struct {
	EntityGroup string  `json:"entity_group"`
	Word        string  `json:"word"`
	Score       float64 `json:"score"`
	Start       int     `json:"start"`
	End         int     `json:"end"`
}

// Tag runs token classification and returns raw spans in model label space.
func (c *Client) Tag(ctx context.Context, text string) ([]domain.TagSpan, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	payload := map[string]any{
		"inputs":  text,
		"options": map[string]any{"wait_for_model": true},
	}
	var raw []tagResponse
	if err := c.postJSON(ctx, "/models/"+c.nerModel, payload, &raw, "tag"); err != nil {
		return nil, err
	}

	spans := make([]domain.TagSpan, 0, len(raw))
	for _, r := range raw {
		spans = append(spans, domain.TagSpan{
			Label: r.EntityGroup,
			Text:  r.Word,
			Score: r.Score,
			Start: r.Start,
			End:   r.End,
		})
	}
	return spans, nil
}

// Label asks the instruct model for a single document-type label.
func (c *Client) Label(ctx context.Context, text string) (string, error) {
	if len(text) > labelInputLimit {
		text = text[:labelInputLimit]
	}
	prompt := "Classify the document type from: NDA, Lease, Employment Agreement, Purchase Agreement, Policy, Other.\n" +
		"Return ONLY the label.\n\nDocument:\n" + text

	payload := map[string]any{
		"inputs": prompt,
		"parameters": map[string]any{
			"max_new_tokens": 32,
			"temperature":    0.1,
		},
	}
	var raw []struct {
		GeneratedText string `json:"generated_text"`
	}
	if err := c.postJSON(ctx, "/models/"+c.labelModel, payload, &raw, "label"); err != nil {
		return "", err
	}
	if len(raw) == 0 {
		return "", domain.WrapError(domain.ErrSchema, "label", fmt.Errorf("empty generation list"))
	}

	label, _, _ := strings.Cut(strings.TrimSpace(raw[0].GeneratedText), "\n")
	if len(label) > 64 {
		label = label[:64]
	}
	if label == "" {
		return "", domain.WrapError(domain.ErrSchema, "label", fmt.Errorf("empty label"))
	}
	return label, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any, operation string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("hf %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		msg := strings.TrimSpace(string(raw))
		if msg == "" {
			return fmt.Errorf("hf %s status: %s", operation, resp.Status)
		}
		return fmt.Errorf("hf %s status: %s: %s", operation, resp.Status, msg)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

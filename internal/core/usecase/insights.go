package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/clearclause/clearclause/internal/core/domain"
	"github.com/clearclause/clearclause/internal/core/ports"
)

const (
	insightsInputCap   = 10000
	insightsChunkSize  = 3000
	insightsSummaryCap = 500
	maxKeyPoints       = 7
	maxRisks           = 5
	maxActions         = 5
)

var insightsSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"summary": {"type": "string"},
		"key_points": {"type": "array", "items": {"type": "string"}},
		"risks": {"type": "array", "items": {"type": "string"}},
		"action_items": {"type": "array", "items": {"type": "string"}},
		"document_type": {"type": "string"}
	},
	"required": ["summary", "key_points", "risks", "action_items", "document_type"]
}`)

// InsightGenerator produces a document-level digest: summary, key points,
// risks and recommended actions. Long documents are analyzed chunk by chunk
// concurrently and the partial digests merged.
type InsightGenerator struct {
	llm     ports.LanguageModel
	exec    ports.RequestExecutor
	chunker ports.Chunker
}

func NewInsightGenerator(llm ports.LanguageModel, exec ports.RequestExecutor, chunker ports.Chunker) *InsightGenerator {
	return &InsightGenerator{llm: llm, exec: exec, chunker: chunker}
}

// Generate analyzes text and returns aggregated insights. Any chunk failure
// yields the stub digest rather than a partial, misleading one.
func (g *InsightGenerator) Generate(ctx context.Context, text, language string) *domain.Insights {
	text = strings.TrimSpace(text)
	if text == "" {
		return stubInsights("No text to analyze", language)
	}
	if len(text) > insightsInputCap {
		text = text[:insightsInputCap]
	}

	chunks := g.chunker.SplitSize(text, insightsChunkSize)
	partials := make([]domain.Insights, len(chunks))
	errs := make([]error, len(chunks))

	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		go func(i int, chunk string) {
			defer wg.Done()
			partials[i], errs[i] = g.analyzeChunk(ctx, chunk)
		}(i, chunk)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			slog.Warn("insights_chunk_failed", "chunk", i, "chunks", len(chunks), "error", err)
			return stubInsights("Analysis failed due to API limits", language)
		}
	}
	merged := mergeInsights(partials)
	merged.Language = language
	return &merged
}

func (g *InsightGenerator) analyzeChunk(ctx context.Context, chunk string) (domain.Insights, error) {
	var partial domain.Insights
	err := g.exec.Execute(ctx, "generate_insights", func(ctx context.Context) error {
		return g.llm.StructuredRequest(ctx, buildInsightsPrompt(chunk), insightsSchema, &partial)
	})
	if err != nil {
		return domain.Insights{}, err
	}
	return partial, nil
}

// mergeInsights reduces per-chunk digests into one bounded result: joined
// summary capped at 500 characters, the top points of each chunk, and the
// first distinct document type.
func mergeInsights(partials []domain.Insights) domain.Insights {
	if len(partials) == 1 {
		return clampInsights(partials[0])
	}

	var merged domain.Insights
	var summaries []string
	for _, p := range partials {
		if s := strings.TrimSpace(p.Summary); s != "" {
			summaries = append(summaries, s)
		}
		merged.KeyPoints = append(merged.KeyPoints, firstN(p.KeyPoints, 2)...)
		merged.Risks = append(merged.Risks, firstN(p.Risks, 1)...)
		merged.ActionItems = append(merged.ActionItems, firstN(p.ActionItems, 1)...)
		if merged.DocumentType == "" && p.DocumentType != "" && p.DocumentType != "General" {
			merged.DocumentType = p.DocumentType
		}
	}
	merged.Summary = strings.Join(summaries, " ")
	if merged.DocumentType == "" {
		merged.DocumentType = "General"
	}
	return clampInsights(merged)
}

func clampInsights(ins domain.Insights) domain.Insights {
	if len(ins.Summary) > insightsSummaryCap {
		ins.Summary = ins.Summary[:insightsSummaryCap] + "..."
	}
	ins.KeyPoints = firstN(ins.KeyPoints, maxKeyPoints)
	ins.Risks = firstN(ins.Risks, maxRisks)
	ins.ActionItems = firstN(ins.ActionItems, maxActions)
	if ins.DocumentType == "" {
		ins.DocumentType = "General"
	}
	return ins
}

func firstN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

func stubInsights(summary, language string) *domain.Insights {
	return &domain.Insights{
		Summary:      summary,
		KeyPoints:    []string{},
		Risks:        []string{},
		ActionItems:  []string{},
		DocumentType: "Unknown",
		Language:     language,
	}
}

func buildInsightsPrompt(chunk string) string {
	return fmt.Sprintf(`Analyze this legal document excerpt and provide insights as JSON with these fields:
- summary: a concise plain-language summary
- key_points: the most important points for the reader
- risks: risks or unfavorable terms to watch for
- action_items: concrete steps the reader should consider
- document_type: the kind of document this appears to be

Document excerpt:
%s`, chunk)
}

package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/clearclause/clearclause/internal/core/domain"
	"github.com/clearclause/clearclause/internal/core/ports"
	"github.com/clearclause/clearclause/internal/lexicon"
)

const (
	classifyChunkSize   = 4000
	classifyPromptCap   = 2000
	fastLabelConfidence = 0.6
)

var classificationSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"doc_type": {"type": "string"},
		"subtype": {"type": "string"},
		"confidence": {"type": "number"}
	},
	"required": ["doc_type", "subtype", "confidence"]
}`)

// DocumentClassifier determines document type, subtype and confidence. It
// never fails: every error path ends in the deterministic keyword fallback.
type DocumentClassifier struct {
	llm     ports.LanguageModel
	labeler ports.FastLabeler
	exec    ports.RequestExecutor
	chunker ports.Chunker
	lex     *lexicon.Lexicon
}

func NewDocumentClassifier(
	llm ports.LanguageModel,
	labeler ports.FastLabeler,
	exec ports.RequestExecutor,
	chunker ports.Chunker,
	lex *lexicon.Lexicon,
) *DocumentClassifier {
	return &DocumentClassifier{
		llm:     llm,
		labeler: labeler,
		exec:    exec,
		chunker: chunker,
		lex:     lex,
	}
}

// Classify issues one structured model request on the first chunk of the
// document. Classification trades recall for cost: only the first chunk is
// ever sent.
func (c *DocumentClassifier) Classify(ctx context.Context, text, language string) domain.Classification {
	if strings.TrimSpace(text) == "" {
		return domain.Classification{DocType: "Unknown", Subtype: "Unknown"}
	}

	if len(text) > classifyChunkSize {
		chunks := c.chunker.SplitSize(text, classifyChunkSize)
		if len(chunks) > 0 {
			text = chunks[0]
		}
	}

	var result domain.Classification
	err := c.exec.Execute(ctx, "classify_document", func(ctx context.Context) error {
		return c.llm.StructuredRequest(ctx, buildClassificationPrompt(text), classificationSchema, &result)
	})
	if err != nil {
		slog.Warn("model_classification_failed", "error", err)
		return c.ClassifyByKeywords(text)
	}

	if result.DocType == "" {
		result.DocType = "Unknown"
	}
	if result.Subtype == "" {
		result.Subtype = "Unknown"
	}
	result.Confidence = clamp01(result.Confidence)
	result.Method = domain.MethodModel
	return result
}

// ClassifyFast prefers the cheap instruct-model label over the full model
// request; any failure falls through to keyword matching. Used by the
// pipeline so classification can never abort a run.
func (c *DocumentClassifier) ClassifyFast(ctx context.Context, text string) domain.Classification {
	if c.labeler != nil {
		label, err := c.labeler.Label(ctx, text)
		if err == nil && label != "" {
			return domain.Classification{
				DocType:    label,
				Subtype:    "General",
				Confidence: fastLabelConfidence,
				Method:     domain.MethodFastLabel,
			}
		}
		if err != nil {
			slog.Warn("fast_label_failed", "error", err)
		}
	}
	return c.ClassifyByKeywords(text)
}

// ClassifyByKeywords scores each category by the count of its keywords
// present in the text. Confidence is the winning score divided by the
// longest keyword list across all categories, capped at 1.0.
func (c *DocumentClassifier) ClassifyByKeywords(text string) domain.Classification {
	lower := strings.ToLower(text)

	bestType := ""
	bestScore := 0
	for docType, keywords := range c.lex.DocumentTypes {
		score := 0
		for _, keyword := range keywords {
			if strings.Contains(lower, keyword) {
				score++
			}
		}
		if score > bestScore || (score == bestScore && score > 0 && docType < bestType) {
			bestType = docType
			bestScore = score
		}
	}

	if bestScore == 0 {
		return domain.Classification{
			DocType:    "General",
			Subtype:    "Unknown",
			Confidence: 0.1,
			Method:     domain.MethodKeyword,
		}
	}

	confidence := 0.0
	if max := c.lex.MaxKeywordCount(); max > 0 {
		confidence = clamp01(float64(bestScore) / float64(max))
	}
	return domain.Classification{
		DocType:    bestType,
		Subtype:    "General",
		Confidence: confidence,
		Method:     domain.MethodKeyword,
	}
}

func buildClassificationPrompt(text string) string {
	if len(text) > classifyPromptCap {
		text = text[:classifyPromptCap]
	}
	return fmt.Sprintf(`Analyze this document and classify its type. Return a JSON response with:
1. doc_type: Main document type (NDA, Lease, Employment, Service Agreement, etc.)
2. subtype: More specific subtype if applicable
3. confidence: Confidence level (0.0 to 1.0)

Document text: %s...

Classification:`, text)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

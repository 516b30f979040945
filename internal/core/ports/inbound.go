package ports

import (
	"context"

	"github.com/clearclause/clearclause/internal/core/domain"
)

// AnalyzeRequest carries one document through the full pipeline.
type AnalyzeRequest struct {
	FileBytes     []byte
	Filename      string
	Language      string
	GenerateAudio bool
	Voice         string
}

// DocumentAnalyzer is the inbound contract for full document processing.
// Analyze never returns an error: failures are folded into the result.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, req AnalyzeRequest) *domain.AnalysisResult
	AnalyzeClause(ctx context.Context, clauseText, language string) *domain.ClauseAnalysis
}

// InsightsGenerator is the inbound contract for chunked document summaries.
type InsightsGenerator interface {
	Generate(ctx context.Context, text, language string) *domain.Insights
}

// Translator is the inbound contract for chunked translation.
type Translator interface {
	Translate(ctx context.Context, text, sourceLanguage, targetLanguage string) (string, error)
}

// SpeechService is the inbound contract for standalone speech synthesis and
// voice discovery. Synthesize returns the public audio path, or "" when no
// audio could be produced.
type SpeechService interface {
	Synthesize(ctx context.Context, text, language, voice string) string
	Voices(language string) map[string]string
}

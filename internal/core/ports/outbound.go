package ports

import (
	"context"
	"encoding/json"

	"github.com/clearclause/clearclause/internal/core/domain"
)

// TextExtractor extracts plain text from raw document bytes. It never fails:
// unreadable or unsupported input yields an empty string.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, filename string) string
}

// LanguageModel is the external AI text capability. StructuredRequest asks
// for a response constrained to the given JSON schema and decodes it into
// out; SimpleTextRequest returns free-form text. Both may fail with a
// quota/throttling condition the executor knows how to retry.
type LanguageModel interface {
	StructuredRequest(ctx context.Context, prompt string, schema json.RawMessage, out any) error
	SimpleTextRequest(ctx context.Context, prompt string) (string, error)
}

// RequestExecutor serializes, paces and retries calls to external AI
// services. The operation name keys per-operation retry and breaker state.
type RequestExecutor interface {
	Execute(ctx context.Context, operation string, fn func(ctx context.Context) error) error
}

// EntityTagger is the statistical entity-tagging capability.
type EntityTagger interface {
	Tag(ctx context.Context, text string) ([]domain.TagSpan, error)
}

// FastLabeler produces a cheap single-label document type guess.
type FastLabeler interface {
	Label(ctx context.Context, text string) (string, error)
}

// SpeechSynthesizer converts text to raw audio bytes for a concrete voice ID.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, voiceID string) ([]byte, error)
}

// AudioStore persists synthesized audio and returns a public reference path.
type AudioStore interface {
	SaveAudio(ctx context.Context, data []byte, voiceKey string) (string, error)
}

// Chunker splits text into bounded segments at sentence boundaries.
type Chunker interface {
	Split(text string) []string
	SplitSize(text string, maxChunkSize int) []string
}

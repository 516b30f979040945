package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/clearclause/clearclause/internal/core/domain"
	"github.com/clearclause/clearclause/internal/core/ports"
	"github.com/clearclause/clearclause/internal/infrastructure/chunking"
)

func newTestPipeline(t *testing.T, llm *fakeLLM, labeler *fakeLabeler, synth *fakeSynthesizer, text string) *AnalyzePipeline {
	t.Helper()
	lex := testLexicon(t)
	exec := testExecutor()
	chunker := chunking.NewSplitter(3000)

	return NewAnalyzePipeline(
		&fakeExtractor{text: text},
		NewClauseSegmenter(),
		NewDocumentClassifier(llm, labeler, exec, chunker, lex),
		NewEntityExtractor(&fakeTagger{}, lex),
		NewClauseSimplifier(llm, exec, lex, DefaultSimplifierConfig()),
		NewSpeechOrchestrator(synth, &fakeAudioStore{}, lex, testSpeechConfig()),
	)
}

const ndaText = `1. The receiving party shall keep all confidential information secret and protect all proprietary data of the disclosing party.
2. This non-disclosure agreement remains in force for five years with payment of $1,000 due on January 1, 2024.
3. Any breach of confidentiality triggers immediate termination and liability for damages under the governing law of Delaware.`

func TestAnalyzeFullDocument(t *testing.T) {
	llm := &fakeLLM{
		structuredFn: structuredJSON(`["Simplified one.", "Simplified two.", "Simplified three."]`),
	}
	labeler := &fakeLabeler{label: "NDA"}
	pipeline := newTestPipeline(t, llm, labeler, &fakeSynthesizer{}, ndaText)

	result := pipeline.Analyze(context.Background(), ports.AnalyzeRequest{
		FileBytes: []byte("raw"),
		Filename:  "nda.pdf",
		Language:  "english",
	})

	if result.Error != "" {
		t.Fatalf("expected no error, got %q", result.Error)
	}
	if result.DocType != "NDA" {
		t.Fatalf("expected NDA classification, got %q", result.DocType)
	}
	if result.Method != domain.MethodFastLabel {
		t.Fatalf("expected fast-label method, got %q", result.Method)
	}
	if len(result.Clauses) != 3 {
		t.Fatalf("expected 3 clauses, got %d", len(result.Clauses))
	}
	for i, clause := range result.Clauses {
		if clause.Number != i+1 {
			t.Fatalf("clause %d has number %d", i, clause.Number)
		}
		if clause.SimplifiedText == "" {
			t.Fatalf("clause %d has no simplified text", clause.Number)
		}
	}
	if len(result.ClauseEntities) != 3 {
		t.Fatalf("expected clause entities for every clause, got %d", len(result.ClauseEntities))
	}
	if !hasEntity(result.Entities, domain.EntityMonetaryValue, "$1,000") {
		t.Fatalf("expected monetary entity at document level, got %+v", result.Entities)
	}
	if result.Metadata.TotalClauses != 3 {
		t.Fatalf("unexpected metadata clause count: %d", result.Metadata.TotalClauses)
	}
	if result.Metadata.Filename != "nda.pdf" {
		t.Fatalf("unexpected filename: %q", result.Metadata.Filename)
	}
	if len(result.AudioPaths) != 0 {
		t.Fatalf("expected no audio without generate_audio, got %v", result.AudioPaths)
	}
}

func TestAnalyzeGeneratesAudioWhenRequested(t *testing.T) {
	llm := &fakeLLM{
		structuredFn: structuredJSON(`["Simplified one.", "Simplified two.", "Simplified three."]`),
	}
	synth := &fakeSynthesizer{audio: []byte("mp3-bytes")}
	pipeline := newTestPipeline(t, llm, &fakeLabeler{label: "NDA"}, synth, ndaText)

	result := pipeline.Analyze(context.Background(), ports.AnalyzeRequest{
		FileBytes:     []byte("raw"),
		Filename:      "nda.pdf",
		Language:      "english",
		GenerateAudio: true,
		Voice:         "kore",
	})

	if _, ok := result.AudioPaths["1"]; !ok {
		t.Fatalf("expected audio for clause 1, got %v", result.AudioPaths)
	}
	if _, ok := result.AudioPaths["summary"]; !ok {
		t.Fatalf("expected summary audio, got %v", result.AudioPaths)
	}
}

func TestAnalyzeEmptyDocument(t *testing.T) {
	pipeline := newTestPipeline(t, &fakeLLM{}, &fakeLabeler{label: "NDA"}, &fakeSynthesizer{}, "")

	result := pipeline.Analyze(context.Background(), ports.AnalyzeRequest{
		FileBytes: []byte("raw"),
		Filename:  "scan.pdf",
		Language:  "english",
	})

	if result.Error != "no extractable text found in document" {
		t.Fatalf("unexpected error message: %q", result.Error)
	}
	if result.Clauses == nil || result.Entities == nil || result.ClauseEntities == nil || result.AudioPaths == nil {
		t.Fatalf("expected allocated substructures in error result")
	}
	if result.Metadata.Filename != "scan.pdf" {
		t.Fatalf("unexpected filename: %q", result.Metadata.Filename)
	}
}

func TestAnalyzeSurvivesModelOutage(t *testing.T) {
	llm := &fakeLLM{} // every model call fails
	pipeline := newTestPipeline(t, llm, &fakeLabeler{err: errors.New("labeler down")}, &fakeSynthesizer{}, ndaText)

	result := pipeline.Analyze(context.Background(), ports.AnalyzeRequest{
		FileBytes: []byte("raw"),
		Filename:  "nda.txt",
		Language:  "english",
	})

	if result.Error != "" {
		t.Fatalf("expected degraded success, got error %q", result.Error)
	}
	if result.DocType != "NDA" {
		t.Fatalf("expected keyword classification to find NDA, got %q", result.DocType)
	}
	if result.Method != domain.MethodKeyword {
		t.Fatalf("expected keyword method, got %q", result.Method)
	}
	for _, clause := range result.Clauses {
		if clause.SimplifiedText == "" {
			t.Fatalf("expected heuristic simplification for clause %d", clause.Number)
		}
	}
}

func TestAnalyzeClauseDrillDown(t *testing.T) {
	llm := &fakeLLM{
		simpleFn: func(string) (string, error) { return "You must keep this secret.", nil },
	}
	pipeline := newTestPipeline(t, llm, &fakeLabeler{}, &fakeSynthesizer{}, "")

	analysis := pipeline.AnalyzeClause(context.Background(),
		"The receiving party shall keep confidential information secret and pay $500.", "english")

	if analysis.SimplifiedText != "You must keep this secret." {
		t.Fatalf("unexpected simplified text: %q", analysis.SimplifiedText)
	}
	if !hasEntity(analysis.Entities, domain.EntityMonetaryValue, "$500") {
		t.Fatalf("expected monetary entity, got %+v", analysis.Entities)
	}
}

func TestAnalyzeClauseBlankText(t *testing.T) {
	pipeline := newTestPipeline(t, &fakeLLM{}, &fakeLabeler{}, &fakeSynthesizer{}, "")

	analysis := pipeline.AnalyzeClause(context.Background(), "   ", "english")
	if analysis.SimplifiedText != "" || len(analysis.Entities) != 0 {
		t.Fatalf("expected empty analysis for blank clause, got %+v", analysis)
	}
}

func TestSimplifyPrioritizedKeepsOrder(t *testing.T) {
	llm := &fakeLLM{
		structuredFn: func(_ string, out any) error {
			return structuredJSON(`["batched"]`)("", out)
		},
	}
	pipeline := newTestPipeline(t, llm, &fakeLabeler{}, &fakeSynthesizer{}, "")

	long := strings.Repeat("A sufficiently long clause body that exceeds the short threshold. ", 4)
	clauses := make([]domain.Clause, 0, maxSimplifiedClauses+2)
	for i := 1; i <= maxSimplifiedClauses+2; i++ {
		clauses = append(clauses, domain.Clause{Number: i, OriginalText: long})
	}

	out := pipeline.simplifyPrioritized(context.Background(), clauses, "english")
	if len(out) != len(clauses) {
		t.Fatalf("expected %d clauses, got %d", len(clauses), len(out))
	}
	for i, clause := range out {
		if clause.Number != i+1 {
			t.Fatalf("position %d holds clause %d", i, clause.Number)
		}
		if clause.SimplifiedText == "" {
			t.Fatalf("clause %d missing simplified text", clause.Number)
		}
	}
}

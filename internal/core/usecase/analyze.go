package usecase

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/clearclause/clearclause/internal/core/domain"
	"github.com/clearclause/clearclause/internal/core/ports"
)

const (
	// maxSimplifiedClauses bounds how many clauses get model simplification;
	// the rest keep the heuristic path from position alone.
	maxSimplifiedClauses = 48
	// shortClauseChars marks clauses cheap enough to simplify regardless of
	// position.
	shortClauseChars = 160
)

// AnalyzePipeline coordinates the full document run: extract, segment,
// classify, extract entities, simplify, and optionally synthesize audio.
// Analyze never returns an error; every failure mode folds into the result
// so callers always get a well-formed response.
type AnalyzePipeline struct {
	extractor  ports.TextExtractor
	segmenter  *ClauseSegmenter
	classifier *DocumentClassifier
	entities   *EntityExtractor
	simplifier *ClauseSimplifier
	speech     *SpeechOrchestrator
}

func NewAnalyzePipeline(
	extractor ports.TextExtractor,
	segmenter *ClauseSegmenter,
	classifier *DocumentClassifier,
	entities *EntityExtractor,
	simplifier *ClauseSimplifier,
	speech *SpeechOrchestrator,
) *AnalyzePipeline {
	return &AnalyzePipeline{
		extractor:  extractor,
		segmenter:  segmenter,
		classifier: classifier,
		entities:   entities,
		simplifier: simplifier,
		speech:     speech,
	}
}

func (p *AnalyzePipeline) Analyze(ctx context.Context, req ports.AnalyzeRequest) (result *domain.AnalysisResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("analysis_panic", "filename", req.Filename, "panic", r)
			result = domain.EmptyAnalysisResult("internal error during analysis", req.Filename, req.Language)
		}
	}()

	text := p.extractor.Extract(ctx, req.FileBytes, req.Filename)
	if strings.TrimSpace(text) == "" {
		return domain.EmptyAnalysisResult("no extractable text found in document", req.Filename, req.Language)
	}

	clauses := p.segmenter.Segment(text)

	var (
		wg             sync.WaitGroup
		classification domain.Classification
		docEntities    []domain.Entity
		clauseEntities map[int][]domain.Entity
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		classification = p.classifier.ClassifyFast(ctx, text)
	}()
	go func() {
		defer wg.Done()
		docEntities = p.entities.Extract(ctx, text)
		clauseEntities = p.entities.ExtractByClause(ctx, clauses)
	}()
	wg.Wait()

	clauses = p.simplifyPrioritized(ctx, clauses, req.Language)

	audioPaths := map[string]string{}
	if req.GenerateAudio {
		audioPaths = p.speech.SynthesizeClauses(ctx, clauses, req.Language, req.Voice)
	}

	return &domain.AnalysisResult{
		DocType:        classification.DocType,
		DocSubtype:     classification.Subtype,
		Confidence:     classification.Confidence,
		Method:         classification.Method,
		Entities:       docEntities,
		Clauses:        clauses,
		ClauseEntities: clauseEntities,
		AudioPaths:     audioPaths,
		Metadata: domain.AnalysisMetadata{
			Filename:      req.Filename,
			Language:      req.Language,
			TotalClauses:  len(clauses),
			TotalEntities: len(docEntities),
		},
	}
}

// AnalyzeClause is the drill-down path: one clause, full treatment.
func (p *AnalyzePipeline) AnalyzeClause(ctx context.Context, clauseText, language string) *domain.ClauseAnalysis {
	clauseText = strings.TrimSpace(clauseText)
	analysis := &domain.ClauseAnalysis{
		OriginalText: clauseText,
		Entities:     []domain.Entity{},
		Language:     language,
	}
	if clauseText == "" {
		return analysis
	}
	analysis.SimplifiedText = p.simplifier.SimplifyClause(ctx, clauseText, language)
	analysis.Entities = p.entities.Extract(ctx, clauseText)
	return analysis
}

// simplifyPrioritized sends early and short clauses through the simplifier
// and leaves the rest on the heuristic path. Prioritization caps model cost
// on very long documents while still covering the clauses a reader sees
// first.
func (p *AnalyzePipeline) simplifyPrioritized(ctx context.Context, clauses []domain.Clause, language string) []domain.Clause {
	var prioritized, deferred []domain.Clause
	for i, clause := range clauses {
		if i < maxSimplifiedClauses || len(clause.OriginalText) <= shortClauseChars {
			prioritized = append(prioritized, clause)
		} else {
			deferred = append(deferred, clause)
		}
	}

	out := p.simplifier.Simplify(ctx, prioritized, language)
	for _, clause := range deferred {
		clause.SimplifiedText = p.simplifier.HeuristicPlainify(clause.OriginalText)
		out = append(out, clause)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/clearclause/clearclause/internal/core/domain"
	"github.com/clearclause/clearclause/internal/core/ports"
	"github.com/clearclause/clearclause/internal/lexicon"
)

const (
	fastHeuristicMaxChars = 80
	fastHeuristicMaxWords = 12
	plainifyTruncateChars = 300
)

var batchSchema = json.RawMessage(`{"type": "array", "items": {"type": "string"}}`)

type SimplifierConfig struct {
	// BatchSize caps the number of clauses per structured batch request.
	BatchSize int
	// BatchMaxChars caps the total original-text characters in one batch.
	BatchMaxChars int
	// CircuitThreshold is the consecutive failed-batch count that disables
	// the model path in favor of the heuristic until a batch succeeds.
	CircuitThreshold int
}

func DefaultSimplifierConfig() SimplifierConfig {
	return SimplifierConfig{
		BatchSize:        48,
		BatchMaxChars:    9000,
		CircuitThreshold: 1,
	}
}

func (c SimplifierConfig) normalize() SimplifierConfig {
	def := DefaultSimplifierConfig()
	if c.BatchSize <= 0 {
		c.BatchSize = def.BatchSize
	}
	if c.BatchMaxChars <= 0 {
		c.BatchMaxChars = def.BatchMaxChars
	}
	if c.CircuitThreshold <= 0 {
		c.CircuitThreshold = def.CircuitThreshold
	}
	return c
}

// ClauseSimplifier rewrites clauses in plain language. It never fails: every
// clause ends up with model output, a table-driven rewrite, or the heuristic
// plainification of its original text.
type ClauseSimplifier struct {
	llm  ports.LanguageModel
	exec ports.RequestExecutor
	lex  *lexicon.Lexicon
	cfg  SimplifierConfig

	mu                  sync.Mutex
	consecutiveFailures int
}

func NewClauseSimplifier(llm ports.LanguageModel, exec ports.RequestExecutor, lex *lexicon.Lexicon, cfg SimplifierConfig) *ClauseSimplifier {
	return &ClauseSimplifier{
		llm:  llm,
		exec: exec,
		lex:  lex,
		cfg:  cfg.normalize(),
	}
}

// Simplify attaches simplified text to every clause. Batching and
// partitioning destroy input order; the result is re-sorted by clause number.
func (s *ClauseSimplifier) Simplify(ctx context.Context, clauses []domain.Clause, language string) []domain.Clause {
	if len(clauses) == 0 {
		return clauses
	}

	if s.circuitOpen() {
		out := make([]domain.Clause, len(clauses))
		for i, clause := range clauses {
			clause.SimplifiedText = s.HeuristicPlainify(clause.OriginalText)
			out[i] = clause
		}
		return out
	}

	var done []domain.Clause
	var needModel []domain.Clause
	for _, clause := range clauses {
		if strings.TrimSpace(clause.OriginalText) == "" {
			clause.SimplifiedText = ""
			done = append(done, clause)
			continue
		}
		if rewrite, ok := s.fastHeuristic(clause.OriginalText); ok {
			clause.SimplifiedText = rewrite
			done = append(done, clause)
			continue
		}
		needModel = append(needModel, clause)
	}

	batch := s.buildBatch(needModel)
	if len(batch) > 0 {
		done = append(done, s.simplifyBatch(ctx, batch, language)...)
	}

	// Clauses beyond the batch capacity never reach the model: a deliberate
	// cost and latency ceiling.
	for _, clause := range needModel[len(batch):] {
		clause.SimplifiedText = s.HeuristicPlainify(clause.OriginalText)
		done = append(done, clause)
	}

	sort.Slice(done, func(i, j int) bool { return done[i].Number < done[j].Number })
	return done
}

// SimplifyClause is the single-clause contract: heuristic-shortened original
// on any failure, and no model call at all for short heading-like text.
func (s *ClauseSimplifier) SimplifyClause(ctx context.Context, text, language string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	if rewrite, ok := s.fastHeuristic(text); ok {
		return rewrite
	}

	var simplified string
	err := s.exec.Execute(ctx, "simplify_clause", func(ctx context.Context) error {
		result, reqErr := s.llm.SimpleTextRequest(ctx, buildSimplifyPrompt(text, language))
		if reqErr != nil {
			return reqErr
		}
		simplified = result
		return nil
	})
	if err != nil || strings.TrimSpace(simplified) == "" {
		if err != nil {
			slog.Warn("clause_simplification_failed", "error", err)
		}
		return s.HeuristicPlainify(text)
	}
	return strings.TrimSpace(simplified)
}

// buildBatch takes a prefix of clauses into one batch up to the item and
// character caps. The batch being a strict prefix is what lets the caller
// slice off the overflow by length.
func (s *ClauseSimplifier) buildBatch(clauses []domain.Clause) []domain.Clause {
	var batch []domain.Clause
	totalChars := 0
	for _, clause := range clauses {
		if len(batch) == s.cfg.BatchSize {
			break
		}
		size := len(strings.TrimSpace(clause.OriginalText))
		if totalChars+size > s.cfg.BatchMaxChars && len(batch) > 0 {
			break
		}
		batch = append(batch, clause)
		totalChars += size
	}
	return batch
}

// simplifyBatch issues one structured request for the whole batch and assigns
// results positionally. A size mismatch or failure counts against the circuit
// and degrades to per-clause simplification.
func (s *ClauseSimplifier) simplifyBatch(ctx context.Context, batch []domain.Clause, language string) []domain.Clause {
	var results []string
	err := s.exec.Execute(ctx, "simplify_batch", func(ctx context.Context) error {
		return s.llm.StructuredRequest(ctx, buildBatchPrompt(batch, language), batchSchema, &results)
	})
	if err == nil && len(results) != len(batch) {
		err = domain.WrapError(domain.ErrSchema, "simplify batch",
			fmt.Errorf("response size mismatch: %d results for %d clauses", len(results), len(batch)))
	}
	if err != nil {
		slog.Warn("batch_simplification_failed", "clauses", len(batch), "error", err)
		s.recordBatchFailure()

		out := make([]domain.Clause, len(batch))
		for i, clause := range batch {
			clause.SimplifiedText = s.SimplifyClause(ctx, clause.OriginalText, language)
			out[i] = clause
		}
		return out
	}

	s.recordBatchSuccess()
	out := make([]domain.Clause, len(batch))
	for i, clause := range batch {
		clause.SimplifiedText = strings.TrimSpace(results[i])
		out[i] = clause
	}
	return out
}

// HeuristicPlainify is the network-free fallback: strip jargon markers,
// collapse party language, truncate.
func (s *ClauseSimplifier) HeuristicPlainify(text string) string {
	if text == "" {
		return ""
	}
	for _, rep := range s.lex.PlainifyReplacements {
		text = strings.ReplaceAll(text, rep.From, rep.To)
	}
	text = strings.TrimSpace(text)
	if len(text) > plainifyTruncateChars {
		text = text[:plainifyTruncateChars] + "..."
	}
	return text
}

// fastHeuristic resolves short headings against the rewrite table with zero
// model cost. Returns false for anything that needs real simplification.
func (s *ClauseSimplifier) fastHeuristic(text string) (string, bool) {
	normalized := strings.TrimSpace(strings.Trim(strings.TrimSpace(text), ":-"))
	if normalized == "" {
		return "", false
	}
	if len(normalized) > fastHeuristicMaxChars || len(strings.Fields(normalized)) > fastHeuristicMaxWords {
		return "", false
	}

	lower := strings.ToLower(normalized)
	for i := range s.lex.FastHeuristics {
		if s.lex.FastHeuristics[i].Match(lower) {
			return s.lex.FastHeuristics[i].Rewrite, true
		}
	}

	// Generic short-heading cleanup: capitalize and pass through.
	if len(normalized) <= 60 && !strings.HasSuffix(normalized, ".") {
		return strings.ToUpper(normalized[:1]) + normalized[1:], true
	}
	return "", false
}

func (s *ClauseSimplifier) circuitOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.consecutiveFailures >= s.cfg.CircuitThreshold
}

func (s *ClauseSimplifier) recordBatchFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consecutiveFailures++
}

func (s *ClauseSimplifier) recordBatchSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consecutiveFailures = 0
}

func buildSimplifyPrompt(text, language string) string {
	return fmt.Sprintf(`Simplify this legal clause into clear, simple language that a non-lawyer can understand.
Keep the meaning accurate but use everyday words. Remove legal jargon where possible.
Respond in %s.

Original clause: %s

Simplified version:`, language, text)
}

func buildBatchPrompt(batch []domain.Clause, language string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Simplify the following legal clauses into plain %s. Respond ONLY as a JSON array of strings, where each item is the simplified clause in the same order.\n", language)
	for i, clause := range batch {
		fmt.Fprintf(&sb, "\n[Clause %d] %s\n", i+1, strings.TrimSpace(clause.OriginalText))
	}
	return sb.String()
}

package usecase

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/clearclause/clearclause/internal/core/domain"
	"github.com/clearclause/clearclause/internal/core/ports"
	"github.com/clearclause/clearclause/internal/lexicon"
)

const obligationContextRadius = 50

var moneyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$[\d,]+(?:\.\d{2})?`),
	regexp.MustCompile(`(?i)[\d,]+(?:\.\d{2})?\s*(?:dollars?|USD|EUR|GBP|INR)`),
	regexp.MustCompile(`(?i)[\d,]+(?:\.\d{2})?\s*(?:rupees?|₹)`),
}

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`),
	regexp.MustCompile(`\d{4}-\d{2}-\d{2}`),
	regexp.MustCompile(`(?i)(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4}`),
	regexp.MustCompile(`(?i)\d{1,2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+\d{4}`),
}

var obligationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)shall\s+\w+`),
	regexp.MustCompile(`(?i)must\s+\w+`),
	regexp.MustCompile(`(?i)required\s+to\s+\w+`),
	regexp.MustCompile(`(?i)obligated\s+to\s+\w+`),
	regexp.MustCompile(`(?i)responsible\s+for\s+\w+`),
	regexp.MustCompile(`(?i)liable\s+for\s+\w+`),
}

var legalContextPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)governing law[^.;\n]*`),
	regexp.MustCompile(`(?i)jurisdiction[^.;\n]*`),
	regexp.MustCompile(`(?i)laws?\s+of\s+[^.;\n]*`),
	regexp.MustCompile(`(?i)(?:state|federal)\s+laws?[^.;\n]*`),
	regexp.MustCompile(`(?i)corporation\s+law[^.;\n]*`),
}

// EntityExtractor combines the statistical tagging capability with
// deterministic pattern matching. Extraction never fails: a tagger outage
// degrades to patterns only.
type EntityExtractor struct {
	tagger     ports.EntityTagger
	legalTerms []*regexp.Regexp
}

func NewEntityExtractor(tagger ports.EntityTagger, lex *lexicon.Lexicon) *EntityExtractor {
	terms := make([]*regexp.Regexp, 0, len(lex.LegalTerms))
	for _, term := range lex.LegalTerms {
		terms = append(terms, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(term)+`\b`))
	}
	return &EntityExtractor{tagger: tagger, legalTerms: terms}
}

func (e *EntityExtractor) Extract(ctx context.Context, text string) []domain.Entity {
	if strings.TrimSpace(text) == "" {
		return []domain.Entity{}
	}

	entities := e.taggedEntities(ctx, text)
	entities = append(entities, e.patternEntities(text)...)
	return entities
}

// ExtractByClause applies Extract independently per clause. Every clause
// number gets an entry, even when nothing was found.
func (e *EntityExtractor) ExtractByClause(ctx context.Context, clauses []domain.Clause) map[int][]domain.Entity {
	byClause := make(map[int][]domain.Entity, len(clauses))
	for _, clause := range clauses {
		byClause[clause.Number] = e.Extract(ctx, clause.OriginalText)
	}
	return byClause
}

func (e *EntityExtractor) taggedEntities(ctx context.Context, text string) []domain.Entity {
	if e.tagger == nil {
		return []domain.Entity{}
	}
	spans, err := e.tagger.Tag(ctx, text)
	if err != nil {
		slog.Warn("entity_tagging_failed", "error", err)
		return []domain.Entity{}
	}

	entities := make([]domain.Entity, 0, len(spans))
	for _, span := range spans {
		entities = append(entities, domain.Entity{
			Type:       mapTagLabel(span.Label),
			Value:      span.Text,
			Confidence: span.Score,
			Start:      span.Start,
			End:        span.End,
		})
	}
	return entities
}

// mapTagLabel re-labels model span types into the domain taxonomy.
func mapTagLabel(label string) domain.EntityType {
	switch strings.ToUpper(label) {
	case "PER", "PERSON":
		return domain.EntityParty
	case "ORG":
		return domain.EntityParty
	case "LOC":
		return domain.EntityLocation
	case "DATE", "TIME":
		return domain.EntityDate
	case "MISC":
		return domain.EntityLegalTerm
	default:
		return domain.EntityOther
	}
}

func (e *EntityExtractor) patternEntities(text string) []domain.Entity {
	var entities []domain.Entity

	for _, pattern := range moneyPatterns {
		entities = appendMatches(entities, pattern, text, domain.EntityMonetaryValue, 0.9)
	}
	for _, pattern := range datePatterns {
		entities = appendMatches(entities, pattern, text, domain.EntityDate, 0.9)
	}

	for _, pattern := range obligationPatterns {
		for _, loc := range pattern.FindAllStringIndex(text, -1) {
			// Obligation values carry surrounding context, not just the verb phrase.
			start := loc[0] - obligationContextRadius
			if start < 0 {
				start = 0
			}
			end := loc[1] + obligationContextRadius
			if end > len(text) {
				end = len(text)
			}
			entities = append(entities, domain.Entity{
				Type:       domain.EntityObligation,
				Value:      strings.TrimSpace(text[start:end]),
				Confidence: 0.8,
				Start:      loc[0],
				End:        loc[1],
			})
		}
	}

	for _, pattern := range e.legalTerms {
		entities = appendMatches(entities, pattern, text, domain.EntityLegalTerm, 0.9)
	}

	for _, pattern := range legalContextPatterns {
		for _, loc := range pattern.FindAllStringIndex(text, -1) {
			snippet := strings.Trim(strings.TrimSpace(text[loc[0]:loc[1]]), " .;")
			if snippet == "" {
				continue
			}
			entities = append(entities, domain.Entity{
				Type:       domain.EntityLegalContext,
				Value:      snippet,
				Confidence: 0.75,
				Start:      loc[0],
				End:        loc[1],
			})
		}
	}

	return entities
}

func appendMatches(entities []domain.Entity, pattern *regexp.Regexp, text string, entityType domain.EntityType, confidence float64) []domain.Entity {
	for _, loc := range pattern.FindAllStringIndex(text, -1) {
		entities = append(entities, domain.Entity{
			Type:       entityType,
			Value:      text[loc[0]:loc[1]],
			Confidence: confidence,
			Start:      loc[0],
			End:        loc[1],
		})
	}
	return entities
}

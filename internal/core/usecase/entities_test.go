package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/clearclause/clearclause/internal/core/domain"
)

func hasEntity(entities []domain.Entity, entityType domain.EntityType, value string) bool {
	for _, entity := range entities {
		if entity.Type == entityType && entity.Value == value {
			return true
		}
	}
	return false
}

func TestExtractPatternEntities(t *testing.T) {
	extractor := NewEntityExtractor(&fakeTagger{}, testLexicon(t))

	text := "The buyer shall pay $5,000.00 to the seller no later than January 1, 2024."
	entities := extractor.Extract(context.Background(), text)

	if !hasEntity(entities, domain.EntityMonetaryValue, "$5,000.00") {
		t.Fatalf("expected monetary value entity, got %+v", entities)
	}
	if !hasEntity(entities, domain.EntityDate, "January 1, 2024") {
		t.Fatalf("expected date entity, got %+v", entities)
	}
}

func TestExtractObligationCarriesContext(t *testing.T) {
	extractor := NewEntityExtractor(&fakeTagger{}, testLexicon(t))

	text := "Under this section the receiving party shall maintain all records for six years."
	entities := extractor.Extract(context.Background(), text)

	var obligation *domain.Entity
	for i := range entities {
		if entities[i].Type == domain.EntityObligation {
			obligation = &entities[i]
			break
		}
	}
	if obligation == nil {
		t.Fatalf("expected obligation entity, got %+v", entities)
	}
	if len(obligation.Value) <= len("shall maintain") {
		t.Fatalf("expected obligation value to include context, got %q", obligation.Value)
	}
}

func TestExtractLegalTermsFromLexicon(t *testing.T) {
	extractor := NewEntityExtractor(&fakeTagger{}, testLexicon(t))

	entities := extractor.Extract(context.Background(),
		"Any breach triggers indemnification under the governing law of this state.")

	if !hasEntity(entities, domain.EntityLegalTerm, "breach") {
		t.Fatalf("expected breach legal term, got %+v", entities)
	}
	if !hasEntity(entities, domain.EntityLegalTerm, "indemnification") {
		t.Fatalf("expected indemnification legal term, got %+v", entities)
	}
}

func TestExtractMapsTaggerSpans(t *testing.T) {
	tagger := &fakeTagger{spans: []domain.TagSpan{
		{Label: "ORG", Text: "Acme Corp", Score: 0.98, Start: 0, End: 9},
		{Label: "LOC", Text: "Delaware", Score: 0.95, Start: 20, End: 28},
	}}
	extractor := NewEntityExtractor(tagger, testLexicon(t))

	entities := extractor.Extract(context.Background(), "Acme Corp operates in Delaware.")
	if !hasEntity(entities, domain.EntityParty, "Acme Corp") {
		t.Fatalf("expected ORG mapped to Party, got %+v", entities)
	}
	if !hasEntity(entities, domain.EntityLocation, "Delaware") {
		t.Fatalf("expected LOC mapped to Location, got %+v", entities)
	}
}

func TestExtractSurvivesTaggerFailure(t *testing.T) {
	tagger := &fakeTagger{err: errors.New("inference service down")}
	extractor := NewEntityExtractor(tagger, testLexicon(t))

	entities := extractor.Extract(context.Background(), "Payment of $100 is due.")
	if !hasEntity(entities, domain.EntityMonetaryValue, "$100") {
		t.Fatalf("expected pattern extraction to survive tagger outage, got %+v", entities)
	}
}

func TestExtractByClauseCoversEveryClause(t *testing.T) {
	extractor := NewEntityExtractor(&fakeTagger{}, testLexicon(t))

	clauses := []domain.Clause{
		{Number: 1, OriginalText: "The fee is $250 per month."},
		{Number: 2, OriginalText: "Nothing of interest here."},
	}
	byClause := extractor.ExtractByClause(context.Background(), clauses)

	if len(byClause) != 2 {
		t.Fatalf("expected an entry per clause, got %d", len(byClause))
	}
	if !hasEntity(byClause[1], domain.EntityMonetaryValue, "$250") {
		t.Fatalf("expected monetary entity in clause 1, got %+v", byClause[1])
	}
	if byClause[2] == nil {
		t.Fatalf("expected non-nil slice for clause without entities")
	}
}

func TestExtractEmptyText(t *testing.T) {
	extractor := NewEntityExtractor(&fakeTagger{}, testLexicon(t))

	entities := extractor.Extract(context.Background(), "  ")
	if len(entities) != 0 {
		t.Fatalf("expected no entities for blank input, got %+v", entities)
	}
}

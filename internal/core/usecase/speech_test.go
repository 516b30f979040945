package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/clearclause/clearclause/internal/core/domain"
)

func testSpeechConfig() SpeechConfig {
	return SpeechConfig{
		MaxTextLen:       3000,
		MaxAttempts:      3,
		RetryDelay:       time.Millisecond,
		InterClauseDelay: time.Millisecond,
	}
}

func TestSynthesizeStoresAudio(t *testing.T) {
	synth := &fakeSynthesizer{audio: []byte("mp3-bytes")}
	store := &fakeAudioStore{}
	orch := NewSpeechOrchestrator(synth, store, testLexicon(t), testSpeechConfig())

	path := orch.Synthesize(context.Background(), "Hello there.", "english", "kore")
	if !strings.HasPrefix(path, "/static/audio/") {
		t.Fatalf("expected public audio path, got %q", path)
	}
	if store.saved != 1 {
		t.Fatalf("expected 1 stored file, got %d", store.saved)
	}
}

func TestSynthesizeRetriesTransientFailure(t *testing.T) {
	synth := &fakeSynthesizer{audio: []byte("mp3-bytes"), failures: 2}
	orch := NewSpeechOrchestrator(synth, &fakeAudioStore{}, testLexicon(t), testSpeechConfig())

	path := orch.Synthesize(context.Background(), "Hello there.", "english", "kore")
	if path == "" {
		t.Fatalf("expected success after retries")
	}
	if synth.calls != 3 {
		t.Fatalf("expected 3 synthesis attempts, got %d", synth.calls)
	}
}

func TestSynthesizeReturnsEmptyOnPersistentFailure(t *testing.T) {
	synth := &fakeSynthesizer{err: errors.New("voice service down")}
	orch := NewSpeechOrchestrator(synth, &fakeAudioStore{}, testLexicon(t), testSpeechConfig())

	if path := orch.Synthesize(context.Background(), "Hello there.", "english", "kore"); path != "" {
		t.Fatalf("expected empty path on persistent failure, got %q", path)
	}
	if synth.calls != 3 {
		t.Fatalf("expected attempts capped at 3, got %d", synth.calls)
	}
}

func TestSynthesizeRejectsEmptyAudio(t *testing.T) {
	synth := &fakeSynthesizer{audio: []byte{}}
	store := &fakeAudioStore{}
	orch := NewSpeechOrchestrator(synth, store, testLexicon(t), testSpeechConfig())

	if path := orch.Synthesize(context.Background(), "Hello there.", "english", "kore"); path != "" {
		t.Fatalf("expected empty path for empty audio, got %q", path)
	}
	if store.saved != 0 {
		t.Fatalf("expected nothing stored, got %d", store.saved)
	}
}

func TestSynthesizeBlankText(t *testing.T) {
	synth := &fakeSynthesizer{audio: []byte("mp3-bytes")}
	orch := NewSpeechOrchestrator(synth, &fakeAudioStore{}, testLexicon(t), testSpeechConfig())

	if path := orch.Synthesize(context.Background(), "   ", "english", "kore"); path != "" {
		t.Fatalf("expected empty path for blank text, got %q", path)
	}
	if synth.calls != 0 {
		t.Fatalf("expected no synthesis calls, got %d", synth.calls)
	}
}

func TestSynthesizeClausesSkipsFailedItems(t *testing.T) {
	// Fails the first item, succeeds afterwards.
	synth := &fakeSynthesizer{audio: []byte("mp3-bytes"), failures: 3}
	orch := NewSpeechOrchestrator(synth, &fakeAudioStore{}, testLexicon(t), testSpeechConfig())

	clauses := []domain.Clause{
		{Number: 1, SimplifiedText: "First clause."},
		{Number: 2, SimplifiedText: "Second clause."},
	}
	paths := orch.SynthesizeClauses(context.Background(), clauses, "english", "kore")

	if _, ok := paths["1"]; ok {
		t.Fatalf("expected clause 1 to be skipped, got %v", paths)
	}
	if _, ok := paths["2"]; !ok {
		t.Fatalf("expected clause 2 audio, got %v", paths)
	}
	if _, ok := paths["summary"]; !ok {
		t.Fatalf("expected summary audio, got %v", paths)
	}
}

func TestSynthesizeClausesSkipsUnsimplifiedClauses(t *testing.T) {
	synth := &fakeSynthesizer{audio: []byte("mp3-bytes")}
	orch := NewSpeechOrchestrator(synth, &fakeAudioStore{}, testLexicon(t), testSpeechConfig())

	clauses := []domain.Clause{
		{Number: 1, OriginalText: "Original only."},
		{Number: 2, OriginalText: "Second clause.", SimplifiedText: "Plain second clause."},
	}
	paths := orch.SynthesizeClauses(context.Background(), clauses, "english", "kore")

	if _, ok := paths["1"]; ok {
		t.Fatalf("expected unsimplified clause to be skipped, got %v", paths)
	}
	if _, ok := paths["2"]; !ok {
		t.Fatalf("expected clause 2 audio, got %v", paths)
	}
	// One clause plus the summary entry.
	if synth.calls != 2 {
		t.Fatalf("expected 2 synthesis calls, got %d", synth.calls)
	}
}

func TestVoicesUnknownLanguageFallsBack(t *testing.T) {
	orch := NewSpeechOrchestrator(&fakeSynthesizer{}, &fakeAudioStore{}, testLexicon(t), testSpeechConfig())

	voices := orch.Voices("klingon")
	if _, ok := voices["kore"]; !ok {
		t.Fatalf("expected english fallback voices, got %v", voices)
	}
}

package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/clearclause/clearclause/internal/core/domain"
	"github.com/clearclause/clearclause/internal/core/ports"
	"github.com/clearclause/clearclause/internal/lexicon"
)

// passExecutor runs operations inline with no pacing or retries.
type passExecutor struct{}

func (passExecutor) Execute(ctx context.Context, _ string, fn func(context.Context) error) error {
	return fn(ctx)
}

func testExecutor() ports.RequestExecutor {
	return passExecutor{}
}

func testLexicon(t interface{ Fatalf(string, ...any) }) *lexicon.Lexicon {
	lex, err := lexicon.Load()
	if err != nil {
		t.Fatalf("load lexicon: %v", err)
	}
	return lex
}

// fakeLLM scripts structured and plain responses and counts calls.
type fakeLLM struct {
	structuredFn func(prompt string, out any) error
	simpleFn     func(prompt string) (string, error)

	structuredCalls int
	simpleCalls     int
}

func (f *fakeLLM) StructuredRequest(_ context.Context, prompt string, _ json.RawMessage, out any) error {
	f.structuredCalls++
	if f.structuredFn == nil {
		return errors.New("no structured response scripted")
	}
	return f.structuredFn(prompt, out)
}

func (f *fakeLLM) SimpleTextRequest(_ context.Context, prompt string) (string, error) {
	f.simpleCalls++
	if f.simpleFn == nil {
		return "", errors.New("no simple response scripted")
	}
	return f.simpleFn(prompt)
}

// structuredJSON scripts a fixed JSON document as the structured response.
func structuredJSON(payload string) func(string, any) error {
	return func(_ string, out any) error {
		return json.Unmarshal([]byte(payload), out)
	}
}

type fakeTagger struct {
	spans []domain.TagSpan
	err   error
	calls int
}

func (f *fakeTagger) Tag(context.Context, string) ([]domain.TagSpan, error) {
	f.calls++
	return f.spans, f.err
}

type fakeLabeler struct {
	label string
	err   error
	calls int
}

func (f *fakeLabeler) Label(context.Context, string) (string, error) {
	f.calls++
	return f.label, f.err
}

type fakeSynthesizer struct {
	audio    []byte
	err      error
	failures int
	calls    int
}

func (f *fakeSynthesizer) Synthesize(context.Context, string, string) ([]byte, error) {
	f.calls++
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("synthesis failed")
	}
	return f.audio, f.err
}

type fakeAudioStore struct {
	err   error
	saved int
}

func (f *fakeAudioStore) SaveAudio(_ context.Context, _ []byte, voiceKey string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.saved++
	return fmt.Sprintf("/static/audio/tts_%d_%s.mp3", f.saved, voiceKey), nil
}

type fakeExtractor struct {
	text string
}

func (f *fakeExtractor) Extract(context.Context, []byte, string) string {
	return f.text
}

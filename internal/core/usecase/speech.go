package usecase

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/clearclause/clearclause/internal/core/domain"
	"github.com/clearclause/clearclause/internal/core/ports"
	"github.com/clearclause/clearclause/internal/lexicon"
)

type SpeechConfig struct {
	// MaxTextLen truncates synthesis input; the voice service rejects
	// longer payloads.
	MaxTextLen int
	// MaxAttempts bounds retries for a single synthesis call.
	MaxAttempts int
	// RetryDelay spaces retries for one item.
	RetryDelay time.Duration
	// InterClauseDelay spaces consecutive per-clause synthesis calls.
	InterClauseDelay time.Duration
}

func DefaultSpeechConfig() SpeechConfig {
	return SpeechConfig{
		MaxTextLen:       3000,
		MaxAttempts:      3,
		RetryDelay:       time.Second,
		InterClauseDelay: 500 * time.Millisecond,
	}
}

func (c SpeechConfig) normalize() SpeechConfig {
	def := DefaultSpeechConfig()
	if c.MaxTextLen <= 0 {
		c.MaxTextLen = def.MaxTextLen
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = def.MaxAttempts
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = def.RetryDelay
	}
	if c.InterClauseDelay <= 0 {
		c.InterClauseDelay = def.InterClauseDelay
	}
	return c
}

// SpeechOrchestrator turns text into stored audio files. Synthesis is best
// effort: failures produce an empty path, never an error, so a broken voice
// backend degrades the response instead of failing the analysis.
type SpeechOrchestrator struct {
	synth ports.SpeechSynthesizer
	store ports.AudioStore
	lex   *lexicon.Lexicon
	cfg   SpeechConfig
}

func NewSpeechOrchestrator(synth ports.SpeechSynthesizer, store ports.AudioStore, lex *lexicon.Lexicon, cfg SpeechConfig) *SpeechOrchestrator {
	return &SpeechOrchestrator{
		synth: synth,
		store: store,
		lex:   lex,
		cfg:   cfg.normalize(),
	}
}

// Synthesize converts text to audio and stores it, returning the public path
// or "" when synthesis could not produce audio.
func (o *SpeechOrchestrator) Synthesize(ctx context.Context, text, language, voiceKey string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if len(text) > o.cfg.MaxTextLen {
		text = text[:o.cfg.MaxTextLen]
	}

	voiceID := o.lex.ResolveVoice(language, voiceKey)

	var audio []byte
	for attempt := 1; attempt <= o.cfg.MaxAttempts; attempt++ {
		data, err := o.synth.Synthesize(ctx, text, voiceID)
		if err == nil && len(data) > 0 {
			audio = data
			break
		}
		if err != nil {
			slog.Warn("speech_synthesis_failed", "attempt", attempt, "voice", voiceID, "error", err)
		} else {
			slog.Warn("speech_synthesis_empty", "attempt", attempt, "voice", voiceID)
		}
		if attempt < o.cfg.MaxAttempts {
			select {
			case <-ctx.Done():
				return ""
			case <-time.After(o.cfg.RetryDelay):
			}
		}
	}
	if len(audio) == 0 {
		return ""
	}

	path, err := o.store.SaveAudio(ctx, audio, voiceKey)
	if err != nil {
		slog.Error("audio_store_failed", "voice", voiceKey, "error", err)
		return ""
	}
	return path
}

// SynthesizeClauses produces one audio file per simplified clause plus a
// closing summary entry. Clauses without simplified text are skipped. Items
// are synthesized sequentially with a delay between calls to stay under the
// voice service's connection churn limits. Failed items are omitted from the
// map.
func (o *SpeechOrchestrator) SynthesizeClauses(ctx context.Context, clauses []domain.Clause, language, voiceKey string) map[string]string {
	paths := make(map[string]string)
	for i, clause := range clauses {
		text := strings.TrimSpace(clause.SimplifiedText)
		if text == "" {
			continue
		}
		if path := o.Synthesize(ctx, text, language, voiceKey); path != "" {
			paths[strconv.Itoa(clause.Number)] = path
		}
		if i < len(clauses)-1 {
			select {
			case <-ctx.Done():
				return paths
			case <-time.After(o.cfg.InterClauseDelay):
			}
		}
	}
	if path := o.Synthesize(ctx, "Document analysis complete.", language, voiceKey); path != "" {
		paths["summary"] = path
	}
	return paths
}

// Voices lists the voice keys available for a language.
func (o *SpeechOrchestrator) Voices(language string) map[string]string {
	return o.lex.VoicesFor(language)
}

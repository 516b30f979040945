// Package lexicon holds the deterministic rule tables used by the fallback
// paths: keyword classification, legal-term extraction, heuristic clause
// rewrites and voice resolution. The tables ship embedded so every fallback
// works without network access.
package lexicon

import (
	_ "embed"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var rulesYAML []byte

type Replacement struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

type FastHeuristic struct {
	Pattern string `yaml:"pattern"`
	Rewrite string `yaml:"rewrite"`

	re *regexp.Regexp
}

// Match reports whether the heuristic applies to the normalized heading text.
func (h *FastHeuristic) Match(lower string) bool {
	return h.re.MatchString(lower)
}

type Lexicon struct {
	DocumentTypes        map[string][]string          `yaml:"document_types"`
	LegalTerms           []string                     `yaml:"legal_terms"`
	PlainifyReplacements []Replacement                `yaml:"plainify_replacements"`
	FastHeuristics       []FastHeuristic              `yaml:"fast_heuristics"`
	Voices               map[string]map[string]string `yaml:"voices"`
	Languages            map[string]string            `yaml:"languages"`
}

// Load parses the embedded rule tables and compiles the heuristic patterns.
func Load() (*Lexicon, error) {
	var lex Lexicon
	if err := yaml.Unmarshal(rulesYAML, &lex); err != nil {
		return nil, fmt.Errorf("parse lexicon rules: %w", err)
	}
	if len(lex.DocumentTypes) == 0 {
		return nil, fmt.Errorf("lexicon rules: no document type keywords")
	}
	for i := range lex.FastHeuristics {
		re, err := regexp.Compile(lex.FastHeuristics[i].Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile fast heuristic %q: %w", lex.FastHeuristics[i].Pattern, err)
		}
		lex.FastHeuristics[i].re = re
	}
	return &lex, nil
}

// MustLoad is for wiring paths where the embedded tables are trusted.
func MustLoad() *Lexicon {
	lex, err := Load()
	if err != nil {
		panic(err)
	}
	return lex
}

// MaxKeywordCount returns the longest keyword list across all categories,
// the denominator for keyword-derived classification confidence.
func (l *Lexicon) MaxKeywordCount() int {
	max := 0
	for _, keywords := range l.DocumentTypes {
		if len(keywords) > max {
			max = len(keywords)
		}
	}
	return max
}

// ResolveVoice maps a language and voice key to a concrete synthesis voice
// ID, falling back to the english table and its "kore" default.
func (l *Lexicon) ResolveVoice(language, voiceKey string) string {
	table, ok := l.Voices[language]
	if !ok {
		table = l.Voices["english"]
	}
	if voice, ok := table[voiceKey]; ok {
		return voice
	}
	if voice, ok := table["kore"]; ok {
		return voice
	}
	return "en-US-AriaNeural"
}

// VoicesFor returns the voice-key table for a language, falling back to the
// english table for unknown languages.
func (l *Lexicon) VoicesFor(language string) map[string]string {
	if table, ok := l.Voices[language]; ok {
		return table
	}
	return l.Voices["english"]
}

// LanguageName returns the display name used in translation prompts.
func (l *Lexicon) LanguageName(language string) string {
	if name, ok := l.Languages[language]; ok {
		return name
	}
	return language
}

// Package chunking splits long text into bounded segments at sentence
// boundaries so outbound AI requests stay under size limits.
package chunking

import (
	"strings"
	"unicode"
)

type Splitter struct {
	MaxChunkSize int
}

func NewSplitter(maxChunkSize int) *Splitter {
	if maxChunkSize <= 0 {
		maxChunkSize = 3000
	}
	return &Splitter{MaxChunkSize: maxChunkSize}
}

func (s *Splitter) Split(text string) []string {
	return s.SplitSize(text, s.MaxChunkSize)
}

// SplitSize greedily accumulates whole sentences into chunks of at most
// maxChunkSize characters. A single sentence longer than the limit becomes
// its own oversized chunk; sentences are never split.
func (s *Splitter) SplitSize(text string, maxChunkSize int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = s.MaxChunkSize
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	if len(trimmed) <= maxChunkSize {
		return []string{trimmed}
	}

	var chunks []string
	var current strings.Builder
	for _, sentence := range splitSentences(trimmed) {
		if current.Len() > 0 && current.Len()+1+len(sentence) > maxChunkSize {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(sentence)
	}
	if current.Len() > 0 {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}
	return chunks
}

// splitSentences breaks text on sentence-ending punctuation followed by
// whitespace, keeping the punctuation with its sentence.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if !isSentenceEnd(runes[i]) {
			continue
		}
		// Consume a run of terminators ("?!", "...").
		j := i
		for j+1 < len(runes) && isSentenceEnd(runes[j+1]) {
			j++
		}
		if j+1 < len(runes) && !unicode.IsSpace(runes[j+1]) {
			i = j
			continue
		}
		sentence := strings.TrimSpace(string(runes[start : j+1]))
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		i = j
		start = j + 1
	}
	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

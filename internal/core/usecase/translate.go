package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/clearclause/clearclause/internal/core/domain"
	"github.com/clearclause/clearclause/internal/core/ports"
	"github.com/clearclause/clearclause/internal/lexicon"
)

const translateChunkSize = 4000

// TextTranslator translates analysis output between supported languages,
// chunking long text so each request stays under the model's comfortable
// input size.
type TextTranslator struct {
	llm     ports.LanguageModel
	exec    ports.RequestExecutor
	chunker ports.Chunker
	lex     *lexicon.Lexicon
}

func NewTextTranslator(llm ports.LanguageModel, exec ports.RequestExecutor, chunker ports.Chunker, lex *lexicon.Lexicon) *TextTranslator {
	return &TextTranslator{llm: llm, exec: exec, chunker: chunker, lex: lex}
}

// Translate returns text rendered in the target language. Chunks are
// translated independently and joined; a failure on any chunk fails the
// whole translation.
func (t *TextTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}
	if sourceLang == targetLang {
		return text, nil
	}

	chunks := []string{text}
	if len(text) > translateChunkSize {
		chunks = t.chunker.SplitSize(text, translateChunkSize)
	}

	source := t.lex.LanguageName(sourceLang)
	target := t.lex.LanguageName(targetLang)

	translated := make([]string, len(chunks))
	for i, chunk := range chunks {
		var result string
		err := t.exec.Execute(ctx, "translate_text", func(ctx context.Context) error {
			out, reqErr := t.llm.SimpleTextRequest(ctx, buildTranslatePrompt(chunk, source, target))
			if reqErr != nil {
				return reqErr
			}
			result = out
			return nil
		})
		if err != nil {
			return "", domain.WrapError(domain.ErrTemporary, fmt.Sprintf("translate chunk %d/%d", i+1, len(chunks)), err)
		}
		translated[i] = strings.TrimSpace(result)
	}
	return strings.Join(translated, " "), nil
}

func buildTranslatePrompt(text, source, target string) string {
	return fmt.Sprintf(`Translate the following text from %s to %s. Preserve the meaning and tone. Respond with only the translation, no explanations.

%s`, source, target, text)
}

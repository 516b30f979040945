package usecase

import (
	"regexp"
	"strings"

	"github.com/clearclause/clearclause/internal/core/domain"
)

const (
	minClauseChars    = 10
	minParagraphChars = 50
)

var (
	numberedMarker = regexp.MustCompile(`(?m)^[ \t]*\d+\.[ \t]*`)
	romanMarker    = regexp.MustCompile(`(?m)^[ \t]*[IVX]+\.[ \t]*`)
	letteredMarker = regexp.MustCompile(`(?m)^[ \t]*[a-z]\.[ \t]*`)
)

// ClauseSegmenter detects clause boundaries with a cascade of structural
// heuristics: numbered markers, then roman numerals, then lettered markers,
// with blank-line paragraphs as the last resort. Clause numbers are assigned
// 1-based in order of appearance, regardless of the numbering found in the
// source.
type ClauseSegmenter struct{}

func NewClauseSegmenter() *ClauseSegmenter {
	return &ClauseSegmenter{}
}

func (s *ClauseSegmenter) Segment(text string) []domain.Clause {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var texts []string
	for _, marker := range []*regexp.Regexp{numberedMarker, romanMarker, letteredMarker} {
		texts = append(texts, markerSegments(text, marker)...)
	}
	// Paragraph fallback applies only when no structural pattern matched.
	if len(texts) == 0 {
		texts = paragraphSegments(text)
	}

	clauses := make([]domain.Clause, 0, len(texts))
	for i, t := range texts {
		clauses = append(clauses, domain.Clause{
			Number:       i + 1,
			OriginalText: t,
		})
	}
	return clauses
}

// markerSegments extracts the text between consecutive marker matches,
// dropping fragments shorter than the minimum clause length.
func markerSegments(text string, marker *regexp.Regexp) []string {
	locs := marker.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	var segments []string
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		segment := strings.TrimSpace(text[loc[1]:end])
		if len(segment) > minClauseChars {
			segments = append(segments, segment)
		}
	}
	return segments
}

func paragraphSegments(text string) []string {
	var segments []string
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if len(para) > minParagraphChars {
			segments = append(segments, para)
		}
	}
	return segments
}

// Package segmenter splits sentences written without spaces between words
// into an ordered sequence of tokens.
package segmenter

import (
	"log/slog"
)

// Segmenter splits a sentence into tokens. Implementations must be safe for
// concurrent use.
type Segmenter interface {
	Segment(sentence string) []string
}

// Func adapts an ordinary function to the Segmenter interface.
type Func func(sentence string) []string

// Segment calls f(sentence).
func (f Func) Segment(sentence string) []string { return f(sentence) }

// Safe wraps a Segmenter so that segmentation never fails outward: a panic in
// the wrapped implementation degrades to an empty token list, empty tokens are
// dropped, and the result is never nil.
type Safe struct {
	next Segmenter
	log  *slog.Logger
}

// NewSafe wraps next.
func NewSafe(next Segmenter, logger *slog.Logger) *Safe {
	return &Safe{
		next: next,
		log:  logger.With("component", "segmenter"),
	}
}

// Segment returns the tokens of sentence, or an empty slice when the wrapped
// segmenter finds nothing or fails.
func (s *Safe) Segment(sentence string) (tokens []string) {
	if sentence == "" {
		return []string{}
	}

	defer func() {
		if r := recover(); r != nil {
			s.log.Warn("segmentation failed, returning no tokens",
				slog.Any("panic", r),
				slog.Int("sentence_len", len(sentence)),
			)
			tokens = []string{}
		}
	}()

	raw := s.next.Segment(sentence)
	tokens = make([]string, 0, len(raw))
	for _, t := range raw {
		if t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

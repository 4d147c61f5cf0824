package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// NormalizeSentence prepares raw input for segmentation:
//   - trims leading/trailing whitespace
//   - converts to Unicode NFC, so that equivalent sequences of Khmer
//     vowel signs and subscripts compare equal to dictionary words
//
// Case and inner whitespace are preserved; whitespace is a word boundary
// for the segmenter.
func NormalizeSentence(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	return norm.NFC.String(text)
}

// ValidateSentence checks raw lookup input: it must contain something other
// than whitespace and be at most maxRunes runes long after normalization.
// A non-positive maxRunes disables the length check.
func ValidateSentence(text string, maxRunes int) error {
	if !utf8.ValidString(text) {
		return NewValidationError("text", "must be valid UTF-8")
	}
	normalized := NormalizeSentence(text)
	if normalized == "" {
		return NewValidationError("text", "required")
	}
	if n := utf8.RuneCountInString(normalized); maxRunes > 0 && n > maxRunes {
		return NewValidationError("text", fmt.Sprintf("must be at most %d characters (got %d)", maxRunes, n))
	}
	return nil
}

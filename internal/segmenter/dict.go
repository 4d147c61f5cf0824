package segmenter

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed words.txt
var defaultWordList string

// DefaultWords returns the embedded word list.
func DefaultWords() []string {
	words, _ := ReadWords(strings.NewReader(defaultWordList))
	return words
}

// ReadWords reads a word list: one word per line, blank lines and lines
// starting with "#" are skipped.
func ReadWords(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word != "" && !strings.HasPrefix(word, "#") {
			words = append(words, word)
		}
	}
	return words, scanner.Err()
}

// LoadWords reads a word list file.
func LoadWords(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("segmenter: open word list: %w", err)
	}
	defer f.Close()

	words, err := ReadWords(f)
	if err != nil {
		return nil, fmt.Errorf("segmenter: read word list %s: %w", path, err)
	}
	return words, nil
}

// NewDefault builds a Khmer segmenter from the embedded word list, extended
// with the words from extraPath when it is not empty.
func NewDefault(extraPath string) (*Khmer, error) {
	words := DefaultWords()
	if extraPath != "" {
		extra, err := LoadWords(extraPath)
		if err != nil {
			return nil, err
		}
		words = append(words, extra...)
	}
	return NewKhmer(words), nil
}

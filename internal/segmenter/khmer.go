package segmenter

import (
	"strings"

	"github.com/heartmarshall/khmer-lookup/internal/domain"
)

// Khmer is a dictionary-based segmenter using forward maximal matching over
// orthographic clusters. At each position it takes the longest dictionary
// word; clusters that start no known word are merged into a single unknown
// token. Whitespace and U+200B always separate tokens and are dropped.
//
// Khmer is immutable after construction and safe for concurrent use.
type Khmer struct {
	words       map[string]struct{}
	maxClusters int
}

// NewKhmer builds a segmenter from a word list. Words are NFC-normalized;
// blank entries and entries with non-Khmer characters are ignored.
func NewKhmer(words []string) *Khmer {
	k := &Khmer{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		w = domain.NormalizeSentence(w)
		cs := clusters(w)
		if len(cs) == 0 {
			continue
		}
		k.words[w] = struct{}{}
		if len(cs) > k.maxClusters {
			k.maxClusters = len(cs)
		}
	}
	return k
}

// Len returns the number of dictionary words.
func (k *Khmer) Len() int { return len(k.words) }

// Segment splits sentence into tokens.
func (k *Khmer) Segment(sentence string) []string {
	units := scanUnits(sentence)
	tokens := make([]string, 0, len(units))

	var run []string
	for _, u := range units {
		if u.kind == unitKhmer {
			run = append(run, u.text)
			continue
		}
		tokens = k.matchRun(tokens, run)
		run = run[:0]
		if u.kind != unitBreak {
			tokens = append(tokens, u.text)
		}
	}
	return k.matchRun(tokens, run)
}

// matchRun appends the tokens of a contiguous run of Khmer clusters to dst.
func (k *Khmer) matchRun(dst []string, run []string) []string {
	var unknown strings.Builder
	for i := 0; i < len(run); {
		n := k.longestMatch(run[i:])
		if n == 0 {
			unknown.WriteString(run[i])
			i++
			continue
		}
		if unknown.Len() > 0 {
			dst = append(dst, unknown.String())
			unknown.Reset()
		}
		dst = append(dst, strings.Join(run[i:i+n], ""))
		i += n
	}
	if unknown.Len() > 0 {
		dst = append(dst, unknown.String())
	}
	return dst
}

// longestMatch returns the number of leading clusters forming the longest
// dictionary word, or 0.
func (k *Khmer) longestMatch(run []string) int {
	for n := min(len(run), k.maxClusters); n > 0; n-- {
		if _, ok := k.words[strings.Join(run[:n], "")]; ok {
			return n
		}
	}
	return 0
}

package segmenter

import "unicode"

const (
	coeng = '\u17d2'
	zwsp  = '\u200b'
	zwnj  = '\u200c'
	zwj   = '\u200d'
)

type unitKind int

const (
	unitKhmer unitKind = iota // one orthographic cluster
	unitWord                  // run of non-Khmer letters/digits
	unitPunct                 // single punctuation or symbol rune
	unitBreak                 // whitespace or zero-width space
)

type unit struct {
	text string
	kind unitKind
}

// isKhmerBase reports consonants and independent vowels, the runes that can
// start an orthographic cluster.
func isKhmerBase(r rune) bool {
	return (r >= 0x1780 && r <= 0x17B3) || r == 0x17DC
}

// isKhmerMark reports dependent vowels, diacritics and joiners that attach to
// the preceding cluster.
func isKhmerMark(r rune) bool {
	return (r >= 0x17B4 && r <= 0x17D1) || r == 0x17D3 || r == 0x17DD || r == zwnj || r == zwj
}

func isKhmerCluster(r rune) bool {
	return isKhmerBase(r) || isKhmerMark(r) || r == coeng
}

func isBreak(r rune) bool {
	return r == zwsp || unicode.IsSpace(r)
}

func isWordRune(r rune) bool {
	if isKhmerCluster(r) {
		return false
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.M, r)
}

// scanUnits splits s into clusters, non-Khmer word runs, punctuation and
// breaks. Concatenating the text of all non-break units gives s without its
// whitespace.
func scanUnits(s string) []unit {
	rs := []rune(s)
	units := make([]unit, 0, len(rs))

	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case isBreak(r):
			units = append(units, unit{kind: unitBreak})
			i++
		case isKhmerCluster(r):
			j := clusterEnd(rs, i)
			units = append(units, unit{text: string(rs[i:j]), kind: unitKhmer})
			i = j
		case isWordRune(r):
			j := i + 1
			for j < len(rs) && isWordRune(rs[j]) {
				j++
			}
			units = append(units, unit{text: string(rs[i:j]), kind: unitWord})
			i = j
		default:
			units = append(units, unit{text: string(r), kind: unitPunct})
			i++
		}
	}
	return units
}

// clusterEnd returns the index just past the cluster starting at rs[i].
// A cluster is an optional base followed by marks; a coeng also takes the
// consonant after it. A stray leading mark forms a cluster of its own.
func clusterEnd(rs []rune, i int) int {
	j := i
	if isKhmerBase(rs[j]) {
		j++
	}
	for j < len(rs) {
		r := rs[j]
		switch {
		case r == coeng:
			j++
			if j < len(rs) && isKhmerBase(rs[j]) {
				j++
			}
		case isKhmerMark(r):
			j++
		default:
			return j
		}
	}
	return j
}

// clusters returns the Khmer clusters of a word, or nil if the word contains
// anything other than Khmer clusters.
func clusters(word string) []string {
	units := scanUnits(word)
	out := make([]string, 0, len(units))
	for _, u := range units {
		if u.kind != unitKhmer {
			return nil
		}
		out = append(out, u.text)
	}
	return out
}

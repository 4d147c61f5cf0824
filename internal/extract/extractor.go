// Package extract pulls the romanization, IPA transcription and gloss of a
// word out of a dictionary page.
//
// Extraction is selector based and tolerant: a selector that matches nothing
// yields an empty field, never an error. Selectors are plain CSS strings so
// they can follow upstream markup changes through configuration.
package extract

import (
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/heartmarshall/khmer-lookup/internal/domain"
)

// Fields holds the extracted values. Empty means not found.
type Fields struct {
	Romanization string
	IPA          string
	Meaning      string
}

// Extractor turns a page into Fields. Implementations must be safe for
// concurrent use.
type Extractor interface {
	Extract(markup string) (Fields, error)
}

// SelectorSet configures a SelectorExtractor. An empty selector disables the
// corresponding field; an empty Heading or Marker disables trimming.
type SelectorSet struct {
	// Heading selects section headings; the first one whose text contains
	// Marker starts the relevant part of the page.
	Heading string
	Marker  string

	Romanization string
	IPA          string
	Meaning      string
}

// DefaultSelectors returns the selectors matching English Wiktionary's
// rendering of Khmer entries: the orthographic romanization and the phonemic
// IPA share the same span signature and differ only in font size.
func DefaultSelectors() SelectorSet {
	return SelectorSet{
		Heading:      "h2",
		Marker:       "Khmer",
		Romanization: `span.IPA[lang='km'][style='font-size:95%']`,
		IPA:          `span.IPA[lang='km'][style='font-size:110%']`,
		Meaning:      "ol",
	}
}

// SelectorExtractor extracts Fields with compiled CSS selectors.
type SelectorExtractor struct {
	heading      cascadia.Selector
	marker       string
	romanization cascadia.Selector
	ipa          cascadia.Selector
	meaning      cascadia.Selector
}

// NewSelectorExtractor compiles set. It fails if any non-empty selector is invalid.
func NewSelectorExtractor(set SelectorSet) (*SelectorExtractor, error) {
	e := &SelectorExtractor{marker: set.Marker}

	targets := []struct {
		name string
		src  string
		dst  *cascadia.Selector
	}{
		{"heading", set.Heading, &e.heading},
		{"romanization", set.Romanization, &e.romanization},
		{"ipa", set.IPA, &e.ipa},
		{"meaning", set.Meaning, &e.meaning},
	}
	for _, t := range targets {
		if strings.TrimSpace(t.src) == "" {
			continue
		}
		sel, err := cascadia.Compile(t.src)
		if err != nil {
			return nil, fmt.Errorf("extract: compile %s selector %q: %w", t.name, t.src, err)
		}
		*t.dst = sel
	}

	return e, nil
}

// Extract parses markup, drops everything before the marked section heading
// and reads the first match of each field selector.
func (e *SelectorExtractor) Extract(markup string) (Fields, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return Fields{}, fmt.Errorf("extract: parse html: %w: %w", domain.ErrMalformedMarkup, err)
	}

	e.trim(doc)

	return Fields{
		Romanization: firstText(doc, e.romanization),
		IPA:          firstText(doc, e.ipa),
		Meaning:      strings.ReplaceAll(firstText(doc, e.meaning), "\u00a0", " "),
	}, nil
}

// trim removes every node preceding the first marked heading in document
// order. Without a marked heading the document is left untouched.
func (e *SelectorExtractor) trim(doc *html.Node) {
	if e.heading == nil || e.marker == "" {
		return
	}
	for _, h := range e.heading.MatchAll(doc) {
		if strings.Contains(textContent(h), e.marker) {
			removePreceding(h)
			return
		}
	}
}

// removePreceding detaches the preceding siblings of n and of each of its
// ancestors.
func removePreceding(n *html.Node) {
	for cur := n; cur.Parent != nil; cur = cur.Parent {
		for prev := cur.PrevSibling; prev != nil; {
			p := prev.PrevSibling
			cur.Parent.RemoveChild(prev)
			prev = p
		}
	}
}

func firstText(doc *html.Node, sel cascadia.Selector) string {
	if sel == nil {
		return ""
	}
	n := sel.MatchFirst(doc)
	if n == nil {
		return ""
	}
	return textContent(n)
}

// textContent concatenates the text of all descendant text nodes, like the
// DOM property of the same name.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

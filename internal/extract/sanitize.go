package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	numericRefRe = regexp.MustCompile(`&#(?:[xX]([0-9a-fA-F]{1,6})|([0-9]{1,7}));`)

	// The escaped quote form appears when the API pretty-prints its JSON
	// envelope as HTML.
	entityReplacer = strings.NewReplacer(
		`\&quot;`, `"`,
		`&quot;`, `"`,
		`&gt;`, `>`,
		`&lt;`, `<`,
	)
)

// Sanitize undoes the escaping the lexicon source applies to its markup:
// the named entities &quot; &gt; &lt;, decimal and hex numeric character
// references, and literal "\n" sequences. It never fails; references that do
// not decode to a valid code point are left as they are. Other named entities
// (e.g. &amp;, &nbsp;) are left to the HTML parser.
func Sanitize(markup string) string {
	if markup == "" {
		return ""
	}

	out := entityReplacer.Replace(markup)
	out = numericRefRe.ReplaceAllStringFunc(out, decodeNumericRef)
	return strings.ReplaceAll(out, `\n`, "\n")
}

func decodeNumericRef(ref string) string {
	m := numericRefRe.FindStringSubmatch(ref)
	if m == nil {
		return ref
	}

	var (
		code int64
		err  error
	)
	if m[1] != "" {
		code, err = strconv.ParseInt(m[1], 16, 32)
	} else {
		code, err = strconv.ParseInt(m[2], 10, 32)
	}
	if err != nil || code == 0 {
		return ref
	}

	r := rune(code)
	if !utf8.ValidRune(r) {
		return ref
	}
	return string(r)
}

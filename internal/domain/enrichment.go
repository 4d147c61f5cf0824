package domain

// EnrichedToken is a segmented token paired with the fields looked up for it.
// An empty field means the value is unknown: the lookup failed, the entry
// had no such field, or the lookup never ran.
type EnrichedToken struct {
	Name         string `json:"name"`
	Romanization string `json:"romanization"`
	IPA          string `json:"ipa"`
	Meaning      string `json:"meaning"`
}

// IsEmpty reports whether none of the looked-up fields are set.
func (t EnrichedToken) IsEmpty() bool {
	return t.Romanization == "" && t.IPA == "" && t.Meaning == ""
}

// EnrichmentResult holds one EnrichedToken per input token, in token order.
type EnrichmentResult []EnrichedToken

// NewEnrichmentResult returns a result pre-filled with bare records for tokens,
// so that every index is populated before any lookup runs.
func NewEnrichmentResult(tokens []string) EnrichmentResult {
	res := make(EnrichmentResult, len(tokens))
	for i, tok := range tokens {
		res[i] = EnrichedToken{Name: tok}
	}
	return res
}

// Names returns the token names in result order.
func (r EnrichmentResult) Names() []string {
	names := make([]string, len(r))
	for i, t := range r {
		names[i] = t.Name
	}
	return names
}

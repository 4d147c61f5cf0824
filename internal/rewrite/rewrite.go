// Package rewrite corrects known mis-segmentations by splitting compound
// tokens into their intended parts.
package rewrite

import (
	"fmt"
	"slices"
	"sort"

	"github.com/heartmarshall/khmer-lookup/internal/domain"
)

// Rules maps a compound token to the tokens that replace it.
//
// A valid table never maps a key to an empty sequence, and no rule's parts
// contain any rule's key, so rewriting terminates and is order-independent.
type Rules map[string][]string

var defaultRules = Rules{
	"រាជបណ្ឌិត្យសភា": {"រាជ", "បណ្ឌិត្យ", "សភា"},
}

// Default returns a copy of the built-in override table.
func Default() Rules {
	return defaultRules.Clone()
}

// Clone returns a deep copy of r.
func (r Rules) Clone() Rules {
	out := make(Rules, len(r))
	for k, v := range r {
		out[k] = slices.Clone(v)
	}
	return out
}

// Keys returns the rule keys in sorted order, which is the order Rewrite
// applies them in.
func (r Rules) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks every rule and collects all violations.
func (r Rules) Validate() error {
	var errs []domain.FieldError

	for _, key := range r.Keys() {
		parts := r[key]
		field := fmt.Sprintf("rules[%s]", key)

		if key == "" {
			errs = append(errs, domain.FieldError{Field: field, Message: "empty key"})
		}
		if len(parts) == 0 {
			errs = append(errs, domain.FieldError{Field: field, Message: "no replacement parts"})
			continue
		}
		if len(parts) == 1 && parts[0] == key {
			errs = append(errs, domain.FieldError{Field: field, Message: "maps key to itself"})
			continue
		}
		for _, p := range parts {
			if p == "" {
				errs = append(errs, domain.FieldError{Field: field, Message: "empty replacement part"})
				continue
			}
			if _, ok := r[p]; ok {
				errs = append(errs, domain.FieldError{
					Field:   field,
					Message: fmt.Sprintf("part %q is itself a rule key", p),
				})
			}
		}
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// Rewrite returns a copy of tokens with every occurrence of a rule key
// replaced in place by the rule's parts. tokens is not modified.
// Rules that would not terminate (empty parts, or parts containing the key)
// are skipped.
func Rewrite(tokens []string, rules Rules) []string {
	out := slices.Clone(tokens)
	if out == nil {
		out = []string{}
	}

	for _, key := range rules.Keys() {
		parts := rules[key]
		if len(parts) == 0 || slices.Contains(parts, key) {
			continue
		}
		for i := 0; i < len(out); {
			j := slices.Index(out[i:], key)
			if j < 0 {
				break
			}
			i += j
			out = slices.Replace(out, i, i+1, parts...)
			i += len(parts)
		}
	}
	return out
}

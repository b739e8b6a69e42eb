// Package normalization maps loosely written enum values from config files,
// flags and environment variables onto canonical typed values.
package normalization

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
)

// maxSuggestDistance bounds how far a typo may be from a valid key to be suggested.
const maxSuggestDistance = 3

// Normalizer provides type-safe string-to-enum normalization with error handling.
type Normalizer[T comparable] struct {
	validValues  map[string]T
	defaultValue T
	validKeys    []string // sorted, for error messages and suggestions
}

// NewNormalizer creates a normalizer with a map of valid string->value pairs.
// Keys (and later inputs) are folded with Key before lookup.
func NewNormalizer[T comparable](values map[string]T, defaultValue T) *Normalizer[T] {
	normalized := make(map[string]T, len(values))
	validKeys := make([]string, 0, len(values))
	for k, v := range values {
		nk := Key(k)
		normalized[nk] = v
		validKeys = append(validKeys, nk)
	}
	sort.Strings(validKeys)

	return &Normalizer[T]{
		validValues:  normalized,
		defaultValue: defaultValue,
		validKeys:    validKeys,
	}
}

// Normalize converts raw to the enum type, returning the default if it is not recognized.
func (n *Normalizer[T]) Normalize(raw string) T {
	if value, ok := n.Lookup(raw); ok {
		return value
	}
	return n.defaultValue
}

// Lookup converts raw to the enum type and reports whether it was recognized.
func (n *Normalizer[T]) Lookup(raw string) (T, bool) {
	value, ok := n.validValues[Key(raw)]
	return value, ok
}

// NormalizeWithError converts raw to the enum type or explains why it cannot.
func (n *Normalizer[T]) NormalizeWithError(raw string) (T, error) {
	if value, ok := n.Lookup(raw); ok {
		return value, nil
	}
	var zero T
	if s := n.Suggest(raw); s != "" {
		return zero, fmt.Errorf("invalid value %q (did you mean %q?), valid options: %v", raw, s, n.validKeys)
	}
	return zero, fmt.Errorf("invalid value %q, valid options: %v", raw, n.validKeys)
}

// Suggest returns the closest valid key to raw, or "" when nothing is close enough.
func (n *Normalizer[T]) Suggest(raw string) string {
	key := Key(raw)
	if key == "" {
		return ""
	}
	best, bestDist := "", maxSuggestDistance+1
	for _, candidate := range n.validKeys {
		d := levenshtein.ComputeDistance(key, candidate)
		if d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best
}

// ValidKeys returns all valid normalized keys.
func (n *Normalizer[T]) ValidKeys() []string {
	out := make([]string, len(n.validKeys))
	copy(out, n.validKeys)
	return out
}

// Key is the canonical lookup form: trimmed, case-folded, with underscores and
// spaces treated as hyphens.
func Key(s string) string {
	s = cases.Fold().String(strings.TrimSpace(s))
	return strings.NewReplacer("_", "-", " ", "-").Replace(s)
}

package dedup

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// SimilarityFunc scores two name strings in [0,1]. Implementations must
// be symmetric and return 1.0 only when the normalized inputs are
// identical; the engine treats the function as a pluggable strategy.
type SimilarityFunc func(a, b string) float64

// normalizeName lowercases, strips accents and collapses whitespace so
// the similarity score is not dominated by casing or diacritics.
func normalizeName(s string) string {
	s = stripAccents(strings.ToLower(s))
	return strings.Join(strings.Fields(s), " ")
}

// LevenshteinSimilarity is the default SimilarityFunc: edit distance
// over normalized names scaled to [0,1], where 1.0 means the normalized
// strings are equal and 0.0 means nothing in common.
func LevenshteinSimilarity(a, b string) float64 {
	na := normalizeName(a)
	nb := normalizeName(b)
	if na == "" && nb == "" {
		return 1.0
	}
	if na == "" || nb == "" {
		return 0.0
	}
	distance := levenshtein.ComputeDistance(na, nb)
	maxLen := len([]rune(na))
	if l := len([]rune(nb)); l > maxLen {
		maxLen = l
	}
	return 1.0 - float64(distance)/float64(maxLen)
}

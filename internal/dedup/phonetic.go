package dedup

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Ordered substitution rules mapping Spanish homophone clusters to a
// single canonical spelling. Order matters: "ch" must be consumed before
// the silent-h rule, soft g before the hard gue/gui restore, and soft c
// before the catch-all c -> k.
var phoneticRules = []struct {
	from string
	to   string
}{
	{"ch", "x"},
	{"ll", "y"},
	{"h", ""},
	{"qu", "k"},
	{"ce", "se"},
	{"ci", "si"},
	{"ge", "je"},
	{"gi", "ji"},
	{"gue", "ge"},
	{"gui", "gi"},
	{"c", "k"},
	{"v", "b"},
	{"z", "s"},
}

// stripAccents removes combining marks so "Huamán" and "Huaman" normalize
// to the same bytes. Falls back to the input if the transform fails
// (it cannot for valid UTF-8, and invalid bytes are passed through).
// The transformer chain is stateful, so it is built per call; encoding
// stays safe for concurrent use.
func stripAccents(s string) string {
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(stripper, s)
	if err != nil {
		return s
	}
	return out
}

// EncodeName converts a full name into a canonical phonetic code under
// which common Spanish spelling variants (b/v, s/z/soft-c, silent h,
// ll/y, g/j before e/i, doubled letters) collapse to the same string.
//
// The function is total: it never fails, and characters outside the rule
// set pass through unchanged after accent stripping. The code is not
// meant to be human-readable.
func EncodeName(fullName string) string {
	s := strings.ToLower(strings.TrimSpace(fullName))
	if s == "" {
		return ""
	}
	s = stripAccents(s)

	words := strings.Fields(s)
	encoded := make([]string, 0, len(words))
	for _, w := range words {
		w = keepLetters(w)
		if w == "" {
			continue
		}
		for _, rule := range phoneticRules {
			w = strings.ReplaceAll(w, rule.from, rule.to)
		}
		w = collapseRuns(w)
		if w != "" {
			encoded = append(encoded, w)
		}
	}
	return strings.Join(encoded, " ")
}

func keepLetters(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// collapseRuns reduces runs of the same rune to a single occurrence
// ("kk" -> "k"), covering doubled consonants and rules that converge on
// the same letter.
func collapseRuns(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	var prev rune = -1
	for _, r := range s {
		if r == prev {
			continue
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

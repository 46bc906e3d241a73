package dedup

import "strings"

// Peruvian mobile numbers are 9 digits; landlines with area code are 8-9.
const nationalNumberLen = 9

// NormalizePhone reduces a raw phone string to a comparable national
// digit sequence: non-digits removed, then leading zeros (which also
// covers the 00 dialing prefix) and the 51 country code stripped until
// the value is stable, so one strip exposing another prefix still
// converges ("051987654321" and "987654321" normalize identically).
//
// The function is idempotent and total; an input with no digits yields
// the empty string, which never matches anything.
func NormalizePhone(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	for {
		stripped := strings.TrimLeft(digits, "0")
		if strings.HasPrefix(stripped, "51") && len(stripped) > nationalNumberLen {
			stripped = stripped[2:]
		}
		if stripped == digits {
			return stripped
		}
		digits = stripped
	}
}

package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"987654321", "987654321"},
		{"+51 987 654 321", "987654321"},
		{"51987654321", "987654321"},
		{"0051987654321", "987654321"},
		{"0987654321", "987654321"},
		{"(01) 234-5678", "12345678"},
		{"", ""},
		{"no digits", ""},
		{"519876543", "519876543"},    // 9 digits already: 51 is part of the number
		{"051987654321", "987654321"}, // zero exposes the country code
		{"000051987654321", "987654321"},
		{"5151987654321", "987654321"}, // doubled country code
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NormalizePhone(c.raw), "raw=%q", c.raw)
	}
}

func TestNormalizePhoneIdempotent(t *testing.T) {
	inputs := []string{
		"+51 987-654-321", "0051987654321", "0987654321", "", "abc", "519876543",
		"051987654321", "000051987654321", "5151987654321", "0051051987654321",
	}
	for _, raw := range inputs {
		once := NormalizePhone(raw)
		assert.Equal(t, once, NormalizePhone(once), "raw=%q", raw)
	}
}

package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeNameVariantPairsCollapse(t *testing.T) {
	pairs := []struct {
		name string
		a, b string
	}{
		{"b/v and soft c and silent h", "Vicente Huamán", "Bisente Uaman"},
		{"doubled consonant", "Ccoyllur", "Coyllur"},
		{"z/s with b/v", "Zavala", "Savala"},
		{"ll/y", "Llanos Condori", "Yanos Condori"},
		{"g/j before i", "Giménez", "Jimenez"},
		{"silent h with z/s", "Hernandez", "Ernandes"},
		{"doubled r", "Barreto", "Bareto"},
		{"qu/k with soft c", "Quispe Cerron", "Kispe Serron"},
	}
	for _, p := range pairs {
		t.Run(p.name, func(t *testing.T) {
			assert.Equal(t, EncodeName(p.a), EncodeName(p.b),
				"%q and %q should share a phonetic code", p.a, p.b)
		})
	}
}

func TestEncodeNameCaseAndAccentInsensitive(t *testing.T) {
	assert.Equal(t, EncodeName("maria lopez"), EncodeName("MARÍA LÓPEZ"))
	assert.Equal(t, EncodeName("Huamán"), EncodeName("huaman"))
}

func TestEncodeNameDistinguishesDifferentNames(t *testing.T) {
	assert.NotEqual(t, EncodeName("Maria Lopez"), EncodeName("Jorge Quispe"))
	assert.NotEqual(t, EncodeName("Rosa Diaz"), EncodeName("Rosa Rios"))
}

func TestEncodeNameIsTotalAndDeterministic(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"María-José O'Brien",
		"12345",
		"名前 漢字",
		"Ñusta Çelik",
		"a",
	}
	for _, s := range inputs {
		first := EncodeName(s)
		assert.Equal(t, first, EncodeName(s), "encode must be deterministic for %q", s)
	}
	assert.Equal(t, "", EncodeName(""))
	assert.Equal(t, "", EncodeName("   "))
}

func TestEncodeNameCollapsesPerWord(t *testing.T) {
	// word boundaries survive encoding
	assert.Equal(t, EncodeName("Ana Maria"), EncodeName("ana  maria"))
	assert.NotEqual(t, EncodeName("Ana Maria"), EncodeName("Anamaria"))
}

package dedup

import "candidate-dedup/internal/storage"

// Refresh recomputes the derived identity columns from the raw fields.
// Call it whenever a record is constructed or its phone / name
// components change; the derived columns are never edited directly.
func Refresh(c *storage.Candidate) {
	c.PhoneNormalized = NormalizePhone(c.Phone)
	c.NamePhonetic = EncodeName(c.FullName())
}

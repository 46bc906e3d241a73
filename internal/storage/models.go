package storage

import (
	"strings"
	"time"
)

// Candidate lifecycle statuses. Matching never looks at status; the
// resolution workflow forces StatusInactive when a record is demoted to
// duplicate.
const (
	StatusAvailable = "available"
	StatusContacted = "contacted"
	StatusHired     = "hired"
	StatusInactive  = "inactive"
)

// Candidate represents a stored candidate record together with its
// identity and deduplication columns.
//
// PhoneNormalized and NamePhonetic are derived fields: they are always
// recomputed from Phone / the name components (see dedup.Refresh) and
// never edited directly.
type Candidate struct {
	ID               string     `json:"id"`
	DNI              string     `json:"dni,omitempty"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	MaternalLastName string     `json:"maternal_last_name,omitempty"`
	Email            string     `json:"email,omitempty"`
	Phone            string     `json:"phone,omitempty"`
	PhoneNormalized  string     `json:"phone_normalized,omitempty"`
	NamePhonetic     string     `json:"name_phonetic,omitempty"`
	Address          string     `json:"address,omitempty"`
	Zone             string     `json:"zone,omitempty"`
	Status           string     `json:"status"`
	IsDuplicate      bool       `json:"is_duplicate"`
	DuplicateOf      *string    `json:"duplicate_of,omitempty"`
	DedupReviewed    bool       `json:"dedup_reviewed"`
	DedupReviewedAt  *time.Time `json:"dedup_reviewed_at,omitempty"`
	DedupReviewedBy  string     `json:"dedup_reviewed_by,omitempty"`
	TimesHired       int        `json:"times_hired"`
	LastHiredAt      *time.Time `json:"last_hired_at,omitempty"`
	LastContactedAt  *time.Time `json:"last_contacted_at,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	Tags             []string   `json:"tags,omitempty"`
	DeletedAt        *time.Time `json:"deleted_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// FullName is the space-joined concatenation of the name components,
// skipping empty parts.
func (c *Candidate) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{c.FirstName, c.LastName, c.MaternalLastName} {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// AuditEntry is one append-only record of a resolution decision.
type AuditEntry struct {
	ID           string    `json:"id"`
	Actor        string    `json:"actor"`
	Action       string    `json:"action"`
	EntityID     string    `json:"entity_id"`
	Before       []byte    `json:"before"`
	After        []byte    `json:"after"`
	MergedFields []string  `json:"merged_fields,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// helper to split comma-separated tags
func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

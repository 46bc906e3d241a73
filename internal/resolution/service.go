// Package resolution commits merge / link / dismiss decisions between a
// primary and a secondary candidate record, applies the field-merge
// policy and writes the audit trail.
package resolution

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"candidate-dedup/internal/storage"
)

type Action string

const (
	ActionMerge   Action = "merge"
	ActionLink    Action = "link"
	ActionDismiss Action = "dismiss"
)

var (
	// ErrBadAction means the action token is not merge/link/dismiss.
	ErrBadAction = errors.New("unknown resolution action")
	// ErrConflict means the pair's dedup state changed since it was
	// surfaced (already resolved, or the primary is itself a duplicate).
	ErrConflict = errors.New("resolution conflict")
)

const noteSeparator = " | "

// Store is the persistence surface a resolution needs. *storage.DB
// satisfies it; tests use an in-memory fake.
type Store interface {
	GetCandidate(ctx context.Context, id string) (*storage.Candidate, error)
	UpdateCandidate(ctx context.Context, c *storage.Candidate) error
	UpdatePair(ctx context.Context, primary, secondary *storage.Candidate) error
	AppendAudit(ctx context.Context, e *storage.AuditEntry) error
}

type Request struct {
	PrimaryID   string `json:"primary_id"`
	SecondaryID string `json:"secondary_id"`
	Action      Action `json:"action"`
	Note        string `json:"note,omitempty"`
	ReviewedBy  string `json:"reviewed_by"`
}

type Result struct {
	Success      bool     `json:"success"`
	MergedFields []string `json:"merged_fields,omitempty"`
}

type Service struct {
	store Store
	log   *zap.SugaredLogger
	now   func() time.Time
}

func NewService(store Store, logger *zap.SugaredLogger) *Service {
	return &Service{store: store, log: logger, now: time.Now}
}

// Resolve reads both records fresh, applies the requested action and
// persists it. Merge mutates both records in one transactional unit;
// link and dismiss touch only the secondary.
func (s *Service) Resolve(ctx context.Context, req Request) (*Result, error) {
	switch req.Action {
	case ActionMerge, ActionLink, ActionDismiss:
	default:
		return nil, fmt.Errorf("%w: %q", ErrBadAction, req.Action)
	}

	// Read-before-write: both sides must be fresh so the decision is not
	// applied over state another operator already changed.
	primary, err := s.store.GetCandidate(ctx, req.PrimaryID)
	if err != nil {
		return nil, fmt.Errorf("primary %s: %w", req.PrimaryID, err)
	}
	secondary, err := s.store.GetCandidate(ctx, req.SecondaryID)
	if err != nil {
		return nil, fmt.Errorf("secondary %s: %w", req.SecondaryID, err)
	}

	before := snapshotPair(primary, secondary)

	var result *Result
	switch req.Action {
	case ActionMerge:
		result, err = s.merge(ctx, primary, secondary, req)
	case ActionLink:
		result, err = s.link(ctx, primary, secondary, req)
	case ActionDismiss:
		result, err = s.dismiss(ctx, primary, secondary, req)
	}
	if err != nil {
		return nil, err
	}

	s.writeAudit(ctx, req, secondary.ID, before, snapshotPair(primary, secondary), result.MergedFields)
	return result, nil
}

func (s *Service) merge(ctx context.Context, primary, secondary *storage.Candidate, req Request) (*Result, error) {
	if primary.IsDuplicate {
		return nil, fmt.Errorf("%w: primary %s is itself marked duplicate", ErrConflict, primary.ID)
	}
	if secondary.IsDuplicate {
		return nil, fmt.Errorf("%w: secondary %s was already resolved", ErrConflict, secondary.ID)
	}

	merged := absorb(primary, secondary, req.Note)
	s.demote(secondary, primary, req)

	if err := s.store.UpdatePair(ctx, primary, secondary); err != nil {
		return nil, fmt.Errorf("commit merge: %w", err)
	}
	return &Result{Success: true, MergedFields: merged}, nil
}

// link records "same person, different contact data": the secondary
// keeps its active status and is_duplicate flag, it only gains the
// reference and the review stamp.
func (s *Service) link(ctx context.Context, primary, secondary *storage.Candidate, req Request) (*Result, error) {
	if primary.IsDuplicate {
		return nil, fmt.Errorf("%w: primary %s is itself marked duplicate", ErrConflict, primary.ID)
	}

	secondary.DuplicateOf = &primary.ID
	s.stampReview(secondary, req.ReviewedBy)
	if req.Note != "" {
		secondary.Notes = joinNotes(secondary.Notes, req.Note)
	}

	if err := s.store.UpdateCandidate(ctx, secondary); err != nil {
		return nil, fmt.Errorf("commit link: %w", err)
	}
	return &Result{Success: true}, nil
}

// dismiss records a false positive: every duplicate flag on the
// secondary is cleared so the pair is never resurfaced as resolved.
func (s *Service) dismiss(ctx context.Context, primary, secondary *storage.Candidate, req Request) (*Result, error) {
	secondary.IsDuplicate = false
	secondary.DuplicateOf = nil
	s.stampReview(secondary, req.ReviewedBy)
	note := fmt.Sprintf("Reviewed as not a duplicate of %s (%s)", primary.FullName(), primary.ID)
	if req.Note != "" {
		note = joinNotes(note, req.Note)
	}
	secondary.Notes = joinNotes(secondary.Notes, note)

	if err := s.store.UpdateCandidate(ctx, secondary); err != nil {
		return nil, fmt.Errorf("commit dismiss: %w", err)
	}
	return &Result{Success: true}, nil
}

// absorb applies the merge field policy to the primary and returns the
// names of the fields that were filled from the secondary.
func absorb(primary, secondary *storage.Candidate, note string) []string {
	var merged []string

	take := func(field string, dst *string, src string) {
		if *dst == "" && src != "" {
			*dst = src
			merged = append(merged, field)
		}
	}
	take("email", &primary.Email, secondary.Email)
	take("dni", &primary.DNI, secondary.DNI)
	take("zone", &primary.Zone, secondary.Zone)
	take("address", &primary.Address, secondary.Address)

	primary.Notes = joinNotes(primary.Notes, secondary.Notes, note)
	primary.Tags = unionTags(primary.Tags, secondary.Tags)
	primary.TimesHired += secondary.TimesHired
	primary.LastHiredAt = latest(primary.LastHiredAt, secondary.LastHiredAt)
	primary.LastContactedAt = latest(primary.LastContactedAt, secondary.LastContactedAt)

	return merged
}

func (s *Service) demote(secondary, primary *storage.Candidate, req Request) {
	secondary.IsDuplicate = true
	secondary.DuplicateOf = &primary.ID
	secondary.Status = storage.StatusInactive
	s.stampReview(secondary, req.ReviewedBy)
	secondary.Notes = joinNotes(secondary.Notes,
		fmt.Sprintf("Merged into candidate %s (%s)", primary.FullName(), primary.ID))
}

func (s *Service) stampReview(c *storage.Candidate, reviewedBy string) {
	now := s.now()
	c.DedupReviewed = true
	c.DedupReviewedAt = &now
	c.DedupReviewedBy = reviewedBy
}

// writeAudit appends the audit entry for a committed resolution. The
// write is best effort: a failure is logged and does not undo or fail
// the resolution itself.
func (s *Service) writeAudit(ctx context.Context, req Request, entityID string, before, after []byte, mergedFields []string) {
	entry := &storage.AuditEntry{
		ID:           uuid.NewString(),
		Actor:        req.ReviewedBy,
		Action:       string(req.Action),
		EntityID:     entityID,
		Before:       before,
		After:        after,
		MergedFields: mergedFields,
		CreatedAt:    s.now(),
	}
	if err := s.store.AppendAudit(ctx, entry); err != nil && s.log != nil {
		s.log.Warnw("audit write failed", "action", req.Action,
			"primary", req.PrimaryID, "secondary", req.SecondaryID, "error", err)
	}
}

func snapshotPair(primary, secondary *storage.Candidate) []byte {
	b, err := json.Marshal(map[string]*storage.Candidate{
		"primary":   primary,
		"secondary": secondary,
	})
	if err != nil {
		return nil
	}
	return b
}

func joinNotes(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out == "" {
			out = p
			continue
		}
		out += noteSeparator + p
	}
	return out
}

func unionTags(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, t := range append(append([]string{}, a...), b...) {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func latest(a, b *time.Time) *time.Time {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if b.After(*a) {
		return b
	}
	return a
}

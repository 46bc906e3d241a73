// Package checker exposes the duplicate-check operations consumed by
// the API layer: single-probe check, batch check and the full-population
// self-scan. It owns the "fetch the population once" discipline; the
// scoring itself lives in internal/dedup.
package checker

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"candidate-dedup/internal/dedup"
	"candidate-dedup/internal/storage"
)

// ErrInvalidProbe means the probe is missing required identity fields
// and was rejected before reaching the match engine.
var ErrInvalidProbe = errors.New("probe is missing required identity fields")

// PopulationStore is the single read the checker performs.
type PopulationStore interface {
	ListActivePopulation(ctx context.Context) ([]*storage.Candidate, error)
}

// Probe is a candidate being checked for duplicates, possibly not yet
// persisted. An empty ID gets a synthetic one so the probe never
// collides with a stored record.
type Probe struct {
	ID               string `json:"id,omitempty"`
	DNI              string `json:"dni,omitempty"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	MaternalLastName string `json:"maternal_last_name,omitempty"`
	Phone            string `json:"phone,omitempty"`
}

func (p Probe) toCandidate() *storage.Candidate {
	id := p.ID
	if id == "" {
		id = "probe-" + uuid.NewString()
	}
	c := &storage.Candidate{
		ID:               id,
		DNI:              p.DNI,
		FirstName:        p.FirstName,
		LastName:         p.LastName,
		MaternalLastName: p.MaternalLastName,
		Phone:            p.Phone,
	}
	dedup.Refresh(c)
	return c
}

// Recommendation tiers keyed off the best match's confidence band.
type Recommendation string

const (
	RecommendAutoMerge Recommendation = "auto_merge_candidate"
	RecommendReview    Recommendation = "needs_review"
	RecommendVerify    Recommendation = "verify_manually"
	RecommendProceed   Recommendation = "proceed"
)

// MatchDetails breaks a match down for display.
type MatchDetails struct {
	PhoneMatch     bool `json:"phone_match"`
	NameSimilarity int  `json:"name_similarity"` // 0-100
	PhoneticMatch  bool `json:"phonetic_match"`
}

// MatchView is the caller-facing shape of a match, with percentages
// instead of raw [0,1] scores.
type MatchView struct {
	CandidateID   string       `json:"candidate_id"`
	FullName      string       `json:"full_name"`
	Confidence    int          `json:"confidence"` // 0-100
	MatchType     string       `json:"match_type"`
	LowConfidence bool         `json:"low_confidence,omitempty"`
	Details       MatchDetails `json:"details"`
}

type CheckResult struct {
	HasDuplicates  bool           `json:"has_duplicates"`
	Matches        []MatchView    `json:"matches"`
	Recommendation Recommendation `json:"recommendation"`
}

// BatchItem carries the result for one surviving probe, indexed by the
// probe's position in the original request.
type BatchItem struct {
	Index int `json:"index"`
	CheckResult
}

type BatchResult struct {
	Results []BatchItem `json:"results"`
	// Skipped counts probes dropped for missing fields or repeated DNIs.
	Skipped int `json:"skipped"`
}

type Checker struct {
	store  PopulationStore
	engine *dedup.Engine
	cfg    dedup.Thresholds
	log    *zap.SugaredLogger
}

func NewChecker(store PopulationStore, cfg dedup.Thresholds, logger *zap.SugaredLogger) *Checker {
	return &Checker{
		store:  store,
		engine: dedup.NewEngine(cfg),
		cfg:    cfg,
		log:    logger,
	}
}

// CheckCandidate checks a single probe against the live population.
func (c *Checker) CheckCandidate(ctx context.Context, probe Probe) (*CheckResult, error) {
	if probe.FirstName == "" || probe.LastName == "" {
		return nil, fmt.Errorf("%w: first and last name are required", ErrInvalidProbe)
	}

	population, err := c.store.ListActivePopulation(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch population: %w", err)
	}
	return c.check(probe, population), nil
}

// CheckBatch checks many probes against one population snapshot. The
// population is fetched exactly once regardless of batch size. Probes
// missing name, phone or DNI, and within-batch DNI repeats, are dropped
// silently (the batch is pre-deduplicated on its natural key).
func (c *Checker) CheckBatch(ctx context.Context, probes []Probe) (*BatchResult, error) {
	population, err := c.store.ListActivePopulation(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch population: %w", err)
	}

	res := &BatchResult{}
	seenDNI := make(map[string]bool, len(probes))
	for i, probe := range probes {
		if probe.FirstName == "" || probe.LastName == "" || probe.Phone == "" || probe.DNI == "" {
			res.Skipped++
			continue
		}
		if seenDNI[probe.DNI] {
			res.Skipped++
			continue
		}
		seenDNI[probe.DNI] = true

		res.Results = append(res.Results, BatchItem{
			Index:       i,
			CheckResult: *c.check(probe, population),
		})
	}

	if c.log != nil {
		c.log.Infow("batch check complete",
			"probes", len(probes), "checked", len(res.Results), "skipped", res.Skipped)
	}
	return res, nil
}

// SelfScan flags cross-duplicates across the whole population. This is
// O(population²) in comparisons and belongs in a batch job, not a
// per-request path.
func (c *Checker) SelfScan(ctx context.Context) ([]dedup.ScanPair, error) {
	population, err := c.store.ListActivePopulation(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch population: %w", err)
	}
	pairs := c.engine.SelfScan(population)
	if c.log != nil {
		c.log.Infow("self-scan complete", "population", len(population), "flagged", len(pairs))
	}
	return pairs, nil
}

func (c *Checker) check(probe Probe, population []*storage.Candidate) *CheckResult {
	matches := c.engine.FindDuplicates(probe.toCandidate(), population)

	result := &CheckResult{
		Matches:        make([]MatchView, 0, len(matches)),
		Recommendation: RecommendProceed,
	}
	var best float64
	for _, m := range matches {
		if m.Confidence > best {
			best = m.Confidence
		}
		result.Matches = append(result.Matches, viewOf(m))
	}
	result.HasDuplicates = best >= c.cfg.ReviewThreshold
	result.Recommendation = c.recommendationFor(best)
	return result
}

func (c *Checker) recommendationFor(confidence float64) Recommendation {
	switch {
	case confidence >= c.cfg.AutoMergeConfidence:
		return RecommendAutoMerge
	case confidence >= c.cfg.NeedsReviewConfidence:
		return RecommendReview
	case confidence >= c.cfg.ReviewThreshold:
		return RecommendVerify
	default:
		return RecommendProceed
	}
}

func viewOf(m dedup.Match) MatchView {
	return MatchView{
		CandidateID:   m.Candidate.ID,
		FullName:      m.Candidate.FullName(),
		Confidence:    toPercent(m.Confidence),
		MatchType:     string(m.MatchType),
		LowConfidence: m.LowConfidence,
		Details: MatchDetails{
			PhoneMatch:     m.PhoneMatch,
			NameSimilarity: toPercent(m.NameSimilarity),
			PhoneticMatch:  m.PhoneticMatch,
		},
	}
}

func toPercent(v float64) int {
	return int(math.Round(v * 100))
}

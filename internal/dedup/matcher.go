package dedup

import (
	"fmt"
	"sort"

	"candidate-dedup/internal/storage"
)

type MatchType string

const (
	MatchPhone        MatchType = "phone"
	MatchName         MatchType = "name"
	MatchPhoneAndName MatchType = "phone_and_name"
)

// Thresholds holds every tunable constant of the match engine. Values
// come from configuration (internal/config), never from literals at the
// comparison sites.
type Thresholds struct {
	// NameHigh is the similarity at which a name alone is a strong signal.
	NameHigh float64 `json:"name_high"`
	// NameMedium is the similarity floor below which a pair is dropped.
	NameMedium float64 `json:"name_medium"`
	// ReviewThreshold separates low-confidence matches (still returned,
	// annotated) from the reviewable tier.
	ReviewThreshold float64 `json:"review_threshold"`

	// Confidence assignments per match type.
	PhoneAndNameConfidence float64 `json:"phone_and_name_confidence"`
	PhoneConfidence        float64 `json:"phone_confidence"`
	PhoneticFloor          float64 `json:"phonetic_floor"`

	// Recommendation bands for the duplicate checker.
	AutoMergeConfidence   float64 `json:"auto_merge_confidence"`
	NeedsReviewConfidence float64 `json:"needs_review_confidence"`

	// MaxChainDepth caps duplicate_of chain walks as a cycle guard.
	MaxChainDepth int `json:"max_chain_depth"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		NameHigh:               0.90,
		NameMedium:             0.80,
		ReviewThreshold:        0.80,
		PhoneAndNameConfidence: 0.99,
		PhoneConfidence:        0.90,
		PhoneticFloor:          0.80,
		AutoMergeConfidence:    0.95,
		NeedsReviewConfidence:  0.85,
		MaxChainDepth:          5,
	}
}

// Match is one scored pairing between a probe and a population record.
type Match struct {
	Candidate      *storage.Candidate
	MatchType      MatchType
	Confidence     float64
	PhoneMatch     bool
	NameSimilarity float64
	PhoneticMatch  bool
	// LowConfidence marks matches below the review threshold so callers
	// can filter without re-deriving the band.
	LowConfidence bool
}

// Engine scores candidates against a population. It is pure and holds
// no I/O: population snapshots are passed in by the caller.
type Engine struct {
	cfg        Thresholds
	similarity SimilarityFunc
}

func NewEngine(cfg Thresholds) *Engine {
	return &Engine{cfg: cfg, similarity: LevenshteinSimilarity}
}

// UseSimilarity swaps the similarity strategy. The replacement must be
// bounded [0,1], symmetric and reflexive.
func (e *Engine) UseSimilarity(fn SimilarityFunc) {
	e.similarity = fn
}

// Compare scores one pair. The second return value is false when the
// pair falls below every signal and should not be reported.
// Empty phones and names never match; they are not an error.
func (e *Engine) Compare(probe, other *storage.Candidate) (Match, bool) {
	phoneMatch := probe.PhoneNormalized != "" && probe.PhoneNormalized == other.PhoneNormalized
	similarity := e.similarity(probe.FullName(), other.FullName())
	phoneticMatch := probe.NamePhonetic != "" && probe.NamePhonetic == other.NamePhonetic
	nameSignal := phoneticMatch || similarity >= e.cfg.NameHigh

	m := Match{
		Candidate:      other,
		PhoneMatch:     phoneMatch,
		NameSimilarity: similarity,
		PhoneticMatch:  phoneticMatch,
	}

	switch {
	case phoneMatch && nameSignal:
		m.MatchType = MatchPhoneAndName
		m.Confidence = e.cfg.PhoneAndNameConfidence
	case phoneMatch:
		m.MatchType = MatchPhone
		m.Confidence = e.cfg.PhoneConfidence
	case nameSignal:
		m.MatchType = MatchName
		m.Confidence = similarity
		if phoneticMatch && m.Confidence < e.cfg.PhoneticFloor {
			m.Confidence = e.cfg.PhoneticFloor
		}
	case similarity >= e.cfg.NameMedium:
		m.MatchType = MatchName
		m.Confidence = similarity
	default:
		return Match{}, false
	}

	m.LowConfidence = m.Confidence < e.cfg.ReviewThreshold
	return m, true
}

// FindDuplicates compares the probe against every population record and
// returns the matches ordered by confidence descending, ties broken by
// the more recently updated record, then by population order.
func (e *Engine) FindDuplicates(probe *storage.Candidate, population []*storage.Candidate) []Match {
	var matches []Match
	for _, other := range population {
		if other.ID == probe.ID {
			continue
		}
		if m, ok := e.Compare(probe, other); ok {
			matches = append(matches, m)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Confidence != matches[j].Confidence {
			return matches[i].Confidence > matches[j].Confidence
		}
		return matches[i].Candidate.UpdatedAt.After(matches[j].Candidate.UpdatedAt)
	})
	return matches
}

// ScanPair is one cross-duplicate flagged by a self-scan: Duplicate is
// the later record in population order, subordinate to Primary.
type ScanPair struct {
	Primary   *storage.Candidate
	Duplicate *storage.Candidate
	Match     Match
}

// SelfScan runs the pairwise test over the whole population against
// itself. Only the direction "later index subordinate to earlier index"
// is flagged, and a record already flagged in this scan contributes its
// chain root as primary, so the result is always a forest.
func (e *Engine) SelfScan(population []*storage.Candidate) []ScanPair {
	var pairs []ScanPair
	parent := make(map[int]int)

	for i := 1; i < len(population); i++ {
		for j := 0; j < i; j++ {
			m, ok := e.Compare(population[i], population[j])
			if !ok {
				continue
			}
			root := j
			for depth := 0; depth < e.cfg.MaxChainDepth; depth++ {
				p, flagged := parent[root]
				if !flagged {
					break
				}
				root = p
			}
			parent[i] = root
			pairs = append(pairs, ScanPair{
				Primary:   population[root],
				Duplicate: population[i],
				Match:     m,
			})
			break
		}
	}
	return pairs
}

// ChainDepth follows a record's duplicate_of pointers through the arena
// and returns how many hops it takes to reach a non-duplicate root. A
// walk longer than MaxChainDepth means the forest invariant is broken.
func (e *Engine) ChainDepth(id string, arena map[string]*storage.Candidate) (int, error) {
	depth := 0
	current, ok := arena[id]
	if !ok {
		return 0, fmt.Errorf("record %s not in arena", id)
	}
	for current.DuplicateOf != nil {
		if depth >= e.cfg.MaxChainDepth {
			return depth, fmt.Errorf("duplicate chain from %s exceeds max depth %d", id, e.cfg.MaxChainDepth)
		}
		next, ok := arena[*current.DuplicateOf]
		if !ok {
			return depth, fmt.Errorf("record %s references missing primary %s", current.ID, *current.DuplicateOf)
		}
		current = next
		depth++
	}
	return depth, nil
}

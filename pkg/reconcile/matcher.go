package reconcile

import (
	"sort"
	"strings"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/normalizers"
)

// Matcher resolves one brand name against a CandidateIndex. Tiers run
// strictest to loosest and stop at the first decision, so a
// high-confidence exact match is never overridden by a coincidental
// fuzzy hit. Every tier distinguishes a unique decision from a tie;
// ties surface as Ambiguous, never an arbitrary pick.
type Matcher struct {
	thresholds Thresholds
}

// NewMatcher creates a matcher with the given thresholds
func NewMatcher(thresholds Thresholds) *Matcher {
	return &Matcher{thresholds: thresholds}
}

// Match returns the single best partner for a brand name, no match,
// or an explicit ambiguous outcome.
func (m *Matcher) Match(brand string, idx *CandidateIndex) models.MatchResult {
	// Tier 1: exact normalized name. Collisions here are never
	// resolved by looser tiers.
	if key := normalizers.Normalize(brand); key != "" {
		if result, decided := m.lookup(idx, idx.exact, key, models.MatchTypeExact); decided {
			return result
		}
	}

	// Tier 2: punctuation/spacing-insensitive
	if key := normalizers.Compact(brand); key != "" {
		if result, decided := m.lookup(idx, idx.compact, key, models.MatchTypeNormalized); decided {
			return result
		}
	}

	// Tier 3: corporate-suffix-insensitive
	canonical := normalizers.CanonicalCompact(brand)
	if canonical != "" {
		if result, decided := m.lookup(idx, idx.canonical, canonical, models.MatchTypeNormalized); decided {
			return result
		}

		// Tier 4: containment/prefix over canonical keys
		if result, decided := m.matchContainment(canonical, idx); decided {
			return result
		}

		// Tier 5: edit distance over canonical keys
		if result, decided := m.matchEditDistance(canonical, idx); decided {
			return result
		}
	}

	return models.MatchResult{}
}

// lookup resolves a single-key tier: one hit decides, many hits are
// ambiguous, zero falls through to the next tier.
func (m *Matcher) lookup(idx *CandidateIndex, table map[string][]string, key string, matchType models.MatchType) (models.MatchResult, bool) {
	ids := table[key]
	switch {
	case len(ids) == 0:
		return models.MatchResult{}, false
	case len(ids) > 1:
		return models.MatchResult{Ambiguous: true}, true
	default:
		partner, ok := idx.Partner(ids[0])
		if !ok {
			return models.MatchResult{}, false
		}
		return models.MatchResult{Partner: &partner, MatchType: matchType}, true
	}
}

// containmentCandidate is one partner's best containment score
type containmentCandidate struct {
	partnerID string
	score     float64
}

func (m *Matcher) matchContainment(input string, idx *CandidateIndex) (models.MatchResult, bool) {
	t := m.thresholds
	best := make(map[string]float64)

	for key, ids := range idx.canonical {
		shorter, longer := input, key
		if len(shorter) > len(longer) {
			shorter, longer = longer, shorter
		}
		if len(shorter) < t.ContainmentMinLength {
			continue
		}
		if !strings.Contains(longer, shorter) {
			continue
		}
		score := float64(len(shorter)) / float64(len(longer))
		if score < t.ContainmentFloor {
			continue
		}
		for _, id := range ids {
			if score > best[id] {
				best[id] = score
			}
		}
	}

	if len(best) == 0 {
		return models.MatchResult{}, false
	}

	candidates := make([]containmentCandidate, 0, len(best))
	for id, score := range best {
		candidates = append(candidates, containmentCandidate{partnerID: id, score: score})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].partnerID < candidates[j].partnerID
	})

	if len(candidates) > 1 {
		top, runnerUp := candidates[0], candidates[1]
		if top.score-runnerUp.score < t.DistinctnessGap || top.score < t.MinWinningScore {
			return models.MatchResult{Ambiguous: true}, true
		}
	}

	partner, ok := idx.Partner(candidates[0].partnerID)
	if !ok {
		return models.MatchResult{}, false
	}
	return models.MatchResult{Partner: &partner, MatchType: models.MatchTypeNormalized}, true
}

func (m *Matcher) matchEditDistance(input string, idx *CandidateIndex) (models.MatchResult, bool) {
	t := m.thresholds
	minDistance := -1
	keysByDistance := make(map[int][]string)

	for key := range idx.canonical {
		longer := len(key)
		if len(input) > longer {
			longer = len(input)
		}
		if longer < t.EditDistanceMinLen {
			continue
		}
		threshold := t.EditDistanceClose
		if longer >= t.EditDistanceLongAt {
			threshold = t.EditDistanceFar
		}
		distance := levenshteinDistance(input, key)
		if distance > threshold {
			continue
		}
		keysByDistance[distance] = append(keysByDistance[distance], key)
		if minDistance < 0 || distance < minDistance {
			minDistance = distance
		}
	}

	if minDistance < 0 {
		return models.MatchResult{}, false
	}

	unique := make(map[string]struct{})
	for _, key := range keysByDistance[minDistance] {
		for _, id := range idx.canonical[key] {
			unique[id] = struct{}{}
		}
	}

	if len(unique) != 1 {
		return models.MatchResult{Ambiguous: true}, true
	}

	for id := range unique {
		partner, ok := idx.Partner(id)
		if !ok {
			return models.MatchResult{}, false
		}
		return models.MatchResult{Partner: &partner, MatchType: models.MatchTypeNormalized}, true
	}
	return models.MatchResult{}, false
}

// levenshteinDistance calculates the edit distance between two strings
func levenshteinDistance(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	// Two-row dynamic programming
	row := make([]int, len(b)+1)
	prevRow := make([]int, len(b)+1)

	for j := 0; j <= len(b); j++ {
		prevRow[j] = j
	}

	for i := 1; i <= len(a); i++ {
		row[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			row[j] = min(min(row[j-1]+1, prevRow[j]+1), prevRow[j-1]+cost)
		}
		row, prevRow = prevRow, row
	}

	return prevRow[len(b)]
}

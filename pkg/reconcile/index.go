package reconcile

import (
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/normalizers"
)

// CandidateIndex holds per-run lookup tables from normalized brand
// name forms to partner ids, plus an id arena for hydration. Values
// are lists because distinct partners can normalize to the same key;
// that collision is what lets the matcher detect ambiguity instead of
// guessing. Built once per reconciliation run, never mutated mid-run.
type CandidateIndex struct {
	partners  map[string]models.Partner
	exact     map[string][]string
	compact   map[string][]string
	canonical map[string][]string
}

// BuildIndex builds a candidate index from the full partner list
func BuildIndex(partners []models.Partner) *CandidateIndex {
	idx := &CandidateIndex{
		partners:  make(map[string]models.Partner, len(partners)),
		exact:     make(map[string][]string),
		compact:   make(map[string][]string),
		canonical: make(map[string][]string),
	}

	for _, p := range partners {
		idx.partners[p.ID] = p

		if key := normalizers.Normalize(p.BrandName); key != "" {
			idx.exact[key] = append(idx.exact[key], p.ID)
		}
		if key := normalizers.Compact(p.BrandName); key != "" {
			idx.compact[key] = append(idx.compact[key], p.ID)
		}
		if key := normalizers.CanonicalCompact(p.BrandName); key != "" {
			idx.canonical[key] = append(idx.canonical[key], p.ID)
		}
	}

	return idx
}

// Partner hydrates a partner record by id
func (idx *CandidateIndex) Partner(id string) (models.Partner, bool) {
	p, ok := idx.partners[id]
	return p, ok
}

// PartnerName returns the brand name for an id, or empty if unknown
func (idx *CandidateIndex) PartnerName(id string) string {
	return idx.partners[id].BrandName
}

// Size returns the number of indexed partners
func (idx *CandidateIndex) Size() int {
	return len(idx.partners)
}

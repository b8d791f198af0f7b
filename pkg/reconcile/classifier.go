package reconcile

import (
	"strings"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/normalizers"
)

// mappingState is the per-run view of existing mappings for one
// source, keyed for the two classifier lookups: external id →
// mapping (conflict / already-mapped checks) and partner id → most
// recently modified mapping (apply-phase update target).
type mappingState struct {
	byExternalID map[string]models.ExternalMapping
	byPartnerID  map[string]models.ExternalMapping
}

func newMappingState(mappings []models.ExternalMapping) *mappingState {
	state := &mappingState{
		byExternalID: make(map[string]models.ExternalMapping, len(mappings)),
		byPartnerID:  make(map[string]models.ExternalMapping, len(mappings)),
	}
	for _, mapping := range mappings {
		state.byExternalID[normalizers.ClientID(mapping.ExternalID)] = mapping
		existing, ok := state.byPartnerID[mapping.PartnerID]
		if !ok || mapping.UpdatedAt.After(existing.UpdatedAt) {
			state.byPartnerID[mapping.PartnerID] = mapping
		}
	}
	return state
}

// Classifier turns input rows into per-row suggestions. Row-level
// problems are statuses, never errors, so the whole batch stays
// reviewable at once.
type Classifier struct {
	matcher *Matcher
}

// NewClassifier creates a classifier using the given matcher
func NewClassifier(matcher *Matcher) *Classifier {
	return &Classifier{matcher: matcher}
}

// Classify produces one suggestion per input row against the current
// partner index and mapping state.
func (c *Classifier) Classify(rows []models.InputRow, idx *CandidateIndex, mappings []models.ExternalMapping) []models.Suggestion {
	state := newMappingState(mappings)

	suggestions := make([]models.Suggestion, 0, len(rows))
	for _, row := range rows {
		suggestions = append(suggestions, c.classifyRow(row, idx, state))
	}
	return suggestions
}

func (c *Classifier) classifyRow(row models.InputRow, idx *CandidateIndex, state *mappingState) models.Suggestion {
	suggestion := models.Suggestion{
		RowNumber:  row.RowNumber,
		Brand:      strings.TrimSpace(row.Brand),
		ClientID:   strings.TrimSpace(row.ClientID),
		ClientName: strings.TrimSpace(row.ClientName),
	}

	if suggestion.ClientID == "" || suggestion.Brand == "" {
		suggestion.Status = models.SuggestionStatusMissingData
		return suggestion
	}

	match := c.matcher.Match(suggestion.Brand, idx)
	if match.Ambiguous {
		suggestion.Status = models.SuggestionStatusAmbiguous
		return suggestion
	}
	if match.Partner == nil {
		suggestion.Status = models.SuggestionStatusPartnerNotFound
		return suggestion
	}

	suggestion.MatchedPartnerID = match.Partner.ID
	suggestion.MatchedPartnerName = match.Partner.BrandName
	suggestion.MatchType = match.MatchType

	// A client id already bound to a different partner is a hard data
	// integrity problem; it outranks already_mapped and even a
	// high-confidence fuzzy match on the "wrong" partner.
	if existing, ok := state.byExternalID[normalizers.ClientID(suggestion.ClientID)]; ok {
		if existing.PartnerID != match.Partner.ID {
			suggestion.Status = models.SuggestionStatusClientConflict
			suggestion.CurrentMappingID = existing.ID
			suggestion.CurrentExternalID = existing.ExternalID
			suggestion.ConflictPartner = idx.PartnerName(existing.PartnerID)
			return suggestion
		}

		suggestion.Status = models.SuggestionStatusAlreadyMapped
		suggestion.CurrentMappingID = existing.ID
		suggestion.CurrentExternalID = existing.ExternalID
		return suggestion
	}

	suggestion.Status = models.SuggestionStatusReady
	return suggestion
}

// Summarize counts suggestions per status
func Summarize(suggestions []models.Suggestion) map[models.SuggestionStatus]int {
	summary := make(map[models.SuggestionStatus]int)
	for _, s := range suggestions {
		summary[s.Status]++
	}
	return summary
}

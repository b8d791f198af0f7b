package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/models"
)

func newTestClassifier() *Classifier {
	return NewClassifier(newTestMatcher())
}

func TestClassifyMissingData(t *testing.T) {
	idx := BuildIndex(testPartners("Acme Corp"))
	classifier := newTestClassifier()

	suggestions := classifier.Classify([]models.InputRow{
		{RowNumber: 2, Brand: "", ClientID: "amz-1"},
		{RowNumber: 3, Brand: "Acme Corp", ClientID: "   "},
		{RowNumber: 4, Brand: "  ", ClientID: ""},
	}, idx, nil)

	require.Len(t, suggestions, 3)
	for _, s := range suggestions {
		assert.Equal(t, models.SuggestionStatusMissingData, s.Status)
	}
}

func TestClassifyPartnerNotFound(t *testing.T) {
	idx := BuildIndex(testPartners("Acme Corp"))
	classifier := newTestClassifier()

	suggestions := classifier.Classify([]models.InputRow{
		{RowNumber: 2, Brand: "Totally Unknown Brandname", ClientID: "amz-1"},
	}, idx, nil)

	require.Len(t, suggestions, 1)
	assert.Equal(t, models.SuggestionStatusPartnerNotFound, suggestions[0].Status)
	assert.Empty(t, suggestions[0].MatchedPartnerID)
}

func TestClassifyAmbiguousPartner(t *testing.T) {
	idx := BuildIndex(testPartners("Acme Corp", "ACME CORP"))
	classifier := newTestClassifier()

	suggestions := classifier.Classify([]models.InputRow{
		{RowNumber: 2, Brand: "acme corp", ClientID: "amz-1"},
	}, idx, nil)

	require.Len(t, suggestions, 1)
	assert.Equal(t, models.SuggestionStatusAmbiguous, suggestions[0].Status)
}

func TestClassifyReady(t *testing.T) {
	partners := testPartners("Acme Corp", "Brightwater")
	idx := BuildIndex(partners)
	classifier := newTestClassifier()

	suggestions := classifier.Classify([]models.InputRow{
		{RowNumber: 2, Brand: "ACME Corp", ClientID: "amz-1", ClientName: "Acme Storefront"},
	}, idx, nil)

	require.Len(t, suggestions, 1)
	s := suggestions[0]
	assert.Equal(t, models.SuggestionStatusReady, s.Status)
	assert.Equal(t, partners[0].ID, s.MatchedPartnerID)
	assert.Equal(t, "Acme Corp", s.MatchedPartnerName)
	assert.Equal(t, models.MatchTypeExact, s.MatchType)
}

func TestClassifyAlreadyMapped(t *testing.T) {
	partners := testPartners("Acme Corp")
	idx := BuildIndex(partners)
	classifier := newTestClassifier()

	mappings := []models.ExternalMapping{{
		ID:         "m-1",
		PartnerID:  partners[0].ID,
		Source:     models.MappingSourceReferenceSheet,
		ExternalID: "amz-1",
	}}

	suggestions := classifier.Classify([]models.InputRow{
		{RowNumber: 2, Brand: "Acme Corp", ClientID: "amz-1"},
	}, idx, mappings)

	require.Len(t, suggestions, 1)
	assert.Equal(t, models.SuggestionStatusAlreadyMapped, suggestions[0].Status)
	assert.Equal(t, "m-1", suggestions[0].CurrentMappingID)
	assert.Equal(t, "amz-1", suggestions[0].CurrentExternalID)
}

func TestClassifyClientConflict(t *testing.T) {
	partners := testPartners("Acme Corp", "Brightwater")
	idx := BuildIndex(partners)
	classifier := newTestClassifier()

	// amz-1 is bound to Brightwater, but the row's brand matches Acme
	mappings := []models.ExternalMapping{{
		ID:         "m-1",
		PartnerID:  partners[1].ID,
		Source:     models.MappingSourceReferenceSheet,
		ExternalID: "amz-1",
	}}

	suggestions := classifier.Classify([]models.InputRow{
		{RowNumber: 2, Brand: "Acme Corp", ClientID: "amz-1"},
	}, idx, mappings)

	require.Len(t, suggestions, 1)
	s := suggestions[0]
	assert.Equal(t, models.SuggestionStatusClientConflict, s.Status)
	assert.Equal(t, "Brightwater", s.ConflictPartner)
	assert.Equal(t, "m-1", s.CurrentMappingID)
}

func TestClassifyConflictBeatsFuzzyConfidence(t *testing.T) {
	// Even a one-character typo resolving with high confidence must
	// surface the existing binding as a conflict.
	partners := testPartners("Brightwater", "Acme Corp")
	idx := BuildIndex(partners)
	classifier := newTestClassifier()

	mappings := []models.ExternalMapping{{
		ID:         "m-1",
		PartnerID:  partners[1].ID,
		Source:     models.MappingSourceReferenceSheet,
		ExternalID: "amz-1",
	}}

	suggestions := classifier.Classify([]models.InputRow{
		{RowNumber: 2, Brand: "Brightwoter", ClientID: "amz-1"},
	}, idx, mappings)

	require.Len(t, suggestions, 1)
	assert.Equal(t, models.SuggestionStatusClientConflict, suggestions[0].Status)
	assert.Equal(t, "Acme Corp", suggestions[0].ConflictPartner)
}

func TestMappingStateKeepsMostRecentPerPartner(t *testing.T) {
	older := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(48 * time.Hour)

	state := newMappingState([]models.ExternalMapping{
		{ID: "m-old", PartnerID: "p-1", ExternalID: "amz-1", UpdatedAt: older},
		{ID: "m-new", PartnerID: "p-1", ExternalID: "amz-2", UpdatedAt: newer},
	})

	assert.Equal(t, "m-new", state.byPartnerID["p-1"].ID)
}

func TestSummarize(t *testing.T) {
	summary := Summarize([]models.Suggestion{
		{Status: models.SuggestionStatusReady},
		{Status: models.SuggestionStatusReady},
		{Status: models.SuggestionStatusMissingData},
	})

	assert.Equal(t, 2, summary[models.SuggestionStatusReady])
	assert.Equal(t, 1, summary[models.SuggestionStatusMissingData])
}

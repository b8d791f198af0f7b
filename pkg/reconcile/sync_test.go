package reconcile

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/normalizers"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

// fakeMappingStore is an in-memory MappingStore enforcing the
// (source, external_id) uniqueness constraint the way postgres does.
type fakeMappingStore struct {
	mappings map[string]models.ExternalMapping
	seq      int
	upserts  int
}

func newFakeMappingStore() *fakeMappingStore {
	return &fakeMappingStore{mappings: make(map[string]models.ExternalMapping)}
}

func (f *fakeMappingStore) ListBySource(_ context.Context, source models.MappingSource) ([]models.ExternalMapping, error) {
	var result []models.ExternalMapping
	for _, m := range f.mappings {
		if m.Source == source {
			result = append(result, m)
		}
	}
	return result, nil
}

func (f *fakeMappingStore) Upsert(_ context.Context, mapping *models.ExternalMapping) (*models.ExternalMapping, bool, error) {
	f.upserts++
	for _, m := range f.mappings {
		if m.ID == mapping.ID {
			continue
		}
		if m.Source == mapping.Source && normalizers.ClientID(m.ExternalID) == normalizers.ClientID(mapping.ExternalID) {
			return nil, true, nil
		}
	}

	saved := *mapping
	if saved.ID == "" {
		f.seq++
		saved.ID = fmt.Sprintf("m-%d", f.seq)
		saved.CreatedAt = time.Now().UTC()
	}
	saved.UpdatedAt = time.Now().UTC()
	f.mappings[saved.ID] = saved
	return &saved, false, nil
}

func (f *fakeMappingStore) add(m models.ExternalMapping) {
	f.mappings[m.ID] = m
}

type fakeInvalidator struct {
	calls []models.MappingSource
}

func (f *fakeInvalidator) Invalidate(_ context.Context, source models.MappingSource) {
	f.calls = append(f.calls, source)
}

type fakeEmitter struct {
	created []string
	updated []string
}

func (f *fakeEmitter) EmitMappingCreated(_ context.Context, m *models.ExternalMapping) error {
	f.created = append(f.created, m.ExternalID)
	return nil
}

func (f *fakeEmitter) EmitMappingUpdated(_ context.Context, m *models.ExternalMapping) error {
	f.updated = append(f.updated, m.ExternalID)
	return nil
}

func readySuggestion(row int, partnerID, brand, clientID string) models.Suggestion {
	return models.Suggestion{
		RowNumber:        row,
		Brand:            brand,
		ClientID:         clientID,
		MatchedPartnerID: partnerID,
		MatchType:        models.MatchTypeExact,
		Status:           models.SuggestionStatusReady,
	}
}

func TestApplyInsertsNewMappings(t *testing.T) {
	store := newFakeMappingStore()
	cache := &fakeInvalidator{}
	emitter := &fakeEmitter{}
	sync := NewSynchronizer(testLogger(), store, cache, emitter)

	outcome, err := sync.Apply(context.Background(), models.MappingSourceReferenceSheet, []models.Suggestion{
		readySuggestion(2, "p-1", "Acme Corp", "amz-1-us"),
		readySuggestion(3, "p-2", "Brightwater", "amz-2-uk"),
	}, nil, false)
	require.NoError(t, err)

	assert.Equal(t, 2, outcome.Applied)
	assert.Equal(t, 2, outcome.Inserted)
	assert.Equal(t, 0, outcome.Updated)
	assert.Len(t, store.mappings, 2)
	assert.Equal(t, []models.MappingSource{models.MappingSourceReferenceSheet}, cache.calls)
	assert.Equal(t, []string{"amz-1-us", "amz-2-uk"}, emitter.created)

	assert.Equal(t, models.SuggestionStatusInserted, outcome.Suggestions[0].Status)
	assert.NotEmpty(t, outcome.Suggestions[0].CurrentMappingID)
}

func TestApplyUpdatesExistingPartnerSourceMapping(t *testing.T) {
	store := newFakeMappingStore()
	existing := models.ExternalMapping{
		ID:         "m-existing",
		PartnerID:  "p-1",
		Source:     models.MappingSourceReferenceSheet,
		ExternalID: "amz-old",
		Metadata:   map[string]any{"owner": "ops-team"},
		UpdatedAt:  time.Now().UTC().Add(-time.Hour),
	}
	store.add(existing)

	sync := NewSynchronizer(testLogger(), store, nil, nil)

	outcome, err := sync.Apply(context.Background(), models.MappingSourceReferenceSheet, []models.Suggestion{
		readySuggestion(2, "p-1", "Acme Corp", "amz-new-us"),
	}, []models.ExternalMapping{existing}, false)
	require.NoError(t, err)

	assert.Equal(t, 1, outcome.Updated)
	assert.Equal(t, 0, outcome.Inserted)
	require.Len(t, store.mappings, 1)

	saved := store.mappings["m-existing"]
	assert.Equal(t, "amz-new-us", saved.ExternalID)

	// Prior metadata keys survive; the reference context is rewritten
	assert.Equal(t, "ops-team", saved.Metadata["owner"])
	refCtx, ok := saved.Metadata[models.ReferenceContextKey].(models.ReferenceContext)
	require.True(t, ok)
	assert.Equal(t, 2, refCtx.RowNumber)
	assert.Equal(t, "us", refCtx.Marketplace)
}

func TestApplyDeduplicatesBatchRows(t *testing.T) {
	store := newFakeMappingStore()
	sync := NewSynchronizer(testLogger(), store, nil, nil)

	outcome, err := sync.Apply(context.Background(), models.MappingSourceReferenceSheet, []models.Suggestion{
		readySuggestion(2, "p-1", "Acme Corp", "amz-1"),
		readySuggestion(3, "p-1", "Acme Corp", "AMZ-1 "),
	}, nil, false)
	require.NoError(t, err)

	assert.Equal(t, 1, outcome.Inserted)
	assert.Equal(t, 1, outcome.Skipped)
	assert.Equal(t, models.SuggestionStatusSkipped, outcome.Suggestions[1].Status)
	assert.Len(t, store.mappings, 1)
}

func TestApplyCountsStoreConflicts(t *testing.T) {
	store := newFakeMappingStore()
	// Another partner already holds amz-1 for this source, as if a
	// concurrent run claimed it after our bulk read.
	store.add(models.ExternalMapping{
		ID:         "m-race",
		PartnerID:  "p-other",
		Source:     models.MappingSourceReferenceSheet,
		ExternalID: "amz-1",
	})

	sync := NewSynchronizer(testLogger(), store, nil, nil)

	outcome, err := sync.Apply(context.Background(), models.MappingSourceReferenceSheet, []models.Suggestion{
		readySuggestion(2, "p-1", "Acme Corp", "amz-1"),
		readySuggestion(3, "p-2", "Brightwater", "amz-2"),
	}, nil, false)
	require.NoError(t, err)

	// The conflicting row is counted, the rest of the batch proceeds
	assert.Equal(t, 1, outcome.Conflicts)
	assert.Equal(t, 1, outcome.Inserted)
	assert.Equal(t, models.SuggestionStatusConflict, outcome.Suggestions[0].Status)
	assert.Equal(t, models.SuggestionStatusInserted, outcome.Suggestions[1].Status)
}

func TestApplyDryRunWritesNothing(t *testing.T) {
	store := newFakeMappingStore()
	cache := &fakeInvalidator{}
	emitter := &fakeEmitter{}
	sync := NewSynchronizer(testLogger(), store, cache, emitter)

	suggestions := []models.Suggestion{
		readySuggestion(2, "p-1", "Acme Corp", "amz-1"),
		readySuggestion(3, "p-1", "Acme Corp", "amz-1"),
		readySuggestion(4, "p-2", "Brightwater", "amz-2"),
	}

	first, err := sync.Apply(context.Background(), models.MappingSourceReferenceSheet, suggestions, nil, true)
	require.NoError(t, err)
	second, err := sync.Apply(context.Background(), models.MappingSourceReferenceSheet, suggestions, nil, true)
	require.NoError(t, err)

	assert.Equal(t, 0, store.upserts)
	assert.Empty(t, store.mappings)
	assert.Empty(t, cache.calls)
	assert.Empty(t, emitter.created)

	// Dry runs are repeatable
	assert.Equal(t, first.Inserted, second.Inserted)
	assert.Equal(t, first.Skipped, second.Skipped)
	assert.Equal(t, 2, first.Inserted)
	assert.Equal(t, 1, first.Skipped)
}

func TestApplyIgnoresNonReadySuggestions(t *testing.T) {
	store := newFakeMappingStore()
	sync := NewSynchronizer(testLogger(), store, nil, nil)

	outcome, err := sync.Apply(context.Background(), models.MappingSourceReferenceSheet, []models.Suggestion{
		{RowNumber: 2, Status: models.SuggestionStatusMissingData},
		{RowNumber: 3, Status: models.SuggestionStatusAlreadyMapped},
		{RowNumber: 4, Status: models.SuggestionStatusClientConflict},
	}, nil, false)
	require.NoError(t, err)

	assert.Equal(t, 0, outcome.Applied)
	assert.Equal(t, 0, store.upserts)
}

func TestInferMarketplace(t *testing.T) {
	assert.Equal(t, "us", inferMarketplace("amz-1234-US"))
	assert.Equal(t, "uk", inferMarketplace("shop-77-uk"))
	assert.Equal(t, "", inferMarketplace("amz-1234-zz"))
	assert.Equal(t, "", inferMarketplace("plainid"))
}

package reconcile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/models"
)

type fakePartnerReader struct {
	partners []models.Partner
}

func (f *fakePartnerReader) ListActive(_ context.Context) ([]models.Partner, error) {
	return f.partners, nil
}

func testSheet(rows ...models.InputRow) *models.SheetData {
	return &models.SheetData{
		SpreadsheetID: "sheet-1",
		Title:         "Partner Reference",
		SelectedTab:   "Clients",
		ColumnMap:     models.ColumnMap{ClientID: "Client ID", Brand: "Brand"},
		Rows:          rows,
	}
}

func newTestService(partners []models.Partner, store MappingStore) *Service {
	return NewService(testLogger(), &fakePartnerReader{partners: partners}, store, DefaultThresholds(), nil, nil)
}

func TestServicePreview(t *testing.T) {
	partners := testPartners("Acme Corp", "Brightwater")
	service := newTestService(partners, newFakeMappingStore())

	preview, err := service.Preview(context.Background(), models.MappingSourceReferenceSheet, testSheet(
		models.InputRow{RowNumber: 2, Brand: "ACME Corp", ClientID: "amz-1"},
		models.InputRow{RowNumber: 3, Brand: "Nobody Knows This One", ClientID: "amz-2"},
		models.InputRow{RowNumber: 4, Brand: "", ClientID: "amz-3"},
	))
	require.NoError(t, err)

	assert.Equal(t, "sheet-1", preview.SheetMeta.SpreadsheetID)
	assert.Equal(t, 3, preview.SheetMeta.RowCount)
	assert.Equal(t, 1, preview.Summary[models.SuggestionStatusReady])
	assert.Equal(t, 1, preview.Summary[models.SuggestionStatusPartnerNotFound])
	assert.Equal(t, 1, preview.Summary[models.SuggestionStatusMissingData])

	// Previews report every row even when nothing is ready
	assert.Len(t, preview.Suggestions, 3)
}

func TestServiceApplyThenReclassifyIsIdempotent(t *testing.T) {
	partners := testPartners("Acme Corp", "Brightwater")
	store := newFakeMappingStore()
	service := newTestService(partners, store)

	sheet := testSheet(
		models.InputRow{RowNumber: 2, Brand: "Acme Corp", ClientID: "amz-1"},
		models.InputRow{RowNumber: 3, Brand: "Brightwater", ClientID: "amz-2"},
	)

	applied, err := service.Apply(context.Background(), models.MappingSourceReferenceSheet, sheet, false)
	require.NoError(t, err)
	assert.Equal(t, 2, applied.Inserted)

	// Identical input against refreshed store state is a no-op
	preview, err := service.Preview(context.Background(), models.MappingSourceReferenceSheet, sheet)
	require.NoError(t, err)
	assert.Equal(t, 2, preview.Summary[models.SuggestionStatusAlreadyMapped])
	assert.Equal(t, 0, preview.Summary[models.SuggestionStatusReady])

	again, err := service.Apply(context.Background(), models.MappingSourceReferenceSheet, sheet, false)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Applied)
	assert.Len(t, store.mappings, 2)
}

func TestServiceApplyDryRun(t *testing.T) {
	partners := testPartners("Acme Corp")
	store := newFakeMappingStore()
	service := newTestService(partners, store)

	sheet := testSheet(models.InputRow{RowNumber: 2, Brand: "Acme Corp", ClientID: "amz-1"})

	result, err := service.Apply(context.Background(), models.MappingSourceReferenceSheet, sheet, true)
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.Equal(t, 1, result.Inserted)
	assert.Empty(t, store.mappings)

	// The run stays a preview: a second dry run sees the same state
	repeat, err := service.Apply(context.Background(), models.MappingSourceReferenceSheet, sheet, true)
	require.NoError(t, err)
	assert.Equal(t, result.Summary, repeat.Summary)
	assert.Equal(t, result.Inserted, repeat.Inserted)
}

func TestServiceApplySourcesAreIsolated(t *testing.T) {
	partners := testPartners("Acme Corp")
	store := newFakeMappingStore()
	service := newTestService(partners, store)

	sheet := testSheet(models.InputRow{RowNumber: 2, Brand: "Acme Corp", ClientID: "amz-1"})

	_, err := service.Apply(context.Background(), models.MappingSourceReferenceSheet, sheet, false)
	require.NoError(t, err)

	// The same identifier under another source is still ready
	preview, err := service.Preview(context.Background(), models.MappingSourceWarehouse, sheet)
	require.NoError(t, err)
	assert.Equal(t, 1, preview.Summary[models.SuggestionStatusReady])
}

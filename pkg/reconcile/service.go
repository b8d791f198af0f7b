package reconcile

import (
	"context"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/stem/pkg/tracing"

	"github.com/Ramsey-B/fern/pkg/models"
)

// PartnerReader is the read side of the partner registry
type PartnerReader interface {
	ListActive(ctx context.Context) ([]models.Partner, error)
}

// Reader supplies resolved rows from a reference source. Column
// resolution is the reader's job; the engine only consumes rows.
type Reader interface {
	Read(ctx context.Context) (*models.SheetData, error)
}

// Service runs reconciliation passes: bulk reads, index build,
// classification, and (for Apply) the sequential write phase. Each
// run recomputes everything from current store state, which is what
// makes re-running after an apply idempotent.
type Service struct {
	logger     ectologger.Logger
	partners   PartnerReader
	store      MappingStore
	classifier *Classifier
	sync       *Synchronizer
}

// NewService creates a reconciliation service
func NewService(logger ectologger.Logger, partners PartnerReader, store MappingStore, thresholds Thresholds, cache CacheInvalidator, events EventEmitter) *Service {
	return &Service{
		logger:     logger,
		partners:   partners,
		store:      store,
		classifier: NewClassifier(NewMatcher(thresholds)),
		sync:       NewSynchronizer(logger, store, cache, events),
	}
}

// Preview classifies every row without writing anything. Bulk read
// failures abort the run; classification correctness depends on the
// full, current partner and mapping picture.
func (s *Service) Preview(ctx context.Context, source models.MappingSource, sheet *models.SheetData) (*models.PreviewResult, error) {
	ctx, span := tracing.StartSpan(ctx, "reconcile.Service.Preview")
	defer span.End()

	suggestions, _, err := s.classify(ctx, source, sheet)
	if err != nil {
		return nil, err
	}

	return &models.PreviewResult{
		SheetMeta:   sheetMeta(sheet),
		Summary:     Summarize(suggestions),
		Suggestions: suggestions,
	}, nil
}

// Apply classifies every row and commits the ready subset. With
// dryRun the write phase only reports what it would have done.
func (s *Service) Apply(ctx context.Context, source models.MappingSource, sheet *models.SheetData, dryRun bool) (*models.ApplyResult, error) {
	ctx, span := tracing.StartSpan(ctx, "reconcile.Service.Apply")
	defer span.End()

	suggestions, mappings, err := s.classify(ctx, source, sheet)
	if err != nil {
		return nil, err
	}

	outcome, err := s.sync.Apply(ctx, source, suggestions, mappings, dryRun)
	if err != nil {
		return nil, err
	}

	return &models.ApplyResult{
		PreviewResult: models.PreviewResult{
			SheetMeta:   sheetMeta(sheet),
			Summary:     Summarize(outcome.Suggestions),
			Suggestions: outcome.Suggestions,
		},
		Applied:   outcome.Applied,
		Inserted:  outcome.Inserted,
		Updated:   outcome.Updated,
		Skipped:   outcome.Skipped,
		Conflicts: outcome.Conflicts,
		DryRun:    dryRun,
	}, nil
}

func (s *Service) classify(ctx context.Context, source models.MappingSource, sheet *models.SheetData) ([]models.Suggestion, []models.ExternalMapping, error) {
	log := s.logger.WithContext(ctx).WithFields(map[string]any{
		"source":    string(source),
		"row_count": len(sheet.Rows),
	})

	partners, err := s.partners.ListActive(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to list partners")
		return nil, nil, err
	}

	mappings, err := s.store.ListBySource(ctx, source)
	if err != nil {
		log.WithError(err).Error("Failed to list mappings")
		return nil, nil, err
	}

	idx := BuildIndex(partners)
	suggestions := s.classifier.Classify(sheet.Rows, idx, mappings)

	log.WithFields(map[string]any{
		"partner_count": idx.Size(),
		"mapping_count": len(mappings),
	}).Debug("Classified reconciliation rows")

	return suggestions, mappings, nil
}

func sheetMeta(sheet *models.SheetData) models.SheetMeta {
	return models.SheetMeta{
		SpreadsheetID: sheet.SpreadsheetID,
		Title:         sheet.Title,
		SelectedTab:   sheet.SelectedTab,
		RowCount:      len(sheet.Rows),
	}
}

package reconcile

import (
	"context"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/stem/pkg/tracing"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/normalizers"
)

// MappingStore is the write side of the mapping store. Upsert reports
// a store-level uniqueness violation on (source, external_id) as
// conflict=true rather than an error.
type MappingStore interface {
	ListBySource(ctx context.Context, source models.MappingSource) ([]models.ExternalMapping, error)
	Upsert(ctx context.Context, mapping *models.ExternalMapping) (*models.ExternalMapping, bool, error)
}

// CacheInvalidator signals downstream identifier-lookup caches after
// mappings change. Fire-and-forget; failures are logged, not surfaced.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, source models.MappingSource)
}

// EventEmitter publishes mapping lifecycle events
type EventEmitter interface {
	EmitMappingCreated(ctx context.Context, mapping *models.ExternalMapping) error
	EmitMappingUpdated(ctx context.Context, mapping *models.ExternalMapping) error
}

// marketplaces recognized in client id suffixes
var marketplaces = map[string]struct{}{
	"us": {}, "uk": {}, "ca": {}, "mx": {}, "de": {}, "fr": {},
	"es": {}, "it": {}, "jp": {}, "au": {}, "br": {}, "nl": {},
}

// Synchronizer applies ready suggestions to the mapping store.
// Writes run strictly sequentially so the batch-local dedupe index
// stays consistent; one failing row never aborts the batch.
type Synchronizer struct {
	logger ectologger.Logger
	store  MappingStore
	cache  CacheInvalidator
	events EventEmitter
}

// NewSynchronizer creates a synchronizer. cache and events may be nil.
func NewSynchronizer(logger ectologger.Logger, store MappingStore, cache CacheInvalidator, events EventEmitter) *Synchronizer {
	return &Synchronizer{
		logger: logger,
		store:  store,
		cache:  cache,
		events: events,
	}
}

// ApplyOutcome summarizes one apply pass
type ApplyOutcome struct {
	Suggestions []models.Suggestion
	Applied     int
	Inserted    int
	Updated     int
	Skipped     int
	Conflicts   int
}

// Apply processes ready suggestions in input order. existing is the
// bulk-read mapping list from the same run; dryRun classifies the
// would-be writes without touching the store.
func (s *Synchronizer) Apply(ctx context.Context, source models.MappingSource, suggestions []models.Suggestion, existing []models.ExternalMapping, dryRun bool) (*ApplyOutcome, error) {
	ctx, span := tracing.StartSpan(ctx, "reconcile.Synchronizer.Apply")
	defer span.End()

	log := s.logger.WithContext(ctx).WithFields(map[string]any{
		"source":  string(source),
		"dry_run": dryRun,
	})

	state := newMappingState(existing)
	seen := make(map[string]struct{})

	outcome := &ApplyOutcome{Suggestions: make([]models.Suggestion, len(suggestions))}
	copy(outcome.Suggestions, suggestions)

	for i := range outcome.Suggestions {
		suggestion := &outcome.Suggestions[i]
		if suggestion.Status != models.SuggestionStatusReady {
			continue
		}

		// Duplicate rows in the source must not feed the same mapping
		// twice in one pass.
		dedupeKey := suggestion.MatchedPartnerID + "|" + normalizers.ClientID(suggestion.ClientID)
		if _, dup := seen[dedupeKey]; dup {
			suggestion.Status = models.SuggestionStatusSkipped
			outcome.Skipped++
			continue
		}
		seen[dedupeKey] = struct{}{}

		current, hasCurrent := state.byPartnerID[suggestion.MatchedPartnerID]

		if dryRun {
			if hasCurrent {
				outcome.Updated++
				suggestion.Status = models.SuggestionStatusUpdated
			} else {
				outcome.Inserted++
				suggestion.Status = models.SuggestionStatusInserted
				// A later row for the same partner is an update
				state.byPartnerID[suggestion.MatchedPartnerID] = models.ExternalMapping{PartnerID: suggestion.MatchedPartnerID}
			}
			outcome.Applied++
			continue
		}

		mapping := s.buildMapping(source, suggestion, current, hasCurrent)
		saved, conflict, err := s.store.Upsert(ctx, mapping)
		if err != nil {
			return nil, err
		}
		if conflict {
			// A concurrent run claimed this external id between our
			// bulk read and this write; count it and keep going.
			log.WithFields(map[string]any{
				"row_number": suggestion.RowNumber,
				"client_id":  suggestion.ClientID,
			}).Warn("Mapping write hit uniqueness conflict")
			suggestion.Status = models.SuggestionStatusConflict
			outcome.Conflicts++
			continue
		}

		if hasCurrent {
			suggestion.Status = models.SuggestionStatusUpdated
			suggestion.CurrentMappingID = saved.ID
			outcome.Updated++
			s.emit(ctx, saved, false)
		} else {
			suggestion.Status = models.SuggestionStatusInserted
			suggestion.CurrentMappingID = saved.ID
			outcome.Inserted++
			s.emit(ctx, saved, true)
		}
		// Keep (partner, source) one-to-one within the batch too
		state.byPartnerID[suggestion.MatchedPartnerID] = *saved
		outcome.Applied++
	}

	if !dryRun && outcome.Inserted+outcome.Updated > 0 && s.cache != nil {
		s.cache.Invalidate(ctx, source)
	}

	log.WithFields(map[string]any{
		"applied":   outcome.Applied,
		"inserted":  outcome.Inserted,
		"updated":   outcome.Updated,
		"skipped":   outcome.Skipped,
		"conflicts": outcome.Conflicts,
	}).Info("Applied mapping suggestions")

	return outcome, nil
}

// buildMapping produces the upsert payload for one suggestion,
// merging the prior metadata when a mapping for (partner, source)
// already exists.
func (s *Synchronizer) buildMapping(source models.MappingSource, suggestion *models.Suggestion, current models.ExternalMapping, hasCurrent bool) *models.ExternalMapping {
	metadata := make(map[string]any)
	if hasCurrent {
		for key, value := range current.Metadata {
			metadata[key] = value
		}
	}
	metadata[models.ReferenceContextKey] = models.ReferenceContext{
		RowNumber:   suggestion.RowNumber,
		Brand:       suggestion.Brand,
		ClientID:    suggestion.ClientID,
		ClientName:  suggestion.ClientName,
		Marketplace: inferMarketplace(suggestion.ClientID),
		SyncedAt:    time.Now().UTC().Format(time.RFC3339),
	}

	mapping := &models.ExternalMapping{
		PartnerID:  suggestion.MatchedPartnerID,
		Source:     source,
		ExternalID: suggestion.ClientID,
		Metadata:   metadata,
	}
	if hasCurrent {
		mapping.ID = current.ID
	}
	return mapping
}

func (s *Synchronizer) emit(ctx context.Context, mapping *models.ExternalMapping, created bool) {
	if s.events == nil {
		return
	}
	var err error
	if created {
		err = s.events.EmitMappingCreated(ctx, mapping)
	} else {
		err = s.events.EmitMappingUpdated(ctx, mapping)
	}
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Warn("Failed to emit mapping event")
	}
}

// inferMarketplace reads a marketplace tag from a client id suffix
// (e.g. "amz-1234-us"). Unknown suffixes yield an empty tag.
func inferMarketplace(clientID string) string {
	parts := strings.Split(normalizers.ClientID(clientID), "-")
	if len(parts) < 2 {
		return ""
	}
	suffix := parts[len(parts)-1]
	if _, ok := marketplaces[suffix]; ok {
		return suffix
	}
	return ""
}

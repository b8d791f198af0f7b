package externalmapping

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/stem/pkg/database"
	"github.com/Ramsey-B/stem/pkg/tracing"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Ramsey-B/fern/pkg/models"
)

// uniqueViolation is the postgres error code for unique constraint violations
const uniqueViolation = pq.ErrorCode("23505")

// Repository handles external mapping persistence. The table carries
// a unique constraint on (source, external_id); Upsert surfaces a
// violation as conflict=true so concurrent reconciliation runs
// degrade to counted conflicts instead of failures.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new external mapping repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// ListBySource retrieves every mapping for a source
func (r *Repository) ListBySource(ctx context.Context, source models.MappingSource) ([]models.ExternalMapping, error) {
	ctx, span := tracing.StartSpan(ctx, "externalmapping.Repository.ListBySource")
	defer span.End()

	sb := mappingStruct.SelectFrom(mappingsTable)
	sb.Where(sb.Equal("source", string(source)))
	sb.OrderBy("updated_at ASC")

	query, args := sb.Build()
	var rows []MappingRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"source": string(source)}).Error("Failed to list mappings")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list mappings")
	}

	return ToMappings(rows), nil
}

// Upsert inserts a new mapping or, when the mapping carries an id,
// updates that row in place. Returns conflict=true on a
// (source, external_id) uniqueness violation.
func (r *Repository) Upsert(ctx context.Context, mapping *models.ExternalMapping) (*models.ExternalMapping, bool, error) {
	ctx, span := tracing.StartSpan(ctx, "externalmapping.Repository.Upsert")
	defer span.End()

	if mapping.ID == "" {
		return r.insert(ctx, mapping)
	}
	return r.update(ctx, mapping)
}

func (r *Repository) insert(ctx context.Context, mapping *models.ExternalMapping) (*models.ExternalMapping, bool, error) {
	mapping.ID = uuid.New().String()
	mapping.CreatedAt = time.Now().UTC()
	mapping.UpdatedAt = mapping.CreatedAt

	row := FromMapping(mapping)
	ib := mappingStruct.InsertInto(mappingsTable, row)

	query, args := ib.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return nil, true, nil
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"partner_id": mapping.PartnerID}).Error("Failed to insert mapping")
		return nil, false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to insert mapping")
	}

	return mapping, false, nil
}

func (r *Repository) update(ctx context.Context, mapping *models.ExternalMapping) (*models.ExternalMapping, bool, error) {
	mapping.UpdatedAt = time.Now().UTC()

	ub := database.NewUpdateBuilder()
	ub.Update(mappingsTable)
	ub.Set(
		ub.Assign("partner_id", mapping.PartnerID),
		ub.Assign("external_id", mapping.ExternalID),
		ub.Assign("metadata", database.JSONB[map[string]any]{Data: mapping.Metadata}),
		ub.Assign("updated_at", mapping.UpdatedAt),
	)
	ub.Where(ub.Equal("id", mapping.ID))

	query, args := ub.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return nil, true, nil
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"mapping_id": mapping.ID}).Error("Failed to update mapping")
		return nil, false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update mapping")
	}

	return mapping, false, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

package partner

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/stem/pkg/database"
	"github.com/Ramsey-B/stem/pkg/tracing"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/fern/pkg/models"
)

const partnersTable = "partners"

var partnerColumns = []string{"id", "brand_name", "created_at", "updated_at", "deleted_at"}

// Repository handles partner registry persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new partner repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// ListActive retrieves all partners that have not been soft-deleted.
// The reconciliation engine indexes this full list once per run.
func (r *Repository) ListActive(ctx context.Context) ([]models.Partner, error) {
	ctx, span := tracing.StartSpan(ctx, "partner.Repository.ListActive")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(partnerColumns...)
	sb.From(partnersTable)
	sb.Where(sb.IsNull("deleted_at"))
	sb.OrderBy("brand_name ASC")

	query, args := sb.Build()
	var partners []models.Partner
	if err := r.db.SelectContext(ctx, &partners, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list partners")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list partners")
	}

	return partners, nil
}

// Get retrieves a partner by ID
func (r *Repository) Get(ctx context.Context, id string) (*models.Partner, error) {
	ctx, span := tracing.StartSpan(ctx, "partner.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(partnerColumns...)
	sb.From(partnersTable)
	sb.Where(
		sb.Equal("id", id),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	var partner models.Partner
	if err := r.db.GetContext(ctx, &partner, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("partner %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get partner")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get partner")
	}

	return &partner, nil
}

// Create creates a new partner
func (r *Repository) Create(ctx context.Context, partner *models.Partner) (*models.Partner, error) {
	ctx, span := tracing.StartSpan(ctx, "partner.Repository.Create")
	defer span.End()

	if partner.ID == "" {
		partner.ID = uuid.New().String()
	}
	partner.CreatedAt = time.Now().UTC()
	partner.UpdatedAt = partner.CreatedAt

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto(partnersTable)
	sb.Cols("id", "brand_name", "created_at", "updated_at")
	sb.Values(partner.ID, partner.BrandName, partner.CreatedAt, partner.UpdatedAt)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"partner_id": partner.ID}).Error("Failed to create partner")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create partner")
	}

	return partner, nil
}

// Update updates a partner's brand name
func (r *Repository) Update(ctx context.Context, partner *models.Partner) (*models.Partner, error) {
	ctx, span := tracing.StartSpan(ctx, "partner.Repository.Update")
	defer span.End()

	partner.UpdatedAt = time.Now().UTC()

	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update(partnersTable)
	ub.Set(
		ub.Assign("brand_name", partner.BrandName),
		ub.Assign("updated_at", partner.UpdatedAt),
	)
	ub.Where(
		ub.Equal("id", partner.ID),
		ub.IsNull("deleted_at"),
	)

	query, args := ub.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"partner_id": partner.ID}).Error("Failed to update partner")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update partner")
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("partner %s not found", partner.ID))
	}

	return partner, nil
}

// Delete soft-deletes a partner. Mappings are kept for audit; the
// engine stops matching against the name on the next run.
func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "partner.Repository.Delete")
	defer span.End()

	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update(partnersTable)
	ub.Set(ub.Assign("deleted_at", time.Now().UTC()))
	ub.Where(
		ub.Equal("id", id),
		ub.IsNull("deleted_at"),
	)

	query, args := ub.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"partner_id": id}).Error("Failed to delete partner")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete partner")
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("partner %s not found", id))
	}

	return nil
}

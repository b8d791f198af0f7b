package warehouse

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/stem/pkg/database"
	"github.com/Ramsey-B/stem/pkg/tracing"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/fern/pkg/models"
)

const clientAccountsTable = "client_accounts"

// clientAccountRow is one client identifier from the analytics schema
type clientAccountRow struct {
	ClientID    string  `db:"client_id"`
	AccountName *string `db:"account_name"`
	BrandName   *string `db:"brand_name"`
}

// Repository reads client identifiers from the analytics warehouse
// and adapts them to reconciliation input rows, so warehouse runs use
// the same engine path as spreadsheet runs.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new warehouse repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Read implements reconcile.Reader over the warehouse client accounts
func (r *Repository) Read(ctx context.Context) (*models.SheetData, error) {
	ctx, span := tracing.StartSpan(ctx, "warehouse.Repository.Read")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("client_id", "account_name", "brand_name")
	sb.From(clientAccountsTable)
	sb.OrderBy("client_id ASC")

	query, args := sb.Build()
	var rows []clientAccountRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to read warehouse client accounts")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to read warehouse client accounts")
	}

	inputRows := make([]models.InputRow, 0, len(rows))
	for i, row := range rows {
		brand := ""
		if row.BrandName != nil {
			brand = *row.BrandName
		}
		name := ""
		if row.AccountName != nil {
			name = *row.AccountName
		}
		if brand == "" {
			// Older warehouse loads only carry the account name
			brand = name
		}
		inputRows = append(inputRows, models.InputRow{
			RowNumber:  i + 1,
			Brand:      brand,
			ClientID:   row.ClientID,
			ClientName: name,
		})
	}

	return &models.SheetData{
		Title:     "warehouse client accounts",
		ColumnMap: models.ColumnMap{ClientID: "client_id", Brand: "brand_name", ClientName: "account_name"},
		Rows:      inputRows,
	}, nil
}

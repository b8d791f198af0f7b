package reconcile

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/Ramsey-B/stem/pkg/tracing"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/internal/repositories/warehouse"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/reconcile"
)

var validate = validator.New()

// RunRequest is the body for preview and apply. Rows come inline for
// reference sheet runs; warehouse runs can omit them and the engine
// pulls current client accounts instead.
type RunRequest struct {
	Source models.MappingSource `json:"source" validate:"required,oneof=reference_sheet warehouse"`
	Sheet  *models.SheetData    `json:"sheet,omitempty"`
	DryRun bool                 `json:"dry_run,omitempty"`
}

// Register registers reconciliation routes
func Register(g *echo.Group) {
	g.POST("/preview", Preview)
	g.POST("/apply", Apply)
}

// Preview classifies every row without writing anything
func Preview(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "reconcile_handler.Preview")
	defer span.End()

	req, err := bindRunRequest(c)
	if err != nil {
		return err
	}

	ctx, svc, err := ectoinject.GetContext[*reconcile.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get reconcile service")
	}

	sheet, err := resolveSheet(ctx, req)
	if err != nil {
		return err
	}

	result, err := svc.Preview(ctx, req.Source, sheet)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

// Apply classifies every row and commits the ready subset
func Apply(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "reconcile_handler.Apply")
	defer span.End()

	req, err := bindRunRequest(c)
	if err != nil {
		return err
	}

	ctx, svc, err := ectoinject.GetContext[*reconcile.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get reconcile service")
	}

	sheet, err := resolveSheet(ctx, req)
	if err != nil {
		return err
	}

	result, err := svc.Apply(ctx, req.Source, sheet, req.DryRun)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

func bindRunRequest(c echo.Context) (*RunRequest, error) {
	var req RunRequest
	if err := c.Bind(&req); err != nil {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Source == models.MappingSourceReferenceSheet && req.Sheet == nil {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "reference sheet runs require inline sheet rows")
	}
	return &req, nil
}

func resolveSheet(ctx context.Context, req *RunRequest) (*models.SheetData, error) {
	if req.Sheet != nil {
		return req.Sheet, nil
	}

	ctx, reader, err := ectoinject.GetContext[*warehouse.Repository](ctx)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get warehouse reader")
	}

	return reader.Read(ctx)
}

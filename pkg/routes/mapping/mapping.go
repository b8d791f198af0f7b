package mapping

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/Ramsey-B/stem/pkg/tracing"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/internal/repositories/externalmapping"
	"github.com/Ramsey-B/fern/pkg/models"
)

// Register registers external mapping routes
func Register(g *echo.Group) {
	g.GET("", List)
}

// List returns mappings for a source, ordered by last update
func List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "mapping_handler.List")
	defer span.End()

	source := models.MappingSource(c.QueryParam("source"))
	if source == "" {
		source = models.MappingSourceReferenceSheet
	}
	if source != models.MappingSourceReferenceSheet && source != models.MappingSourceWarehouse {
		return httperror.NewHTTPError(http.StatusBadRequest, "unknown mapping source")
	}

	ctx, repo, err := ectoinject.GetContext[*externalmapping.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	mappings, err := repo.ListBySource(ctx, source)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, mappings)
}

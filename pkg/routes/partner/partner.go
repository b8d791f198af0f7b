package partner

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/Ramsey-B/stem/pkg/tracing"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/internal/repositories/partner"
	"github.com/Ramsey-B/fern/pkg/models"
)

var validate = validator.New()

// Register registers partner registry routes
func Register(g *echo.Group) {
	g.GET("", List)
	g.POST("", Create)
	g.GET("/:id", Get)
	g.PUT("/:id", Update)
	g.DELETE("/:id", Delete)
}

// List returns all active partners
func List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "partner_handler.List")
	defer span.End()

	ctx, repo, err := ectoinject.GetContext[*partner.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	partners, err := repo.ListActive(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, partners)
}

// Get returns a partner by id
func Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "partner_handler.Get")
	defer span.End()

	ctx, repo, err := ectoinject.GetContext[*partner.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	record, err := repo.Get(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, record)
}

// Create creates a new partner
func Create(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "partner_handler.Create")
	defer span.End()

	var req models.CreatePartnerRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, repo, err := ectoinject.GetContext[*partner.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	record, err := repo.Create(ctx, &models.Partner{BrandName: req.BrandName})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, record)
}

// Update updates a partner's brand name
func Update(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "partner_handler.Update")
	defer span.End()

	var req models.UpdatePartnerRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx, repo, err := ectoinject.GetContext[*partner.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	record, err := repo.Get(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	if req.BrandName != nil {
		record.BrandName = *req.BrandName
	}

	record, err = repo.Update(ctx, record)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, record)
}

// Delete soft-deletes a partner
func Delete(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "partner_handler.Delete")
	defer span.End()

	ctx, repo, err := ectoinject.GetContext[*partner.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	if err := repo.Delete(ctx, c.Param("id")); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

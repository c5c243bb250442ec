package zonevendor

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/LazyDev-01/dayliz-allocation/internal/repositories/zonevendor"
	"github.com/LazyDev-01/dayliz-allocation/pkg/models"
	"github.com/LazyDev-01/dayliz-allocation/pkg/tracing"
)

var validate = validator.New()

// Register registers zone vendor link routes
func Register(g *echo.Group) {
	g.GET("", ListByZone)
	g.POST("", Create)
	g.GET("/:id", Get)
	g.PUT("/:id", Update)
	g.DELETE("/:id", Delete)
}

// ListByZone returns the active links for a zone
func ListByZone(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "zonevendor_handler.ListByZone")
	defer span.End()

	zoneID := c.QueryParam("zone_id")
	if zoneID == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "zone_id query parameter is required")
	}

	ctx, repo, err := ectoinject.GetContext[*zonevendor.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	links, err := repo.ListActiveLinks(ctx, zoneID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, links)
}

// Create onboards a vendor to a zone
func Create(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "zonevendor_handler.Create")
	defer span.End()

	var req models.CreateZoneVendorLinkRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, repo, err := ectoinject.GetContext[*zonevendor.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	link, err := repo.Create(ctx, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, link)
}

// Get returns a link by ID
func Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "zonevendor_handler.Get")
	defer span.End()

	ctx, repo, err := ectoinject.GetContext[*zonevendor.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	link, err := repo.Get(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, link)
}

// Update modifies a link
func Update(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "zonevendor_handler.Update")
	defer span.End()

	var req models.UpdateZoneVendorLinkRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx, repo, err := ectoinject.GetContext[*zonevendor.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	link, err := repo.Update(ctx, c.Param("id"), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, link)
}

// Delete removes a vendor from a zone
func Delete(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "zonevendor_handler.Delete")
	defer span.End()

	ctx, repo, err := ectoinject.GetContext[*zonevendor.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	if err := repo.Delete(ctx, c.Param("id")); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

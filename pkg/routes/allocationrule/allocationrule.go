package allocationrule

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/LazyDev-01/dayliz-allocation/internal/repositories/allocationrule"
	"github.com/LazyDev-01/dayliz-allocation/pkg/events"
	"github.com/LazyDev-01/dayliz-allocation/pkg/models"
	"github.com/LazyDev-01/dayliz-allocation/pkg/tracing"
)

var validate = validator.New()

// Register registers allocation rule routes
func Register(g *echo.Group) {
	g.GET("", ListByZone)
	g.POST("", Create)
	g.GET("/:id", Get)
	g.PUT("/:id", Update)
	g.DELETE("/:id", Delete)
}

// ListByZone returns the rules for a zone
func ListByZone(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "allocationrule_handler.ListByZone")
	defer span.End()

	zoneID := c.QueryParam("zone_id")
	if zoneID == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "zone_id query parameter is required")
	}

	ctx, repo, err := ectoinject.GetContext[*allocationrule.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	rules, err := repo.ListByZone(ctx, zoneID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, rules)
}

// Create adds a rule for a (zone, subcategory) pair
func Create(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "allocationrule_handler.Create")
	defer span.End()

	var req models.CreateAllocationRuleRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, repo, err := ectoinject.GetContext[*allocationrule.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	rule, err := repo.Create(ctx, req)
	if err != nil {
		return err
	}

	if ctx, emitter, err := ectoinject.GetContext[*events.Emitter](ctx); err == nil {
		_ = emitter.EmitRuleCreated(ctx, rule)
	}

	return c.JSON(http.StatusCreated, rule)
}

// Get returns a rule by ID
func Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "allocationrule_handler.Get")
	defer span.End()

	ctx, repo, err := ectoinject.GetContext[*allocationrule.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	rule, err := repo.Get(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, rule)
}

// Update modifies a rule
func Update(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "allocationrule_handler.Update")
	defer span.End()

	var req models.UpdateAllocationRuleRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx, repo, err := ectoinject.GetContext[*allocationrule.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	rule, err := repo.Update(ctx, c.Param("id"), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, rule)
}

// Delete removes a rule
func Delete(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "allocationrule_handler.Delete")
	defer span.End()

	ctx, repo, err := ectoinject.GetContext[*allocationrule.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	id := c.Param("id")
	rule, err := repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := repo.Delete(ctx, id); err != nil {
		return err
	}

	if ctx, emitter, err := ectoinject.GetContext[*events.Emitter](ctx); err == nil {
		_ = emitter.EmitRuleDeleted(ctx, rule.ID, rule.ZoneID)
	}

	return c.NoContent(http.StatusNoContent)
}

package inventory

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/LazyDev-01/dayliz-allocation/internal/repositories/inventory"
	"github.com/LazyDev-01/dayliz-allocation/pkg/events"
	"github.com/LazyDev-01/dayliz-allocation/pkg/metrics"
	"github.com/LazyDev-01/dayliz-allocation/pkg/models"
	"github.com/LazyDev-01/dayliz-allocation/pkg/tracing"
)

var validate = validator.New()

// Register registers inventory routes
func Register(g *echo.Group) {
	g.GET("", ListByZone)
	g.PUT("", Upsert)
	g.GET("/low-stock", ListLowStock)
	g.POST("/reserve", Reserve)
	g.POST("/release", Release)
	g.PUT("/availability", SetAvailability)
}

// ListByZone returns the records for a product in a zone
func ListByZone(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "inventory_handler.ListByZone")
	defer span.End()

	productID := c.QueryParam("product_id")
	zoneID := c.QueryParam("zone_id")
	if productID == "" || zoneID == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "product_id and zone_id query parameters are required")
	}

	ctx, repo, err := ectoinject.GetContext[*inventory.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	records, err := repo.ListByZone(ctx, productID, zoneID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, records)
}

// Upsert creates or replaces the record for (vendor, product, zone)
func Upsert(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "inventory_handler.Upsert")
	defer span.End()

	var req models.UpsertInventoryRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, repo, err := ectoinject.GetContext[*inventory.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	record, err := repo.Upsert(ctx, req)
	if err != nil {
		return err
	}

	if ctx, emitter, err := ectoinject.GetContext[*events.Emitter](ctx); err == nil {
		_ = emitter.EmitInventoryUpdated(ctx, record)
	}

	return c.JSON(http.StatusOK, record)
}

// ListLowStock returns the records in a zone at or below their reorder level
func ListLowStock(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "inventory_handler.ListLowStock")
	defer span.End()

	zoneID := c.QueryParam("zone_id")
	if zoneID == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "zone_id query parameter is required")
	}

	ctx, repo, err := ectoinject.GetContext[*inventory.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	records, err := repo.ListLowStock(ctx, zoneID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, records)
}

// Reserve holds units for an order being placed
func Reserve(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "inventory_handler.Reserve")
	defer span.End()

	var req models.ReserveStockRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, repo, err := ectoinject.GetContext[*inventory.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	if err := repo.Reserve(ctx, req); err != nil {
		metrics.StockReservationsTotal.WithLabelValues("rejected").Inc()
		return err
	}
	metrics.StockReservationsTotal.WithLabelValues("reserved").Inc()

	return c.NoContent(http.StatusNoContent)
}

// Release returns previously reserved units
func Release(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "inventory_handler.Release")
	defer span.End()

	var req models.ReserveStockRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, repo, err := ectoinject.GetContext[*inventory.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	if err := repo.Release(ctx, req); err != nil {
		metrics.StockReservationsTotal.WithLabelValues("release_rejected").Inc()
		return err
	}
	metrics.StockReservationsTotal.WithLabelValues("released").Inc()

	return c.NoContent(http.StatusNoContent)
}

// SetAvailabilityRequest is the request body for flipping the sellable gate
type SetAvailabilityRequest struct {
	VendorID    string  `json:"vendor_id" validate:"required"`
	ProductID   string  `json:"product_id" validate:"required"`
	ZoneID      string  `json:"zone_id" validate:"required"`
	IsAvailable bool    `json:"is_available"`
	Reason      *string `json:"reason,omitempty"`
}

// SetAvailability flips the sellable gate for (vendor, product, zone)
func SetAvailability(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "inventory_handler.SetAvailability")
	defer span.End()

	var req SetAvailabilityRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, repo, err := ectoinject.GetContext[*inventory.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	if err := repo.SetAvailability(ctx, req.VendorID, req.ProductID, req.ZoneID, req.IsAvailable, req.Reason); err != nil {
		return err
	}

	record, err := repo.GetRecord(ctx, req.VendorID, req.ProductID, req.ZoneID)
	if err != nil {
		return err
	}

	if ctx, emitter, err := ectoinject.GetContext[*events.Emitter](ctx); err == nil && record != nil {
		_ = emitter.EmitInventoryUpdated(ctx, record)
	}

	return c.JSON(http.StatusOK, record)
}

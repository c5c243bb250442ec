package allocation

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	"github.com/LazyDev-01/dayliz-allocation/pkg/allocation"
	"github.com/LazyDev-01/dayliz-allocation/pkg/models"
	"github.com/LazyDev-01/dayliz-allocation/pkg/tracing"
)

// Register registers the allocation query route
func Register(g *echo.Group) {
	g.GET("", Allocate)
}

// AllocationResponse wraps the ordered candidate list. An empty list is a
// valid response meaning no fulfillment is currently possible.
type AllocationResponse struct {
	ProductID  string                   `json:"product_id"`
	ZoneID     string                   `json:"zone_id"`
	Candidates []models.VendorCandidate `json:"candidates"`
}

// Allocate returns the ordered vendor candidates for a product in a zone
func Allocate(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "allocation_handler.Allocate")
	defer span.End()

	productID := c.QueryParam("product_id")
	zoneID := c.QueryParam("zone_id")
	if productID == "" || zoneID == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "product_id and zone_id query parameters are required")
	}

	ctx, engine, err := ectoinject.GetContext[*allocation.Engine](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get allocation engine")
	}

	candidates, err := engine.Allocate(ctx, productID, zoneID)
	if err != nil {
		return err
	}
	if candidates == nil {
		candidates = []models.VendorCandidate{}
	}

	return c.JSON(http.StatusOK, AllocationResponse{
		ProductID:  productID,
		ZoneID:     zoneID,
		Candidates: candidates,
	})
}

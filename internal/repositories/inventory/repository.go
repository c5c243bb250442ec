package inventory

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/LazyDev-01/dayliz-allocation/pkg/database"
	"github.com/LazyDev-01/dayliz-allocation/pkg/models"
	"github.com/LazyDev-01/dayliz-allocation/pkg/tracing"
)

const inventoryColumns = "id, vendor_id, product_id, zone_id, stock_quantity, reserved_quantity, reorder_level, max_stock_level, cost_price, selling_price, discount_price, is_available, availability_reason, last_restocked_at, created_at, updated_at"

// Repository handles inventory record persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new inventory repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Upsert creates or replaces the record for (vendor, product, zone). Stock
// levels are validated at this boundary; the schema alone does not hold the
// stock >= reserved invariant.
func (r *Repository) Upsert(ctx context.Context, req models.UpsertInventoryRequest) (*models.InventoryRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "inventory.Repository.Upsert")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":     "Upsert",
		"vendor_id":  req.VendorID,
		"product_id": req.ProductID,
		"zone_id":    req.ZoneID,
	})

	if err := models.ValidateStockLevels(req.StockQuantity, req.ReservedQuantity); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	record := &models.InventoryRecord{
		ID:                 uuid.New().String(),
		VendorID:           req.VendorID,
		ProductID:          req.ProductID,
		ZoneID:             req.ZoneID,
		StockQuantity:      req.StockQuantity,
		ReservedQuantity:   req.ReservedQuantity,
		ReorderLevel:       req.ReorderLevel,
		MaxStockLevel:      req.MaxStockLevel,
		CostPrice:          req.CostPrice,
		SellingPrice:       req.SellingPrice,
		DiscountPrice:      req.DiscountPrice,
		IsAvailable:        req.IsAvailable,
		AvailabilityReason: req.AvailabilityReason,
		LastRestockedAt:    &now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	ib := database.NewInsertBuilder()
	ib = ib.InsertInto("inventory_records")
	ib = ib.Cols("id", "vendor_id", "product_id", "zone_id", "stock_quantity", "reserved_quantity", "reorder_level", "max_stock_level", "cost_price", "selling_price", "discount_price", "is_available", "availability_reason", "last_restocked_at", "created_at", "updated_at")
	ib = ib.Values(record.ID, record.VendorID, record.ProductID, record.ZoneID, record.StockQuantity, record.ReservedQuantity, record.ReorderLevel, record.MaxStockLevel, record.CostPrice, record.SellingPrice, record.DiscountPrice, record.IsAvailable, record.AvailabilityReason, record.LastRestockedAt, record.CreatedAt, record.UpdatedAt)
	ub := ib.OnConflict("vendor_id", "product_id", "zone_id")
	ub.Set(
		ub.Assign("stock_quantity", database.Excluded("stock_quantity")),
		ub.Assign("reserved_quantity", database.Excluded("reserved_quantity")),
		ub.Assign("reorder_level", database.Excluded("reorder_level")),
		ub.Assign("max_stock_level", database.Excluded("max_stock_level")),
		ub.Assign("cost_price", database.Excluded("cost_price")),
		ub.Assign("selling_price", database.Excluded("selling_price")),
		ub.Assign("discount_price", database.Excluded("discount_price")),
		ub.Assign("is_available", database.Excluded("is_available")),
		ub.Assign("availability_reason", database.Excluded("availability_reason")),
		ub.Assign("last_restocked_at", database.Excluded("last_restocked_at")),
		ub.Assign("updated_at", now),
	)

	query, args := ib.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.WithError(err).Error("Failed to upsert inventory record")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to upsert inventory record")
	}

	log.Info("Upserted inventory record")
	return r.GetRecord(ctx, req.VendorID, req.ProductID, req.ZoneID)
}

// GetRecord returns the record for (vendor, product, zone), or (nil, nil)
// when the vendor has never stocked the product in the zone.
func (r *Repository) GetRecord(ctx context.Context, vendorID, productID, zoneID string) (*models.InventoryRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "inventory.Repository.GetRecord")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(inventoryColumns)
	sb.From("inventory_records")
	sb.Where(
		sb.Equal("vendor_id", vendorID),
		sb.Equal("product_id", productID),
		sb.Equal("zone_id", zoneID),
	)

	query, args := sb.Build()
	var record models.InventoryRecord
	if err := r.db.GetContext(ctx, &record, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get inventory record")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get inventory record")
	}

	return &record, nil
}

// ListByZone retrieves all records for a product in a zone
func (r *Repository) ListByZone(ctx context.Context, productID, zoneID string) ([]models.InventoryRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "inventory.Repository.ListByZone")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(inventoryColumns)
	sb.From("inventory_records")
	sb.Where(
		sb.Equal("product_id", productID),
		sb.Equal("zone_id", zoneID),
	)
	sb.OrderBy("vendor_id ASC")

	query, args := sb.Build()
	var records []models.InventoryRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list inventory records")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list inventory records")
	}

	return records, nil
}

// ListLowStock retrieves records in a zone at or below their reorder level
func (r *Repository) ListLowStock(ctx context.Context, zoneID string) ([]models.InventoryRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "inventory.Repository.ListLowStock")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(inventoryColumns)
	sb.From("inventory_records")
	sb.Where(
		sb.Equal("zone_id", zoneID),
		"stock_quantity - reserved_quantity <= reorder_level",
	)
	sb.OrderBy("vendor_id ASC", "product_id ASC")

	query, args := sb.Build()
	var records []models.InventoryRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list low stock records")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list low stock records")
	}

	return records, nil
}

// Reserve holds units for an order as a single guarded statement. The WHERE
// clause carries the stock >= reserved invariant so concurrent reservations
// can never oversell.
func (r *Repository) Reserve(ctx context.Context, req models.ReserveStockRequest) error {
	ctx, span := tracing.StartSpan(ctx, "inventory.Repository.Reserve")
	defer span.End()

	query := `
		UPDATE inventory_records
		SET reserved_quantity = reserved_quantity + $1,
		    updated_at = $2
		WHERE vendor_id = $3 AND product_id = $4 AND zone_id = $5
		  AND stock_quantity - reserved_quantity >= $1`

	result, err := r.db.ExecContext(ctx, query, req.Quantity, time.Now().UTC(), req.VendorID, req.ProductID, req.ZoneID)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to reserve stock")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to reserve stock")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusConflict, "insufficient stock to reserve")
	}

	return nil
}

// Release returns previously reserved units
func (r *Repository) Release(ctx context.Context, req models.ReserveStockRequest) error {
	ctx, span := tracing.StartSpan(ctx, "inventory.Repository.Release")
	defer span.End()

	query := `
		UPDATE inventory_records
		SET reserved_quantity = reserved_quantity - $1,
		    updated_at = $2
		WHERE vendor_id = $3 AND product_id = $4 AND zone_id = $5
		  AND reserved_quantity >= $1`

	result, err := r.db.ExecContext(ctx, query, req.Quantity, time.Now().UTC(), req.VendorID, req.ProductID, req.ZoneID)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to release stock")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to release stock")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusConflict, "release exceeds reserved quantity")
	}

	return nil
}

// SetAvailability flips the sellable gate for (vendor, product, zone)
func (r *Repository) SetAvailability(ctx context.Context, vendorID, productID, zoneID string, available bool, reason *string) error {
	ctx, span := tracing.StartSpan(ctx, "inventory.Repository.SetAvailability")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("inventory_records")
	sb.Set(
		sb.Assign("is_available", available),
		sb.Assign("availability_reason", reason),
		sb.Assign("updated_at", time.Now().UTC()),
	)
	sb.Where(
		sb.Equal("vendor_id", vendorID),
		sb.Equal("product_id", productID),
		sb.Equal("zone_id", zoneID),
	)

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to set availability")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to set availability")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("inventory record for vendor %s product %s zone %s not found", vendorID, productID, zoneID))
	}

	return nil
}

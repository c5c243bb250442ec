package models

import "time"

// InventoryRecord is the fulfillable unit, keyed by (vendor, product, zone).
// The availability flag is the authoritative can-this-be-sold gate,
// independent of the raw stock count.
type InventoryRecord struct {
	ID                 string     `json:"id" db:"id"`
	VendorID           string     `json:"vendor_id" db:"vendor_id"`
	ProductID          string     `json:"product_id" db:"product_id"`
	ZoneID             string     `json:"zone_id" db:"zone_id"`
	StockQuantity      int        `json:"stock_quantity" db:"stock_quantity"`
	ReservedQuantity   int        `json:"reserved_quantity" db:"reserved_quantity"`
	ReorderLevel       int        `json:"reorder_level" db:"reorder_level"`
	MaxStockLevel      int        `json:"max_stock_level" db:"max_stock_level"`
	CostPrice          float64    `json:"cost_price" db:"cost_price"`
	SellingPrice       float64    `json:"selling_price" db:"selling_price"`
	DiscountPrice      *float64   `json:"discount_price,omitempty" db:"discount_price"`
	IsAvailable        bool       `json:"is_available" db:"is_available"`
	AvailabilityReason *string    `json:"availability_reason,omitempty" db:"availability_reason"`
	LastRestockedAt    *time.Time `json:"last_restocked_at,omitempty" db:"last_restocked_at"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
}

// ValidateStockLevels enforces stock >= reserved >= 0 at the write boundary.
// The original schema never held this invariant; allocation correctness
// depends on it, so writes are rejected here instead.
func ValidateStockLevels(stock, reserved int) error {
	if reserved < 0 || stock < reserved {
		return ErrInvalidStockLevels
	}
	return nil
}

// UpsertInventoryRequest creates or replaces the record for
// (vendor, product, zone).
type UpsertInventoryRequest struct {
	VendorID           string   `json:"vendor_id" validate:"required"`
	ProductID          string   `json:"product_id" validate:"required"`
	ZoneID             string   `json:"zone_id" validate:"required"`
	StockQuantity      int      `json:"stock_quantity"`
	ReservedQuantity   int      `json:"reserved_quantity"`
	ReorderLevel       int      `json:"reorder_level"`
	MaxStockLevel      int      `json:"max_stock_level"`
	CostPrice          float64  `json:"cost_price"`
	SellingPrice       float64  `json:"selling_price" validate:"required,gt=0"`
	DiscountPrice      *float64 `json:"discount_price,omitempty"`
	IsAvailable        bool     `json:"is_available"`
	AvailabilityReason *string  `json:"availability_reason,omitempty"`
}

// ReserveStockRequest reserves units for an order being placed.
type ReserveStockRequest struct {
	VendorID  string `json:"vendor_id" validate:"required"`
	ProductID string `json:"product_id" validate:"required"`
	ZoneID    string `json:"zone_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

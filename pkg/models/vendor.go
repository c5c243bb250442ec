package models

import (
	"fmt"
	"time"
)

// VendorKind distinguishes marketplace vendors from company-run fulfillment
// facilities.
type VendorKind string

const (
	VendorKindExternal         VendorKind = "external"          // marketplace vendor with a public storefront
	VendorKindDarkStore        VendorKind = "dark_store"        // fulfillment-only facility
	VendorKindWarehouse        VendorKind = "warehouse"         // regional warehouse
	VendorKindMicroFulfillment VendorKind = "micro_fulfillment" // small in-zone fulfillment point
)

// ParseVendorKind rejects unrecognized kinds at the boundary.
func ParseVendorKind(s string) (VendorKind, error) {
	switch VendorKind(s) {
	case VendorKindExternal, VendorKindDarkStore, VendorKindWarehouse, VendorKindMicroFulfillment:
		return VendorKind(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidVendorKind, s)
}

// Vendor is a fulfillment entity. Deactivated rather than deleted; rating and
// order count move on every completed order.
type Vendor struct {
	ID                 string     `json:"id" db:"id"`
	Name               string     `json:"name" db:"name"`
	Kind               VendorKind `json:"kind" db:"kind"`
	IsActive           bool       `json:"is_active" db:"is_active"`
	Priority           int        `json:"priority" db:"priority"` // 1 = highest
	DeliveryRadiusKm   float64    `json:"delivery_radius_km" db:"delivery_radius_km"`
	AvgPreparationMins int        `json:"avg_preparation_mins" db:"avg_preparation_mins"`
	CommissionRate     float64    `json:"commission_rate" db:"commission_rate"`
	MinOrderAmount     float64    `json:"min_order_amount" db:"min_order_amount"`
	Rating             float64    `json:"rating" db:"rating"`
	TotalOrders        int64      `json:"total_orders" db:"total_orders"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt          *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// CreateVendorRequest is the request to register a vendor
type CreateVendorRequest struct {
	Name               string  `json:"name" validate:"required"`
	Kind               string  `json:"kind" validate:"required"`
	Priority           int     `json:"priority"`
	DeliveryRadiusKm   float64 `json:"delivery_radius_km"`
	AvgPreparationMins int     `json:"avg_preparation_mins"`
	CommissionRate     float64 `json:"commission_rate"`
	MinOrderAmount     float64 `json:"min_order_amount"`
}

// UpdateVendorRequest is the request to update a vendor
type UpdateVendorRequest struct {
	Name               *string  `json:"name,omitempty"`
	Priority           *int     `json:"priority,omitempty"`
	IsActive           *bool    `json:"is_active,omitempty"`
	DeliveryRadiusKm   *float64 `json:"delivery_radius_km,omitempty"`
	AvgPreparationMins *int     `json:"avg_preparation_mins,omitempty"`
	CommissionRate     *float64 `json:"commission_rate,omitempty"`
	MinOrderAmount     *float64 `json:"min_order_amount,omitempty"`
}

// RecordOrderRequest carries the stats update applied after a completed order.
type RecordOrderRequest struct {
	Rating float64 `json:"rating" validate:"gte=0,lte=5"`
}

package models

import "time"

// ZoneVendorLink associates a vendor with a delivery zone. A (vendor, zone)
// pair is unique; at most one active link per zone is primary.
type ZoneVendorLink struct {
	ID                 string     `json:"id" db:"id"`
	VendorID           string     `json:"vendor_id" db:"vendor_id"`
	ZoneID             string     `json:"zone_id" db:"zone_id"`
	IsActive           bool       `json:"is_active" db:"is_active"`
	IsPrimary          bool       `json:"is_primary" db:"is_primary"`
	Priority           int        `json:"priority" db:"priority"` // tie-break ordering, 1 = highest
	CommissionOverride *float64   `json:"commission_override,omitempty" db:"commission_override"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt          *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// CreateZoneVendorLinkRequest is the request to onboard a vendor to a zone
type CreateZoneVendorLinkRequest struct {
	VendorID           string   `json:"vendor_id" validate:"required"`
	ZoneID             string   `json:"zone_id" validate:"required"`
	IsPrimary          bool     `json:"is_primary"`
	Priority           int      `json:"priority"`
	CommissionOverride *float64 `json:"commission_override,omitempty"`
}

// UpdateZoneVendorLinkRequest is the request to update a zone link
type UpdateZoneVendorLinkRequest struct {
	IsActive           *bool    `json:"is_active,omitempty"`
	IsPrimary          *bool    `json:"is_primary,omitempty"`
	Priority           *int     `json:"priority,omitempty"`
	CommissionOverride *float64 `json:"commission_override,omitempty"`
}

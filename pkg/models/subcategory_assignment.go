package models

import "time"

// SubcategoryAssignment grants one vendor rights to fulfill a product
// subcategory within a zone. At most one active assignment per
// (zone, subcategory); consulted in multi_vendor and hybrid modes.
type SubcategoryAssignment struct {
	ID            string     `json:"id" db:"id"`
	VendorID      string     `json:"vendor_id" db:"vendor_id"`
	ZoneID        string     `json:"zone_id" db:"zone_id"`
	SubcategoryID string     `json:"subcategory_id" db:"subcategory_id"`
	IsExclusive   bool       `json:"is_exclusive" db:"is_exclusive"`
	IsActive      bool       `json:"is_active" db:"is_active"`
	Priority      int        `json:"priority" db:"priority"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// CreateSubcategoryAssignmentRequest is the request to assign a subcategory
type CreateSubcategoryAssignmentRequest struct {
	VendorID      string `json:"vendor_id" validate:"required"`
	ZoneID        string `json:"zone_id" validate:"required"`
	SubcategoryID string `json:"subcategory_id" validate:"required"`
	IsExclusive   bool   `json:"is_exclusive"`
	Priority      int    `json:"priority"`
}

// UpdateSubcategoryAssignmentRequest is the request to update an assignment
type UpdateSubcategoryAssignmentRequest struct {
	VendorID    *string `json:"vendor_id,omitempty"`
	IsExclusive *bool   `json:"is_exclusive,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
	Priority    *int    `json:"priority,omitempty"`
}

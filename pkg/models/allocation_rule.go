package models

import (
	"fmt"
	"time"

	"github.com/LazyDev-01/dayliz-allocation/pkg/database"
)

// AllocationStrategy selects how a (zone, subcategory) pair is resolved in
// hybrid mode.
type AllocationStrategy string

const (
	StrategySingleVendor         AllocationStrategy = "single_vendor"
	StrategySubcategoryExclusive AllocationStrategy = "subcategory_exclusive"
	StrategySmartAllocation      AllocationStrategy = "smart_allocation"
)

// ParseAllocationStrategy rejects unrecognized strategies at the boundary.
func ParseAllocationStrategy(s string) (AllocationStrategy, error) {
	switch AllocationStrategy(s) {
	case StrategySingleVendor, StrategySubcategoryExclusive, StrategySmartAllocation:
		return AllocationStrategy(s), nil
	}
	return "", fmt.Errorf("unrecognized allocation strategy: %q", s)
}

// AllocationRule configures the hybrid path for one (zone, subcategory).
// At most one active rule per pair.
type AllocationRule struct {
	ID                  string                   `json:"id" db:"id"`
	ZoneID              string                   `json:"zone_id" db:"zone_id"`
	SubcategoryID       string                   `json:"subcategory_id" db:"subcategory_id"`
	Strategy            AllocationStrategy       `json:"strategy" db:"strategy"`
	VendorPriorityOrder database.JSONB[[]string] `json:"vendor_priority_order" db:"vendor_priority_order"`
	DarkStorePriority   int                      `json:"dark_store_priority" db:"dark_store_priority"`
	VendorFallback      bool                     `json:"vendor_fallback" db:"vendor_fallback"`
	IsActive            bool                     `json:"is_active" db:"is_active"`
	CreatedAt           time.Time                `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time                `json:"updated_at" db:"updated_at"`
	DeletedAt           *time.Time               `json:"deleted_at,omitempty" db:"deleted_at"`
}

// CreateAllocationRuleRequest is the request to create a rule
type CreateAllocationRuleRequest struct {
	ZoneID              string   `json:"zone_id" validate:"required"`
	SubcategoryID       string   `json:"subcategory_id" validate:"required"`
	Strategy            string   `json:"strategy" validate:"required"`
	VendorPriorityOrder []string `json:"vendor_priority_order,omitempty"`
	DarkStorePriority   int      `json:"dark_store_priority"`
	VendorFallback      bool     `json:"vendor_fallback"`
}

// UpdateAllocationRuleRequest is the request to update a rule
type UpdateAllocationRuleRequest struct {
	Strategy            *string  `json:"strategy,omitempty"`
	VendorPriorityOrder []string `json:"vendor_priority_order,omitempty"`
	DarkStorePriority   *int     `json:"dark_store_priority,omitempty"`
	VendorFallback      *bool    `json:"vendor_fallback,omitempty"`
	IsActive            *bool    `json:"is_active,omitempty"`
}

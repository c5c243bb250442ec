package allocation

import (
	"context"

	"github.com/LazyDev-01/dayliz-allocation/pkg/models"
)

// The engine reads through these narrow interfaces. The repositories under
// internal/repositories satisfy them; tests substitute fakes. Readers return
// (nil, nil) when the row is absent: a missing row is a valid empty outcome
// on the allocation path, never an error.

// ConfigReader resolves the system-wide operational mode. Every Allocate call
// performs its own read; the engine holds no mode state between calls.
type ConfigReader interface {
	GetOperationalMode(ctx context.Context) (models.OperationalMode, error)
}

// ProductReader resolves a product to its subcategory
type ProductReader interface {
	Get(ctx context.Context, id string) (*models.Product, error)
}

// VendorReader resolves active vendors
type VendorReader interface {
	GetActive(ctx context.Context, id string) (*models.Vendor, error)
}

// ZoneVendorReader reads the zone coverage map
type ZoneVendorReader interface {
	GetPrimaryLink(ctx context.Context, zoneID string) (*models.ZoneVendorLink, error)
	ListActiveLinks(ctx context.Context, zoneID string) ([]models.ZoneVendorLink, error)
}

// AssignmentReader reads the subcategory assignment map
type AssignmentReader interface {
	GetActiveAssignment(ctx context.Context, zoneID, subcategoryID string) (*models.SubcategoryAssignment, error)
}

// InventoryReader reads the inventory ledger
type InventoryReader interface {
	GetRecord(ctx context.Context, vendorID, productID, zoneID string) (*models.InventoryRecord, error)
}

// RuleReader reads the allocation rule set consulted by the hybrid path
type RuleReader interface {
	GetActiveRule(ctx context.Context, zoneID, subcategoryID string) (*models.AllocationRule, error)
}

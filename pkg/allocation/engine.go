// Package allocation implements vendor selection for a (product, zone) pair
package allocation

import (
	"context"
	"sort"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/LazyDev-01/dayliz-allocation/pkg/metrics"
	"github.com/LazyDev-01/dayliz-allocation/pkg/models"
	"github.com/LazyDev-01/dayliz-allocation/pkg/tracing"
)

// Engine selects vendor candidates for a product in a zone. It is a pure
// read path: stateless per invocation, safe for concurrent use, and never
// mutates the ledger. Stock reservation belongs to the ordering flow.
type Engine struct {
	logger      ectologger.Logger
	config      ConfigReader
	products    ProductReader
	vendors     VendorReader
	zoneVendors ZoneVendorReader
	assignments AssignmentReader
	inventory   InventoryReader
	rules       RuleReader
	cfg         EngineConfig
}

// EngineConfig contains configuration for the allocation engine
type EngineConfig struct {
	FallbackPriority int // priority assigned to non-dark-store candidates on the hybrid path
	MaxCandidates    int // maximum candidates to return per allocation
}

// DefaultConfig returns default engine configuration
func DefaultConfig() EngineConfig {
	return EngineConfig{
		FallbackPriority: 2,
		MaxCandidates:    50,
	}
}

// NewEngine creates a new allocation engine
func NewEngine(
	logger ectologger.Logger,
	config ConfigReader,
	products ProductReader,
	vendors VendorReader,
	zoneVendors ZoneVendorReader,
	assignments AssignmentReader,
	inventory InventoryReader,
	rules RuleReader,
	cfg EngineConfig,
) *Engine {
	return &Engine{
		logger:      logger,
		config:      config,
		products:    products,
		vendors:     vendors,
		zoneVendors: zoneVendors,
		assignments: assignments,
		inventory:   inventory,
		rules:       rules,
		cfg:         cfg,
	}
}

// Allocate returns the ordered candidate list for a product in a zone. An
// empty list is a valid outcome meaning no fulfillment is currently
// possible; the caller owns the out-of-stock experience.
func (e *Engine) Allocate(ctx context.Context, productID, zoneID string) ([]models.VendorCandidate, error) {
	ctx, span := tracing.StartSpan(ctx, "allocation.Engine.Allocate")
	defer span.End()

	log := e.logger.WithContext(ctx).WithFields(map[string]any{
		"product_id": productID,
		"zone_id":    zoneID,
	})

	mode, err := e.config.GetOperationalMode(ctx)
	if err != nil {
		metrics.AllocationRequestsTotal.WithLabelValues("unknown", "error").Inc()
		return nil, err
	}

	start := time.Now()
	var candidates []models.VendorCandidate

	switch mode {
	case models.ModeSingleVendor:
		candidates, err = e.allocateSingleVendor(ctx, productID, zoneID)
	case models.ModeMultiVendor:
		candidates, err = e.allocateMultiVendor(ctx, productID, zoneID)
	case models.ModeHybrid:
		candidates, err = e.allocateHybrid(ctx, productID, zoneID)
	}

	if err != nil {
		metrics.AllocationRequestsTotal.WithLabelValues(string(mode), "error").Inc()
		return nil, err
	}

	sortCandidates(candidates)
	if len(candidates) > e.cfg.MaxCandidates {
		candidates = candidates[:e.cfg.MaxCandidates]
	}

	outcome := "allocated"
	if len(candidates) == 0 {
		outcome = "empty"
	}
	metrics.AllocationRequestsTotal.WithLabelValues(string(mode), outcome).Inc()
	metrics.AllocationDuration.WithLabelValues(string(mode)).Observe(time.Since(start).Seconds())
	metrics.AllocationCandidates.WithLabelValues(string(mode)).Observe(float64(len(candidates)))

	log.WithFields(map[string]any{
		"mode":       mode,
		"candidates": len(candidates),
	}).Debug("Allocated vendor candidates")

	return candidates, nil
}

// allocateSingleVendor resolves the zone's primary vendor. Expected
// cardinality is zero or one.
func (e *Engine) allocateSingleVendor(ctx context.Context, productID, zoneID string) ([]models.VendorCandidate, error) {
	ctx, span := tracing.StartSpan(ctx, "allocation.Engine.allocateSingleVendor")
	defer span.End()

	link, err := e.zoneVendors.GetPrimaryLink(ctx, zoneID)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, nil
	}

	vendor, err := e.vendors.GetActive(ctx, link.VendorID)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, nil
	}

	record, err := e.inventory.GetRecord(ctx, vendor.ID, productID, zoneID)
	if err != nil {
		return nil, err
	}
	if record == nil || !record.IsAvailable {
		return nil, nil
	}

	return []models.VendorCandidate{newCandidate(vendor, record, link.Priority)}, nil
}

// allocateMultiVendor resolves the vendor holding the exclusive assignment
// for the product's subcategory in the zone.
func (e *Engine) allocateMultiVendor(ctx context.Context, productID, zoneID string) ([]models.VendorCandidate, error) {
	ctx, span := tracing.StartSpan(ctx, "allocation.Engine.allocateMultiVendor")
	defer span.End()

	product, err := e.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}

	assignment, err := e.assignments.GetActiveAssignment(ctx, zoneID, product.SubcategoryID)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, nil
	}

	vendor, err := e.vendors.GetActive(ctx, assignment.VendorID)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, nil
	}

	record, err := e.inventory.GetRecord(ctx, vendor.ID, productID, zoneID)
	if err != nil {
		return nil, err
	}
	if record == nil || !record.IsAvailable {
		return nil, nil
	}

	return []models.VendorCandidate{newCandidate(vendor, record, assignment.Priority)}, nil
}

// allocateHybrid walks every active vendor in the zone, ranking dark stores
// by the rule's dark-store priority and every other kind at the flat
// fallback priority. With fallback disabled the walk is restricted to dark
// stores. Without a rule for the pair the lookup degrades to the
// single-vendor path.
func (e *Engine) allocateHybrid(ctx context.Context, productID, zoneID string) ([]models.VendorCandidate, error) {
	ctx, span := tracing.StartSpan(ctx, "allocation.Engine.allocateHybrid")
	defer span.End()

	product, err := e.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return e.allocateSingleVendor(ctx, productID, zoneID)
	}

	rule, err := e.rules.GetActiveRule(ctx, zoneID, product.SubcategoryID)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return e.allocateSingleVendor(ctx, productID, zoneID)
	}

	links, err := e.zoneVendors.ListActiveLinks(ctx, zoneID)
	if err != nil {
		return nil, err
	}

	var candidates []models.VendorCandidate
	for _, link := range links {
		vendor, err := e.vendors.GetActive(ctx, link.VendorID)
		if err != nil {
			return nil, err
		}
		if vendor == nil {
			continue
		}
		if vendor.Kind != models.VendorKindDarkStore && !rule.VendorFallback {
			continue
		}

		record, err := e.inventory.GetRecord(ctx, vendor.ID, productID, zoneID)
		if err != nil {
			return nil, err
		}
		if record == nil || !record.IsAvailable {
			continue
		}

		priority := e.cfg.FallbackPriority
		if vendor.Kind == models.VendorKindDarkStore {
			priority = rule.DarkStorePriority
		}

		candidates = append(candidates, newCandidate(vendor, record, priority))
	}

	return candidates, nil
}

func newCandidate(vendor *models.Vendor, record *models.InventoryRecord, priority int) models.VendorCandidate {
	return models.VendorCandidate{
		VendorID:      vendor.ID,
		VendorName:    vendor.Name,
		VendorKind:    vendor.Kind,
		StockQuantity: record.StockQuantity,
		SellingPrice:  record.SellingPrice,
		IsAvailable:   record.IsAvailable,
		Priority:      priority,
	}
}

// sortCandidates orders by priority ascending, ties broken by vendor ID so
// repeated calls over unchanged data return the same list.
func sortCandidates(candidates []models.VendorCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Priority != candidates[j].Priority {
			return candidates[i].Priority < candidates[j].Priority
		}
		return candidates[i].VendorID < candidates[j].VendorID
	})
}

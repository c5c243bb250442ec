// Package events handles event emission for allocation lifecycle changes
package events

import (
	"context"
	"encoding/json"

	"github.com/Gobusters/ectologger"

	"github.com/LazyDev-01/dayliz-allocation/pkg/kafka"
	"github.com/LazyDev-01/dayliz-allocation/pkg/models"
	"github.com/LazyDev-01/dayliz-allocation/pkg/tracing"
)

// SchemaVersion is the current event schema version
const SchemaVersion = "1.0"

// Emitter publishes allocation lifecycle events. Emission is best effort:
// callers log the returned error but never fail the request on it.
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// EmitModeSwitched emits an event after the operational mode changes
func (e *Emitter) EmitModeSwitched(ctx context.Context, mode models.OperationalMode) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitModeSwitched")
	defer span.End()

	multiVendor, darkStore := mode.Flags()
	data, _ := json.Marshal(map[string]any{
		"schema_version":       SchemaVersion,
		"mode":                 mode,
		"multi_vendor_enabled": multiVendor,
		"dark_store_enabled":   darkStore,
	})

	event := &kafka.AllocationEvent{
		EventType: "config.mode_switched",
		SubjectID: string(mode),
		Data:      data,
	}

	if err := e.producer.PublishAllocationEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit config.mode_switched event")
		return err
	}

	return nil
}

// EmitVendorCreated emits a vendor created event
func (e *Emitter) EmitVendorCreated(ctx context.Context, vendor *models.Vendor) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitVendorCreated")
	defer span.End()

	data, _ := json.Marshal(vendor)

	event := &kafka.AllocationEvent{
		EventType: "vendor.created",
		SubjectID: vendor.ID,
		Data:      data,
	}

	if err := e.producer.PublishAllocationEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit vendor.created event")
		return err
	}

	return nil
}

// EmitVendorDeactivated emits a vendor deactivated event
func (e *Emitter) EmitVendorDeactivated(ctx context.Context, vendorID string) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitVendorDeactivated")
	defer span.End()

	event := &kafka.AllocationEvent{
		EventType: "vendor.deactivated",
		SubjectID: vendorID,
	}

	if err := e.producer.PublishAllocationEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit vendor.deactivated event")
		return err
	}

	return nil
}

// EmitInventoryUpdated emits an event after stock for (vendor, product, zone)
// changes
func (e *Emitter) EmitInventoryUpdated(ctx context.Context, record *models.InventoryRecord) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitInventoryUpdated")
	defer span.End()

	data, _ := json.Marshal(map[string]any{
		"schema_version":    SchemaVersion,
		"vendor_id":         record.VendorID,
		"product_id":        record.ProductID,
		"zone_id":           record.ZoneID,
		"stock_quantity":    record.StockQuantity,
		"reserved_quantity": record.ReservedQuantity,
		"is_available":      record.IsAvailable,
	})

	event := &kafka.AllocationEvent{
		EventType: "inventory.updated",
		SubjectID: record.VendorID,
		ZoneID:    record.ZoneID,
		Data:      data,
	}

	if err := e.producer.PublishAllocationEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit inventory.updated event")
		return err
	}

	return nil
}

// EmitRuleCreated emits an allocation rule created event
func (e *Emitter) EmitRuleCreated(ctx context.Context, rule *models.AllocationRule) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitRuleCreated")
	defer span.End()

	data, _ := json.Marshal(rule)

	event := &kafka.AllocationEvent{
		EventType: "rule.created",
		SubjectID: rule.ID,
		ZoneID:    rule.ZoneID,
		Data:      data,
	}

	if err := e.producer.PublishAllocationEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit rule.created event")
		return err
	}

	return nil
}

// EmitRuleDeleted emits an allocation rule deleted event
func (e *Emitter) EmitRuleDeleted(ctx context.Context, ruleID string, zoneID string) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitRuleDeleted")
	defer span.End()

	event := &kafka.AllocationEvent{
		EventType: "rule.deleted",
		SubjectID: ruleID,
		ZoneID:    zoneID,
	}

	if err := e.producer.PublishAllocationEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit rule.deleted event")
		return err
	}

	return nil
}

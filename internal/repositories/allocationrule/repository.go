package allocationrule

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

const ruleColumns = "id, zone_id, subcategory_id, strategy, vendor_priority_order, dark_store_priority, vendor_fallback, is_active, created_at, updated_at, deleted_at"

// Repository handles allocation rule persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new allocation rule repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create adds a rule for a (zone, subcategory) pair. At most one active rule
// may exist per pair.
func (r *Repository) Create(ctx context.Context, req models.CreateAllocationRuleRequest) (*models.AllocationRule, error) {
	ctx, span := tracing.StartSpan(ctx, "allocationrule.Repository.Create")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":         "Create",
		"zone_id":        req.ZoneID,
		"subcategory_id": req.SubcategoryID,
	})

	strategy, err := models.ParseAllocationStrategy(req.Strategy)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	existing, err := r.GetActiveRule(ctx, req.ZoneID, req.SubcategoryID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.ErrDuplicateRule
	}

	now := time.Now().UTC()
	rule := &models.AllocationRule{
		ID:                  uuid.New().String(),
		ZoneID:              req.ZoneID,
		SubcategoryID:       req.SubcategoryID,
		Strategy:            strategy,
		VendorPriorityOrder: database.JSONB[[]string]{Data: req.VendorPriorityOrder},
		DarkStorePriority:   req.DarkStorePriority,
		VendorFallback:      req.VendorFallback,
		IsActive:            true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("allocation_rules")
	sb.Cols("id", "zone_id", "subcategory_id", "strategy", "vendor_priority_order", "dark_store_priority", "vendor_fallback", "is_active", "created_at", "updated_at")
	sb.Values(rule.ID, rule.ZoneID, rule.SubcategoryID, rule.Strategy, rule.VendorPriorityOrder, rule.DarkStorePriority, rule.VendorFallback, rule.IsActive, rule.CreatedAt, rule.UpdatedAt)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.WithError(err).Error("Failed to create allocation rule")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create allocation rule")
	}

	log.WithFields(map[string]any{"id": rule.ID}).Info("Created allocation rule")
	return rule, nil
}

// Get retrieves a rule by ID
func (r *Repository) Get(ctx context.Context, id string) (*models.AllocationRule, error) {
	ctx, span := tracing.StartSpan(ctx, "allocationrule.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(ruleColumns)
	sb.From("allocation_rules")
	sb.Where(
		sb.Equal("id", id),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	var rule models.AllocationRule
	if err := r.db.GetContext(ctx, &rule, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("allocation rule %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get allocation rule")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get allocation rule")
	}

	return &rule, nil
}

// GetActiveRule returns the active rule for a (zone, subcategory) pair, or
// (nil, nil) when none exists. A missing rule is a valid state: the engine
// falls through to the default path.
func (r *Repository) GetActiveRule(ctx context.Context, zoneID, subcategoryID string) (*models.AllocationRule, error) {
	ctx, span := tracing.StartSpan(ctx, "allocationrule.Repository.GetActiveRule")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(ruleColumns)
	sb.From("allocation_rules")
	sb.Where(
		sb.Equal("zone_id", zoneID),
		sb.Equal("subcategory_id", subcategoryID),
		sb.Equal("is_active", true),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	var rule models.AllocationRule
	if err := r.db.GetContext(ctx, &rule, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get active allocation rule")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get active allocation rule")
	}

	return &rule, nil
}

// ListByZone retrieves all rules for a zone
func (r *Repository) ListByZone(ctx context.Context, zoneID string) ([]models.AllocationRule, error) {
	ctx, span := tracing.StartSpan(ctx, "allocationrule.Repository.ListByZone")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(ruleColumns)
	sb.From("allocation_rules")
	sb.Where(
		sb.Equal("zone_id", zoneID),
		sb.IsNull("deleted_at"),
	)
	sb.OrderBy("subcategory_id ASC")

	query, args := sb.Build()
	var rules []models.AllocationRule
	if err := r.db.SelectContext(ctx, &rules, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list allocation rules")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list allocation rules")
	}

	return rules, nil
}

// Update modifies a rule. Re-activating a rule re-checks the one-active-rule
// invariant for its pair.
func (r *Repository) Update(ctx context.Context, id string, req models.UpdateAllocationRuleRequest) (*models.AllocationRule, error) {
	ctx, span := tracing.StartSpan(ctx, "allocationrule.Repository.Update")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method": "Update",
		"id":     id,
	})

	rule, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Strategy != nil {
		strategy, err := models.ParseAllocationStrategy(*req.Strategy)
		if err != nil {
			return nil, httperror.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		rule.Strategy = strategy
	}
	if req.VendorPriorityOrder != nil {
		rule.VendorPriorityOrder = database.JSONB[[]string]{Data: req.VendorPriorityOrder}
	}
	if req.DarkStorePriority != nil {
		rule.DarkStorePriority = *req.DarkStorePriority
	}
	if req.VendorFallback != nil {
		rule.VendorFallback = *req.VendorFallback
	}
	if req.IsActive != nil {
		if *req.IsActive && !rule.IsActive {
			existing, err := r.GetActiveRule(ctx, rule.ZoneID, rule.SubcategoryID)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != rule.ID {
				return nil, models.ErrDuplicateRule
			}
		}
		rule.IsActive = *req.IsActive
	}
	rule.UpdatedAt = time.Now().UTC()

	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("allocation_rules")
	sb.Set(
		sb.Assign("strategy", rule.Strategy),
		sb.Assign("vendor_priority_order", rule.VendorPriorityOrder),
		sb.Assign("dark_store_priority", rule.DarkStorePriority),
		sb.Assign("vendor_fallback", rule.VendorFallback),
		sb.Assign("is_active", rule.IsActive),
		sb.Assign("updated_at", rule.UpdatedAt),
	)
	sb.Where(
		sb.Equal("id", id),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.WithError(err).Error("Failed to update allocation rule")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update allocation rule")
	}

	log.Info("Updated allocation rule")
	return rule, nil
}

// Delete soft deletes a rule and deactivates it
func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "allocationrule.Repository.Delete")
	defer span.End()

	now := time.Now().UTC()
	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("allocation_rules")
	sb.Set(
		sb.Assign("is_active", false),
		sb.Assign("deleted_at", now),
		sb.Assign("updated_at", now),
	)
	sb.Where(
		sb.Equal("id", id),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete allocation rule")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete allocation rule")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("allocation rule %s not found", id))
	}

	return nil
}

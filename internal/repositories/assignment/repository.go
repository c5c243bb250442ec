package assignment

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

const assignmentColumns = "id, vendor_id, zone_id, subcategory_id, is_exclusive, is_active, priority, created_at, updated_at, deleted_at"

// Repository handles subcategory assignment persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new subcategory assignment repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create assigns a subcategory in a zone to a vendor. One active assignment
// per (zone, subcategory); violations surface as ErrDuplicateAssignment.
func (r *Repository) Create(ctx context.Context, req models.CreateSubcategoryAssignmentRequest) (*models.SubcategoryAssignment, error) {
	ctx, span := tracing.StartSpan(ctx, "assignment.Repository.Create")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":         "Create",
		"vendor_id":      req.VendorID,
		"zone_id":        req.ZoneID,
		"subcategory_id": req.SubcategoryID,
	})

	existing, err := r.GetActiveAssignment(ctx, req.ZoneID, req.SubcategoryID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: zone %s subcategory %s", models.ErrDuplicateAssignment, req.ZoneID, req.SubcategoryID)
	}

	id := uuid.New().String()
	now := time.Now().UTC()

	a := &models.SubcategoryAssignment{
		ID:            id,
		VendorID:      req.VendorID,
		ZoneID:        req.ZoneID,
		SubcategoryID: req.SubcategoryID,
		IsExclusive:   req.IsExclusive,
		IsActive:      true,
		Priority:      req.Priority,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if a.Priority == 0 {
		a.Priority = 1 // Default highest
	}

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("subcategory_assignments")
	sb.Cols("id", "vendor_id", "zone_id", "subcategory_id", "is_exclusive", "is_active", "priority", "created_at", "updated_at")
	sb.Values(a.ID, a.VendorID, a.ZoneID, a.SubcategoryID, a.IsExclusive, a.IsActive, a.Priority, a.CreatedAt, a.UpdatedAt)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.WithError(err).Error("Failed to create subcategory assignment")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create subcategory assignment")
	}

	log.WithFields(map[string]any{"id": id}).Info("Created subcategory assignment")
	return a, nil
}

// Get retrieves an assignment by ID
func (r *Repository) Get(ctx context.Context, id string) (*models.SubcategoryAssignment, error) {
	ctx, span := tracing.StartSpan(ctx, "assignment.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(assignmentColumns)
	sb.From("subcategory_assignments")
	sb.Where(
		sb.Equal("id", id),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	var a models.SubcategoryAssignment
	if err := r.db.GetContext(ctx, &a, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("subcategory assignment %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get subcategory assignment")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get subcategory assignment")
	}

	return &a, nil
}

// GetActiveAssignment returns the active assignment for a (zone, subcategory)
// pair, or (nil, nil) when the pair is unassigned.
func (r *Repository) GetActiveAssignment(ctx context.Context, zoneID, subcategoryID string) (*models.SubcategoryAssignment, error) {
	ctx, span := tracing.StartSpan(ctx, "assignment.Repository.GetActiveAssignment")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(assignmentColumns)
	sb.From("subcategory_assignments")
	sb.Where(
		sb.Equal("zone_id", zoneID),
		sb.Equal("subcategory_id", subcategoryID),
		sb.Equal("is_active", true),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	var a models.SubcategoryAssignment
	if err := r.db.GetContext(ctx, &a, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get active subcategory assignment")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get subcategory assignment")
	}

	return &a, nil
}

// ListByZone retrieves all assignments for a zone
func (r *Repository) ListByZone(ctx context.Context, zoneID string) ([]models.SubcategoryAssignment, error) {
	ctx, span := tracing.StartSpan(ctx, "assignment.Repository.ListByZone")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(assignmentColumns)
	sb.From("subcategory_assignments")
	sb.Where(
		sb.Equal("zone_id", zoneID),
		sb.IsNull("deleted_at"),
	)
	sb.OrderBy("subcategory_id ASC", "priority ASC")

	query, args := sb.Build()
	var assignments []models.SubcategoryAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list subcategory assignments")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list subcategory assignments")
	}

	return assignments, nil
}

// Update updates an assignment. Re-activating an assignment re-checks the
// one-active-per-pair invariant.
func (r *Repository) Update(ctx context.Context, id string, req models.UpdateSubcategoryAssignmentRequest) (*models.SubcategoryAssignment, error) {
	ctx, span := tracing.StartSpan(ctx, "assignment.Repository.Update")
	defer span.End()

	existing, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.IsActive != nil && *req.IsActive && !existing.IsActive {
		current, err := r.GetActiveAssignment(ctx, existing.ZoneID, existing.SubcategoryID)
		if err != nil {
			return nil, err
		}
		if current != nil && current.ID != id {
			return nil, fmt.Errorf("%w: zone %s subcategory %s", models.ErrDuplicateAssignment, existing.ZoneID, existing.SubcategoryID)
		}
	}

	if req.VendorID != nil {
		existing.VendorID = *req.VendorID
	}
	if req.IsExclusive != nil {
		existing.IsExclusive = *req.IsExclusive
	}
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}
	if req.Priority != nil {
		existing.Priority = *req.Priority
	}
	existing.UpdatedAt = time.Now().UTC()

	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("subcategory_assignments")
	sb.Set(
		sb.Assign("vendor_id", existing.VendorID),
		sb.Assign("is_exclusive", existing.IsExclusive),
		sb.Assign("is_active", existing.IsActive),
		sb.Assign("priority", existing.Priority),
		sb.Assign("updated_at", existing.UpdatedAt),
	)
	sb.Where(
		sb.Equal("id", id),
	)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to update subcategory assignment")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update subcategory assignment")
	}

	return existing, nil
}

// Delete soft deletes an assignment
func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "assignment.Repository.Delete")
	defer span.End()

	now := time.Now().UTC()
	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("subcategory_assignments")
	sb.Set(
		sb.Assign("deleted_at", now),
		sb.Assign("is_active", false),
	)
	sb.Where(
		sb.Equal("id", id),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete subcategory assignment")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete subcategory assignment")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("subcategory assignment %s not found", id))
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"id": id}).Info("Deleted subcategory assignment")
	return nil
}

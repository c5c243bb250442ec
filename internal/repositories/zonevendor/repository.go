package zonevendor

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/LazyDev-01/dayliz-allocation/pkg/database"
	"github.com/LazyDev-01/dayliz-allocation/pkg/models"
	"github.com/LazyDev-01/dayliz-allocation/pkg/tracing"
)

const linkColumns = "id, vendor_id, zone_id, is_active, is_primary, priority, commission_override, created_at, updated_at, deleted_at"

// Repository handles zone/vendor link persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new zone vendor link repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create onboards a vendor to a zone. A (vendor, zone) pair is unique; when
// the new link is primary, any previous primary for the zone is cleared in
// the same transaction so the zone never holds two primaries.
func (r *Repository) Create(ctx context.Context, req models.CreateZoneVendorLinkRequest) (*models.ZoneVendorLink, error) {
	ctx, span := tracing.StartSpan(ctx, "zonevendor.Repository.Create")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":    "Create",
		"vendor_id": req.VendorID,
		"zone_id":   req.ZoneID,
	})

	id := uuid.New().String()
	now := time.Now().UTC()

	link := &models.ZoneVendorLink{
		ID:                 id,
		VendorID:           req.VendorID,
		ZoneID:             req.ZoneID,
		IsActive:           true,
		IsPrimary:          req.IsPrimary,
		Priority:           req.Priority,
		CommissionOverride: req.CommissionOverride,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if link.Priority == 0 {
		link.Priority = 1 // Default highest
	}

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create zone vendor link")
	}
	defer tx.Rollback(ctx)

	if link.IsPrimary {
		if err := r.clearPrimary(ctx, tx, req.ZoneID); err != nil {
			return nil, err
		}
	}

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("zone_vendor_links")
	sb.Cols("id", "vendor_id", "zone_id", "is_active", "is_primary", "priority", "commission_override", "created_at", "updated_at")
	sb.Values(link.ID, link.VendorID, link.ZoneID, link.IsActive, link.IsPrimary, link.Priority, link.CommissionOverride, link.CreatedAt, link.UpdatedAt)

	query, args := sb.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return nil, httperror.NewHTTPError(http.StatusConflict, fmt.Sprintf("vendor %s is already linked to zone %s", req.VendorID, req.ZoneID))
		}
		log.WithError(err).Error("Failed to create zone vendor link")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create zone vendor link")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create zone vendor link")
	}

	log.WithFields(map[string]any{"id": id}).Info("Created zone vendor link")
	return link, nil
}

// Get retrieves a link by ID
func (r *Repository) Get(ctx context.Context, id string) (*models.ZoneVendorLink, error) {
	ctx, span := tracing.StartSpan(ctx, "zonevendor.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(linkColumns)
	sb.From("zone_vendor_links")
	sb.Where(
		sb.Equal("id", id),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	var link models.ZoneVendorLink
	if err := r.db.GetContext(ctx, &link, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("zone vendor link %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get zone vendor link")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get zone vendor link")
	}

	return &link, nil
}

// GetPrimaryLink returns the active primary link for a zone, or (nil, nil)
// when the zone has none. An empty result is a valid allocation outcome.
func (r *Repository) GetPrimaryLink(ctx context.Context, zoneID string) (*models.ZoneVendorLink, error) {
	ctx, span := tracing.StartSpan(ctx, "zonevendor.Repository.GetPrimaryLink")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(linkColumns)
	sb.From("zone_vendor_links")
	sb.Where(
		sb.Equal("zone_id", zoneID),
		sb.Equal("is_primary", true),
		sb.Equal("is_active", true),
		sb.IsNull("deleted_at"),
	)
	// the write path keeps a single primary per zone
	sb.OrderBy("priority ASC", "vendor_id ASC")
	sb.Limit(1)

	query, args := sb.Build()
	var link models.ZoneVendorLink
	if err := r.db.GetContext(ctx, &link, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get primary zone vendor link")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get primary zone vendor link")
	}

	return &link, nil
}

// ListActiveLinks returns all active links for a zone ordered by priority.
func (r *Repository) ListActiveLinks(ctx context.Context, zoneID string) ([]models.ZoneVendorLink, error) {
	ctx, span := tracing.StartSpan(ctx, "zonevendor.Repository.ListActiveLinks")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(linkColumns)
	sb.From("zone_vendor_links")
	sb.Where(
		sb.Equal("zone_id", zoneID),
		sb.Equal("is_active", true),
		sb.IsNull("deleted_at"),
	)
	sb.OrderBy("priority ASC", "vendor_id ASC")

	query, args := sb.Build()
	var links []models.ZoneVendorLink
	if err := r.db.SelectContext(ctx, &links, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list zone vendor links")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list zone vendor links")
	}

	return links, nil
}

// Update updates a link. Promoting a link to primary clears the previous
// primary for the zone in the same transaction.
func (r *Repository) Update(ctx context.Context, id string, req models.UpdateZoneVendorLinkRequest) (*models.ZoneVendorLink, error) {
	ctx, span := tracing.StartSpan(ctx, "zonevendor.Repository.Update")
	defer span.End()

	existing, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	promoting := req.IsPrimary != nil && *req.IsPrimary && !existing.IsPrimary

	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}
	if req.IsPrimary != nil {
		existing.IsPrimary = *req.IsPrimary
	}
	if req.Priority != nil {
		existing.Priority = *req.Priority
	}
	if req.CommissionOverride != nil {
		existing.CommissionOverride = req.CommissionOverride
	}
	existing.UpdatedAt = time.Now().UTC()

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update zone vendor link")
	}
	defer tx.Rollback(ctx)

	if promoting {
		if err := r.clearPrimary(ctx, tx, existing.ZoneID); err != nil {
			return nil, err
		}
	}

	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("zone_vendor_links")
	sb.Set(
		sb.Assign("is_active", existing.IsActive),
		sb.Assign("is_primary", existing.IsPrimary),
		sb.Assign("priority", existing.Priority),
		sb.Assign("commission_override", existing.CommissionOverride),
		sb.Assign("updated_at", existing.UpdatedAt),
	)
	sb.Where(
		sb.Equal("id", id),
	)

	query, args := sb.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to update zone vendor link")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update zone vendor link")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update zone vendor link")
	}

	return existing, nil
}

// Delete soft deletes a link (vendor withdrew from the zone)
func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "zonevendor.Repository.Delete")
	defer span.End()

	now := time.Now().UTC()
	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("zone_vendor_links")
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
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete zone vendor link")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete zone vendor link")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("zone vendor link %s not found", id))
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"id": id}).Info("Deleted zone vendor link")
	return nil
}

func (r *Repository) clearPrimary(ctx context.Context, tx database.Tx, zoneID string) error {
	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("zone_vendor_links")
	sb.Set(
		sb.Assign("is_primary", false),
		sb.Assign("updated_at", time.Now().UTC()),
	)
	sb.Where(
		sb.Equal("zone_id", zoneID),
		sb.Equal("is_primary", true),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to clear primary zone vendor link")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update primary zone vendor link")
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate key value")
}

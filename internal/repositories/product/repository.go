package product

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/LazyDev-01/dayliz-allocation/pkg/database"
	"github.com/LazyDev-01/dayliz-allocation/pkg/models"
	"github.com/LazyDev-01/dayliz-allocation/pkg/tracing"
)

const productColumns = "id, name, subcategory_id, category_id, is_active, created_at, updated_at"

// Repository reads the catalog slice needed to resolve subcategories
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new product repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Get returns the product, or (nil, nil) when it is unknown or inactive
func (r *Repository) Get(ctx context.Context, id string) (*models.Product, error) {
	ctx, span := tracing.StartSpan(ctx, "product.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(productColumns)
	sb.From("products")
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("is_active", true),
	)

	query, args := sb.Build()
	var product models.Product
	if err := r.db.GetContext(ctx, &product, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get product")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get product")
	}

	return &product, nil
}

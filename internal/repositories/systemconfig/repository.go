package systemconfig

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/LazyDev-01/dayliz-allocation/pkg/database"
	"github.com/LazyDev-01/dayliz-allocation/pkg/models"
	"github.com/LazyDev-01/dayliz-allocation/pkg/tracing"
)

const configColumns = "id, key, value, description, is_active, created_at, updated_at"

// Repository handles system configuration persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new system configuration repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Get retrieves a configuration row by key, or (nil, nil) when the key is
// not set.
func (r *Repository) Get(ctx context.Context, key string) (*models.SystemConfiguration, error) {
	ctx, span := tracing.StartSpan(ctx, "systemconfig.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(configColumns)
	sb.From("system_configurations")
	sb.Where(
		sb.Equal("key", key),
		sb.Equal("is_active", true),
	)

	query, args := sb.Build()
	var cfg models.SystemConfiguration
	if err := r.db.GetContext(ctx, &cfg, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get configuration")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get configuration")
	}

	return &cfg, nil
}

// List retrieves all active configuration rows
func (r *Repository) List(ctx context.Context) ([]models.SystemConfiguration, error) {
	ctx, span := tracing.StartSpan(ctx, "systemconfig.Repository.List")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(configColumns)
	sb.From("system_configurations")
	sb.Where(sb.Equal("is_active", true))
	sb.OrderBy("key ASC")

	query, args := sb.Build()
	var configs []models.SystemConfiguration
	if err := r.db.SelectContext(ctx, &configs, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list configurations")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list configurations")
	}

	return configs, nil
}

// Upsert sets a configuration key
func (r *Repository) Upsert(ctx context.Context, req models.UpsertConfigurationRequest) (*models.SystemConfiguration, error) {
	ctx, span := tracing.StartSpan(ctx, "systemconfig.Repository.Upsert")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method": "Upsert",
		"key":    req.Key,
	})

	query, args := buildUpsert(req.Key, req.Value, req.Description, time.Now().UTC())
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.WithError(err).Error("Failed to upsert configuration")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to upsert configuration")
	}

	log.Info("Upserted configuration")
	return r.Get(ctx, req.Key)
}

// GetOperationalMode reads the system-wide mode. The key must exist and hold
// one of the three recognized modes; allocation cannot run without it.
func (r *Repository) GetOperationalMode(ctx context.Context) (models.OperationalMode, error) {
	ctx, span := tracing.StartSpan(ctx, "systemconfig.Repository.GetOperationalMode")
	defer span.End()

	cfg, err := r.Get(ctx, models.ConfigKeyOperationalMode)
	if err != nil {
		return "", err
	}
	if cfg == nil {
		return "", models.ErrConfigurationMissing
	}

	var raw string
	if err := json.Unmarshal(cfg.Value, &raw); err != nil {
		return "", fmt.Errorf("%w: malformed %s value", models.ErrInvalidMode, models.ConfigKeyOperationalMode)
	}

	return models.ParseOperationalMode(raw)
}

// GetModeStatus returns the mode together with its dependent flags as stored
func (r *Repository) GetModeStatus(ctx context.Context) (*models.ModeStatus, error) {
	ctx, span := tracing.StartSpan(ctx, "systemconfig.Repository.GetModeStatus")
	defer span.End()

	mode, err := r.GetOperationalMode(ctx)
	if err != nil {
		return nil, err
	}

	multiVendor, err := r.getBool(ctx, models.ConfigKeyMultiVendorEnabled)
	if err != nil {
		return nil, err
	}
	darkStore, err := r.getBool(ctx, models.ConfigKeyDarkStoreEnabled)
	if err != nil {
		return nil, err
	}

	return &models.ModeStatus{
		OperationalMode:    mode,
		MultiVendorEnabled: multiVendor,
		DarkStoreEnabled:   darkStore,
	}, nil
}

// SwitchOperationalMode writes the mode and its two dependent flags in one
// transaction. Readers observe either the old triple or the new one, never a
// mix.
func (r *Repository) SwitchOperationalMode(ctx context.Context, mode models.OperationalMode) error {
	ctx, span := tracing.StartSpan(ctx, "systemconfig.Repository.SwitchOperationalMode")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method": "SwitchOperationalMode",
		"mode":   mode,
	})

	multiVendor, darkStore := mode.Flags()
	now := time.Now().UTC()

	writes := map[string]json.RawMessage{
		models.ConfigKeyOperationalMode:    json.RawMessage(strconv.Quote(string(mode))),
		models.ConfigKeyMultiVendorEnabled: boolValue(multiVendor),
		models.ConfigKeyDarkStoreEnabled:   boolValue(darkStore),
	}

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	for key, value := range writes {
		query, args := buildUpsert(key, value, nil, now)
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			log.WithError(err).WithFields(map[string]any{"key": key}).Error("Failed to write configuration key")
			return httperror.NewHTTPError(http.StatusInternalServerError, "failed to switch operational mode")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to switch operational mode")
	}

	log.Info("Switched operational mode")
	return nil
}

func buildUpsert(key string, value json.RawMessage, description *string, now time.Time) (string, []any) {
	ib := database.NewInsertBuilder()
	ib = ib.InsertInto("system_configurations")
	ib = ib.Cols("id", "key", "value", "description", "is_active", "created_at", "updated_at")
	ib = ib.Values(uuid.New().String(), key, value, description, true, now, now)
	ub := ib.OnConflict("key")
	assignments := []string{
		ub.Assign("value", database.Excluded("value")),
		ub.Assign("is_active", true),
		ub.Assign("updated_at", now),
	}
	if description != nil {
		assignments = append(assignments, ub.Assign("description", database.Excluded("description")))
	}
	ub.Set(assignments...)

	return ib.Build()
}

func (r *Repository) getBool(ctx context.Context, key string) (bool, error) {
	cfg, err := r.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if cfg == nil {
		return false, nil
	}

	var v bool
	if err := json.Unmarshal(cfg.Value, &v); err != nil {
		return false, fmt.Errorf("malformed %s value: %w", key, err)
	}

	return v, nil
}

func boolValue(v bool) json.RawMessage {
	return json.RawMessage(strconv.FormatBool(v))
}

package repositories_test

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	allocationrulerepo "github.com/LazyDev-01/dayliz-allocation/internal/repositories/allocationrule"
	assignmentrepo "github.com/LazyDev-01/dayliz-allocation/internal/repositories/assignment"
	inventoryrepo "github.com/LazyDev-01/dayliz-allocation/internal/repositories/inventory"
	systemconfigrepo "github.com/LazyDev-01/dayliz-allocation/internal/repositories/systemconfig"
	vendorrepo "github.com/LazyDev-01/dayliz-allocation/internal/repositories/vendor"
	zonevendorrepo "github.com/LazyDev-01/dayliz-allocation/internal/repositories/zonevendor"
	"github.com/LazyDev-01/dayliz-allocation/pkg/database"
	"github.com/LazyDev-01/dayliz-allocation/pkg/models"
)

func getTestLogger() ectologger.Logger {
	zapLogger, _ := zap.NewDevelopment()
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

func getTestDB(t *testing.T) database.DB {
	// Use environment variables or defaults for test DB
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}
	dbUser := os.Getenv("DB_USER_NAME")
	if dbUser == "" {
		dbUser = "user"
	}
	dbPass := os.Getenv("DB_PASSWORD")
	if dbPass == "" {
		dbPass = "password"
	}
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "dayliz_allocation"
	}

	dsn := "host=" + dbHost + " user=" + dbUser + " password=" + dbPass + " dbname=" + dbName + " sslmode=disable"
	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err, "Failed to connect to test database")

	return database.NewDatabaseInstance(db, getTestLogger())
}

// createTestVendor inserts a vendor through the repository and returns it.
func createTestVendor(t *testing.T, db database.DB, kind models.VendorKind) *models.Vendor {
	t.Helper()
	repo := vendorrepo.NewRepository(db, getTestLogger())
	vendor, err := repo.Create(context.Background(), models.CreateVendorRequest{
		Name:             "Test Vendor " + uuid.New().String()[:8],
		Kind:             string(kind),
		Priority:         1,
		DeliveryRadiusKm: 5,
	})
	require.NoError(t, err)
	return vendor
}

// createTestProduct seeds a product row directly; products are owned by the
// catalog service and have no write path here.
func createTestProduct(t *testing.T, db database.DB, subcategoryID string) string {
	t.Helper()
	id := uuid.New().String()
	now := time.Now().UTC()
	_, err := db.ExecContext(context.Background(),
		`INSERT INTO products (id, name, subcategory_id, category_id, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, TRUE, $5, $5)`,
		id, "Test Product", subcategoryID, uuid.New().String(), now)
	require.NoError(t, err)
	return id
}

func assertConflict(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, httperror.IsHTTPError(err), "expected HTTP error, got: %v", err)
	assert.Equal(t, http.StatusConflict, httperror.GetStatusCode(err), "expected 409, got: %d", httperror.GetStatusCode(err))
}

func TestVendorRepository_CRUD(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	logger := getTestLogger()
	repo := vendorrepo.NewRepository(db, logger)
	ctx := context.Background()

	vendor, err := repo.Create(ctx, models.CreateVendorRequest{
		Name:             "Crud Vendor",
		Kind:             string(models.VendorKindExternal),
		Priority:         3,
		DeliveryRadiusKm: 7.5,
		CommissionRate:   12,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, vendor.ID)
	assert.True(t, vendor.IsActive)

	fetched, err := repo.Get(ctx, vendor.ID)
	require.NoError(t, err)
	assert.Equal(t, vendor.Name, fetched.Name)
	assert.Equal(t, models.VendorKindExternal, fetched.Kind)

	active, err := repo.GetActive(ctx, vendor.ID)
	require.NoError(t, err)
	require.NotNil(t, active)

	newName := "Crud Vendor Renamed"
	updated, err := repo.Update(ctx, vendor.ID, models.UpdateVendorRequest{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, newName, updated.Name)

	require.NoError(t, repo.RecordOrder(ctx, vendor.ID, 4.0))
	afterOrder, err := repo.Get(ctx, vendor.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), afterOrder.TotalOrders)

	require.NoError(t, repo.Deactivate(ctx, vendor.ID))
	gone, err := repo.GetActive(ctx, vendor.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestZoneVendorRepository_PrimaryIsExclusive(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	logger := getTestLogger()
	repo := zonevendorrepo.NewRepository(db, logger)
	ctx := context.Background()

	first := createTestVendor(t, db, models.VendorKindExternal)
	second := createTestVendor(t, db, models.VendorKindExternal)
	zoneID := uuid.New().String()

	firstLink, err := repo.Create(ctx, models.CreateZoneVendorLinkRequest{
		VendorID:  first.ID,
		ZoneID:    zoneID,
		IsPrimary: true,
		Priority:  1,
	})
	require.NoError(t, err)
	assert.True(t, firstLink.IsPrimary)

	secondLink, err := repo.Create(ctx, models.CreateZoneVendorLinkRequest{
		VendorID:  second.ID,
		ZoneID:    zoneID,
		IsPrimary: true,
		Priority:  2,
	})
	require.NoError(t, err)
	assert.True(t, secondLink.IsPrimary)

	// promoting the second link must have demoted the first
	primary, err := repo.GetPrimaryLink(ctx, zoneID)
	require.NoError(t, err)
	require.NotNil(t, primary)
	assert.Equal(t, secondLink.ID, primary.ID)

	demoted, err := repo.Get(ctx, firstLink.ID)
	require.NoError(t, err)
	assert.False(t, demoted.IsPrimary)

	links, err := repo.ListActiveLinks(ctx, zoneID)
	require.NoError(t, err)
	assert.Len(t, links, 2)
}

func TestAssignmentRepository_OneActivePerZoneSubcategory(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	logger := getTestLogger()
	repo := assignmentrepo.NewRepository(db, logger)
	ctx := context.Background()

	vendor := createTestVendor(t, db, models.VendorKindExternal)
	other := createTestVendor(t, db, models.VendorKindExternal)
	zoneID := uuid.New().String()
	subcategoryID := uuid.New().String()

	assignment, err := repo.Create(ctx, models.CreateSubcategoryAssignmentRequest{
		VendorID:      vendor.ID,
		ZoneID:        zoneID,
		SubcategoryID: subcategoryID,
		IsExclusive:   true,
		Priority:      1,
	})
	require.NoError(t, err)

	_, err = repo.Create(ctx, models.CreateSubcategoryAssignmentRequest{
		VendorID:      other.ID,
		ZoneID:        zoneID,
		SubcategoryID: subcategoryID,
		IsExclusive:   true,
		Priority:      2,
	})
	require.ErrorIs(t, err, models.ErrDuplicateAssignment)

	active, err := repo.GetActiveAssignment(ctx, zoneID, subcategoryID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, assignment.ID, active.ID)

	// deleting the active assignment frees the pair for a new one
	require.NoError(t, repo.Delete(ctx, assignment.ID))

	_, err = repo.Create(ctx, models.CreateSubcategoryAssignmentRequest{
		VendorID:      other.ID,
		ZoneID:        zoneID,
		SubcategoryID: subcategoryID,
		IsExclusive:   true,
		Priority:      2,
	})
	require.NoError(t, err)
}

func TestAllocationRuleRepository_DuplicateActiveRejected(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	logger := getTestLogger()
	repo := allocationrulerepo.NewRepository(db, logger)
	ctx := context.Background()

	zoneID := uuid.New().String()
	subcategoryID := uuid.New().String()

	rule, err := repo.Create(ctx, models.CreateAllocationRuleRequest{
		ZoneID:            zoneID,
		SubcategoryID:     subcategoryID,
		Strategy:          string(models.StrategySmartAllocation),
		DarkStorePriority: 1,
		VendorFallback:    true,
	})
	require.NoError(t, err)
	assert.True(t, rule.IsActive)

	_, err = repo.Create(ctx, models.CreateAllocationRuleRequest{
		ZoneID:            zoneID,
		SubcategoryID:     subcategoryID,
		Strategy:          string(models.StrategySingleVendor),
		DarkStorePriority: 1,
	})
	require.ErrorIs(t, err, models.ErrDuplicateRule)

	active, err := repo.GetActiveRule(ctx, zoneID, subcategoryID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, rule.ID, active.ID)

	require.NoError(t, repo.Delete(ctx, rule.ID))

	active, err = repo.GetActiveRule(ctx, zoneID, subcategoryID)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestInventoryRepository_ReserveAndRelease(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	logger := getTestLogger()
	repo := inventoryrepo.NewRepository(db, logger)
	ctx := context.Background()

	vendor := createTestVendor(t, db, models.VendorKindDarkStore)
	productID := createTestProduct(t, db, uuid.New().String())
	zoneID := uuid.New().String()

	record, err := repo.Upsert(ctx, models.UpsertInventoryRequest{
		VendorID:      vendor.ID,
		ProductID:     productID,
		ZoneID:        zoneID,
		StockQuantity: 10,
		SellingPrice:  49.99,
		IsAvailable:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, 10, record.StockQuantity)
	assert.Equal(t, 0, record.ReservedQuantity)

	req := models.ReserveStockRequest{
		VendorID:  vendor.ID,
		ProductID: productID,
		ZoneID:    zoneID,
		Quantity:  7,
	}
	require.NoError(t, repo.Reserve(ctx, req))

	// only 3 sellable units remain, reserving 4 more must fail
	req.Quantity = 4
	assertConflict(t, repo.Reserve(ctx, req))

	req.Quantity = 3
	require.NoError(t, repo.Reserve(ctx, req))

	// releasing more than is reserved must fail
	req.Quantity = 11
	assertConflict(t, repo.Release(ctx, req))

	req.Quantity = 10
	require.NoError(t, repo.Release(ctx, req))

	record, err = repo.GetRecord(ctx, vendor.ID, productID, zoneID)
	require.NoError(t, err)
	assert.Equal(t, 0, record.ReservedQuantity)
}

func TestInventoryRepository_UpsertRejectsInvalidLevels(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := inventoryrepo.NewRepository(db, getTestLogger())

	vendor := createTestVendor(t, db, models.VendorKindDarkStore)
	productID := createTestProduct(t, db, uuid.New().String())

	_, err := repo.Upsert(context.Background(), models.UpsertInventoryRequest{
		VendorID:         vendor.ID,
		ProductID:        productID,
		ZoneID:           uuid.New().String(),
		StockQuantity:    5,
		ReservedQuantity: 8,
		SellingPrice:     10,
	})
	require.ErrorIs(t, err, models.ErrInvalidStockLevels)
}

func TestSystemConfigRepository_ModeSwitchIsConsistent(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	logger := getTestLogger()
	repo := systemconfigrepo.NewRepository(db, logger)
	ctx := context.Background()

	require.NoError(t, repo.SwitchOperationalMode(ctx, models.ModeHybrid))

	status, err := repo.GetModeStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ModeHybrid, status.OperationalMode)
	assert.True(t, status.MultiVendorEnabled)
	assert.True(t, status.DarkStoreEnabled)

	require.NoError(t, repo.SwitchOperationalMode(ctx, models.ModeSingleVendor))

	status, err = repo.GetModeStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ModeSingleVendor, status.OperationalMode)
	assert.False(t, status.MultiVendorEnabled)
	assert.False(t, status.DarkStoreEnabled)

	mode, err := repo.GetOperationalMode(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ModeSingleVendor, mode)
}

func TestSystemConfigRepository_UpsertAndList(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := systemconfigrepo.NewRepository(db, getTestLogger())
	ctx := context.Background()

	key := "test_flag_" + uuid.New().String()[:8]
	description := "integration test flag"

	cfg, err := repo.Upsert(ctx, models.UpsertConfigurationRequest{
		Key:         key,
		Value:       json.RawMessage(`true`),
		Description: &description,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `true`, string(cfg.Value))

	// second upsert overwrites the value under the same key
	cfg, err = repo.Upsert(ctx, models.UpsertConfigurationRequest{
		Key:   key,
		Value: json.RawMessage(`false`),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `false`, string(cfg.Value))

	configs, err := repo.List(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(configs), 1)
}

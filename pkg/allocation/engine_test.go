package allocation

import (
	"context"
	"errors"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LazyDev-01/dayliz-allocation/pkg/models"
)

// fakeStore backs every reader interface with in-memory maps
type fakeStore struct {
	mode        models.OperationalMode
	modeErr     error
	products    map[string]*models.Product
	vendors     map[string]*models.Vendor
	primaries   map[string]*models.ZoneVendorLink
	links       map[string][]models.ZoneVendorLink
	assignments map[string]*models.SubcategoryAssignment
	inventory   map[string]*models.InventoryRecord
	rules       map[string]*models.AllocationRule
}

func newFakeStore(mode models.OperationalMode) *fakeStore {
	return &fakeStore{
		mode:        mode,
		products:    map[string]*models.Product{},
		vendors:     map[string]*models.Vendor{},
		primaries:   map[string]*models.ZoneVendorLink{},
		links:       map[string][]models.ZoneVendorLink{},
		assignments: map[string]*models.SubcategoryAssignment{},
		inventory:   map[string]*models.InventoryRecord{},
		rules:       map[string]*models.AllocationRule{},
	}
}

func (f *fakeStore) GetOperationalMode(_ context.Context) (models.OperationalMode, error) {
	return f.mode, f.modeErr
}

func (f *fakeStore) Get(_ context.Context, id string) (*models.Product, error) {
	return f.products[id], nil
}

func (f *fakeStore) GetActive(_ context.Context, id string) (*models.Vendor, error) {
	v := f.vendors[id]
	if v == nil || !v.IsActive {
		return nil, nil
	}
	return v, nil
}

func (f *fakeStore) GetPrimaryLink(_ context.Context, zoneID string) (*models.ZoneVendorLink, error) {
	return f.primaries[zoneID], nil
}

func (f *fakeStore) ListActiveLinks(_ context.Context, zoneID string) ([]models.ZoneVendorLink, error) {
	return f.links[zoneID], nil
}

func (f *fakeStore) GetActiveAssignment(_ context.Context, zoneID, subcategoryID string) (*models.SubcategoryAssignment, error) {
	return f.assignments[zoneID+"|"+subcategoryID], nil
}

func (f *fakeStore) GetRecord(_ context.Context, vendorID, productID, zoneID string) (*models.InventoryRecord, error) {
	return f.inventory[vendorID+"|"+productID+"|"+zoneID], nil
}

func (f *fakeStore) GetActiveRule(_ context.Context, zoneID, subcategoryID string) (*models.AllocationRule, error) {
	return f.rules[zoneID+"|"+subcategoryID], nil
}

func (f *fakeStore) addVendor(id string, kind models.VendorKind) {
	f.vendors[id] = &models.Vendor{ID: id, Name: "vendor " + id, Kind: kind, IsActive: true, Priority: 1}
}

func (f *fakeStore) addPrimary(zoneID, vendorID string, priority int) {
	f.primaries[zoneID] = &models.ZoneVendorLink{VendorID: vendorID, ZoneID: zoneID, IsActive: true, IsPrimary: true, Priority: priority}
}

func (f *fakeStore) addLink(zoneID, vendorID string, priority int) {
	f.links[zoneID] = append(f.links[zoneID], models.ZoneVendorLink{VendorID: vendorID, ZoneID: zoneID, IsActive: true, Priority: priority})
}

func (f *fakeStore) addStock(vendorID, productID, zoneID string, stock int, price float64, available bool) {
	f.inventory[vendorID+"|"+productID+"|"+zoneID] = &models.InventoryRecord{
		VendorID:      vendorID,
		ProductID:     productID,
		ZoneID:        zoneID,
		StockQuantity: stock,
		SellingPrice:  price,
		IsAvailable:   available,
	}
}

func newTestEngine(store *fakeStore) *Engine {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	return NewEngine(logger, store, store, store, store, store, store, store, DefaultConfig())
}

func TestAllocate_InvalidModeFails(t *testing.T) {
	store := newFakeStore("")
	store.modeErr = models.ErrInvalidMode
	engine := newTestEngine(store)

	_, err := engine.Allocate(context.Background(), "p1", "z1")
	assert.True(t, errors.Is(err, models.ErrInvalidMode))
}

func TestAllocate_SingleVendorPrimary(t *testing.T) {
	store := newFakeStore(models.ModeSingleVendor)
	store.addVendor("v1", models.VendorKindExternal)
	store.addPrimary("z1", "v1", 1)
	store.addStock("v1", "p1", "z1", 10, 50, true)
	engine := newTestEngine(store)

	candidates, err := engine.Allocate(context.Background(), "p1", "z1")
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "v1", candidates[0].VendorID)
	assert.Equal(t, 10, candidates[0].StockQuantity)
	assert.Equal(t, 50.0, candidates[0].SellingPrice)
	assert.True(t, candidates[0].IsAvailable)
	assert.Equal(t, 1, candidates[0].Priority)
}

func TestAllocate_SingleVendorNoPrimaryIsEmpty(t *testing.T) {
	store := newFakeStore(models.ModeSingleVendor)
	store.addVendor("v1", models.VendorKindExternal)
	store.addStock("v1", "p1", "z1", 10, 50, true)
	engine := newTestEngine(store)

	candidates, err := engine.Allocate(context.Background(), "p1", "z1")
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestAllocate_SingleVendorDeactivatedVendorIsEmpty(t *testing.T) {
	store := newFakeStore(models.ModeSingleVendor)
	store.addVendor("v1", models.VendorKindExternal)
	store.vendors["v1"].IsActive = false
	store.addPrimary("z1", "v1", 1)
	store.addStock("v1", "p1", "z1", 10, 50, true)
	engine := newTestEngine(store)

	candidates, err := engine.Allocate(context.Background(), "p1", "z1")
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestAllocate_SingleVendorUnavailableStockIsEmpty(t *testing.T) {
	store := newFakeStore(models.ModeSingleVendor)
	store.addVendor("v1", models.VendorKindExternal)
	store.addPrimary("z1", "v1", 1)
	store.addStock("v1", "p1", "z1", 10, 50, false)
	engine := newTestEngine(store)

	candidates, err := engine.Allocate(context.Background(), "p1", "z1")
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestAllocate_MultiVendorExclusiveAssignment(t *testing.T) {
	store := newFakeStore(models.ModeMultiVendor)
	store.products["p2"] = &models.Product{ID: "p2", SubcategoryID: "sc1", IsActive: true}
	store.addVendor("v2", models.VendorKindExternal)
	store.addVendor("v3", models.VendorKindExternal)
	store.assignments["z1|sc1"] = &models.SubcategoryAssignment{VendorID: "v2", ZoneID: "z1", SubcategoryID: "sc1", IsActive: true, Priority: 1}
	store.addStock("v2", "p2", "z1", 5, 30, true)
	// v3 also stocks p2 but holds no assignment
	store.addStock("v3", "p2", "z1", 8, 25, true)
	engine := newTestEngine(store)

	candidates, err := engine.Allocate(context.Background(), "p2", "z1")
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "v2", candidates[0].VendorID)
}

func TestAllocate_MultiVendorUnassignedSubcategoryIsEmpty(t *testing.T) {
	store := newFakeStore(models.ModeMultiVendor)
	store.products["p2"] = &models.Product{ID: "p2", SubcategoryID: "sc2", IsActive: true}
	store.addVendor("v2", models.VendorKindExternal)
	store.assignments["z1|sc1"] = &models.SubcategoryAssignment{VendorID: "v2", ZoneID: "z1", SubcategoryID: "sc1", IsActive: true, Priority: 1}
	store.addStock("v2", "p2", "z1", 5, 30, true)
	engine := newTestEngine(store)

	candidates, err := engine.Allocate(context.Background(), "p2", "z1")
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestAllocate_HybridDarkStoreOutOfStockFallsToExternal(t *testing.T) {
	store := newFakeStore(models.ModeHybrid)
	store.products["p1"] = &models.Product{ID: "p1", SubcategoryID: "sc1", IsActive: true}
	store.rules["z1|sc1"] = &models.AllocationRule{ZoneID: "z1", SubcategoryID: "sc1", DarkStorePriority: 1, VendorFallback: true, IsActive: true}
	store.addVendor("vd", models.VendorKindDarkStore)
	store.addVendor("ve", models.VendorKindExternal)
	store.addLink("z1", "vd", 1)
	store.addLink("z1", "ve", 2)
	store.addStock("vd", "p1", "z1", 0, 40, false)
	store.addStock("ve", "p1", "z1", 7, 45, true)
	engine := newTestEngine(store)

	candidates, err := engine.Allocate(context.Background(), "p1", "z1")
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "ve", candidates[0].VendorID)
	assert.Equal(t, 2, candidates[0].Priority)
}

func TestAllocate_HybridNoRuleMatchesSingleVendorOutput(t *testing.T) {
	store := newFakeStore(models.ModeHybrid)
	store.products["p1"] = &models.Product{ID: "p1", SubcategoryID: "sc1", IsActive: true}
	store.addVendor("v1", models.VendorKindExternal)
	store.addPrimary("z1", "v1", 1)
	store.addStock("v1", "p1", "z1", 10, 50, true)
	engine := newTestEngine(store)

	hybrid, err := engine.Allocate(context.Background(), "p1", "z1")
	require.NoError(t, err)

	store.mode = models.ModeSingleVendor
	single, err := engine.Allocate(context.Background(), "p1", "z1")
	require.NoError(t, err)

	assert.Equal(t, single, hybrid)
}

func TestAllocate_HybridFallbackDisabledRestrictsToDarkStores(t *testing.T) {
	store := newFakeStore(models.ModeHybrid)
	store.products["p1"] = &models.Product{ID: "p1", SubcategoryID: "sc1", IsActive: true}
	store.rules["z1|sc1"] = &models.AllocationRule{ZoneID: "z1", SubcategoryID: "sc1", DarkStorePriority: 1, VendorFallback: false, IsActive: true}
	store.addVendor("vd", models.VendorKindDarkStore)
	store.addVendor("ve", models.VendorKindExternal)
	store.addLink("z1", "vd", 1)
	store.addLink("z1", "ve", 2)
	store.addStock("vd", "p1", "z1", 0, 40, false)
	store.addStock("ve", "p1", "z1", 7, 45, true)
	engine := newTestEngine(store)

	candidates, err := engine.Allocate(context.Background(), "p1", "z1")
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestAllocate_HybridOrderingAndTieBreak(t *testing.T) {
	store := newFakeStore(models.ModeHybrid)
	store.products["p1"] = &models.Product{ID: "p1", SubcategoryID: "sc1", IsActive: true}
	store.rules["z1|sc1"] = &models.AllocationRule{ZoneID: "z1", SubcategoryID: "sc1", DarkStorePriority: 1, VendorFallback: true, IsActive: true}
	store.addVendor("db", models.VendorKindDarkStore)
	store.addVendor("da", models.VendorKindDarkStore)
	store.addVendor("ve", models.VendorKindExternal)
	store.addLink("z1", "db", 1)
	store.addLink("z1", "da", 1)
	store.addLink("z1", "ve", 2)
	store.addStock("db", "p1", "z1", 3, 40, true)
	store.addStock("da", "p1", "z1", 4, 42, true)
	store.addStock("ve", "p1", "z1", 9, 45, true)
	engine := newTestEngine(store)

	candidates, err := engine.Allocate(context.Background(), "p1", "z1")
	require.NoError(t, err)
	require.Len(t, candidates, 3)
	// dark stores at priority 1 tie-broken by vendor ID, external at fallback 2
	assert.Equal(t, "da", candidates[0].VendorID)
	assert.Equal(t, "db", candidates[1].VendorID)
	assert.Equal(t, "ve", candidates[2].VendorID)
	assert.Equal(t, 2, candidates[2].Priority)

	again, err := engine.Allocate(context.Background(), "p1", "z1")
	require.NoError(t, err)
	assert.Equal(t, candidates, again)
}

func TestAllocate_HybridFlattensExternalVendorPriority(t *testing.T) {
	store := newFakeStore(models.ModeHybrid)
	store.products["p1"] = &models.Product{ID: "p1", SubcategoryID: "sc1", IsActive: true}
	store.rules["z1|sc1"] = &models.AllocationRule{ZoneID: "z1", SubcategoryID: "sc1", DarkStorePriority: 1, VendorFallback: true, IsActive: true}
	store.addVendor("vb", models.VendorKindExternal)
	store.addVendor("va", models.VendorKindWarehouse)
	store.addLink("z1", "vb", 1)
	store.addLink("z1", "va", 9)
	store.addStock("vb", "p1", "z1", 3, 40, true)
	store.addStock("va", "p1", "z1", 4, 42, true)
	engine := newTestEngine(store)

	candidates, err := engine.Allocate(context.Background(), "p1", "z1")
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	// link priorities are ignored on the hybrid path; both flatten to the
	// fallback value and order by vendor ID
	assert.Equal(t, "va", candidates[0].VendorID)
	assert.Equal(t, 2, candidates[0].Priority)
	assert.Equal(t, "vb", candidates[1].VendorID)
	assert.Equal(t, 2, candidates[1].Priority)
}

func TestAllocate_NoUnavailableCandidateInAnyMode(t *testing.T) {
	for _, mode := range []models.OperationalMode{models.ModeSingleVendor, models.ModeMultiVendor, models.ModeHybrid} {
		store := newFakeStore(mode)
		store.products["p1"] = &models.Product{ID: "p1", SubcategoryID: "sc1", IsActive: true}
		store.rules["z1|sc1"] = &models.AllocationRule{ZoneID: "z1", SubcategoryID: "sc1", DarkStorePriority: 1, VendorFallback: true, IsActive: true}
		store.assignments["z1|sc1"] = &models.SubcategoryAssignment{VendorID: "v1", ZoneID: "z1", SubcategoryID: "sc1", IsActive: true, Priority: 1}
		store.addVendor("v1", models.VendorKindDarkStore)
		store.addPrimary("z1", "v1", 1)
		store.addLink("z1", "v1", 1)
		store.addStock("v1", "p1", "z1", 10, 50, false)
		engine := newTestEngine(store)

		candidates, err := engine.Allocate(context.Background(), "p1", "z1")
		require.NoError(t, err, "mode %s", mode)
		assert.Empty(t, candidates, "mode %s", mode)
	}
}

func TestAllocate_MaxCandidatesCapsList(t *testing.T) {
	store := newFakeStore(models.ModeHybrid)
	store.products["p1"] = &models.Product{ID: "p1", SubcategoryID: "sc1", IsActive: true}
	store.rules["z1|sc1"] = &models.AllocationRule{ZoneID: "z1", SubcategoryID: "sc1", DarkStorePriority: 1, VendorFallback: true, IsActive: true}
	for _, id := range []string{"v1", "v2", "v3"} {
		store.addVendor(id, models.VendorKindExternal)
		store.addLink("z1", id, 1)
		store.addStock(id, "p1", "z1", 5, 20, true)
	}
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	engine := NewEngine(logger, store, store, store, store, store, store, store, EngineConfig{FallbackPriority: 2, MaxCandidates: 2})

	candidates, err := engine.Allocate(context.Background(), "p1", "z1")
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "v1", candidates[0].VendorID)
	assert.Equal(t, "v2", candidates[1].VendorID)
}

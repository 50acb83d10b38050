package service

import (
	"context"
	"testing"
	"time"

	"autohub-rest-api/internal/model"
	"autohub-rest-api/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogFixture(t *testing.T) (*CatalogService, *fakePlatform, *store.Snapshots) {
	t.Helper()

	platform := newFakePlatform()
	snaps := store.NewSnapshots(store.NewMemoryStore(), 0)
	svc := NewCatalogService(snaps, platform)
	require.NotNil(t, svc)
	return svc, platform, snaps
}

func platformCars(n int) []model.Car {
	cars := make([]model.Car, n)
	for i := range cars {
		cars[i] = model.Car{
			ID:    string(rune('a' + i)),
			Brand: "Brand",
			Model: "Model",
			Price: model.Price{Base: int64(1000000 * (i + 1))},
		}
	}
	return cars
}

func TestCatalogService_RefreshReplacesCollection(t *testing.T) {
	svc, platform, snaps := newCatalogFixture(t)
	ctx := context.Background()

	platform.cars = platformCars(5)
	require.NoError(t, svc.Refresh(ctx))

	assert.Len(t, svc.Cars(), 5)
	assert.Empty(t, svc.LastError())
	assert.False(t, svc.Loading())

	// Write-through: the snapshot now holds the fresh collection.
	persisted, err := snaps.LoadCars(ctx)
	require.NoError(t, err)
	assert.Len(t, persisted, 5)
}

func TestCatalogService_FailedRefreshKeepsCache(t *testing.T) {
	svc, platform, _ := newCatalogFixture(t)
	ctx := context.Background()

	platform.cars = platformCars(3)
	require.NoError(t, svc.Refresh(ctx))

	platform.setDown(true)
	require.Error(t, svc.Refresh(ctx))

	assert.Len(t, svc.Cars(), 3, "a failed refresh must not clear the collection")
	assert.NotEmpty(t, svc.LastError())

	platform.setDown(false)
	require.NoError(t, svc.Refresh(ctx))
	assert.Empty(t, svc.LastError())
}

func TestCatalogService_StartServesStaleThenFresh(t *testing.T) {
	platform := newFakePlatform()
	snaps := store.NewSnapshots(store.NewMemoryStore(), 0)
	ctx := context.Background()

	// A previous session cached three listings; the platform now has five.
	require.NoError(t, snaps.SaveCars(ctx, platformCars(3)))
	platform.cars = platformCars(5)
	platform.setDown(true)

	svc := NewCatalogService(snaps, platform)
	svc.Start(ctx)

	// Cached listings are served immediately even with the platform down.
	assert.Len(t, svc.Cars(), 3)
	assert.False(t, svc.Loading())

	// The single-flight guard may drop a refresh that races the one
	// Start spawned, so poll until the fresh collection lands.
	platform.setDown(false)
	assert.Eventually(t, func() bool {
		svc.Refresh(ctx)
		return len(svc.Cars()) == 5
	}, time.Second, 10*time.Millisecond)
}

func TestCatalogService_StartWithoutSnapshotBlocksOnRefresh(t *testing.T) {
	svc, platform, _ := newCatalogFixture(t)

	platform.cars = platformCars(2)
	svc.Start(context.Background())

	assert.Len(t, svc.Cars(), 2)
	assert.False(t, svc.Loading())
}

func TestCatalogService_Lookup(t *testing.T) {
	svc, platform, _ := newCatalogFixture(t)
	ctx := context.Background()

	platform.cars = []model.Car{
		{ID: "c1", Brand: "Toyota", Model: "Camry", Price: model.Price{Base: 2000000}},
		{ID: "c2", Brand: "BMW", Model: "X5", Price: model.Price{Base: 5000000}, IsPopular: true},
	}
	require.NoError(t, svc.Refresh(ctx))

	car, ok := svc.Car("c2")
	require.True(t, ok)
	assert.Equal(t, "X5", car.Model)

	_, ok = svc.Car("nope")
	assert.False(t, ok)

	popular := svc.Popular()
	require.Len(t, popular, 1)
	assert.Equal(t, "c2", popular[0].ID)

	filtered := svc.Filtered(&model.Filter{Brands: []string{"Toyota"}}, model.SortPriceAsc)
	require.Len(t, filtered, 1)
	assert.Equal(t, "c1", filtered[0].ID)
}

func TestCatalogService_CreateUpdateDelete(t *testing.T) {
	svc, platform, snaps := newCatalogFixture(t)
	ctx := context.Background()

	created, err := svc.CreateCar(ctx, &model.Car{Brand: "Kia", Model: "Rio", Price: model.Price{Base: 1500000}})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Len(t, svc.Cars(), 1)

	created.Price.Discount = 100000
	updated, err := svc.UpdateCar(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, int64(1400000), updated.EffectivePrice())

	car, ok := svc.Car(created.ID)
	require.True(t, ok)
	assert.Equal(t, int64(100000), car.Price.Discount)

	require.NoError(t, svc.DeleteCar(ctx, created.ID))
	assert.Empty(t, svc.Cars())

	persisted, err := snaps.LoadCars(ctx)
	require.NoError(t, err)
	assert.Empty(t, persisted)

	// Platform failures surface to the caller unchanged.
	platform.setDown(true)
	_, err = svc.CreateCar(ctx, &model.Car{Brand: "Kia", Model: "Rio", Price: model.Price{Base: 1}})
	assert.Error(t, err)
}

func TestCatalogService_ApplyViewCounts(t *testing.T) {
	svc, platform, snaps := newCatalogFixture(t)
	ctx := context.Background()

	platform.cars = []model.Car{{ID: "c1"}, {ID: "c2"}}
	require.NoError(t, svc.Refresh(ctx))

	require.NoError(t, svc.ApplyViewCounts(ctx, map[string]int64{"c1": 3, "gone": 7}))

	car, _ := svc.Car("c1")
	assert.Equal(t, int64(3), car.ViewCount)

	persisted, err := snaps.LoadCars(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), persisted[0].ViewCount)
}

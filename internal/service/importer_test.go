package service

import (
	"context"
	"testing"

	"autohub-rest-api/internal/model"
	"autohub-rest-api/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeScraped(t *testing.T) {
	car, err := NormalizeScraped(&model.ScrapedCar{
		Title:    "Toyota Land Cruiser 300",
		RawPrice: "8 450 000 ₽",
		RawYear:  "2023 г.",
		ImageURLs: []string{
			"https://cdn.example.com/lc300-front.jpg",
			"https://cdn.example.com/lc300-rear.jpg",
		},
		Description: "  Topline trim  ",
		Attributes: map[string]string{
			"body_type":   "suv",
			"engine_type": "diesel",
			"drivetrain":  "AWD",
			"country":     "Japan",
		},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, car.ID)
	assert.Equal(t, "Toyota", car.Brand)
	assert.Equal(t, "Land Cruiser 300", car.Model)
	assert.Equal(t, int64(8450000), car.Price.Base)
	assert.Equal(t, 2023, car.Year)
	assert.Equal(t, "suv", car.BodyType)
	assert.Equal(t, "diesel", car.Engine.Type)
	assert.Equal(t, "Topline trim", car.Description)

	require.Len(t, car.Images, 2)
	assert.True(t, car.Images[0].IsMain)
	assert.False(t, car.Images[1].IsMain)
}

func TestNormalizeScraped_Rejections(t *testing.T) {
	_, err := NormalizeScraped(&model.ScrapedCar{Title: "  ", RawPrice: "100"})
	assert.Error(t, err, "missing title")

	_, err = NormalizeScraped(&model.ScrapedCar{Title: "Kia Rio", RawPrice: "по запросу"})
	assert.Error(t, err, "no digits in price")

	_, err = NormalizeScraped(&model.ScrapedCar{Title: "Kia Rio", RawPrice: "1 200 000", RawYear: "старый"})
	assert.Error(t, err, "unparseable year")
}

func TestParsePrice(t *testing.T) {
	got, err := parsePrice("2 500 000 ₽")
	require.NoError(t, err)
	assert.Equal(t, int64(2500000), got)

	got, err = parsePrice("от 990000 руб.")
	require.NoError(t, err)
	assert.Equal(t, int64(990000), got)

	_, err = parsePrice("договорная")
	assert.Error(t, err)

	_, err = parsePrice("0")
	assert.Error(t, err)
}

func TestParseYear(t *testing.T) {
	got, err := parseYear("2021 г.в.")
	require.NoError(t, err)
	assert.Equal(t, 2021, got)

	got, err = parseYear("выпуск 2019")
	require.NoError(t, err)
	assert.Equal(t, 2019, got)

	_, err = parseYear("99")
	assert.Error(t, err)

	_, err = parseYear("year 9999")
	assert.Error(t, err)
}

func TestSplitTitle(t *testing.T) {
	brand, carModel := splitTitle("BMW X5 M Competition")
	assert.Equal(t, "BMW", brand)
	assert.Equal(t, "X5 M Competition", carModel)

	brand, carModel = splitTitle("Niva")
	assert.Equal(t, "Niva", brand)
	assert.Equal(t, "Niva", carModel)
}

func TestImportService_Import(t *testing.T) {
	platform := newFakePlatform()
	snaps := store.NewSnapshots(store.NewMemoryStore(), 0)
	catalog := NewCatalogService(snaps, platform)
	svc := NewImportService(catalog, platform)
	ctx := context.Background()

	records := []model.ScrapedCar{
		{Title: "Toyota Camry", RawPrice: "2 900 000"},
		{Title: "", RawPrice: "1 000 000"}, // rejected, not fatal
		{Title: "BMW X5", RawPrice: "7 400 000"},
	}

	result, err := svc.Import(ctx, records)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Imported)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "record 1")

	// The catalog was refreshed to include the imported listings.
	assert.Len(t, catalog.Cars(), 2)
}

func TestImportService_ImportAllInvalid(t *testing.T) {
	platform := newFakePlatform()
	snaps := store.NewSnapshots(store.NewMemoryStore(), 0)
	svc := NewImportService(NewCatalogService(snaps, platform), platform)

	result, err := svc.Import(context.Background(), []model.ScrapedCar{
		{Title: "", RawPrice: ""},
	})
	require.NoError(t, err)
	assert.Zero(t, result.Imported)
	assert.Len(t, result.Errors, 1)
}

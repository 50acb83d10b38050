package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testCatalog() []Car {
	return []Car{
		{
			ID: "c1", Brand: "Toyota", Model: "Camry", Year: 2022, BodyType: "sedan",
			Engine: Engine{Type: "petrol"}, Drivetrain: "FWD", Country: "Japan",
			Price: Price{Base: 1000000}, IsNew: true,
		},
		{
			ID: "c2", Brand: "BMW", Model: "X5", Year: 2023, BodyType: "suv",
			Engine: Engine{Type: "diesel"}, Drivetrain: "AWD", Country: "Germany",
			Price: Price{Base: 2500000}, IsNew: true,
		},
		{
			ID: "c3", Brand: "Lada", Model: "Vesta", Year: 2020, BodyType: "sedan",
			Engine: Engine{Type: "petrol"}, Drivetrain: "FWD", Country: "Russia",
			Price: Price{Base: 4000000, Discount: 500000}, IsNew: false,
		},
	}
}

func TestFilterCars_EmptyFilterReturnsAll(t *testing.T) {
	cars := testCatalog()

	assert.Len(t, FilterCars(cars, &Filter{}), 3)
	assert.Len(t, FilterCars(cars, nil), 3)
}

func TestFilterCars_PriceRange(t *testing.T) {
	cars := testCatalog()

	// c3's effective price is 3.5M after discount, so only c2 lands
	// inside [1.5M, 3.0M].
	got := FilterCars(cars, &Filter{PriceRange: &PriceRange{Min: 1500000, Max: 3000000}})
	assert.Len(t, got, 1)
	assert.Equal(t, "c2", got[0].ID)
}

func TestFilterCars_PriceRangeZeroMaxUnbounded(t *testing.T) {
	cars := testCatalog()

	got := FilterCars(cars, &Filter{PriceRange: &PriceRange{Min: 2000000}})
	assert.Len(t, got, 2)
	assert.Equal(t, "c2", got[0].ID)
	assert.Equal(t, "c3", got[1].ID)
}

func TestFilterCars_Monotonicity(t *testing.T) {
	cars := testCatalog()

	loose := FilterCars(cars, &Filter{BodyTypes: []string{"sedan"}})
	tight := FilterCars(cars, &Filter{
		BodyTypes: []string{"sedan"},
		Countries: []string{"Japan"},
	})

	assert.LessOrEqual(t, len(tight), len(loose))
	for _, c := range tight {
		found := false
		for _, l := range loose {
			if l.ID == c.ID {
				found = true
			}
		}
		assert.True(t, found, "tightening a filter must only remove cars, %s appeared", c.ID)
	}
}

func TestFilterCars_CombinesDimensionsWithAnd(t *testing.T) {
	cars := testCatalog()

	got := FilterCars(cars, &Filter{
		BodyTypes:   []string{"sedan"},
		EngineTypes: []string{"petrol"},
		Drivetrains: []string{"FWD"},
	})
	assert.Len(t, got, 2)

	got = FilterCars(cars, &Filter{
		BodyTypes: []string{"sedan"},
		Countries: []string{"Germany"},
	})
	assert.Empty(t, got)
}

func TestFilterCars_OnlyNew(t *testing.T) {
	cars := testCatalog()

	yes := true
	got := FilterCars(cars, &Filter{OnlyNew: &yes})
	assert.Len(t, got, 2)

	no := false
	got = FilterCars(cars, &Filter{OnlyNew: &no})
	assert.Len(t, got, 1)
	assert.Equal(t, "c3", got[0].ID)
}

func TestFilterCars_PreservesOrderAndInput(t *testing.T) {
	cars := testCatalog()

	got := FilterCars(cars, &Filter{EngineTypes: []string{"petrol"}})
	assert.Equal(t, []string{"c1", "c3"}, []string{got[0].ID, got[1].ID})

	// Input slice untouched.
	assert.Len(t, cars, 3)
	assert.Equal(t, "c1", cars[0].ID)
}

func TestSortCars(t *testing.T) {
	cars := testCatalog()

	byPrice := SortCars(cars, SortPriceAsc)
	assert.Equal(t, "c1", byPrice[0].ID)
	assert.Equal(t, "c2", byPrice[1].ID)
	assert.Equal(t, "c3", byPrice[2].ID) // 3.5M effective

	byPriceDesc := SortCars(cars, SortPriceDesc)
	assert.Equal(t, "c3", byPriceDesc[0].ID)

	byYear := SortCars(cars, SortYearDesc)
	assert.Equal(t, "c2", byYear[0].ID)

	// Unknown mode keeps catalog order, and sorting never mutates input.
	same := SortCars(cars, "bogus")
	assert.Equal(t, "c1", same[0].ID)
	assert.Equal(t, "c1", cars[0].ID)
}

func TestFavoriteCars_PreservesCatalogOrder(t *testing.T) {
	cars := testCatalog()

	got := FavoriteCars(cars, []string{"c3", "c1"})
	assert.Len(t, got, 2)
	assert.Equal(t, "c1", got[0].ID)
	assert.Equal(t, "c3", got[1].ID)
}

func TestCompareCars_DropsVanishedListings(t *testing.T) {
	cars := testCatalog()

	got := CompareCars(cars, []string{"c2", "gone", "c1"})
	assert.Len(t, got, 2)
	assert.Equal(t, "c2", got[0].ID)
	assert.Equal(t, "c1", got[1].ID)
}

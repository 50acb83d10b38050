package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCar_EffectivePrice(t *testing.T) {
	c := Car{Price: Price{Base: 3000000, Discount: 250000}}
	assert.Equal(t, int64(2750000), c.EffectivePrice())

	noDiscount := Car{Price: Price{Base: 3000000}}
	assert.Equal(t, int64(3000000), noDiscount.EffectivePrice())
}

func TestCar_MainImage(t *testing.T) {
	c := Car{Images: []CarImage{
		{ID: "i1", URL: "/a.jpg"},
		{ID: "i2", URL: "/b.jpg", IsMain: true},
	}}
	assert.Equal(t, "i2", c.MainImage().ID)

	noFlag := Car{Images: []CarImage{{ID: "i1", URL: "/a.jpg"}}}
	assert.Equal(t, "i1", noFlag.MainImage().ID)

	empty := Car{Brand: "Kia", Model: "Rio"}
	img := empty.MainImage()
	assert.Equal(t, PlaceholderImageURL, img.URL)
	assert.Equal(t, "Kia Rio", img.Alt)
}

func TestStats(t *testing.T) {
	cars := []Car{
		{Brand: "Toyota", Price: Price{Base: 1000000}, IsNew: true},
		{Brand: "Toyota", Price: Price{Base: 3000000}},
		{Brand: "BMW", Price: Price{Base: 2000000, Discount: 500000}, IsNew: true},
	}

	stats := Stats(cars)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.NewCount)
	assert.Equal(t, 2, stats.Brands)
	assert.Equal(t, int64(1000000), stats.MinPrice)
	assert.Equal(t, int64(3000000), stats.MaxPrice)
	assert.Equal(t, int64(1833333), stats.AvgPrice)
}

func TestStats_Empty(t *testing.T) {
	stats := Stats(nil)
	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, int64(0), stats.MinPrice)
}

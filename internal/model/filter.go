package model

import "sort"

// PriceRange bounds the effective price. Max of zero means unbounded.
type PriceRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// Filter is a set of optional inclusion constraints over the catalog.
// An absent (empty/nil) dimension means "no constraint", never "exclude
// everything". Filtering never mutates the underlying collection.
type Filter struct {
	Brands      []string    `json:"brands,omitempty"`
	Models      []string    `json:"models,omitempty"`
	Years       []int       `json:"years,omitempty"`
	BodyTypes   []string    `json:"body_types,omitempty"`
	EngineTypes []string    `json:"engine_types,omitempty"`
	Drivetrains []string    `json:"drivetrains,omitempty"`
	Countries   []string    `json:"countries,omitempty"`
	PriceRange  *PriceRange `json:"price_range,omitempty"`
	OnlyNew     *bool       `json:"only_new,omitempty"`
}

// Match reports whether a car satisfies every present dimension.
func (f *Filter) Match(c *Car) bool {
	if !inStrings(f.Brands, c.Brand) {
		return false
	}
	if !inStrings(f.Models, c.Model) {
		return false
	}
	if !inInts(f.Years, c.Year) {
		return false
	}
	if !inStrings(f.BodyTypes, c.BodyType) {
		return false
	}
	if !inStrings(f.EngineTypes, c.Engine.Type) {
		return false
	}
	if !inStrings(f.Drivetrains, c.Drivetrain) {
		return false
	}
	if !inStrings(f.Countries, c.Country) {
		return false
	}
	if f.PriceRange != nil {
		price := c.EffectivePrice()
		if price < f.PriceRange.Min {
			return false
		}
		if f.PriceRange.Max > 0 && price > f.PriceRange.Max {
			return false
		}
	}
	if f.OnlyNew != nil && c.IsNew != *f.OnlyNew {
		return false
	}
	return true
}

// FilterCars returns the subset of cars matching the filter, catalog
// order preserved.
func FilterCars(cars []Car, f *Filter) []Car {
	if f == nil {
		f = &Filter{}
	}
	out := make([]Car, 0, len(cars))
	for i := range cars {
		if f.Match(&cars[i]) {
			out = append(out, cars[i])
		}
	}
	return out
}

// Sort modes for catalog listings.
const (
	SortDefault   = ""
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortYearAsc   = "year_asc"
	SortYearDesc  = "year_desc"
)

// SortCars returns a sorted copy of cars. Unknown modes keep catalog order.
func SortCars(cars []Car, mode string) []Car {
	out := make([]Car, len(cars))
	copy(out, cars)

	switch mode {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].EffectivePrice() < out[j].EffectivePrice() })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].EffectivePrice() > out[j].EffectivePrice() })
	case SortYearAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	case SortYearDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Year > out[j].Year })
	}
	return out
}

// FavoriteCars intersects the catalog with a favorite-id set, preserving
// catalog order.
func FavoriteCars(cars []Car, favoriteIDs []string) []Car {
	ids := make(map[string]struct{}, len(favoriteIDs))
	for _, id := range favoriteIDs {
		ids[id] = struct{}{}
	}
	out := make([]Car, 0, len(favoriteIDs))
	for i := range cars {
		if _, ok := ids[cars[i].ID]; ok {
			out = append(out, cars[i])
		}
	}
	return out
}

// CompareCars maps comparison ids to catalog entries, silently dropping
// ids that no longer resolve to a listing.
func CompareCars(cars []Car, compareIDs []string) []Car {
	byID := make(map[string]*Car, len(cars))
	for i := range cars {
		byID[cars[i].ID] = &cars[i]
	}
	out := make([]Car, 0, len(compareIDs))
	for _, id := range compareIDs {
		if c, ok := byID[id]; ok {
			out = append(out, *c)
		}
	}
	return out
}

func inStrings(set []string, v string) bool {
	if len(set) == 0 {
		return true
	}
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func inInts(set []int, v int) bool {
	if len(set) == 0 {
		return true
	}
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

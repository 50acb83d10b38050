package model

import "time"

// PlaceholderImageURL is substituted when a listing carries no images,
// so callers always render something.
const PlaceholderImageURL = "/static/img/car-placeholder.svg"

// Price holds the price components of a listing, in whole currency units.
type Price struct {
	Base        int64 `json:"base"`
	WithOptions int64 `json:"with_options,omitempty"`
	Discount    int64 `json:"discount,omitempty"`
}

// Engine describes the powertrain of a listing.
type Engine struct {
	Type         string  `json:"type"` // petrol, diesel, hybrid, electric
	Displacement float64 `json:"displacement,omitempty"`
	Power        int     `json:"power,omitempty"`
	Torque       int     `json:"torque,omitempty"`
}

// Transmission describes the gearbox.
type Transmission struct {
	Type  string `json:"type"` // manual, automatic, robot, cvt
	Gears int    `json:"gears,omitempty"`
}

// Dimensions holds body measurements in millimeters, volume in liters,
// weight in kilograms.
type Dimensions struct {
	Length      int `json:"length,omitempty"`
	Width       int `json:"width,omitempty"`
	Height      int `json:"height,omitempty"`
	Wheelbase   int `json:"wheelbase,omitempty"`
	Clearance   int `json:"clearance,omitempty"`
	TrunkVolume int `json:"trunk_volume,omitempty"`
	Weight      int `json:"weight,omitempty"`
}

// Performance holds driving characteristics.
type Performance struct {
	TopSpeed        int     `json:"top_speed,omitempty"`        // km/h
	Acceleration    float64 `json:"acceleration,omitempty"`     // 0-100 km/h, seconds
	FuelConsumption float64 `json:"fuel_consumption,omitempty"` // l/100km
}

// CarImage is a single image reference of a listing.
type CarImage struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Alt    string `json:"alt,omitempty"`
	IsMain bool   `json:"is_main,omitempty"`
}

// FeatureGroup is an ordered list of equipment items under one category.
type FeatureGroup struct {
	Category string   `json:"category"`
	Items    []string `json:"items"`
}

// Car is a single vehicle offering in the catalog. Updates always replace
// the whole record; no partial writes.
type Car struct {
	ID           string         `json:"id"`
	Brand        string         `json:"brand"`
	Model        string         `json:"model"`
	Year         int            `json:"year"`
	BodyType     string         `json:"body_type"`
	Colors       []string       `json:"colors,omitempty"`
	Price        Price          `json:"price"`
	Engine       Engine         `json:"engine"`
	Transmission Transmission   `json:"transmission"`
	Drivetrain   string         `json:"drivetrain,omitempty"` // FWD, RWD, AWD
	Dimensions   Dimensions     `json:"dimensions,omitempty"`
	Performance  Performance    `json:"performance,omitempty"`
	Images       []CarImage     `json:"images"`
	Features     []FeatureGroup `json:"features,omitempty"`
	Description  string         `json:"description,omitempty"`
	IsNew        bool           `json:"is_new"`
	IsPopular    bool           `json:"is_popular"`
	Country      string         `json:"country,omitempty"`
	ViewCount    int64          `json:"view_count,omitempty"`
	UpdatedAt    time.Time      `json:"updated_at,omitempty"`
}

// Title returns the display name of the listing.
func (c *Car) Title() string {
	return c.Brand + " " + c.Model
}

// EffectivePrice is the base price minus any active discount. It is the
// value used for sorting and price-range filtering.
func (c *Car) EffectivePrice() int64 {
	return c.Price.Base - c.Price.Discount
}

// MainImage returns the image flagged as main, the first image otherwise,
// or a placeholder when the listing has no images at all.
func (c *Car) MainImage() CarImage {
	for _, img := range c.Images {
		if img.IsMain {
			return img
		}
	}
	if len(c.Images) > 0 {
		return c.Images[0]
	}
	return CarImage{URL: PlaceholderImageURL, Alt: c.Title()}
}

// CatalogStats are aggregate numbers over a catalog slice.
type CatalogStats struct {
	Total    int   `json:"total"`
	NewCount int   `json:"new_count"`
	Brands   int   `json:"brands"`
	MinPrice int64 `json:"min_price"`
	MaxPrice int64 `json:"max_price"`
	AvgPrice int64 `json:"avg_price"`
}

// Stats computes aggregate statistics over a catalog slice.
func Stats(cars []Car) CatalogStats {
	stats := CatalogStats{Total: len(cars)}
	if len(cars) == 0 {
		return stats
	}

	brands := make(map[string]struct{})
	var sum int64
	stats.MinPrice = cars[0].EffectivePrice()

	for i := range cars {
		price := cars[i].EffectivePrice()
		sum += price
		if price < stats.MinPrice {
			stats.MinPrice = price
		}
		if price > stats.MaxPrice {
			stats.MaxPrice = price
		}
		if cars[i].IsNew {
			stats.NewCount++
		}
		brands[cars[i].Brand] = struct{}{}
	}

	stats.Brands = len(brands)
	stats.AvgPrice = sum / int64(len(cars))
	return stats
}

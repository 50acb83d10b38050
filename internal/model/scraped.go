package model

// ScrapedCar is an unprocessed listing record produced by the external
// catalog scraper. Price and year arrive as raw display strings
// (e.g. "2 500 000 ₽", "2023 г."); the importer normalizes them.
type ScrapedCar struct {
	Title       string            `json:"title"`
	RawPrice    string            `json:"raw_price"`
	RawYear     string            `json:"raw_year,omitempty"`
	URL         string            `json:"url,omitempty"`
	ImageURLs   []string          `json:"image_urls,omitempty"`
	Description string            `json:"description,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

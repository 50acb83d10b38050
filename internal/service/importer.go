package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"autohub-rest-api/internal/model"
	"autohub-rest-api/internal/remote"
	"autohub-rest-api/pkg/uid"
)

// ImportService normalizes scraped catalog records and forwards them to
// the platform bulk-import endpoint. The scraper itself lives outside
// this service; it only delivers raw records here.
type ImportService struct {
	catalog *CatalogService
	remote  remote.API
}

// NewImportService creates the importer.
func NewImportService(catalog *CatalogService, remoteAPI remote.API) *ImportService {
	if catalog == nil || remoteAPI == nil {
		return nil
	}
	return &ImportService{catalog: catalog, remote: remoteAPI}
}

// Import normalizes a scraped batch, pushes the valid records to the
// platform, and refreshes the local catalog to pick up the merged result.
// Per-record normalization failures are reported, not fatal.
func (s *ImportService) Import(ctx context.Context, records []model.ScrapedCar) (*remote.ImportResult, error) {
	result := &remote.ImportResult{Errors: []string{}}

	cars := make([]model.Car, 0, len(records))
	for i := range records {
		car, err := NormalizeScraped(&records[i])
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("record %d (%s): %v", i, records[i].Title, err))
			continue
		}
		cars = append(cars, *car)
	}

	if len(cars) == 0 {
		return result, nil
	}

	remoteResult, err := s.remote.ImportCars(ctx, cars)
	if err != nil {
		return nil, err
	}

	result.Imported = remoteResult.Imported
	result.Errors = append(result.Errors, remoteResult.Errors...)

	if err := s.catalog.Refresh(ctx); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("catalog refresh after import failed: %v", err))
	}

	return result, nil
}

// NormalizeScraped converts a raw scraped record into a catalog listing.
// Price and year arrive as display strings and are reduced to digits.
func NormalizeScraped(rec *model.ScrapedCar) (*model.Car, error) {
	title := strings.TrimSpace(rec.Title)
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	price, err := parsePrice(rec.RawPrice)
	if err != nil {
		return nil, err
	}

	brand, carModel := splitTitle(title)

	car := &model.Car{
		ID:          uid.New(),
		Brand:       brand,
		Model:       carModel,
		Price:       model.Price{Base: price},
		Description: strings.TrimSpace(rec.Description),
		UpdatedAt:   time.Now().UTC(),
	}

	if rec.RawYear != "" {
		year, err := parseYear(rec.RawYear)
		if err != nil {
			return nil, err
		}
		car.Year = year
	}

	if v := rec.Attributes["body_type"]; v != "" {
		car.BodyType = v
	}
	if v := rec.Attributes["engine_type"]; v != "" {
		car.Engine.Type = v
	}
	if v := rec.Attributes["drivetrain"]; v != "" {
		car.Drivetrain = v
	}
	if v := rec.Attributes["country"]; v != "" {
		car.Country = v
	}

	for i, url := range rec.ImageURLs {
		car.Images = append(car.Images, model.CarImage{
			ID:     uid.New(),
			URL:    url,
			Alt:    title,
			IsMain: i == 0,
		})
	}

	return car, nil
}

// parsePrice reduces a raw display price ("2 500 000 ₽") to an integer.
func parsePrice(raw string) (int64, error) {
	var sb strings.Builder
	for _, r := range raw {
		if unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return 0, fmt.Errorf("no price in %q", raw)
	}

	price, err := strconv.ParseInt(sb.String(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable price %q: %w", raw, err)
	}
	if price <= 0 {
		return 0, fmt.Errorf("non-positive price in %q", raw)
	}
	return price, nil
}

// parseYear extracts a plausible four-digit model year from a raw string.
func parseYear(raw string) (int, error) {
	digits := make([]rune, 0, len(raw))
	for _, r := range raw {
		if unicode.IsDigit(r) {
			digits = append(digits, r)
		} else if len(digits) == 4 {
			break
		} else {
			digits = digits[:0]
		}
	}
	if len(digits) < 4 {
		return 0, fmt.Errorf("no year in %q", raw)
	}

	year, err := strconv.Atoi(string(digits[:4]))
	if err != nil || year < 1900 || year > 2100 {
		return 0, fmt.Errorf("implausible year in %q", raw)
	}
	return year, nil
}

// splitTitle separates "Brand Model ..." into brand and model parts.
func splitTitle(title string) (string, string) {
	parts := strings.Fields(title)
	if len(parts) == 1 {
		return parts[0], parts[0]
	}
	return parts[0], strings.Join(parts[1:], " ")
}

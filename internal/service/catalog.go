package service

import (
	"context"
	"log"
	"sync"
	"time"

	"autohub-rest-api/internal/model"
	"autohub-rest-api/internal/remote"
	"autohub-rest-api/internal/store"
	"autohub-rest-api/pkg/uid"
)

// CatalogService owns the in-memory catalog collection. It serves the
// last-known-good snapshot immediately and refreshes from the dealer
// platform in the background; a failed refresh is never fatal.
type CatalogService struct {
	snapshots *store.Snapshots
	remote    remote.API

	mu         sync.RWMutex
	cars       []model.Car
	loading    bool
	lastErr    string
	refreshing bool
}

// NewCatalogService creates the catalog engine.
// Returns nil if either dependency is nil.
func NewCatalogService(snapshots *store.Snapshots, remoteAPI remote.API) *CatalogService {
	if snapshots == nil || remoteAPI == nil {
		return nil
	}
	return &CatalogService{
		snapshots: snapshots,
		remote:    remoteAPI,
	}
}

// Start loads the cached catalog and schedules a refresh. With a prior
// snapshot the collection is served immediately and refreshed in the
// background; without one the first refresh runs synchronously so the
// caller knows whether anything is available.
func (s *CatalogService) Start(ctx context.Context) {
	cached, err := s.snapshots.LoadCars(ctx)
	if err == nil && len(cached) > 0 {
		s.mu.Lock()
		s.cars = cached
		s.loading = false
		s.mu.Unlock()
		log.Printf("[CatalogService] Serving %d cached listings, refreshing in background", len(cached))

		go func() {
			if err := s.Refresh(context.Background()); err != nil {
				log.Printf("[CatalogService] Background refresh failed: %v", err)
			}
		}()
		return
	}
	if err != nil && err != store.ErrNotFound {
		log.Printf("[CatalogService] Failed to load catalog snapshot: %v", err)
	}

	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	if err := s.Refresh(ctx); err != nil {
		log.Printf("[CatalogService] Initial refresh failed: %v", err)
	}
}

// Refresh fetches the remote catalog and replaces the in-memory
// collection on success. Single-flight: a refresh that finds one already
// in progress returns immediately. Failure keeps the existing collection
// and records a user-facing error.
func (s *CatalogService) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.refreshing {
		s.mu.Unlock()
		return nil
	}
	s.refreshing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.refreshing = false
		s.mu.Unlock()
	}()

	cars, err := s.remote.ListCars(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	if err != nil {
		s.lastErr = "catalog temporarily unavailable, showing cached listings"
		log.Printf("[CatalogService] Refresh failed, keeping %d cached listings: %v", len(s.cars), err)
		return err
	}

	s.cars = cars
	s.lastErr = ""
	if err := s.snapshots.SaveCars(ctx, cars); err == nil {
		log.Printf("[CatalogService] Refreshed catalog: %d listings", len(cars))
	}
	return nil
}

// Cars returns a copy of the full catalog.
func (s *CatalogService) Cars() []model.Car {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Car, len(s.cars))
	copy(out, s.cars)
	return out
}

// Car returns a single listing by id.
func (s *CatalogService) Car(id string) (*model.Car, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.cars {
		if s.cars[i].ID == id {
			car := s.cars[i]
			return &car, true
		}
	}
	return nil, false
}

// Filtered returns the catalog filtered and sorted per request.
func (s *CatalogService) Filtered(f *model.Filter, sortMode string) []model.Car {
	return model.SortCars(model.FilterCars(s.Cars(), f), sortMode)
}

// Popular returns the listings flagged as popular, catalog order preserved.
func (s *CatalogService) Popular() []model.Car {
	all := s.Cars()
	out := make([]model.Car, 0, len(all))
	for i := range all {
		if all[i].IsPopular {
			out = append(out, all[i])
		}
	}
	return out
}

// Loading reports whether the view should block on the first refresh.
func (s *CatalogService) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// LastError returns the user-facing message of the last failed refresh,
// empty when the last refresh succeeded.
func (s *CatalogService) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// CreateCar creates a listing on the platform and mirrors it locally.
func (s *CatalogService) CreateCar(ctx context.Context, car *model.Car) (*model.Car, error) {
	if car.ID == "" {
		car.ID = uid.New()
	}
	car.UpdatedAt = time.Now().UTC()

	created, err := s.remote.CreateCar(ctx, car)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cars = append(s.cars, *created)
	cars := make([]model.Car, len(s.cars))
	copy(cars, s.cars)
	s.mu.Unlock()

	s.snapshots.SaveCars(ctx, cars)
	return created, nil
}

// UpdateCar replaces a listing on the platform and mirrors it locally.
// Whole-record replacement; a listing is never partially written.
func (s *CatalogService) UpdateCar(ctx context.Context, car *model.Car) (*model.Car, error) {
	car.UpdatedAt = time.Now().UTC()

	updated, err := s.remote.UpdateCar(ctx, car)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	for i := range s.cars {
		if s.cars[i].ID == updated.ID {
			s.cars[i] = *updated
			break
		}
	}
	cars := make([]model.Car, len(s.cars))
	copy(cars, s.cars)
	s.mu.Unlock()

	s.snapshots.SaveCars(ctx, cars)
	return updated, nil
}

// DeleteCar removes a listing from the platform and the local mirror.
func (s *CatalogService) DeleteCar(ctx context.Context, id string) error {
	if err := s.remote.DeleteCar(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	out := s.cars[:0]
	for i := range s.cars {
		if s.cars[i].ID != id {
			out = append(out, s.cars[i])
		}
	}
	s.cars = out
	cars := make([]model.Car, len(s.cars))
	copy(cars, s.cars)
	s.mu.Unlock()

	s.snapshots.SaveCars(ctx, cars)
	return nil
}

// ApplyViewCounts adds buffered view-count increments to the local
// collection and write-through persists the result.
func (s *CatalogService) ApplyViewCounts(ctx context.Context, counts map[string]int64) error {
	if len(counts) == 0 {
		return nil
	}

	s.mu.Lock()
	for i := range s.cars {
		if n, ok := counts[s.cars[i].ID]; ok {
			s.cars[i].ViewCount += n
		}
	}
	cars := make([]model.Car, len(s.cars))
	copy(cars, s.cars)
	s.mu.Unlock()

	return s.snapshots.SaveCars(ctx, cars)
}

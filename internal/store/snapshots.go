package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"autohub-rest-api/internal/model"
)

// Snapshots is the typed write-through layer over the raw Store.
// Persistence failures never crash the caller: every Save degrades to a
// logged diagnostic and the in-memory state stays authoritative for the
// session.
type Snapshots struct {
	store      Store
	orderLimit int // max orders persisted when a full write fails
}

// NewSnapshots creates the typed snapshot layer. orderLimit caps the
// order history persisted after a degraded write; zero means 200.
func NewSnapshots(store Store, orderLimit int) *Snapshots {
	if orderLimit <= 0 {
		orderLimit = 200
	}
	return &Snapshots{store: store, orderLimit: orderLimit}
}

// Raw exposes the underlying store (stats, auxiliary keys).
func (s *Snapshots) Raw() Store {
	return s.store
}

// LoadCars returns the cached catalog snapshot, or ErrNotFound.
func (s *Snapshots) LoadCars(ctx context.Context) ([]model.Car, error) {
	var cars []model.Car
	if err := s.load(ctx, KeyCatalog, &cars); err != nil {
		return nil, err
	}
	return cars, nil
}

// SaveCars write-through persists the catalog snapshot.
func (s *Snapshots) SaveCars(ctx context.Context, cars []model.Car) error {
	return s.save(ctx, KeyCatalog, cars)
}

// LoadOrders returns the persisted order list, or ErrNotFound.
func (s *Snapshots) LoadOrders(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	if err := s.load(ctx, KeyOrders, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// SaveOrders write-through persists the order list. If the full write
// fails (quota, oversized payload), it degrades to persisting the
// most-recent orderLimit records rather than failing the whole write.
func (s *Snapshots) SaveOrders(ctx context.Context, orders []model.Order) error {
	if err := s.save(ctx, KeyOrders, orders); err == nil {
		return nil
	} else if len(orders) <= s.orderLimit {
		return err
	}

	truncated := newestOrders(orders, s.orderLimit)
	log.Printf("[Snapshots] Full order write failed, retrying with most-recent %d of %d records",
		len(truncated), len(orders))

	if err := s.save(ctx, KeyOrders, truncated); err != nil {
		return fmt.Errorf("degraded order write failed: %w", err)
	}
	return nil
}

// SaveOrdersCSV persists the denormalized CSV mirror of the order list
// together with its generation timestamp.
func (s *Snapshots) SaveOrdersCSV(ctx context.Context, csv string) error {
	if err := s.store.Write(ctx, KeyOrdersCSV, []byte(csv)); err != nil {
		log.Printf("[Snapshots] Failed to persist CSV mirror: %v", err)
		return err
	}
	stamp := time.Now().UTC().Format(time.RFC3339)
	if err := s.store.Write(ctx, KeyOrdersCSVAt, []byte(stamp)); err != nil {
		log.Printf("[Snapshots] Failed to persist CSV timestamp: %v", err)
	}
	return nil
}

// LoadOrdersCSV returns the CSV mirror and its generation timestamp.
func (s *Snapshots) LoadOrdersCSV(ctx context.Context) (string, string, error) {
	csv, err := s.store.Read(ctx, KeyOrdersCSV)
	if err != nil {
		return "", "", err
	}
	stamp, err := s.store.Read(ctx, KeyOrdersCSVAt)
	if err != nil {
		stamp = nil
	}
	return string(csv), string(stamp), nil
}

// LoadIDSet returns a persisted id set (favorites, compare) for a key.
// An absent key is an empty set, not an error.
func (s *Snapshots) LoadIDSet(ctx context.Context, key string) ([]string, error) {
	var ids []string
	if err := s.load(ctx, key, &ids); err != nil {
		if err == ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return ids, nil
}

// SaveIDSet persists an id set under a key.
func (s *Snapshots) SaveIDSet(ctx context.Context, key string, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	return s.save(ctx, key, ids)
}

// LoadSettings returns a cached settings group, or ErrNotFound.
func (s *Snapshots) LoadSettings(ctx context.Context, group string) (*model.SettingsGroup, error) {
	var sg model.SettingsGroup
	if err := s.load(ctx, KeySettingsPrefix+group, &sg); err != nil {
		return nil, err
	}
	return &sg, nil
}

// SaveSettings caches a settings group.
func (s *Snapshots) SaveSettings(ctx context.Context, sg *model.SettingsGroup) error {
	return s.save(ctx, KeySettingsPrefix+sg.Group, sg)
}

func (s *Snapshots) load(ctx context.Context, key string, out interface{}) error {
	data, err := s.store.Read(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("corrupt snapshot %q: %w", key, err)
	}
	return nil
}

func (s *Snapshots) save(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("[Snapshots] Failed to serialize %q: %v", key, err)
		return err
	}
	if err := s.store.Write(ctx, key, data); err != nil {
		log.Printf("[Snapshots] Failed to persist %q: %v", key, err)
		return err
	}
	return nil
}

// newestOrders returns the n most recently created orders, preserving
// the original relative order of the survivors.
func newestOrders(orders []model.Order, n int) []model.Order {
	if len(orders) <= n {
		return orders
	}

	idx := make([]int, len(orders))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return orders[idx[a]].CreatedAt.After(orders[idx[b]].CreatedAt)
	})

	keep := make(map[int]struct{}, n)
	for _, i := range idx[:n] {
		keep[i] = struct{}{}
	}

	out := make([]model.Order, 0, n)
	for i := range orders {
		if _, ok := keep[i]; ok {
			out = append(out, orders[i])
		}
	}
	return out
}

// FavoritesKey returns the per-client favorites persistence key.
func FavoritesKey(clientID string) string {
	return KeyFavoritesPrefix + clientID
}

// CompareKey returns the per-client comparison-set persistence key.
func CompareKey(clientID string) string {
	return KeyComparePrefix + clientID
}

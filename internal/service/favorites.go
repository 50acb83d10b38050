package service

import (
	"context"
	"errors"

	"autohub-rest-api/internal/store"
)

// MaxCompare bounds the comparison set. Adding a fourth listing is
// rejected; the caller is told to remove one first, nothing is evicted.
const MaxCompare = 3

// ErrCompareFull is returned when the comparison set is at capacity.
var ErrCompareFull = errors.New("comparison set is full, remove a car first")

// FavoritesService manages per-client favorite and comparison id sets,
// persisted in the snapshot store.
type FavoritesService struct {
	snapshots *store.Snapshots
}

// NewFavoritesService creates the favorites/compare service.
func NewFavoritesService(snapshots *store.Snapshots) *FavoritesService {
	if snapshots == nil {
		return nil
	}
	return &FavoritesService{snapshots: snapshots}
}

// Favorites returns a client's favorite listing ids.
func (s *FavoritesService) Favorites(ctx context.Context, clientID string) ([]string, error) {
	return s.snapshots.LoadIDSet(ctx, store.FavoritesKey(clientID))
}

// ToggleFavorite adds or removes a listing id from a client's favorites.
// It returns whether the id is a member after the call, plus the full set.
func (s *FavoritesService) ToggleFavorite(ctx context.Context, clientID, carID string) (bool, []string, error) {
	key := store.FavoritesKey(clientID)
	ids, err := s.snapshots.LoadIDSet(ctx, key)
	if err != nil {
		return false, nil, err
	}

	ids, added := toggle(ids, carID)
	if err := s.snapshots.SaveIDSet(ctx, key, ids); err != nil {
		return added, ids, err
	}
	return added, ids, nil
}

// Compare returns a client's comparison listing ids.
func (s *FavoritesService) Compare(ctx context.Context, clientID string) ([]string, error) {
	return s.snapshots.LoadIDSet(ctx, store.CompareKey(clientID))
}

// ToggleCompare adds or removes a listing id from a client's comparison
// set. Adding beyond MaxCompare members returns ErrCompareFull and leaves
// the set unchanged.
func (s *FavoritesService) ToggleCompare(ctx context.Context, clientID, carID string) (bool, []string, error) {
	key := store.CompareKey(clientID)
	ids, err := s.snapshots.LoadIDSet(ctx, key)
	if err != nil {
		return false, nil, err
	}

	if !contains(ids, carID) && len(ids) >= MaxCompare {
		return false, ids, ErrCompareFull
	}

	ids, added := toggle(ids, carID)
	if err := s.snapshots.SaveIDSet(ctx, key, ids); err != nil {
		return added, ids, err
	}
	return added, ids, nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// toggle flips membership, preserving the order of the remaining ids.
func toggle(ids []string, id string) ([]string, bool) {
	if contains(ids, id) {
		out := make([]string, 0, len(ids)-1)
		for _, v := range ids {
			if v != id {
				out = append(out, v)
			}
		}
		return out, false
	}
	return append(ids, id), true
}

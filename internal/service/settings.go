package service

import (
	"context"
	"log"

	"autohub-rest-api/internal/model"
	"autohub-rest-api/internal/remote"
	"autohub-rest-api/internal/store"
)

// SettingsService serves site settings groups from the platform with the
// snapshot store as a fallback cache.
type SettingsService struct {
	snapshots *store.Snapshots
	remote    remote.API
}

// NewSettingsService creates the settings service.
func NewSettingsService(snapshots *store.Snapshots, remoteAPI remote.API) *SettingsService {
	if snapshots == nil || remoteAPI == nil {
		return nil
	}
	return &SettingsService{snapshots: snapshots, remote: remoteAPI}
}

// Get fetches a settings group from the platform and caches it. When the
// platform is unreachable the cached copy is served instead.
func (s *SettingsService) Get(ctx context.Context, group string) (*model.SettingsGroup, error) {
	sg, err := s.remote.GetSettings(ctx, group)
	if err == nil {
		s.snapshots.SaveSettings(ctx, sg)
		return sg, nil
	}

	log.Printf("[SettingsService] Remote fetch of %q failed, trying cache: %v", group, err)
	cached, cacheErr := s.snapshots.LoadSettings(ctx, group)
	if cacheErr != nil {
		return nil, err
	}
	return cached, nil
}

// Update pushes a settings group to the platform and caches it on success.
func (s *SettingsService) Update(ctx context.Context, sg *model.SettingsGroup) error {
	if err := s.remote.UpdateSettings(ctx, sg); err != nil {
		return err
	}
	s.snapshots.SaveSettings(ctx, sg)
	return nil
}

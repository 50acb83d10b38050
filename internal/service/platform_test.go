package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"autohub-rest-api/internal/model"
	"autohub-rest-api/internal/remote"
)

// fakePlatform is an in-memory stand-in for the dealer platform. Setting
// down makes every call fail, simulating an outage.
type fakePlatform struct {
	mu       sync.Mutex
	down     bool
	cars     []model.Car
	orders   []model.Order
	settings map[string]model.SettingsGroup
	nextRef  int

	createOrderCalls int
	setStatusCalls   int
}

var _ remote.API = (*fakePlatform)(nil)

var errPlatformDown = errors.New("connection refused")

func newFakePlatform() *fakePlatform {
	return &fakePlatform{settings: make(map[string]model.SettingsGroup)}
}

func (f *fakePlatform) setDown(down bool) {
	f.mu.Lock()
	f.down = down
	f.mu.Unlock()
}

func (f *fakePlatform) ListCars(ctx context.Context) ([]model.Car, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, errPlatformDown
	}
	out := make([]model.Car, len(f.cars))
	copy(out, f.cars)
	return out, nil
}

func (f *fakePlatform) GetCar(ctx context.Context, id string) (*model.Car, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, errPlatformDown
	}
	for i := range f.cars {
		if f.cars[i].ID == id {
			c := f.cars[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakePlatform) CreateCar(ctx context.Context, car *model.Car) (*model.Car, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, errPlatformDown
	}
	f.cars = append(f.cars, *car)
	c := *car
	return &c, nil
}

func (f *fakePlatform) UpdateCar(ctx context.Context, car *model.Car) (*model.Car, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, errPlatformDown
	}
	for i := range f.cars {
		if f.cars[i].ID == car.ID {
			f.cars[i] = *car
			c := *car
			return &c, nil
		}
	}
	return nil, remote.ErrNotFound
}

func (f *fakePlatform) DeleteCar(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return errPlatformDown
	}
	out := f.cars[:0]
	for i := range f.cars {
		if f.cars[i].ID != id {
			out = append(out, f.cars[i])
		}
	}
	f.cars = out
	return nil
}

func (f *fakePlatform) ListOrders(ctx context.Context) ([]model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, errPlatformDown
	}
	out := make([]model.Order, len(f.orders))
	copy(out, f.orders)
	return out, nil
}

func (f *fakePlatform) CreateOrder(ctx context.Context, order *model.Order) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createOrderCalls++
	if f.down {
		return nil, errPlatformDown
	}
	f.nextRef++
	stored := *order
	stored.ID = fmt.Sprintf("r-%d", f.nextRef)
	stored.SyncStatus = ""
	stored.RemoteRef = ""
	f.orders = append(f.orders, stored)
	return &stored, nil
}

func (f *fakePlatform) SetOrderStatus(ctx context.Context, id string, status model.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setStatusCalls++
	if f.down {
		return errPlatformDown
	}
	for i := range f.orders {
		if f.orders[i].ID == id {
			f.orders[i].Status = status
			return nil
		}
	}
	return remote.ErrNotFound
}

func (f *fakePlatform) DeleteOrder(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return errPlatformDown
	}
	out := f.orders[:0]
	for i := range f.orders {
		if f.orders[i].ID != id {
			out = append(out, f.orders[i])
		}
	}
	f.orders = out
	return nil
}

func (f *fakePlatform) GetSettings(ctx context.Context, group string) (*model.SettingsGroup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, errPlatformDown
	}
	sg, ok := f.settings[group]
	if !ok {
		return nil, remote.ErrNotFound
	}
	return &sg, nil
}

func (f *fakePlatform) UpdateSettings(ctx context.Context, sg *model.SettingsGroup) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return errPlatformDown
	}
	f.settings[sg.Group] = *sg
	return nil
}

func (f *fakePlatform) ImportCars(ctx context.Context, cars []model.Car) (*remote.ImportResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, errPlatformDown
	}
	f.cars = append(f.cars, cars...)
	return &remote.ImportResult{Imported: len(cars)}, nil
}

func (f *fakePlatform) UploadImage(ctx context.Context, filename string, data []byte) (*model.CarImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, errPlatformDown
	}
	return &model.CarImage{ID: "img-1", URL: "/uploads/" + filename}, nil
}

func (f *fakePlatform) AssignImage(ctx context.Context, carID, imageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return errPlatformDown
	}
	return nil
}

package services

import (
	"context"
	"io"
	"sync"

	"github.com/yeremiapane/lunchorder/models"
	"github.com/yeremiapane/lunchorder/utils"
)

func init() {
	utils.SilenceLoggers(io.Discard)
}

type fakeRestaurants struct {
	entries []models.AvailableRestaurant
	err     error
	calls   int
}

func (f *fakeRestaurants) ListAvailable(ctx context.Context, date string) ([]models.AvailableRestaurant, error) {
	f.calls++
	return f.entries, f.err
}

type fakeMenus struct {
	menus []models.Menu
	err   error
}

func (f *fakeMenus) Available(ctx context.Context, date string) ([]models.Menu, error) {
	return f.menus, f.err
}

type fakeOrders struct {
	mu       sync.Mutex
	listed   []models.Order
	listErr  error
	from, to string

	created   []models.SimpleOrderInput
	updated   map[uint]models.SimpleOrderInput
	cancelled []uint
	writeErr  error
	nextID    uint
	// gate, when set, blocks writes until closed.
	gate chan struct{}
}

func (f *fakeOrders) List(ctx context.Context, from, to string) ([]models.Order, error) {
	f.from, f.to = from, to
	return f.listed, f.listErr
}

func (f *fakeOrders) wait() {
	if f.gate != nil {
		<-f.gate
	}
}

func (f *fakeOrders) CreateSimple(ctx context.Context, in models.SimpleOrderInput) (models.Order, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, in)
	if f.writeErr != nil {
		return models.Order{}, f.writeErr
	}
	f.nextID++
	return models.Order{
		ID: 100 + f.nextID, RestaurantID: in.RestaurantID, OrderDate: in.OrderDate,
		OrderText: in.OrderText, Notes: in.Notes, Status: models.OrderPending,
	}, nil
}

func (f *fakeOrders) UpdateSimple(ctx context.Context, id uint, in models.SimpleOrderInput) (models.Order, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updated == nil {
		f.updated = make(map[uint]models.SimpleOrderInput)
	}
	f.updated[id] = in
	if f.writeErr != nil {
		return models.Order{}, f.writeErr
	}
	return models.Order{ID: id, RestaurantID: in.RestaurantID, OrderText: in.OrderText, Notes: in.Notes, Status: models.OrderPending}, nil
}

func (f *fakeOrders) Cancel(ctx context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, id)
	return f.writeErr
}

func strPtr(s string) *string { return &s }

func restaurant(id uint, name string, days ...models.Weekday) models.Restaurant {
	return models.Restaurant{ID: id, Name: name, IsActive: true, Weekdays: models.NewWeekdaySet(days...)}
}

func menu(id, restaurantID uint, from, until string) models.Menu {
	return models.Menu{ID: id, RestaurantID: restaurantID, Name: "Menu", AvailableFrom: from, AvailableUntil: models.EndDate(until), IsActive: true}
}

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yeremiapane/lunchorder/calendar"
	"github.com/yeremiapane/lunchorder/models"
	"github.com/yeremiapane/lunchorder/utils"
)

// ErrAmbiguousMenu means two or more menus of one restaurant cover the same
// date. Menu windows must not overlap; the resolver refuses to pick one.
var ErrAmbiguousMenu = errors.New("more than one menu covers the date")

type RestaurantLister interface {
	ListAvailable(ctx context.Context, date string) ([]models.AvailableRestaurant, error)
}

type MenuLister interface {
	Available(ctx context.Context, date string) ([]models.Menu, error)
}

// Availability is what can be ordered on one date.
type Availability struct {
	Date    string
	Weekday models.Weekday
	Options []models.AvailableRestaurant
	// LoadFailed distinguishes "could not determine" from "nothing available".
	LoadFailed bool
	Err        error
}

func (a Availability) Empty() bool {
	return len(a.Options) == 0
}

// Option returns the entry for restaurantID.
func (a Availability) Option(restaurantID uint) (models.AvailableRestaurant, bool) {
	for _, opt := range a.Options {
		if opt.Restaurant.ID == restaurantID {
			return opt, true
		}
	}
	return models.AvailableRestaurant{}, false
}

type AvailabilityResolver struct {
	restaurants RestaurantLister
	menus       MenuLister
}

func NewAvailabilityResolver(restaurants RestaurantLister, menus MenuLister) *AvailabilityResolver {
	return &AvailabilityResolver{restaurants: restaurants, menus: menus}
}

// AvailableFor lists the active restaurants open on date's weekday, in server
// order, each with the menu covering date and the weekday's MOTD option.
func (r *AvailabilityResolver) AvailableFor(ctx context.Context, date string) Availability {
	result := Availability{Date: date}

	weekday, err := calendar.WeekdayOf(date)
	if errors.Is(err, calendar.ErrWeekend) {
		return result
	}
	if err != nil {
		result.Err = err
		return result
	}
	result.Weekday = weekday

	listed, err := r.restaurants.ListAvailable(ctx, date)
	if err != nil {
		utils.ErrorLogger.Errorf("load restaurants for %s: %v", date, err)
		result.LoadFailed = true
		result.Err = err
		return result
	}
	menus, err := r.menus.Available(ctx, date)
	if err != nil {
		utils.ErrorLogger.Errorf("load menus for %s: %v", date, err)
		result.LoadFailed = true
		result.Err = err
		return result
	}

	covering, err := coveringMenus(menus, date)
	if err != nil {
		utils.ErrorLogger.Errorf("resolve menus for %s: %v", date, err)
		result.Err = err
		return result
	}

	options := make([]models.AvailableRestaurant, 0, len(listed))
	for _, entry := range listed {
		if !entry.Restaurant.IsActive {
			continue
		}
		if len(entry.Restaurant.Weekdays) > 0 && !entry.Restaurant.Weekdays.Contains(weekday) {
			continue
		}
		entry.Menu = pickMenu(entry, covering, date)
		options = append(options, entry)
	}
	result.Options = options
	return result
}

// coveringMenus indexes the menus that cover date by restaurant.
func coveringMenus(menus []models.Menu, date string) (map[uint]models.Menu, error) {
	out := make(map[uint]models.Menu, len(menus))
	for _, m := range menus {
		if !m.Covers(date) {
			continue
		}
		if prev, ok := out[m.RestaurantID]; ok {
			return nil, fmt.Errorf("restaurant %d: menus %d and %d: %w", m.RestaurantID, prev.ID, m.ID, ErrAmbiguousMenu)
		}
		out[m.RestaurantID] = m
	}
	return out, nil
}

func pickMenu(entry models.AvailableRestaurant, covering map[uint]models.Menu, date string) *models.Menu {
	if entry.Menu != nil && entry.Menu.Covers(date) {
		return entry.Menu
	}
	if m, ok := covering[entry.Restaurant.ID]; ok {
		return &m
	}
	return nil
}

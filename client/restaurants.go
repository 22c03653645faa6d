package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/yeremiapane/lunchorder/models"
)

type RestaurantService struct {
	c *Client
}

// List returns active restaurants, or every restaurant when includeInactive
// is set (admins only).
func (s *RestaurantService) List(ctx context.Context, includeInactive bool) ([]models.Restaurant, error) {
	q := url.Values{}
	if includeInactive {
		q.Set("is_active", "all")
	}
	var resp struct {
		Restaurants []models.Restaurant `json:"restaurants"`
	}
	err := s.c.do(ctx, http.MethodGet, "/restaurants", q, nil, &resp)
	return resp.Restaurants, err
}

func (s *RestaurantService) Get(ctx context.Context, id uint) (models.Restaurant, error) {
	var r models.Restaurant
	err := s.c.do(ctx, http.MethodGet, fmt.Sprintf("/restaurants/%d", id), nil, nil, &r)
	return r, err
}

// ListAvailable returns the restaurants open on date, each with its menu and
// MOTD option for that day, in server order.
func (s *RestaurantService) ListAvailable(ctx context.Context, date string) ([]models.AvailableRestaurant, error) {
	var resp struct {
		Restaurants []models.AvailableRestaurant `json:"restaurants"`
	}
	err := s.c.do(ctx, http.MethodGet, "/restaurants/available", url.Values{"date": {date}}, nil, &resp)
	return resp.Restaurants, err
}

func (s *RestaurantService) Create(ctx context.Context, in models.RestaurantInput) (models.Restaurant, error) {
	var resp struct {
		Restaurant models.Restaurant `json:"restaurant"`
	}
	err := s.c.do(ctx, http.MethodPost, "/restaurants", nil, in, &resp)
	return resp.Restaurant, err
}

func (s *RestaurantService) Update(ctx context.Context, id uint, in models.RestaurantInput) (models.Restaurant, error) {
	var resp struct {
		Restaurant models.Restaurant `json:"restaurant"`
	}
	err := s.c.do(ctx, http.MethodPut, fmt.Sprintf("/restaurants/%d", id), nil, in, &resp)
	return resp.Restaurant, err
}

// Deactivate is a soft delete: the restaurant disappears from ordering but
// its history stays.
func (s *RestaurantService) Deactivate(ctx context.Context, id uint) error {
	return s.c.do(ctx, http.MethodDelete, fmt.Sprintf("/restaurants/%d", id), nil, nil, nil)
}

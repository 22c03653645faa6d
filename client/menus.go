package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/yeremiapane/lunchorder/models"
)

type MenuService struct {
	c *Client
}

func (s *MenuService) List(ctx context.Context, f models.MenuFilter) ([]models.Menu, error) {
	q := url.Values{}
	if f.RestaurantID != 0 {
		q.Set("restaurant_id", strconv.FormatUint(uint64(f.RestaurantID), 10))
	}
	if f.DateFrom != "" {
		q.Set("date_from", f.DateFrom)
	}
	if f.DateTo != "" {
		q.Set("date_to", f.DateTo)
	}
	var resp struct {
		Menus []models.Menu `json:"menus"`
	}
	err := s.c.do(ctx, http.MethodGet, "/menus", q, nil, &resp)
	return resp.Menus, err
}

// Available returns every active menu whose window contains date.
func (s *MenuService) Available(ctx context.Context, date string) ([]models.Menu, error) {
	var resp struct {
		Menus []models.Menu `json:"menus"`
	}
	err := s.c.do(ctx, http.MethodGet, "/menus/available", url.Values{"date": {date}}, nil, &resp)
	return resp.Menus, err
}

// Get returns the menu with its items.
func (s *MenuService) Get(ctx context.Context, id uint) (models.Menu, error) {
	var m models.Menu
	err := s.c.do(ctx, http.MethodGet, fmt.Sprintf("/menus/%d", id), nil, nil, &m)
	return m, err
}

func (s *MenuService) Create(ctx context.Context, in models.MenuInput) (models.Menu, error) {
	var resp struct {
		Menu models.Menu `json:"menu"`
	}
	if in.AvailableUntil == nil {
		in.AvailableUntil = models.OpenEnded()
	}
	var err error
	if in.File != nil {
		err = s.c.doMultipart(ctx, http.MethodPost, "/menus/with-content", menuFields(in), "menu_file", in.File, &resp)
	} else {
		err = s.c.do(ctx, http.MethodPost, "/menus", nil, in, &resp)
	}
	return resp.Menu, err
}

func (s *MenuService) Update(ctx context.Context, id uint, in models.MenuInput) (models.Menu, error) {
	var resp struct {
		Menu models.Menu `json:"menu"`
	}
	var err error
	if in.File != nil || in.ClearFile {
		err = s.c.doMultipart(ctx, http.MethodPut, fmt.Sprintf("/menus/%d/content", id), menuFields(in), "menu_file", in.File, &resp)
	} else {
		err = s.c.do(ctx, http.MethodPut, fmt.Sprintf("/menus/%d", id), nil, in, &resp)
	}
	return resp.Menu, err
}

func (s *MenuService) Delete(ctx context.Context, id uint) error {
	return s.c.do(ctx, http.MethodDelete, fmt.Sprintf("/menus/%d", id), nil, nil, nil)
}

// menuFields mirrors the JSON payload: empty optional fields are omitted so
// the server leaves them unchanged.
func menuFields(in models.MenuInput) map[string]string {
	fields := map[string]string{}
	if in.Name != "" {
		fields["name"] = in.Name
	}
	if in.AvailableFrom != "" {
		fields["available_from"] = in.AvailableFrom
	}
	if in.AvailableUntil != nil {
		fields["available_until"] = in.AvailableUntil.FormValue()
		if in.AvailableUntil.IsOpen() {
			fields["available_until"] = models.NoEndDateSentinel
		}
	}
	if in.RestaurantID != 0 {
		fields["restaurant_id"] = strconv.FormatUint(uint64(in.RestaurantID), 10)
	}
	if in.Description != "" {
		fields["description"] = in.Description
	}
	if in.MenuText != nil {
		fields["menu_text"] = *in.MenuText
	}
	if in.ClearFile {
		fields["clear_file"] = "true"
	}
	return fields
}

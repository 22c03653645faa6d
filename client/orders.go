package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/yeremiapane/lunchorder/models"
)

type OrderService struct {
	c *Client
}

// List returns the caller's orders with order_date in [dateFrom, dateTo].
func (s *OrderService) List(ctx context.Context, dateFrom, dateTo string) ([]models.Order, error) {
	q := url.Values{}
	if dateFrom != "" {
		q.Set("date_from", dateFrom)
	}
	if dateTo != "" {
		q.Set("date_to", dateTo)
	}
	var resp struct {
		Orders []models.Order `json:"orders"`
	}
	err := s.c.do(ctx, http.MethodGet, "/orders", q, nil, &resp)
	return resp.Orders, err
}

func (s *OrderService) Get(ctx context.Context, id uint) (models.Order, error) {
	var o models.Order
	err := s.c.do(ctx, http.MethodGet, fmt.Sprintf("/orders/%d", id), nil, nil, &o)
	return o, err
}

func (s *OrderService) CreateSimple(ctx context.Context, in models.SimpleOrderInput) (models.Order, error) {
	var resp struct {
		Order models.Order `json:"order"`
	}
	err := s.c.do(ctx, http.MethodPost, "/orders/simple", nil, in, &resp)
	return resp.Order, err
}

// UpdateSimple changes restaurant, text and notes of an existing order; the
// date is fixed once created.
func (s *OrderService) UpdateSimple(ctx context.Context, id uint, in models.SimpleOrderInput) (models.Order, error) {
	in.OrderDate = ""
	var resp struct {
		Order models.Order `json:"order"`
	}
	err := s.c.do(ctx, http.MethodPut, fmt.Sprintf("/orders/%d/simple", id), nil, in, &resp)
	return resp.Order, err
}

func (s *OrderService) Cancel(ctx context.Context, id uint) error {
	return s.c.do(ctx, http.MethodDelete, fmt.Sprintf("/orders/%d", id), nil, nil, nil)
}

// MissingDays lists dates in the next daysAhead days without an order.
func (s *OrderService) MissingDays(ctx context.Context, daysAhead int) ([]string, error) {
	var resp struct {
		MissingDates []string `json:"missing_dates"`
	}
	q := url.Values{"days_ahead": {strconv.Itoa(daysAhead)}}
	err := s.c.do(ctx, http.MethodGet, "/orders/missing-days", q, nil, &resp)
	return resp.MissingDates, err
}

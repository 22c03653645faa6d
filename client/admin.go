package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/yeremiapane/lunchorder/models"
)

type AdminService struct {
	c *Client
}

func (s *AdminService) Dashboard(ctx context.Context) (models.DashboardStats, error) {
	var stats models.DashboardStats
	err := s.c.do(ctx, http.MethodGet, "/admin/dashboard", nil, nil, &stats)
	return stats, err
}

// OrdersByDate returns the day's orders grouped by restaurant.
func (s *AdminService) OrdersByDate(ctx context.Context, date string) (models.OrdersByDate, error) {
	var resp models.OrdersByDate
	err := s.c.do(ctx, http.MethodGet, "/admin/orders/by-date", url.Values{"date": {date}}, nil, &resp)
	return resp, err
}

type emailRequest struct {
	Date         string `json:"date"`
	RestaurantID uint   `json:"restaurant_id,omitempty"`
}

func (s *AdminService) EmailDraft(ctx context.Context, date string, restaurantID uint) (models.EmailDraft, error) {
	var resp struct {
		Draft models.EmailDraft `json:"draft"`
	}
	err := s.c.do(ctx, http.MethodPost, "/admin/orders/email-draft", nil, emailRequest{Date: date, RestaurantID: restaurantID}, &resp)
	return resp.Draft, err
}

// SendEmail records the summary for one restaurant as sent. The server logs
// the email rather than dispatching it.
func (s *AdminService) SendEmail(ctx context.Context, date string, restaurantID uint) (string, error) {
	var resp messageResponse
	err := s.c.do(ctx, http.MethodPost, "/admin/orders/send-email", nil, emailRequest{Date: date, RestaurantID: restaurantID}, &resp)
	return resp.Message, err
}

func (s *AdminService) SendAllEmails(ctx context.Context, date string) (models.SendAllResult, error) {
	var resp models.SendAllResult
	err := s.c.do(ctx, http.MethodPost, "/admin/orders/send-all-emails", nil, emailRequest{Date: date}, &resp)
	return resp, err
}

func (s *AdminService) Motd(ctx context.Context, weekday models.Weekday) ([]models.MotdRow, error) {
	var resp struct {
		Restaurants []models.MotdRow `json:"restaurants"`
	}
	q := url.Values{"weekday": {strconv.Itoa(int(weekday))}}
	err := s.c.do(ctx, http.MethodGet, "/admin/motd", q, nil, &resp)
	return resp.Restaurants, err
}

// PutMotd sets the option text; blank text clears it.
func (s *AdminService) PutMotd(ctx context.Context, in models.MotdInput) error {
	return s.c.do(ctx, http.MethodPut, "/admin/motd", nil, in, nil)
}

func (s *AdminService) Availability(ctx context.Context) (models.AvailabilityMap, error) {
	var resp struct {
		Availability models.AvailabilityMap `json:"availability"`
	}
	err := s.c.do(ctx, http.MethodGet, "/admin/restaurants/availability", nil, nil, &resp)
	if resp.Availability == nil {
		resp.Availability = models.AvailabilityMap{}
	}
	return resp.Availability, err
}

// PutAvailability replaces the restaurant's whole weekday set.
func (s *AdminService) PutAvailability(ctx context.Context, restaurantID uint, weekdays models.WeekdaySet) (models.WeekdaySet, error) {
	if weekdays == nil {
		weekdays = models.WeekdaySet{}
	}
	var resp struct {
		Weekdays models.WeekdaySet `json:"weekdays"`
	}
	body := map[string]models.WeekdaySet{"weekdays": weekdays}
	err := s.c.do(ctx, http.MethodPut, fmt.Sprintf("/admin/restaurants/%d/availability", restaurantID), nil, body, &resp)
	return resp.Weekdays, err
}

func (s *AdminService) UpdateOrderStatus(ctx context.Context, orderID uint, status models.OrderStatus) (models.Order, error) {
	var resp struct {
		Order models.Order `json:"order"`
	}
	body := map[string]models.OrderStatus{"status": status}
	err := s.c.do(ctx, http.MethodPut, fmt.Sprintf("/admin/orders/%d/status", orderID), nil, body, &resp)
	return resp.Order, err
}

func (s *AdminService) UsersWithoutOrders(ctx context.Context, date string) ([]models.User, error) {
	var resp struct {
		Users []models.User `json:"users"`
	}
	err := s.c.do(ctx, http.MethodGet, "/admin/users-without-orders", url.Values{"order_date": {date}}, nil, &resp)
	return resp.Users, err
}

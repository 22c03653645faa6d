package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/yeremiapane/lunchorder/models"
)

type UserService struct {
	c *Client
}

func (s *UserService) List(ctx context.Context, page, perPage int) (models.UserPage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		q.Set("per_page", strconv.Itoa(perPage))
	}
	var resp models.UserPage
	err := s.c.do(ctx, http.MethodGet, "/users", q, nil, &resp)
	return resp, err
}

func (s *UserService) Create(ctx context.Context, in models.UserInput) (models.User, error) {
	var resp struct {
		User models.User `json:"user"`
	}
	err := s.c.do(ctx, http.MethodPost, "/users", nil, in, &resp)
	return resp.User, err
}

func (s *UserService) Update(ctx context.Context, id uint, in models.UserInput) (models.User, error) {
	var resp struct {
		User models.User `json:"user"`
	}
	err := s.c.do(ctx, http.MethodPut, fmt.Sprintf("/users/%d", id), nil, in, &resp)
	return resp.User, err
}

package client

import (
	"context"
	"net/http"

	"github.com/yeremiapane/lunchorder/models"
)

type AuthService struct {
	c *Client
}

type LoginResult struct {
	User  models.User
	Token string
}

// RegisterInput is the self-registration payload.
type RegisterInput struct {
	Username    string `json:"username,omitempty"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// Login accepts an email or username as identifier. On success the client
// starts sending the returned token.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (LoginResult, error) {
	var resp struct {
		User        models.User `json:"user"`
		AccessToken string      `json:"access_token"`
	}
	body := map[string]string{"identifier": identifier, "password": password}
	if err := s.c.do(ctx, http.MethodPost, "/auth/login", nil, body, &resp); err != nil {
		return LoginResult{}, err
	}
	s.c.SetToken(resp.AccessToken)
	return LoginResult{User: resp.User, Token: resp.AccessToken}, nil
}

// Logout always drops the client's token, whatever the server answers.
func (s *AuthService) Logout(ctx context.Context) error {
	defer s.c.SetToken("")
	return s.c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	var resp struct {
		User models.User `json:"user"`
	}
	err := s.c.do(ctx, http.MethodPost, "/auth/register", nil, in, &resp)
	return resp.User, err
}

func (s *AuthService) CurrentUser(ctx context.Context) (models.User, error) {
	var user models.User
	err := s.c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &user)
	return user, err
}

func (s *AuthService) UpdateProfile(ctx context.Context, in models.ProfileInput) (models.User, error) {
	var resp struct {
		User models.User `json:"user"`
	}
	err := s.c.do(ctx, http.MethodPut, "/auth/me", nil, in, &resp)
	return resp.User, err
}

func (s *AuthService) ChangePassword(ctx context.Context, current, next string) error {
	body := map[string]string{"current_password": current, "new_password": next}
	return s.c.do(ctx, http.MethodPost, "/auth/change-password", nil, body, nil)
}

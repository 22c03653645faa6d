// Package session owns the authenticated identity of the client: the bearer
// token and the current user. One Session is created at startup and handed to
// whatever needs auth state.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/yeremiapane/lunchorder/client"
	"github.com/yeremiapane/lunchorder/models"
	"github.com/yeremiapane/lunchorder/utils"
)

var ErrNotAuthenticated = errors.New("not logged in")

// AuthAPI is the slice of the auth endpoints a Session needs.
type AuthAPI interface {
	Login(ctx context.Context, identifier, password string) (client.LoginResult, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (models.User, error)
	UpdateProfile(ctx context.Context, in models.ProfileInput) (models.User, error)
	ChangePassword(ctx context.Context, current, next string) error
}

// TokenHolder receives the active token; *client.Client satisfies it.
type TokenHolder interface {
	SetToken(token string)
}

type Session struct {
	auth   AuthAPI
	tokens TokenHolder
	store  Store
	now    func() time.Time

	mu    sync.RWMutex
	state State
}

func New(auth AuthAPI, tokens TokenHolder, store Store) *Session {
	return &Session{auth: auth, tokens: tokens, store: store, now: time.Now}
}

// Init restores a stored session and validates it: an expired JWT is dropped
// without a round trip, otherwise the server is asked for the current user.
// Any failure leaves the session cleared; Init itself only fails when the
// store cannot be read.
func (s *Session) Init(ctx context.Context) error {
	st, err := s.store.Load()
	if err != nil {
		return err
	}
	if st.Empty() {
		return nil
	}

	if exp, ok := utils.TokenExpiry(st.Token); ok && !exp.After(s.now()) {
		utils.InfoLogger.Infof("stored session expired at %s, clearing", exp.Format(time.RFC3339))
		s.clear()
		return nil
	}

	s.set(st)
	user, err := s.auth.CurrentUser(ctx)
	if err != nil {
		utils.InfoLogger.Infof("stored session rejected: %v", err)
		s.clear()
		return nil
	}
	st.User = user
	s.set(st)
	s.persist(st)
	return nil
}

func (s *Session) Login(ctx context.Context, identifier, password string) (models.User, error) {
	res, err := s.auth.Login(ctx, identifier, password)
	if err != nil {
		return models.User{}, err
	}
	st := State{Token: res.Token, User: res.User}
	s.set(st)
	s.persist(st)
	return res.User, nil
}

// Logout clears the local session whatever the outcome of the remote call.
func (s *Session) Logout(ctx context.Context) error {
	defer s.clear()
	return s.auth.Logout(ctx)
}

func (s *Session) UpdateProfile(ctx context.Context, in models.ProfileInput) (models.User, error) {
	if !s.IsAuthenticated() {
		return models.User{}, ErrNotAuthenticated
	}
	user, err := s.auth.UpdateProfile(ctx, in)
	if err != nil {
		return models.User{}, err
	}
	s.mu.Lock()
	s.state.User = user
	st := s.state
	s.mu.Unlock()
	s.persist(st)
	return user, nil
}

func (s *Session) ChangePassword(ctx context.Context, current, next string) error {
	if !s.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	return s.auth.ChangePassword(ctx, current, next)
}

// User returns a copy of the current user; ok is false when logged out.
func (s *Session) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.User, !s.state.Empty()
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.state.Empty()
}

func (s *Session) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.state.Empty() && s.state.User.IsAdmin()
}

func (s *Session) set(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	s.tokens.SetToken(st.Token)
}

func (s *Session) clear() {
	s.set(State{})
	if err := s.store.Clear(); err != nil {
		utils.ErrorLogger.Errorf("clear stored session: %v", err)
	}
}

func (s *Session) persist(st State) {
	if err := s.store.Save(st); err != nil {
		utils.ErrorLogger.Errorf("save session: %v", err)
	}
}
